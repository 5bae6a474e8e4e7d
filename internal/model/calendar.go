package model

import (
	"time"
)

// Doctor is a practitioner shown in the calendar sidebar.
type Doctor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PatientCount *int   `json:"patientCount,omitempty"`
	Status       string `json:"status,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
}

type EventStatus string

const (
	EventStatusScheduled  EventStatus = "Scheduled"
	EventStatusFinished   EventStatus = "Finished"
	EventStatusEncounter  EventStatus = "Encounter"
	EventStatusRegistered EventStatus = "Registered"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusScheduled, EventStatusFinished, EventStatusEncounter, EventStatusRegistered:
		return true
	}
	return false
}

type ColorTag string

const (
	ColorPink    ColorTag = "pink"
	ColorGreen   ColorTag = "green"
	ColorBlue    ColorTag = "blue"
	ColorDefault ColorTag = "default"
)

func (c ColorTag) Valid() bool {
	switch c {
	case ColorPink, ColorGreen, ColorBlue, ColorDefault:
		return true
	}
	return false
}

// ClassNames is the widget class list for the tag.
func (c ColorTag) ClassNames() []string {
	switch c {
	case ColorPink, ColorGreen, ColorBlue:
		return []string{"appointment-" + string(c)}
	default:
		return []string{}
	}
}

// Event is one calendar occurrence. End is always after Start.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	DoctorID    string      `json:"doctorId"`
	Status      EventStatus `json:"status"`
	Type        string      `json:"type"`
	PatientName string      `json:"patientName"`
	Note        string      `json:"note,omitempty"`
	ColorTag    ColorTag    `json:"colorTag"`
}

// ExtendedProps is the widget's per-event payload.
type ExtendedProps struct {
	Patient string `json:"patient"`
	Type    string `json:"type"`
	Status  string `json:"status"`
	Note    string `json:"note,omitempty"`
}

// WidgetEvent is the shape the calendar widget renders.
type WidgetEvent struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	DoctorID      string        `json:"doctorId"`
	ExtendedProps ExtendedProps `json:"extendedProps"`
	ClassNames    []string      `json:"className"`
}

func (e Event) Widget() WidgetEvent {
	return WidgetEvent{
		ID:       e.ID,
		Title:    e.Title,
		Start:    e.Start,
		End:      e.End,
		DoctorID: e.DoctorID,
		ExtendedProps: ExtendedProps{
			Patient: e.PatientName,
			Type:    e.Type,
			Status:  string(e.Status),
			Note:    e.Note,
		},
		ClassNames: e.ColorTag.ClassNames(),
	}
}

// EventPatch lists the mutable fields of an Event. Nil fields are left alone.
type EventPatch struct {
	Title       *string      `json:"title,omitempty"`
	Start       *time.Time   `json:"start,omitempty"`
	End         *time.Time   `json:"end,omitempty"`
	DoctorID    *string      `json:"doctorId,omitempty"`
	Status      *EventStatus `json:"status,omitempty" binding:"omitempty,oneof=Scheduled Finished Encounter Registered"`
	Type        *string      `json:"type,omitempty"`
	PatientName *string      `json:"patientName,omitempty"`
	Note        *string      `json:"note,omitempty"`
	ColorTag    *ColorTag    `json:"colorTag,omitempty" binding:"omitempty,oneof=pink green blue default"`
}

// Apply returns e with the patch merged in.
func (p EventPatch) Apply(e Event) Event {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Start != nil {
		e.Start = *p.Start
	}
	if p.End != nil {
		e.End = *p.End
	}
	if p.DoctorID != nil {
		e.DoctorID = *p.DoctorID
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.PatientName != nil {
		e.PatientName = *p.PatientName
	}
	if p.Note != nil {
		e.Note = *p.Note
	}
	if p.ColorTag != nil {
		e.ColorTag = *p.ColorTag
	}
	return e
}

type Granularity string

const (
	GranularityDay  Granularity = "timeGridDay"
	GranularityWeek Granularity = "timeGridWeek"
)

func (g Granularity) Valid() bool {
	return g == GranularityDay || g == GranularityWeek
}

// DateRange is a half-open [Start, End) interval.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalendarViewState is transient, per-session UI state.
type CalendarViewState struct {
	Granularity      Granularity `json:"granularity"`
	VisibleDate      time.Time   `json:"visibleDate"`
	SelectedDoctorID string      `json:"selectedDoctorId"`
}

// EventModalData is the read-only projection shown in the detail modal.
type EventModalData struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Start         string        `json:"start"`
	End           string        `json:"end"`
	ExtendedProps ExtendedProps `json:"extendedProps"`
	ClassNames    []string      `json:"classNames"`
}

// PendingCreateDraft backs the click-empty-slot create flow.
type PendingCreateDraft struct {
	TargetDate  *time.Time `json:"targetDate"`
	PatientName string     `json:"patientName"`
}

// CalendarConfig is handed to the rendering widget.
type CalendarConfig struct {
	Granularity Granularity   `json:"granularity"`
	VisibleDate time.Time     `json:"visibleDate"`
	DateRange   DateRange     `json:"dateRange"`
	Events      []WidgetEvent `json:"events"`
	SlotMinTime string        `json:"slotMinTime"`
	SlotMaxTime string        `json:"slotMaxTime"`
	SlotMinutes int           `json:"slotDuration"`
	Weekends    bool          `json:"weekends"`
}

// CalendarSnapshot is the whole view-model state, for clients re-rendering modals.
type CalendarSnapshot struct {
	View            CalendarViewState  `json:"view"`
	Revision        uint64             `json:"revision"`
	DetailOpen      bool               `json:"eventModalOpen"`
	Detail          *EventModalData    `json:"eventModalData"`
	CreateOpen      bool               `json:"createModalOpen"`
	Draft           PendingCreateDraft `json:"draft"`
	FilteredEvents  []WidgetEvent      `json:"filteredEvents"`
	AvailableDoctor []Doctor           `json:"doctors"`
}

type SelectDoctorRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
}

type ChangeGranularityRequest struct {
	Granularity Granularity `json:"granularity" binding:"required"`
}

type DraftRequest struct {
	PatientName string `json:"patientName"`
}
