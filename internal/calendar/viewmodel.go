// Package calendar translates calendar-widget callbacks into state
// transitions over the event store and the doctor directory.
package calendar

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/store/doctor"
	"github.com/jwalitptl/clinic-dashboard/internal/store/event"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
)

const (
	DefaultEventDuration = 60 * time.Minute
	DefaultEventType     = "General Checkup"
)

// ErrRescheduleUnimplemented marks the drag-to-reschedule boundary: drops
// are reported but never persisted.
var ErrRescheduleUnimplemented = apperrors.Unimplemented("event reschedule")

type Options struct {
	Now    func() time.Time
	IDs    *event.IDGenerator
	Logger *logger.Logger
}

// ViewModel owns the calendar's UI state. The detail modal and the create
// modal are independent; opening one does not close the other.
type ViewModel struct {
	events  *event.Store
	doctors *doctor.Directory
	ids     *event.IDGenerator
	now     func() time.Time
	logger  *logger.Logger

	// revision counts effective event store mutations. It is bumped from
	// the store's observer, which may run while mu is held.
	revision atomic.Uint64

	mu          sync.Mutex
	granularity model.Granularity
	visibleDate time.Time
	detail      *model.EventModalData
	createOpen  bool
	draft       model.PendingCreateDraft
}

func New(events *event.Store, doctors *doctor.Directory, opts Options) *ViewModel {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IDs == nil {
		opts.IDs = event.NewIDGenerator(opts.Now)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	vm := &ViewModel{
		events:      events,
		doctors:     doctors,
		ids:         opts.IDs,
		now:         opts.Now,
		logger:      opts.Logger.WithComponent("calendar"),
		granularity: model.GranularityDay,
		visibleDate: opts.Now(),
	}
	events.Subscribe(func(all []model.Event) {
		rev := vm.revision.Add(1)
		vm.logger.Debug("events changed", "revision", rev, "count", len(all))
	})
	return vm
}

// Revision increases on every effective change to the event store, from
// any writer.
func (vm *ViewModel) Revision() uint64 {
	return vm.revision.Load()
}

// FilteredEvents is every stored event belonging to the selected doctor.
// It is derived on each call, never cached.
func (vm *ViewModel) FilteredEvents() []model.Event {
	return vm.events.ByDoctor(vm.doctors.Selected())
}

func (vm *ViewModel) Doctors() []model.Doctor {
	return vm.doctors.Doctors()
}

func (vm *ViewModel) SelectDoctor(id string) error {
	return vm.doctors.Select(id)
}

// OnEventClick opens the detail modal with a projection of the clicked
// event. The returned outcome tells the widget to suppress its default
// navigation.
func (vm *ViewModel) OnEventClick(info EventClickInfo) ClickOutcome {
	classNames := make([]string, len(info.Event.ClassNames))
	copy(classNames, info.Event.ClassNames)
	data := &model.EventModalData{
		ID:            info.Event.ID,
		Title:         info.Event.Title,
		Start:         info.Event.StartStr,
		End:           info.Event.EndStr,
		ExtendedProps: info.Event.ExtendedProps,
		ClassNames:    classNames,
	}

	vm.mu.Lock()
	vm.detail = data
	vm.mu.Unlock()

	return ClickOutcome{PreventDefault: true, Detail: data}
}

func (vm *ViewModel) CloseDetail() {
	vm.mu.Lock()
	vm.detail = nil
	vm.mu.Unlock()
}

// OnDateClick starts the create flow for the clicked slot.
func (vm *ViewModel) OnDateClick(info DateClickInfo) {
	target := info.Date

	vm.mu.Lock()
	vm.draft = model.PendingCreateDraft{TargetDate: &target}
	vm.createOpen = true
	vm.mu.Unlock()
}

func (vm *ViewModel) SetDraftPatientName(name string) {
	vm.mu.Lock()
	vm.draft.PatientName = name
	vm.mu.Unlock()
}

// CancelCreate closes the create modal and drops the draft.
func (vm *ViewModel) CancelCreate() {
	vm.mu.Lock()
	vm.createOpen = false
	vm.draft = model.PendingCreateDraft{}
	vm.mu.Unlock()
}

// OnCreateConfirm turns the draft into a one-hour Scheduled event for the
// selected doctor. Without a target date and a patient name it does nothing
// and reports false.
func (vm *ViewModel) OnCreateConfirm() (model.Event, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	name := strings.TrimSpace(vm.draft.PatientName)
	if vm.draft.TargetDate == nil || name == "" {
		return model.Event{}, false
	}

	start := *vm.draft.TargetDate
	e := model.Event{
		ID:          vm.ids.NextFree(vm.events),
		Title:       name,
		Start:       start,
		End:         start.Add(DefaultEventDuration),
		DoctorID:    vm.doctors.Selected(),
		Status:      model.EventStatusScheduled,
		Type:        DefaultEventType,
		PatientName: name,
		ColorTag:    model.ColorBlue,
	}
	if err := vm.events.Add(e); err != nil {
		vm.logger.Error(err, "failed to add drafted event", "event_id", e.ID)
		return model.Event{}, false
	}

	vm.createOpen = false
	vm.draft = model.PendingCreateDraft{}
	return e, true
}

// OnEventDrop records a drag-and-drop but does not move the event.
func (vm *ViewModel) OnEventDrop(info EventDropInfo) (RescheduleCommand, error) {
	cmd := RescheduleCommand{
		EventID: info.Event.ID,
		From:    model.DateRange{Start: info.OldEvent.Start, End: info.OldEvent.End},
		To:      model.DateRange{Start: info.Event.Start, End: info.Event.End},
	}
	vm.logger.Info("event dropped",
		"event_id", cmd.EventID,
		"from", cmd.From.Start,
		"to", cmd.To.Start,
	)
	return cmd, ErrRescheduleUnimplemented
}

func (vm *ViewModel) ChangeGranularity(g model.Granularity) error {
	if !g.Valid() {
		return apperrors.Validation("granularity must be timeGridDay or timeGridWeek")
	}
	vm.mu.Lock()
	vm.granularity = g
	vm.mu.Unlock()
	return nil
}

// OnVisibleRangeChange mirrors the widget's reported range start.
func (vm *ViewModel) OnVisibleRangeChange(info RangeInfo) {
	vm.mu.Lock()
	vm.visibleDate = info.Start
	vm.mu.Unlock()
}

func (vm *ViewModel) View() model.CalendarViewState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return model.CalendarViewState{
		Granularity:      vm.granularity,
		VisibleDate:      vm.visibleDate,
		SelectedDoctorID: vm.doctors.Selected(),
	}
}

// Config is what the rendering widget needs to draw the current view.
func (vm *ViewModel) Config() model.CalendarConfig {
	view := vm.View()
	return model.CalendarConfig{
		Granularity: view.Granularity,
		VisibleDate: view.VisibleDate,
		DateRange:   VisibleRange(view.Granularity, view.VisibleDate),
		Events:      widgetEvents(vm.FilteredEvents()),
		SlotMinTime: SlotMinTime,
		SlotMaxTime: SlotMaxTime,
		SlotMinutes: SlotMinutes,
		Weekends:    false,
	}
}

// Snapshot returns the full state including both modals.
func (vm *ViewModel) Snapshot() model.CalendarSnapshot {
	view := vm.View()
	filtered := widgetEvents(vm.FilteredEvents())

	vm.mu.Lock()
	defer vm.mu.Unlock()

	snap := model.CalendarSnapshot{
		View:            view,
		Revision:        vm.revision.Load(),
		DetailOpen:      vm.detail != nil,
		CreateOpen:      vm.createOpen,
		Draft:           vm.draft,
		FilteredEvents:  filtered,
		AvailableDoctor: vm.doctors.Doctors(),
	}
	if vm.detail != nil {
		d := *vm.detail
		d.ClassNames = make([]string, len(vm.detail.ClassNames))
		copy(d.ClassNames, vm.detail.ClassNames)
		snap.Detail = &d
	}
	if vm.draft.TargetDate != nil {
		t := *vm.draft.TargetDate
		snap.Draft.TargetDate = &t
	}
	return snap
}

// VisibleRange is the half-open interval a granularity shows around date.
// Weeks start on Monday.
func VisibleRange(g model.Granularity, date time.Time) model.DateRange {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	if g == model.GranularityWeek {
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return model.DateRange{Start: start, End: start.AddDate(0, 0, 7)}
	}
	return model.DateRange{Start: day, End: day.AddDate(0, 0, 1)}
}

func widgetEvents(events []model.Event) []model.WidgetEvent {
	out := make([]model.WidgetEvent, len(events))
	for i, e := range events {
		out[i] = e.Widget()
	}
	return out
}
