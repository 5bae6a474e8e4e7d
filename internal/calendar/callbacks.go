package calendar

import (
	"time"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

// Working-day window rendered by the widget.
const (
	SlotMinTime = "08:00:00"
	SlotMaxTime = "18:00:00"
	SlotMinutes = 15
)

// ClickedEvent is the event payload the widget hands to eventClick.
// StartStr and EndStr are the widget's own ISO strings and are copied
// verbatim into the detail modal.
type ClickedEvent struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	StartStr      string              `json:"startStr"`
	EndStr        string              `json:"endStr"`
	ExtendedProps model.ExtendedProps `json:"extendedProps"`
	ClassNames    []string            `json:"classNames"`
}

type EventClickInfo struct {
	Event ClickedEvent `json:"event"`
}

// ClickOutcome tells the widget what to do after an event click.
type ClickOutcome struct {
	PreventDefault bool                  `json:"preventDefault"`
	Detail         *model.EventModalData `json:"eventModalData"`
}

type DateClickInfo struct {
	Date time.Time `json:"date" binding:"required"`
}

type DroppedEvent struct {
	ID    string    `json:"id" binding:"required"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type EventDropInfo struct {
	Event    DroppedEvent `json:"event" binding:"required"`
	OldEvent DroppedEvent `json:"oldEvent"`
}

type RangeInfo struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end"`
}

// RescheduleCommand describes a drop the widget performed. It is reported
// back to the caller and never applied to the store.
type RescheduleCommand struct {
	EventID string          `json:"eventId"`
	From    model.DateRange `json:"from"`
	To      model.DateRange `json:"to"`
}
