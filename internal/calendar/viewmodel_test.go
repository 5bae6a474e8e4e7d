package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/store/doctor"
	"github.com/jwalitptl/clinic-dashboard/internal/store/event"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

var now = time.Date(2025, 12, 3, 10, 30, 0, 0, time.UTC) // Wednesday

func seedEvent(id, doctorID string, color model.ColorTag) model.Event {
	start := time.Date(2025, 12, 3, 9, 0, 0, 0, time.UTC)
	return model.Event{
		ID:          id,
		Title:       "Patient " + id,
		Start:       start,
		End:         start.Add(30 * time.Minute),
		DoctorID:    doctorID,
		Status:      model.EventStatusFinished,
		Type:        "Scaling",
		PatientName: "Patient " + id,
		ColorTag:    color,
	}
}

func newViewModel(t *testing.T, events ...model.Event) (*ViewModel, *event.Store, *doctor.Directory) {
	t.Helper()
	store, err := event.NewStore(events...)
	require.NoError(t, err)
	dir, err := doctor.NewDirectory(doctor.DefaultRoster())
	require.NoError(t, err)

	vm := New(store, dir, Options{Now: func() time.Time { return now }})
	return vm, store, dir
}

func TestViewModel_Defaults(t *testing.T) {
	vm, _, _ := newViewModel(t)

	view := vm.View()
	assert.Equal(t, model.GranularityDay, view.Granularity)
	assert.Equal(t, now, view.VisibleDate)
	assert.Equal(t, "doc1", view.SelectedDoctorID)

	snap := vm.Snapshot()
	assert.False(t, snap.DetailOpen)
	assert.False(t, snap.CreateOpen)
	assert.Nil(t, snap.Detail)
	assert.Len(t, snap.AvailableDoctor, 3)
}

func TestViewModel_FilteredEventsFollowSelection(t *testing.T) {
	vm, store, _ := newViewModel(t,
		seedEvent("1", "doc1", model.ColorPink),
		seedEvent("2", "doc2", model.ColorGreen),
		seedEvent("3", "doc1", model.ColorBlue),
	)

	assert.Equal(t, []string{"1", "3"}, idsOf(vm.FilteredEvents()))

	require.NoError(t, vm.SelectDoctor("doc2"))
	assert.Equal(t, []string{"2"}, idsOf(vm.FilteredEvents()))

	require.NoError(t, vm.SelectDoctor("doc3"))
	assert.Empty(t, vm.FilteredEvents())

	err := vm.SelectDoctor("doc9")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "doc3", vm.View().SelectedDoctorID)

	require.NoError(t, vm.SelectDoctor("doc1"))
	require.NoError(t, store.Add(seedEvent("4", "doc1", model.ColorDefault)))
	assert.Equal(t, []string{"1", "3", "4"}, idsOf(vm.FilteredEvents()))
}

func TestViewModel_EventClickOpensDetail(t *testing.T) {
	vm, _, _ := newViewModel(t)

	out := vm.OnEventClick(EventClickInfo{Event: ClickedEvent{
		ID:       "7",
		Title:    "Bruce Wayne",
		StartStr: "2025-12-03T09:00:00",
		EndStr:   "2025-12-03T09:30:00",
		ExtendedProps: model.ExtendedProps{
			Patient: "Bruce Wayne",
			Type:    "Scaling",
			Status:  "Finished",
		},
		ClassNames: []string{"appointment-pink"},
	}})

	assert.True(t, out.PreventDefault)
	require.NotNil(t, out.Detail)
	assert.Equal(t, "2025-12-03T09:00:00", out.Detail.Start)

	snap := vm.Snapshot()
	assert.True(t, snap.DetailOpen)
	require.NotNil(t, snap.Detail)
	assert.Equal(t, "7", snap.Detail.ID)
	assert.Equal(t, []string{"appointment-pink"}, snap.Detail.ClassNames)

	vm.CloseDetail()
	assert.False(t, vm.Snapshot().DetailOpen)
}

func TestViewModel_EventClickClassNamesNeverNull(t *testing.T) {
	vm, _, _ := newViewModel(t)

	for _, classNames := range [][]string{nil, {}} {
		out := vm.OnEventClick(EventClickInfo{Event: ClickedEvent{ID: "1", ClassNames: classNames}})
		raw, err := json.Marshal(out.Detail)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"classNames":[]`)

		raw, err = json.Marshal(vm.Snapshot().Detail)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"classNames":[]`)
	}

	src := []string{"appointment-green"}
	vm.OnEventClick(EventClickInfo{Event: ClickedEvent{ID: "2", ClassNames: src}})
	src[0] = "mutated"
	snap := vm.Snapshot()
	snap.Detail.ClassNames[0] = "mutated too"
	assert.Equal(t, []string{"appointment-green"}, vm.Snapshot().Detail.ClassNames)
}

func TestViewModel_CreateFlow(t *testing.T) {
	vm, store, _ := newViewModel(t, seedEvent("1", "doc1", model.ColorPink))
	require.NoError(t, vm.SelectDoctor("doc2"))

	slot := time.Date(2025, 12, 4, 14, 15, 0, 0, time.UTC)
	vm.OnDateClick(DateClickInfo{Date: slot})

	snap := vm.Snapshot()
	assert.True(t, snap.CreateOpen)
	require.NotNil(t, snap.Draft.TargetDate)
	assert.Equal(t, slot, *snap.Draft.TargetDate)
	assert.Empty(t, snap.Draft.PatientName)

	vm.SetDraftPatientName("Clark Kent")
	created, ok := vm.OnCreateConfirm()
	require.True(t, ok)

	assert.Equal(t, "Clark Kent", created.Title)
	assert.Equal(t, "Clark Kent", created.PatientName)
	assert.Equal(t, slot, created.Start)
	assert.Equal(t, slot.Add(time.Hour), created.End)
	assert.Equal(t, "doc2", created.DoctorID)
	assert.Equal(t, model.EventStatusScheduled, created.Status)
	assert.Equal(t, "General Checkup", created.Type)
	assert.Equal(t, []string{"appointment-blue"}, created.Widget().ClassNames)

	assert.Equal(t, 2, store.Len())
	assert.True(t, store.Has(created.ID))

	snap = vm.Snapshot()
	assert.False(t, snap.CreateOpen)
	assert.Nil(t, snap.Draft.TargetDate)
	assert.Empty(t, snap.Draft.PatientName)
	assert.Equal(t, []string{created.ID}, idsOfWidget(snap.FilteredEvents))
}

func TestViewModel_CreateConfirmNeedsNameAndDate(t *testing.T) {
	vm, store, _ := newViewModel(t)

	_, ok := vm.OnCreateConfirm()
	assert.False(t, ok)

	vm.OnDateClick(DateClickInfo{Date: now})
	vm.SetDraftPatientName("   ")
	_, ok = vm.OnCreateConfirm()
	assert.False(t, ok)
	assert.Zero(t, store.Len())
	assert.True(t, vm.Snapshot().CreateOpen)

	vm.CancelCreate()
	snap := vm.Snapshot()
	assert.False(t, snap.CreateOpen)
	assert.Nil(t, snap.Draft.TargetDate)
	assert.Zero(t, store.Len())
}

func TestViewModel_ModalsAreIndependent(t *testing.T) {
	vm, _, _ := newViewModel(t)

	vm.OnEventClick(EventClickInfo{Event: ClickedEvent{ID: "1"}})
	vm.OnDateClick(DateClickInfo{Date: now})

	snap := vm.Snapshot()
	assert.True(t, snap.DetailOpen)
	assert.True(t, snap.CreateOpen)
}

func TestViewModel_ConsecutiveCreatesGetDistinctIDs(t *testing.T) {
	vm, store, _ := newViewModel(t)

	for i := 0; i < 3; i++ {
		vm.OnDateClick(DateClickInfo{Date: now})
		vm.SetDraftPatientName("Diana Prince")
		_, ok := vm.OnCreateConfirm()
		require.True(t, ok)
	}
	assert.Equal(t, 3, store.Len())
}

func TestViewModel_RevisionFollowsStoreMutations(t *testing.T) {
	vm, store, _ := newViewModel(t, seedEvent("1", "doc1", model.ColorPink))
	assert.Zero(t, vm.Revision())

	require.NoError(t, store.Add(seedEvent("2", "doc1", model.ColorGreen)))
	assert.Equal(t, uint64(1), vm.Revision())

	note := "bring x-rays"
	_, err := store.Update("404", model.EventPatch{Note: &note})
	require.NoError(t, err)
	store.Delete("404")
	assert.Equal(t, uint64(1), vm.Revision())

	vm.OnDateClick(DateClickInfo{Date: now})
	vm.SetDraftPatientName("Clark Kent")
	_, ok := vm.OnCreateConfirm()
	require.True(t, ok)
	assert.Equal(t, uint64(2), vm.Revision())

	store.Delete("1")
	assert.Equal(t, uint64(3), vm.Snapshot().Revision)
}

func TestViewModel_EventDropIsReportedNotApplied(t *testing.T) {
	orig := seedEvent("1", "doc1", model.ColorPink)
	vm, store, _ := newViewModel(t, orig)

	to := orig.Start.Add(2 * time.Hour)
	cmd, err := vm.OnEventDrop(EventDropInfo{
		Event:    DroppedEvent{ID: "1", Start: to, End: to.Add(30 * time.Minute)},
		OldEvent: DroppedEvent{ID: "1", Start: orig.Start, End: orig.End},
	})

	assert.ErrorIs(t, err, ErrRescheduleUnimplemented)
	assert.Equal(t, apperrors.ErrUnimplemented, apperrors.CodeOf(err))
	assert.Equal(t, "1", cmd.EventID)
	assert.Equal(t, to, cmd.To.Start)

	got, _ := store.Get("1")
	assert.Equal(t, orig, got)
}

func TestViewModel_GranularityAndRange(t *testing.T) {
	vm, _, _ := newViewModel(t)

	cfg := vm.Config()
	assert.Equal(t, time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC), cfg.DateRange.Start)
	assert.Equal(t, time.Date(2025, 12, 4, 0, 0, 0, 0, time.UTC), cfg.DateRange.End)
	assert.Equal(t, "08:00:00", cfg.SlotMinTime)
	assert.Equal(t, 15, cfg.SlotMinutes)
	assert.False(t, cfg.Weekends)

	require.NoError(t, vm.ChangeGranularity(model.GranularityWeek))
	cfg = vm.Config()
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), cfg.DateRange.Start)
	assert.Equal(t, time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC), cfg.DateRange.End)

	err := vm.ChangeGranularity("dayGridMonth")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, model.GranularityWeek, vm.View().Granularity)

	next := time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)
	vm.OnVisibleRangeChange(RangeInfo{Start: next, End: next.AddDate(0, 0, 7)})
	assert.Equal(t, next, vm.View().VisibleDate)
}

func TestVisibleRange_SundayBelongsToPreviousWeek(t *testing.T) {
	sunday := time.Date(2025, 12, 7, 15, 0, 0, 0, time.UTC)
	r := VisibleRange(model.GranularityWeek, sunday)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), r.Start)
}

func idsOf(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func idsOfWidget(events []model.WidgetEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
