package workspace

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-dashboard/internal/calendar"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

var now = time.Date(2025, 12, 3, 10, 0, 0, 0, time.UTC)

func TestRegistry_CreatesLazilyAndReuses(t *testing.T) {
	r := NewRegistry(Options{SeedEvents: 10, FakerSeed: 42, Now: func() time.Time { return now }})
	assert.Zero(t, r.Len())

	ws, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ws.UserID)
	assert.Equal(t, 10, ws.Events.Len())
	assert.Equal(t, "doc1", ws.Doctors.Selected())
	assert.False(t, ws.Catalog.UnsavedChanges())

	again, err := r.Get(1)
	require.NoError(t, err)
	assert.Same(t, ws, again)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_WorkspacesAreIsolated(t *testing.T) {
	r := NewRegistry(Options{Now: func() time.Time { return now }})

	a, err := r.Get(1)
	require.NoError(t, err)
	b, err := r.Get(2)
	require.NoError(t, err)

	require.NoError(t, a.Calendar.SelectDoctor("doc2"))
	a.Catalog.Add([]model.DentistService{{Name: "Cleaning", Duration: 30}})

	assert.Equal(t, "doc1", b.Doctors.Selected())
	assert.Empty(t, b.Catalog.Services())
	assert.Zero(t, b.Events.Len())
}

func TestRegistry_CalendarSharesTheWorkspaceStores(t *testing.T) {
	r := NewRegistry(Options{Now: func() time.Time { return now }})
	ws, err := r.Get(1)
	require.NoError(t, err)

	ws.Calendar.OnDateClick(calendarClick(now))
	ws.Calendar.SetDraftPatientName("Bruce Wayne")
	created, ok := ws.Calendar.OnCreateConfirm()
	require.True(t, ok)
	assert.True(t, ws.Events.Has(created.ID))
}

func TestRegistry_Drop(t *testing.T) {
	r := NewRegistry(Options{})
	first, err := r.Get(1)
	require.NoError(t, err)

	r.Drop(1)
	assert.Zero(t, r.Len())

	second, err := r.Get(1)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestRegistry_ConcurrentGetBuildsOnce(t *testing.T) {
	r := NewRegistry(Options{SeedEvents: 3})

	var wg sync.WaitGroup
	got := make([]*Workspace, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws, err := r.Get(7)
			assert.NoError(t, err)
			got[i] = ws
		}(i)
	}
	wg.Wait()

	for _, ws := range got {
		assert.Same(t, got[0], ws)
	}
}

func TestRegistry_IdleWorkspacesExpire(t *testing.T) {
	r := NewRegistry(Options{TTL: 10 * time.Millisecond, CleanupInterval: time.Millisecond})
	first, err := r.Get(1)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	second, err := r.Get(1)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func calendarClick(at time.Time) calendar.DateClickInfo {
	return calendar.DateClickInfo{Date: at}
}
