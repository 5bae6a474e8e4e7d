// Package catalog tracks a dentist's chosen services and whether they have
// drifted from what the backend last confirmed.
package catalog

import (
	"slices"
	"sync"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

type Store struct {
	mu             sync.RWMutex
	services       []model.DentistService
	unsavedChanges bool
	loaded         bool
}

func NewStore() *Store {
	return &Store{}
}

// Load replaces the services wholesale with the server's view and clears
// the dirty flag.
func (s *Store) Load(services []model.DentistService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = append([]model.DentistService(nil), services...)
	s.unsavedChanges = false
	s.loaded = true
}

// Loaded reports whether Load has run at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Add appends entries as given. Filtering names already present is the
// caller's job.
func (s *Store) Add(services []model.DentistService) {
	if len(services) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services = append(s.services, services...)
	s.unsavedChanges = true
}

// Remove drops every entry called name. Unknown names change nothing.
func (s *Store) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.services[:0:0]
	for _, svc := range s.services {
		if svc.Name != name {
			kept = append(kept, svc)
		}
	}
	if len(kept) == len(s.services) {
		return
	}
	s.services = kept
	s.unsavedChanges = true
}

// UpdateDuration sets the duration of the entry called name.
func (s *Store) UpdateDuration(name string, duration int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.services {
		if s.services[i].Name == name && s.services[i].Duration != duration {
			s.services[i].Duration = duration
			changed = true
		}
	}
	if changed {
		s.unsavedChanges = true
	}
}

// ClearUnsavedChanges resets the dirty flag after a confirmed save.
func (s *Store) ClearUnsavedChanges() {
	s.mu.Lock()
	s.unsavedChanges = false
	s.mu.Unlock()
}

// MarkSaved clears the dirty flag if the services still equal saved, so
// edits made while a save was in flight stay unsaved.
func (s *Store) MarkSaved(saved []model.DentistService) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Equal(s.services, saved) {
		return false
	}
	s.unsavedChanges = false
	return true
}

func (s *Store) Services() []model.DentistService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DentistService{}, s.services...)
}

func (s *Store) UnsavedChanges() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unsavedChanges
}

func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, svc := range s.services {
		if svc.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) Snapshot() model.CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CatalogSnapshot{
		Services:       append([]model.DentistService{}, s.services...),
		UnsavedChanges: s.unsavedChanges,
	}
}
