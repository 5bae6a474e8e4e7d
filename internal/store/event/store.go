// Package event holds the in-memory collection of calendar events.
package event

import (
	"fmt"
	"sync"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

// ErrDuplicateID is returned by Add when the id is already taken.
var ErrDuplicateID = apperrors.Conflict("event id already exists")

// Observer receives the collection after every effective mutation.
type Observer func(events []model.Event)

// Store is the authoritative event list. Mutations are synchronous and
// immediately visible to readers.
type Store struct {
	mu        sync.RWMutex
	events    []model.Event
	index     map[string]int
	observers map[int]Observer
	nextObsID int
}

func NewStore(initial ...model.Event) (*Store, error) {
	s := &Store{
		index:     make(map[string]int),
		observers: make(map[int]Observer),
	}
	for _, e := range initial {
		if err := validate(e); err != nil {
			return nil, err
		}
		if _, ok := s.index[e.ID]; ok {
			return nil, fmt.Errorf("seed event %q: %w", e.ID, ErrDuplicateID)
		}
		s.index[e.ID] = len(s.events)
		s.events = append(s.events, e)
	}
	return s, nil
}

func validate(e model.Event) error {
	if e.ID == "" {
		return apperrors.Validation("event id is required")
	}
	if !e.End.After(e.Start) {
		return apperrors.Validation("event end must be after start")
	}
	if !e.Status.Valid() {
		return apperrors.Validation(fmt.Sprintf("unknown event status %q", e.Status))
	}
	if !e.ColorTag.Valid() {
		return apperrors.Validation(fmt.Sprintf("unknown color tag %q", e.ColorTag))
	}
	return nil
}

// Events returns a copy of the collection in insertion order.
func (s *Store) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []model.Event {
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByDoctor returns the events assigned to doctorID.
func (s *Store) ByDoctor(doctorID string) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		if e.DoctorID == doctorID {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Get(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Event{}, false
	}
	return s.events[i], true
}

func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Add appends e.
func (s *Store) Add(e model.Event) error {
	if err := validate(e); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.index[e.ID]; ok {
		s.mu.Unlock()
		return ErrDuplicateID
	}
	s.index[e.ID] = len(s.events)
	s.events = append(s.events, e)
	snap, obs := s.snapshotLocked(), s.observersLocked()
	s.mu.Unlock()

	notify(obs, snap)
	return nil
}

// Update merges patch into the event with the given id. A missing id is a
// silent no-op and reports false. A patch leaving end <= start is rejected.
func (s *Store) Update(id string, patch model.EventPatch) (bool, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	updated := patch.Apply(s.events[i])
	updated.ID = id
	if err := validate(updated); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.events[i] = updated
	snap, obs := s.snapshotLocked(), s.observersLocked()
	s.mu.Unlock()

	notify(obs, snap)
	return true, nil
}

// Delete removes the event with the given id; missing ids are ignored.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.events = append(s.events[:i], s.events[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.events); j++ {
		s.index[s.events[j].ID] = j
	}
	snap, obs := s.snapshotLocked(), s.observersLocked()
	s.mu.Unlock()

	notify(obs, snap)
	return true
}

// Subscribe registers fn and returns a func removing it.
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) observersLocked() []Observer {
	out := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notify(observers []Observer, events []model.Event) {
	for _, fn := range observers {
		fn(events)
	}
}
