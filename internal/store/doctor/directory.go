// Package doctor holds the practitioner roster and the calendar's doctor filter.
package doctor

import (
	"sync"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

// DefaultRoster is the roster a new workspace starts with.
func DefaultRoster() []model.Doctor {
	four, one := 4, 1
	return []model.Doctor{
		{ID: "doc1", Name: "Drg Soap Mactavish", PatientCount: &four, Avatar: "/api/placeholder/32/32"},
		{ID: "doc2", Name: "Drg Jerald O'Hara", PatientCount: &one, Avatar: "/api/placeholder/32/32"},
		{ID: "doc3", Name: "Drg Putri Larasati", Status: "NOT AVAILABLE", Avatar: "/api/placeholder/32/32"},
	}
}

// Directory is an immutable roster plus the currently selected doctor.
type Directory struct {
	mu       sync.RWMutex
	doctors  []model.Doctor
	selected string
}

// NewDirectory selects the first doctor of roster.
func NewDirectory(roster []model.Doctor) (*Directory, error) {
	if len(roster) == 0 {
		return nil, apperrors.Validation("doctor roster is empty")
	}
	seen := make(map[string]bool, len(roster))
	for _, d := range roster {
		if d.ID == "" || seen[d.ID] {
			return nil, apperrors.Validation("doctor ids must be unique and non-empty")
		}
		seen[d.ID] = true
	}
	return &Directory{
		doctors:  append([]model.Doctor(nil), roster...),
		selected: roster[0].ID,
	}, nil
}

func (d *Directory) Doctors() []model.Doctor {
	return append([]model.Doctor(nil), d.doctors...)
}

func (d *Directory) IDs() []string {
	ids := make([]string, len(d.doctors))
	for i, doc := range d.doctors {
		ids[i] = doc.ID
	}
	return ids
}

func (d *Directory) Get(id string) (model.Doctor, bool) {
	for _, doc := range d.doctors {
		if doc.ID == id {
			return doc, true
		}
	}
	return model.Doctor{}, false
}

func (d *Directory) Selected() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selected
}

// Select changes the filter. Unknown ids leave the selection untouched.
func (d *Directory) Select(id string) error {
	if _, ok := d.Get(id); !ok {
		return apperrors.NotFound("doctor", nil)
	}
	d.mu.Lock()
	d.selected = id
	d.mu.Unlock()
	return nil
}
