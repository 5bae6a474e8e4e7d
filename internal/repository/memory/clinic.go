package memory

import (
	"context"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

type clinicRepository struct {
	*Backend
}

func (r *clinicRepository) Get(ctx context.Context, id int64) (*model.Clinic, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clinics[id]
	if !ok {
		return nil, apperrors.NotFound("clinic", nil)
	}
	clone := c.Clone()
	return &clone, nil
}

func (r *clinicRepository) Update(ctx context.Context, clinic *model.Clinic) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clinics[clinic.ID]; !ok {
		return apperrors.NotFound("clinic", nil)
	}
	clone := clinic.Clone()
	r.clinics[clinic.ID] = &clone
	return nil
}
