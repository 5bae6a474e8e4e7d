package memory

import (
	"context"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

type serviceRepository struct {
	*Backend
}

func (r *serviceRepository) ListAvailable(ctx context.Context) ([]model.AvailableService, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.AvailableService{}, r.available...), nil
}

func (r *serviceRepository) ListDentistServices(ctx context.Context, dentistID int64) ([]model.DentistService, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.DentistService{}, r.dentistServices[dentistID]...), nil
}

func (r *serviceRepository) ReplaceDentistServices(ctx context.Context, dentistID int64, services []model.DentistService) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dentistServices[dentistID] = append([]model.DentistService{}, services...)
	return nil
}
