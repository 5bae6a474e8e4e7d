package memory

import (
	"context"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

type appointmentRepository struct {
	*Backend
}

func (r *appointmentRepository) List(ctx context.Context, clinicID int64) ([]*model.Appointment, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		if clinicID == 0 || a.ClinicID == clinicID {
			c := a.Clone()
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		c := r.appointments[i].Clone()
		return &c, nil
	}
	return nil, apperrors.NotFound("appointment", nil)
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextAppointment++
	appointment.ID = r.nextAppointment
	c := appointment.Clone()
	r.appointments = append(r.appointments, &c)
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(appointment.ID)
	if i < 0 {
		return apperrors.NotFound("appointment", nil)
	}
	c := appointment.Clone()
	r.appointments[i] = &c
	return nil
}

func (r *appointmentRepository) indexOf(id int64) int {
	for i, a := range r.appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}
