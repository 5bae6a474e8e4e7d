package repository

import (
	"context"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
)

// Backend ports. Missing rows are reported as NotFound AppErrors; any other
// error means the backend could not be reached or refused the call.
type (
	AppointmentRepository interface {
		List(ctx context.Context, clinicID int64) ([]*model.Appointment, error)
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		// Create assigns appointment.ID.
		Create(ctx context.Context, appointment *model.Appointment) error
		Update(ctx context.Context, appointment *model.Appointment) error
	}

	ServiceRepository interface {
		ListAvailable(ctx context.Context) ([]model.AvailableService, error)
		ListDentistServices(ctx context.Context, dentistID int64) ([]model.DentistService, error)
		// ReplaceDentistServices overwrites the dentist's whole catalog.
		ReplaceDentistServices(ctx context.Context, dentistID int64, services []model.DentistService) error
	}

	ClinicRepository interface {
		Get(ctx context.Context, id int64) (*model.Clinic, error)
		Update(ctx context.Context, clinic *model.Clinic) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}
)

// Repositories bundles every port for wiring.
type Repositories struct {
	Appointments AppointmentRepository
	Services     ServiceRepository
	Clinics      ClinicRepository
	Users        UserRepository
}
