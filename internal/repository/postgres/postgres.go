package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-dashboard/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

type serviceRepository struct {
	BaseRepository
}

type clinicRepository struct {
	BaseRepository
}

type userRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func NewServiceRepository(base BaseRepository) repository.ServiceRepository {
	return &serviceRepository{base}
}

func NewClinicRepository(base BaseRepository) repository.ClinicRepository {
	return &clinicRepository{base}
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

// NewRepositories wires every port to db.
func NewRepositories(db *sqlx.DB) repository.Repositories {
	base := NewBaseRepository(db)
	return repository.Repositories{
		Appointments: NewAppointmentRepository(base),
		Services:     NewServiceRepository(base),
		Clinics:      NewClinicRepository(base),
		Users:        NewUserRepository(base),
	}
}
