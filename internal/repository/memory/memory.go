// Package memory is an in-process backend seeded with demo data. It stands
// in for the remote API during development and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository"
	"github.com/jwalitptl/clinic-dashboard/pkg/security"
)

type Options struct {
	// Latency delays every call, honoring context cancellation.
	Latency time.Duration
	// DemoPassword is the password of every seeded user.
	DemoPassword string
	// Hasher defaults to bcrypt at its default cost.
	Hasher security.PasswordHasher
}

type Backend struct {
	latency time.Duration

	mu              sync.RWMutex
	appointments    []*model.Appointment
	nextAppointment int64
	available       []model.AvailableService
	dentistServices map[int64][]model.DentistService
	clinics         map[int64]*model.Clinic
	users           map[string]*model.User
	nextUser        int64
}

func New(opts Options) (*Backend, error) {
	if opts.DemoPassword == "" {
		opts.DemoPassword = "password"
	}
	if opts.Hasher == nil {
		opts.Hasher = security.NewBcryptHasher(0)
	}
	hash, err := opts.Hasher.Hash(opts.DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}

	b := &Backend{
		latency:         opts.Latency,
		dentistServices: make(map[int64][]model.DentistService),
		clinics:         make(map[int64]*model.Clinic),
		users:           make(map[string]*model.User),
	}
	b.seed(hash)
	return b, nil
}

// Repositories exposes the backend through every port.
func (b *Backend) Repositories() repository.Repositories {
	return repository.Repositories{
		Appointments: &appointmentRepository{b},
		Services:     &serviceRepository{b},
		Clinics:      &clinicRepository{b},
		Users:        &userRepository{b},
	}
}

func (b *Backend) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(b.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
