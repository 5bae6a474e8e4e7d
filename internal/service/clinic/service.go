package clinic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository"
	"github.com/jwalitptl/clinic-dashboard/internal/service/remote"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/lock"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

var weekdays = map[string]int{
	"monday": 1, "tuesday": 2, "wednesday": 3, "thursday": 4,
	"friday": 5, "saturday": 6, "sunday": 7,
}

// IsWeekday reports whether day is a lowercase English weekday name.
func IsWeekday(day string) bool {
	_, ok := weekdays[day]
	return ok
}

// IsClock reports whether s is a 24h HH:MM time.
func IsClock(s string) bool {
	_, err := time.Parse(model.TimeLayout, s)
	return err == nil && len(s) == 5
}

type Service struct {
	repo    repository.ClinicRepository
	caller  *remote.Caller
	locks   *lock.KeyedMutex
	metrics *metrics.Metrics
}

func NewService(repo repository.ClinicRepository, caller *remote.Caller, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		caller:  caller,
		locks:   lock.NewKeyedMutex(),
		metrics: m,
	}
}

func (s *Service) MyClinic(ctx context.Context, clinicID int64) (*model.Clinic, error) {
	var clinic *model.Clinic
	err := s.caller.Call(ctx, "get clinic", func(ctx context.Context) error {
		var err error
		clinic, err = s.repo.Get(ctx, clinicID)
		return err
	})
	return clinic, err
}

func (s *Service) UpdateAddress(ctx context.Context, clinicID int64, address string) (*model.Clinic, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperrors.Validation("address is required")
	}
	return s.modify(ctx, "update_address", clinicID, func(c *model.Clinic) error {
		c.Address = address
		return nil
	})
}

// UpdateSettings applies the non-nil fields of patch.
func (s *Service) UpdateSettings(ctx context.Context, clinicID int64, patch model.ClinicPatch) (*model.Clinic, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	return s.modify(ctx, "update_settings", clinicID, func(c *model.Clinic) error {
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Phone != nil {
			c.Phone = *patch.Phone
		}
		if patch.Email != nil {
			c.Email = *patch.Email
		}
		if patch.WorkingHours != nil {
			c.WorkingHours = *patch.WorkingHours
		}
		if patch.WorkingDays != nil {
			c.WorkingDays = normalizeDays(patch.WorkingDays)
		}
		return nil
	})
}

func (s *Service) modify(ctx context.Context, op string, clinicID int64, apply func(*model.Clinic) error) (*model.Clinic, error) {
	start := time.Now()
	var out *model.Clinic

	err := s.locks.WithLock(ctx, fmt.Sprintf("clinic:%d", clinicID), func(ctx context.Context) error {
		current, err := s.MyClinic(ctx, clinicID)
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := apply(&next); err != nil {
			return err
		}
		if err := s.caller.Call(ctx, "update clinic", func(ctx context.Context) error {
			return s.repo.Update(ctx, &next)
		}); err != nil {
			return err
		}
		out = &next
		return ctx.Err()
	})
	if s.metrics != nil {
		s.metrics.ObserveMutation(op, start, err)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func validatePatch(p model.ClinicPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperrors.Validation("clinic name cannot be empty")
	}
	if wh := p.WorkingHours; wh != nil {
		if !IsClock(wh.Start) || !IsClock(wh.End) {
			return apperrors.Validation("working hours must be HH:MM")
		}
		if wh.Start >= wh.End {
			return apperrors.Validation("working hours must end after they start")
		}
	}
	for _, d := range p.WorkingDays {
		if !IsWeekday(d) {
			return apperrors.Validation(fmt.Sprintf("unknown working day %q", d))
		}
	}
	return nil
}

// normalizeDays dedupes and orders days Monday first.
func normalizeDays(days []string) []string {
	var present [8]bool
	for _, d := range days {
		present[weekdays[d]] = true
	}
	out := make([]string, 0, len(days))
	for _, name := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		if present[weekdays[name]] {
			out = append(out, name)
		}
	}
	return out
}
