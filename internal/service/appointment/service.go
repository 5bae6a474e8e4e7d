package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository"
	"github.com/jwalitptl/clinic-dashboard/internal/service/remote"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/lock"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
	"github.com/jwalitptl/clinic-dashboard/pkg/messaging"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

// InvalidationTopic carries a message after every successful mutation so
// other instances drop their cached lists.
const InvalidationTopic = "appointments.invalidated"

const cacheName = "appointments"

type Invalidation struct {
	ClinicID int64 `json:"clinicId"`
}

type Config struct {
	CacheTTL        time.Duration
	CleanupInterval time.Duration
}

// Options carries the optional collaborators. A nil Locker serializes in
// process only; a nil Broker skips cross-instance invalidation.
type Options struct {
	Locker  lock.Locker
	Broker  messaging.MessageBroker
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// Service performs appointment mutations remote first: local state (the
// cached list) changes only after the backend confirmed the call. Calls on
// the same appointment id run one at a time.
type Service struct {
	repo    repository.AppointmentRepository
	caller  *remote.Caller
	cache   *cache.Cache
	pending *lock.KeyedMutex
	locker  lock.Locker
	broker  messaging.MessageBroker
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(repo repository.AppointmentRepository, caller *remote.Caller, cfg Config, opts Options) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	pending := lock.NewKeyedMutex()
	var locker lock.Locker = pending
	if opts.Locker != nil {
		locker = lock.Chain{pending, opts.Locker}
	}

	return &Service{
		repo:    repo,
		caller:  caller,
		cache:   cache.New(cfg.CacheTTL, cfg.CleanupInterval),
		pending: pending,
		locker:  locker,
		broker:  opts.Broker,
		metrics: opts.Metrics,
		logger:  opts.Logger.WithComponent("appointment"),
	}
}

func cacheKey(clinicID int64) string {
	return fmt.Sprintf("appointments:%d", clinicID)
}

func lockKey(id int64) string {
	return fmt.Sprintf("appointment:%d", id)
}

// Listen drops cached lists when another instance reports a mutation. It
// returns once the subscription is set up.
func (s *Service) Listen(ctx context.Context) error {
	if s.broker == nil {
		return nil
	}
	return s.broker.Subscribe(ctx, InvalidationTopic, func(raw []byte) error {
		var msg struct {
			Payload Invalidation `json:"payload"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("decode invalidation: %w", err)
		}
		s.cache.Delete(cacheKey(msg.Payload.ClinicID))
		return nil
	})
}

// List returns the clinic's appointments, from cache when fresh.
func (s *Service) List(ctx context.Context, clinicID int64) ([]model.Appointment, error) {
	key := cacheKey(clinicID)
	if cached, found := s.cache.Get(key); found {
		s.cacheHit()
		return cloneAll(cached.([]model.Appointment)), nil
	}
	s.cacheMiss()

	var fetched []*model.Appointment
	err := s.caller.Call(ctx, "list appointments", func(ctx context.Context) error {
		var err error
		fetched, err = s.repo.List(ctx, clinicID)
		return err
	})
	if err != nil {
		return nil, err
	}

	list := make([]model.Appointment, len(fetched))
	for i, a := range fetched {
		list[i] = a.Clone()
	}
	s.cache.Set(key, list, cache.DefaultExpiration)
	return cloneAll(list), nil
}

// Create books a new appointment. Status starts pending and date/time are
// derived from the start instant.
func (s *Service) Create(ctx context.Context, req model.BookAppointmentRequest) (*model.Appointment, error) {
	if err := validateBooking(req); err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		ClinicID:  req.ClinicID,
		Patient:   model.PatientRef{Name: strings.TrimSpace(req.PatientName)},
		Service:   &model.ServiceRef{ID: req.ServiceID, Name: req.ServiceName},
		StartTime: req.StartDate,
		Status:    model.AppointmentStatusPending,
	}
	appt.DeriveDateTime()

	err := s.mutate(ctx, "create", "", func(ctx context.Context) error {
		return s.caller.Call(ctx, "create appointment", func(ctx context.Context) error {
			return s.repo.Create(ctx, appt)
		})
	})
	if err != nil {
		if appt.ID != 0 {
			s.invalidate(ctx, appt.ClinicID)
		}
		return nil, err
	}

	s.invalidate(ctx, appt.ClinicID)
	s.logger.Info("appointment created", "appointment_id", appt.ID, "clinic_id", appt.ClinicID)
	return appt, nil
}

// Update overwrites the appointment's editable fields. Date and time are
// stored as given and not re-derived from the start instant.
func (s *Service) Update(ctx context.Context, id int64, req model.UpdateAppointmentRequest) (*model.Appointment, error) {
	if !req.Status.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("invalid appointment status %q", req.Status))
	}

	var updated *model.Appointment
	err := s.mutate(ctx, "update", lockKey(id), func(ctx context.Context) error {
		current, err := s.get(ctx, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		next.Patient = model.PatientRef{Name: req.PatientName}
		if req.ServiceName != "" {
			if next.Service == nil || next.Service.Name != req.ServiceName {
				next.Service = &model.ServiceRef{Name: req.ServiceName}
			}
		}
		next.StartTime = req.StartTime
		next.Status = req.Status
		next.Date = req.Date
		next.Time = req.Time

		if err := s.caller.Call(ctx, "update appointment", func(ctx context.Context) error {
			return s.repo.Update(ctx, &next)
		}); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		if updated != nil {
			s.invalidate(ctx, updated.ClinicID)
		}
		return nil, err
	}

	s.invalidate(ctx, updated.ClinicID)
	return updated, nil
}

// Cancel marks the appointment cancelled. Appointments are never deleted.
func (s *Service) Cancel(ctx context.Context, id int64) (*model.Appointment, error) {
	var cancelled *model.Appointment
	err := s.mutate(ctx, "cancel", lockKey(id), func(ctx context.Context) error {
		current, err := s.get(ctx, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		next.Status = model.AppointmentStatusCancelled
		if err := s.caller.Call(ctx, "cancel appointment", func(ctx context.Context) error {
			return s.repo.Update(ctx, &next)
		}); err != nil {
			return err
		}
		cancelled = &next
		return nil
	})
	if err != nil {
		if cancelled != nil {
			s.invalidate(ctx, cancelled.ClinicID)
		}
		return nil, err
	}

	s.invalidate(ctx, cancelled.ClinicID)
	s.logger.Info("appointment cancelled", "appointment_id", id)
	return cancelled, nil
}

// Pending reports whether a mutation on id is waiting or running.
func (s *Service) Pending(id int64) bool {
	return s.pending.Pending(lockKey(id))
}

func (s *Service) get(ctx context.Context, id int64) (*model.Appointment, error) {
	var appt *model.Appointment
	err := s.caller.Call(ctx, "get appointment", func(ctx context.Context) error {
		var err error
		appt, err = s.repo.Get(ctx, id)
		return err
	})
	return appt, err
}

// mutate runs fn under the per-id lock (when key is set) and records the
// outcome. A context that ended while fn ran discards fn's result; the
// callers still invalidate the cache since the backend may have changed.
func (s *Service) mutate(ctx context.Context, op, key string, fn func(ctx context.Context) error) error {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.MutationsInFlight.Inc()
		defer s.metrics.MutationsInFlight.Dec()
	}

	run := fn
	if key != "" {
		run = func(ctx context.Context) error {
			return s.locker.WithLock(ctx, key, fn)
		}
	}

	err := run(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if s.metrics != nil {
		s.metrics.ObserveMutation(op, start, err)
	}
	if err != nil && !apperrors.IsNotFound(err) && !apperrors.IsValidation(err) {
		s.logger.Warn("appointment mutation failed", "operation", op, "error", err.Error())
	}
	return err
}

// invalidate drops the clinic's cached list here and tells other instances
// to do the same. Publishing is best effort.
func (s *Service) invalidate(ctx context.Context, clinicID int64) {
	s.cache.Delete(cacheKey(clinicID))
	if s.broker == nil {
		return
	}

	payload, err := json.Marshal(messaging.Message{
		Type:    InvalidationTopic,
		Payload: Invalidation{ClinicID: clinicID},
	})
	if err != nil {
		return
	}
	if err := s.broker.Publish(context.WithoutCancel(ctx), InvalidationTopic, payload); err != nil {
		s.logger.Warn("failed to publish invalidation", "clinic_id", clinicID, "error", err.Error())
	}
}

func (s *Service) cacheHit() {
	if s.metrics != nil {
		s.metrics.CacheHit(cacheName)
	}
}

func (s *Service) cacheMiss() {
	if s.metrics != nil {
		s.metrics.CacheMiss(cacheName)
	}
}

func validateBooking(req model.BookAppointmentRequest) error {
	if req.ClinicID <= 0 {
		return apperrors.Validation("clinic is required")
	}
	if req.ServiceID <= 0 && strings.TrimSpace(req.ServiceName) == "" {
		return apperrors.Validation("service is required")
	}
	if strings.TrimSpace(req.PatientName) == "" {
		return apperrors.Validation("patient name is required")
	}
	if req.StartDate.IsZero() {
		return apperrors.Validation("start date is required")
	}
	return nil
}

func cloneAll(in []model.Appointment) []model.Appointment {
	out := make([]model.Appointment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
