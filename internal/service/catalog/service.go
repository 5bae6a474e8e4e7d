// Package catalog loads, edits and saves a dentist's service catalog.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository"
	"github.com/jwalitptl/clinic-dashboard/internal/service/remote"
	catalogstore "github.com/jwalitptl/clinic-dashboard/internal/store/catalog"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

const availableKey = "services:available"

// ErrNotLoaded rejects saving a catalog that never received the backend's copy.
var ErrNotLoaded = apperrors.Conflict("service catalog has not been loaded")

type Service struct {
	repo    repository.ServiceRepository
	caller  *remote.Caller
	cache   *cache.Cache
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(repo repository.ServiceRepository, caller *remote.Caller, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		caller:  caller,
		cache:   cache.New(ttl, 2*ttl),
		metrics: m,
		logger:  log.WithComponent("catalog"),
	}
}

// Available returns the reference catalog dentists pick services from.
func (s *Service) Available(ctx context.Context) ([]model.AvailableService, error) {
	if cached, found := s.cache.Get(availableKey); found {
		if s.metrics != nil {
			s.metrics.CacheHit("services")
		}
		return append([]model.AvailableService{}, cached.([]model.AvailableService)...), nil
	}
	if s.metrics != nil {
		s.metrics.CacheMiss("services")
	}

	var available []model.AvailableService
	err := s.caller.Call(ctx, "list available services", func(ctx context.Context) error {
		var err error
		available, err = s.repo.ListAvailable(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(availableKey, available, cache.DefaultExpiration)
	return append([]model.AvailableService{}, available...), nil
}

// Refresh replaces the store's services with the backend's and clears
// the dirty flag.
func (s *Service) Refresh(ctx context.Context, store *catalogstore.Store, dentistID int64) error {
	var services []model.DentistService
	err := s.caller.Call(ctx, "list dentist services", func(ctx context.Context) error {
		var err error
		services, err = s.repo.ListDentistServices(ctx, dentistID)
		return err
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	store.Load(services)
	return nil
}

// EnsureLoaded fetches the saved catalog into store unless it already
// holds one.
func (s *Service) EnsureLoaded(ctx context.Context, store *catalogstore.Store, dentistID int64) error {
	if store.Loaded() {
		return nil
	}
	return s.Refresh(ctx, store, dentistID)
}

// AddFromCatalog appends the named reference services with the given
// duration. Names already in the store, or repeated in names, are skipped.
func (s *Service) AddFromCatalog(ctx context.Context, store *catalogstore.Store, names []string, duration int) ([]model.DentistService, error) {
	if duration <= 0 {
		return nil, apperrors.Validation("duration must be positive")
	}

	available, err := s.Available(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]model.AvailableService, len(available))
	for _, a := range available {
		byName[a.Name] = a
	}

	var unknown []string
	seen := make(map[string]bool, len(names))
	added := make([]model.DentistService, 0, len(names))
	for _, name := range names {
		ref, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if seen[name] || store.Has(name) {
			continue
		}
		seen[name] = true
		added = append(added, model.DentistService{Name: ref.Name, Category: ref.Category, Duration: duration})
	}
	if len(unknown) > 0 {
		return nil, apperrors.Validation(fmt.Sprintf("unknown services: %s", strings.Join(unknown, ", ")))
	}

	store.Add(added)
	return added, nil
}

// Save submits the whole catalog. The dirty flag is cleared only when the
// backend accepted it; on failure the store is left untouched.
func (s *Service) Save(ctx context.Context, store *catalogstore.Store, dentistID int64) error {
	if !store.Loaded() {
		return ErrNotLoaded
	}
	saved := store.Services()

	start := time.Now()
	err := s.caller.Call(ctx, "save dentist services", func(ctx context.Context) error {
		return s.repo.ReplaceDentistServices(ctx, dentistID, saved)
	})
	if err == nil {
		err = ctx.Err()
	}
	if s.metrics != nil {
		s.metrics.ObserveMutation("save_services", start, err)
	}
	if err != nil {
		s.logger.Warn("failed to save services", "dentist_id", dentistID, "error", err.Error())
		return err
	}

	if !store.MarkSaved(saved) {
		s.logger.Info("services changed during save", "dentist_id", dentistID)
	}
	return nil
}
