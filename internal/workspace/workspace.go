// Package workspace threads explicit store handles to each dentist session.
package workspace

import (
	"strconv"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-dashboard/internal/calendar"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	catalogstore "github.com/jwalitptl/clinic-dashboard/internal/store/catalog"
	"github.com/jwalitptl/clinic-dashboard/internal/store/doctor"
	"github.com/jwalitptl/clinic-dashboard/internal/store/event"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
)

// Workspace is one dentist's dashboard state.
type Workspace struct {
	UserID   int64
	Events   *event.Store
	Doctors  *doctor.Directory
	Calendar *calendar.ViewModel
	Catalog  *catalogstore.Store
}

type Options struct {
	// SeedEvents demo events are generated into every new workspace.
	SeedEvents int
	// FakerSeed makes the generated events reproducible; 0 picks a random seed.
	FakerSeed uint64
	// TTL evicts workspaces idle for longer; 0 keeps them forever.
	TTL             time.Duration
	CleanupInterval time.Duration
	Now             func() time.Time
	Logger          *logger.Logger
}

// Registry creates workspaces lazily, keyed by user id.
type Registry struct {
	opts   Options
	logger *logger.Logger

	mu    sync.Mutex
	items *cache.Cache
}

func NewRegistry(opts Options) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Registry{
		opts:   opts,
		logger: opts.Logger.WithComponent("workspace"),
		items:  cache.New(ttl, opts.CleanupInterval),
	}
}

// Get returns the user's workspace, creating it on first use. Every access
// restarts the idle timer.
func (r *Registry) Get(userID int64) (*Workspace, error) {
	key := strconv.FormatInt(userID, 10)

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, found := r.items.Get(key); found {
		ws := v.(*Workspace)
		r.items.SetDefault(key, ws)
		return ws, nil
	}

	ws, err := r.build(userID)
	if err != nil {
		return nil, err
	}
	r.items.SetDefault(key, ws)
	r.logger.Info("workspace created", "user_id", userID, "events", ws.Events.Len())
	return ws, nil
}

// Drop discards the user's workspace.
func (r *Registry) Drop(userID int64) {
	r.items.Delete(strconv.FormatInt(userID, 10))
}

func (r *Registry) Len() int {
	return r.items.ItemCount()
}

func (r *Registry) build(userID int64) (*Workspace, error) {
	doctors, err := doctor.NewDirectory(doctor.DefaultRoster())
	if err != nil {
		return nil, err
	}

	var seeded []model.Event
	if r.opts.SeedEvents > 0 {
		f := gofakeit.New(r.opts.FakerSeed)
		seeded = event.Generate(f, r.opts.Now(), doctors.IDs(), r.opts.SeedEvents)
	}
	events, err := event.NewStore(seeded...)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		UserID:  userID,
		Events:  events,
		Doctors: doctors,
		Calendar: calendar.New(events, doctors, calendar.Options{
			Now:    r.opts.Now,
			Logger: r.opts.Logger.WithFields(map[string]interface{}{"user_id": userID}),
		}),
		Catalog: catalogstore.NewStore(),
	}, nil
}
