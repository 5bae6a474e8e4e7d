package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-dashboard/internal/config"
	appointmentHandler "github.com/jwalitptl/clinic-dashboard/internal/handler/appointment"
	authHandler "github.com/jwalitptl/clinic-dashboard/internal/handler/auth"
	calendarHandler "github.com/jwalitptl/clinic-dashboard/internal/handler/calendar"
	clinicHandler "github.com/jwalitptl/clinic-dashboard/internal/handler/clinic"
	"github.com/jwalitptl/clinic-dashboard/internal/handler/health"
	serviceHandler "github.com/jwalitptl/clinic-dashboard/internal/handler/service"
	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/repository"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/memory"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/postgres"
	"github.com/jwalitptl/clinic-dashboard/internal/router"
	appointmentService "github.com/jwalitptl/clinic-dashboard/internal/service/appointment"
	authService "github.com/jwalitptl/clinic-dashboard/internal/service/auth"
	catalogService "github.com/jwalitptl/clinic-dashboard/internal/service/catalog"
	clinicService "github.com/jwalitptl/clinic-dashboard/internal/service/clinic"
	"github.com/jwalitptl/clinic-dashboard/internal/service/remote"
	"github.com/jwalitptl/clinic-dashboard/internal/workspace"
	"github.com/jwalitptl/clinic-dashboard/pkg/auth"
	"github.com/jwalitptl/clinic-dashboard/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-dashboard/pkg/lock"
	"github.com/jwalitptl/clinic-dashboard/pkg/logger"
	"github.com/jwalitptl/clinic-dashboard/pkg/messaging"
	"github.com/jwalitptl/clinic-dashboard/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
	"github.com/jwalitptl/clinic-dashboard/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Console:    cfg.Log.Console,
	})
	log.Logger = *appLogger.Zerolog()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("clinic_dashboard", registry)

	// Backend
	checks := map[string]health.Check{}
	var repos repository.Repositories
	hasher := security.NewBcryptHasher(0)
	switch cfg.Backend.Mode {
	case config.BackendPostgres:
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := postgres.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
		repos = postgres.NewRepositories(db)
		checks["database"] = pingDB(db)
	default:
		backend, err := memory.New(memory.Options{
			Latency:      cfg.Backend.Latency,
			DemoPassword: cfg.Backend.DemoPassword,
			Hasher:       hasher,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start memory backend")
		}
		repos = backend.Repositories()
	}
	log.Info().Str("mode", cfg.Backend.Mode).Msg("backend ready")

	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "backend",
		MaxFailures: cfg.Breaker.MaxFailures,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		OnStateChange: func(name, from, to string) {
			m.BreakerChanged(name, from, to)
			log.Warn().Str("breaker", name).Str("from", from).Str("to", to).Msg("circuit breaker state changed")
		},
	})
	caller := remote.NewCaller(breaker, m)

	// Redis: cross-instance cache invalidation and distributed per-id locks
	appointmentOpts := appointmentService.Options{
		Metrics: m,
		Logger:  appLogger,
	}
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure Redis")
		}
		client.AddHook(m.RedisHook())
		defer client.Close()

		redisBreaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:          "redis",
			MaxFailures:   cfg.Breaker.MaxFailures,
			Timeout:       cfg.Breaker.Timeout,
			OnStateChange: m.BreakerChanged,
		})
		broker, err := redis.NewRedisBroker(client, redisBreaker, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		appointmentOpts.Broker = messaging.NewBrokerAdapter(broker, log.Logger)
		appointmentOpts.Locker = lock.NewRedisLocker(client, "clinic-dashboard:lock", cfg.Lock.TTL, cfg.Lock.Retry)
		checks["redis"] = pingRedis(client)
	} else {
		appointmentOpts.Broker = messaging.NewBrokerAdapter(messaging.NewMemoryBroker(), log.Logger)
	}

	// Services
	appointmentSvc := appointmentService.NewService(repos.Appointments, caller, appointmentService.Config{
		CacheTTL:        cfg.Cache.AppointmentTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	}, appointmentOpts)
	catalogSvc := catalogService.NewService(repos.Services, caller, cfg.Cache.ServiceTTL, m, appLogger)
	clinicSvc := clinicService.NewService(repos.Clinics, caller, m)
	authSvc := authService.NewService(
		repos.Users,
		caller,
		auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour),
		hasher,
		cfg.PatientAppURL,
		appLogger,
	)

	workspaces := workspace.NewRegistry(workspace.Options{
		SeedEvents:      cfg.Seed.Events,
		FakerSeed:       uint64(cfg.Seed.FakerSeed),
		TTL:             cfg.Cache.WorkspaceTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
		Logger:          appLogger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := appointmentSvc.Listen(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to appointment invalidations")
	}

	// Router
	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}
	gin.SetMode(gin.ReleaseMode)

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		cors.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		cors.AllowHeaders = cfg.Security.AllowedHeaders
	}

	r := router.NewRouter(middleware.NewAuthMiddleware(authSvc), router.Handlers{
		Health: health.NewHandler(registry, checks),
		Public: []router.Handler{authHandler.NewHandler(authSvc)},
		Protected: []router.Handler{
			calendarHandler.NewHandler(workspaces),
			appointmentHandler.NewHandler(appointmentSvc),
			serviceHandler.NewHandler(catalogSvc, workspaces),
			clinicHandler.NewHandler(clinicSvc),
		},
	}, m, router.RouterConfig{
		RateLimit:      cfg.RateLimit.RequestsPerSecond,
		RateBurst:      cfg.RateLimit.Burst,
		RateLimitOff:   !cfg.RateLimit.Enabled,
		CORSConfig:     cors,
		RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func pingDB(db *sqlx.DB) health.Check {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

func pingRedis(client *goredis.Client) health.Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
