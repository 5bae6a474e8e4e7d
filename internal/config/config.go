package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig    `mapstructure:"server"`
	Database      DatabaseConfig  `mapstructure:"database"`
	Redis         RedisConfig     `mapstructure:"redis"`
	JWT           JWTConfig       `mapstructure:"jwt"`
	Backend       BackendConfig   `mapstructure:"backend"`
	Cache         CacheConfig     `mapstructure:"cache"`
	Lock          LockConfig      `mapstructure:"lock"`
	Breaker       BreakerConfig   `mapstructure:"breaker"`
	RateLimit     RateLimitConfig `mapstructure:"rate_limit"`
	Security      SecurityConfig  `mapstructure:"security"`
	Log           LogConfig       `mapstructure:"log"`
	Seed          SeedConfig      `mapstructure:"seed"`
	PatientAppURL string          `mapstructure:"patient_app_url"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

type BackendConfig struct {
	Mode         string        `mapstructure:"mode"`
	Latency      time.Duration `mapstructure:"latency"`
	DemoPassword string        `mapstructure:"demo_password"`
}

type CacheConfig struct {
	AppointmentTTL  time.Duration `mapstructure:"appointment_ttl"`
	ServiceTTL      time.Duration `mapstructure:"service_ttl"`
	WorkspaceTTL    time.Duration `mapstructure:"workspace_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type LockConfig struct {
	TTL   time.Duration `mapstructure:"ttl"`
	Retry time.Duration `mapstructure:"retry"`
}

type BreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type SeedConfig struct {
	Events    int   `mapstructure:"events"`
	FakerSeed int64 `mapstructure:"faker_seed"`
}

// Secrets are read from DASHBOARD_* variables and win over the file.
type Secrets struct {
	JWTSecret     string `envconfig:"JWT_SECRET"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	RedisURL      string `envconfig:"REDIS_URL"`
	PatientAppURL string `envconfig:"PATIENT_APP_URL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "clinic_dashboard")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", "100ms")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("backend.mode", BackendMemory)
	v.SetDefault("backend.latency", "0s")

	v.SetDefault("cache.appointment_ttl", "5m")
	v.SetDefault("cache.service_ttl", "30m")
	v.SetDefault("cache.workspace_ttl", "12h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("lock.ttl", "10s")
	v.SetDefault("lock.retry", "50ms")

	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.interval", "1m")
	v.SetDefault("breaker.timeout", "30s")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("security.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})

	v.SetDefault("log.level", "info")

	v.SetDefault("seed.events", 20)
	v.SetDefault("seed.faker_seed", 0)

	v.SetDefault("patient_app_url", "http://localhost:3001")
}

// LoadConfig reads .env, then config.yaml from the usual locations, then
// DASHBOARD_* secrets. A missing config file is not an error.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/app/config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("dashboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process("dashboard", &secrets); err != nil {
		return nil, fmt.Errorf("failed to process env secrets: %w", err)
	}
	config.applySecrets(secrets)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applySecrets(s Secrets) {
	if s.JWTSecret != "" {
		c.JWT.Secret = s.JWTSecret
	}
	if s.DBPassword != "" {
		c.Database.Password = s.DBPassword
	}
	if s.RedisURL != "" {
		c.Redis.URL = s.RedisURL
	}
	if s.PatientAppURL != "" {
		c.PatientAppURL = s.PatientAppURL
	}
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (set DASHBOARD_JWT_SECRET)")
	}
	switch c.Backend.Mode {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("unknown backend mode %q", c.Backend.Mode)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}
