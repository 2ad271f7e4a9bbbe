package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Intake       IntakeConfig
	SLA          SLAConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	PublicBaseURL         string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters for staff endpoints.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// IntakeConfig tunes the abuse-resistant intake guard.
type IntakeConfig struct {
	CacheBackend        string // "memory" or "redis"
	RateLimit           int
	RateWindowSeconds   int
	DuplicateTTLMinutes int
	CodeMaxAttempts     int
}

// SLAConfig carries fallback targets for tickets without a priority profile.
type SLAConfig struct {
	DefaultResponseMinutes int
	DefaultResolveMinutes  int
	AtRiskPercent          int
}

// NotificationConfig holds per-channel delivery settings.
type NotificationConfig struct {
	EmailEnabled   bool
	EmailFrom      string
	SMTPAddr       string
	SMTPUsername   string
	SMTPPassword   string
	WebhookEnabled bool
	WebhookURL     string
	AttemptTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			PublicBaseURL:         getEnv("APP_PUBLIC_BASE_URL", "http://localhost:8080"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Intake: IntakeConfig{
			CacheBackend:        getEnv("INTAKE_CACHE_BACKEND", "memory"),
			RateLimit:           getEnvAsInt("INTAKE_RATE_LIMIT", 3),
			RateWindowSeconds:   getEnvAsInt("INTAKE_RATE_WINDOW_SECONDS", 60),
			DuplicateTTLMinutes: getEnvAsInt("INTAKE_DUPLICATE_TTL_MINUTES", 5),
			CodeMaxAttempts:     getEnvAsInt("INTAKE_CODE_MAX_ATTEMPTS", 10),
		},
		SLA: SLAConfig{
			DefaultResponseMinutes: getEnvAsInt("SLA_DEFAULT_RESPONSE_MINUTES", 120),
			DefaultResolveMinutes:  getEnvAsInt("SLA_DEFAULT_RESOLVE_MINUTES", 480),
			AtRiskPercent:          getEnvAsInt("SLA_AT_RISK_PERCENT", 75),
		},
		Notification: NotificationConfig{
			EmailEnabled:   getEnvAsBool("NOTIFY_EMAIL_ENABLED", false),
			EmailFrom:      getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			SMTPAddr:       getEnv("NOTIFY_SMTP_ADDR", "127.0.0.1:25"),
			SMTPUsername:   os.Getenv("NOTIFY_SMTP_USERNAME"),
			SMTPPassword:   os.Getenv("NOTIFY_SMTP_PASSWORD"),
			WebhookEnabled: getEnvAsBool("NOTIFY_WEBHOOK_ENABLED", false),
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			AttemptTimeout: time.Duration(getEnvAsInt("NOTIFY_ATTEMPT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RateWindow returns the rolling rate-limit window.
func (i IntakeConfig) RateWindow() time.Duration {
	return time.Duration(i.RateWindowSeconds) * time.Second
}

// DuplicateTTL returns how long a submission fingerprint blocks duplicates.
func (i IntakeConfig) DuplicateTTL() time.Duration {
	return time.Duration(i.DuplicateTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
