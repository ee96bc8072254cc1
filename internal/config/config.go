package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Minio     MinioConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Chat      ChatConfig
	Webhooks  WebhookConfig
	Lifecycle LifecycleConfig
	Jobs      JobsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BaseURL               string
	RequestTimeoutSeconds int
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

// MinioConfig points at the attachment bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret     string
	ServiceSecret string
}

// ChatConfig holds chat provider credentials and dispatch tuning.
type ChatConfig struct {
	APIKey             string
	APIToken           string
	BaseURL            string
	HTTPTimeoutSeconds int
	DMMaxAttempts      int
}

// WebhookConfig maps ticket categories to channel webhooks. Others reuses HR.
type WebhookConfig struct {
	ITInfrastructure string
	HR               string
	Administration   string
	Accounts         string
}

// LifecycleConfig tunes ticket lifecycle behavior.
type LifecycleConfig struct {
	RetentionDays int
}

// JobsConfig holds cron schedules for background jobs.
type JobsConfig struct {
	CleanupSchedule  string
	SLASweepSchedule string
	LockTTLSeconds   int
}

var requiredKeys = []string{
	"CHAT_API_KEY",
	"CHAT_API_TOKEN",
	"WEBHOOK_IT_URL",
	"WEBHOOK_HR_URL",
	"WEBHOOK_ADMIN_URL",
	"WEBHOOK_ACCOUNTS_URL",
	"APP_BASE_URL",
	"POSTGRES_DSN",
	"SERVICE_SECRET",
}

// Load reads configuration from environment variables, applying defaults where possible.
// Missing required keys are reported together.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

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
			BaseURL:               strings.TrimRight(os.Getenv("APP_BASE_URL"), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
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
		Minio: MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "ticket-attachments"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			PublicURL: strings.TrimRight(os.Getenv("MINIO_PUBLIC_URL"), "/"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("AUTH_JWT_SECRET", os.Getenv("SERVICE_SECRET")),
			ServiceSecret: os.Getenv("SERVICE_SECRET"),
		},
		Chat: ChatConfig{
			APIKey:             os.Getenv("CHAT_API_KEY"),
			APIToken:           os.Getenv("CHAT_API_TOKEN"),
			BaseURL:            strings.TrimRight(getEnv("CHAT_API_BASE_URL", "https://chat.googleapis.com/v1"), "/"),
			HTTPTimeoutSeconds: getEnvAsInt("GATEWAY_HTTP_TIMEOUT_SECONDS", 10),
			DMMaxAttempts:      getEnvAsInt("GATEWAY_DM_MAX_ATTEMPTS", 3),
		},
		Webhooks: WebhookConfig{
			ITInfrastructure: os.Getenv("WEBHOOK_IT_URL"),
			HR:               os.Getenv("WEBHOOK_HR_URL"),
			Administration:   os.Getenv("WEBHOOK_ADMIN_URL"),
			Accounts:         os.Getenv("WEBHOOK_ACCOUNTS_URL"),
		},
		Lifecycle: LifecycleConfig{
			RetentionDays: getEnvAsInt("RETENTION_DAYS", 90),
		},
		Jobs: JobsConfig{
			CleanupSchedule:  getEnv("CLEANUP_SCHEDULE", "0 3 * * *"),
			SLASweepSchedule: getEnv("SLA_SWEEP_SCHEDULE", "*/15 * * * *"),
			LockTTLSeconds:   getEnvAsInt("JOB_LOCK_TTL_SECONDS", 300),
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

// HTTPTimeout is the per-call deadline for chat provider and webhook requests.
func (c ChatConfig) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Retention returns the ticket retention window.
func (l LifecycleConfig) Retention() time.Duration {
	days := l.RetentionDays
	if days <= 0 {
		days = 90
	}
	return time.Duration(days) * 24 * time.Hour
}

// LockTTL bounds how long a job lock is held.
func (j JobsConfig) LockTTL() time.Duration {
	if j.LockTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(j.LockTTLSeconds) * time.Second
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
