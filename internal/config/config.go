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
	App          AppConfig
	Sheet        SheetConfig
	Blob         BlobConfig
	Retry        RetryConfig
	Guard        GuardConfig
	Directory    DirectoryConfig
	Notification NotificationConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Logger       LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	IssueTypes            []string
}

// SheetConfig holds connection values for the hosted sheet API.
type SheetConfig struct {
	BaseURL               string
	Token                 string
	RequestsTable         string
	UsersTable            string
	RequestTimeoutSeconds int
}

// BlobConfig holds connection values for the photo blob service.
type BlobConfig struct {
	BaseURL               string
	Token                 string
	Folder                string
	RequestTimeoutSeconds int
}

// RetryConfig bounds the retry executor.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

// GuardConfig controls the serialized access region.
type GuardConfig struct {
	AcquireTimeoutSeconds int
}

// DirectoryConfig controls the user directory cache.
type DirectoryConfig struct {
	CacheTTLSeconds int
}

// NotificationConfig holds outbound notification settings.
type NotificationConfig struct {
	WebhookURL        string
	Destinations      []string
	MaxMessageLength  int
	JournalTTLMinutes int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
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
			Name:                  getEnv("APP_NAME", "maintenance-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			IssueTypes:            getEnvAsList("ISSUE_TYPES", "Plumbing,Electrical,Furniture,Other"),
		},
		Sheet: SheetConfig{
			BaseURL:               os.Getenv("SHEET_API_BASE_URL"),
			Token:                 os.Getenv("SHEET_API_TOKEN"),
			RequestsTable:         getEnv("SHEET_REQUESTS_TABLE", "requests"),
			UsersTable:            getEnv("SHEET_USERS_TABLE", "users"),
			RequestTimeoutSeconds: getEnvAsInt("SHEET_REQUEST_TIMEOUT_SECONDS", 15),
		},
		Blob: BlobConfig{
			BaseURL:               os.Getenv("BLOB_API_BASE_URL"),
			Token:                 os.Getenv("BLOB_API_TOKEN"),
			Folder:                getEnv("BLOB_FOLDER", "maintenance-photos"),
			RequestTimeoutSeconds: getEnvAsInt("BLOB_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 5),
			BaseDelay:   time.Duration(getEnvAsInt("RETRY_BASE_DELAY_SECONDS", 2)) * time.Second,
			MaxDelay:    time.Duration(getEnvAsInt("RETRY_MAX_DELAY_SECONDS", 30)) * time.Second,
			Multiplier:  getEnvAsFloat("RETRY_MULTIPLIER", 2),
		},
		Guard: GuardConfig{
			AcquireTimeoutSeconds: getEnvAsInt("GUARD_ACQUIRE_TIMEOUT_SECONDS", 30),
		},
		Directory: DirectoryConfig{
			CacheTTLSeconds: getEnvAsInt("DIRECTORY_CACHE_TTL_SECONDS", 60),
		},
		Notification: NotificationConfig{
			WebhookURL:        getEnv("NOTIFY_WEBHOOK_URL", ""),
			Destinations:      getEnvAsList("NOTIFY_DESTINATIONS", ""),
			MaxMessageLength:  getEnvAsInt("NOTIFY_MAX_MESSAGE_LENGTH", 4096),
			JournalTTLMinutes: getEnvAsInt("NOTIFY_JOURNAL_TTL_MINUTES", 1440),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
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

// ValidIssueType reports whether issue belongs to the configured set.
func (a AppConfig) ValidIssueType(issue string) bool {
	for _, candidate := range a.IssueTypes {
		if candidate == issue {
			return true
		}
	}
	return false
}

// RequestTimeout returns the per-call timeout for the sheet API.
func (s SheetConfig) RequestTimeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-call timeout for the blob service.
func (b BlobConfig) RequestTimeout() time.Duration {
	if b.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

// AcquireTimeout returns the guard admission timeout; zero disables it.
func (g GuardConfig) AcquireTimeout() time.Duration {
	if g.AcquireTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(g.AcquireTimeoutSeconds) * time.Second
}

// CacheTTL returns the directory snapshot lifetime.
func (d DirectoryConfig) CacheTTL() time.Duration {
	if d.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(d.CacheTTLSeconds) * time.Second
}

// JournalTTL returns how long delivery journal entries are kept.
func (n NotificationConfig) JournalTTL() time.Duration {
	if n.JournalTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(n.JournalTTLMinutes) * time.Minute
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

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key, fallback string) []string {
	val := os.Getenv(key)
	if val == "" {
		val = fallback
	}
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
