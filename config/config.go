package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mirror   MirrorConfig
	Events   EventsConfig
	Auth     AuthConfig
	Archive  ArchiveConfig
	Queue    QueueConfig
}

type ServerConfig struct {
	Port           int
	GinMode        string
	LogLevel       string
	AllowedOrigins string
	TrustedProxies []string
	JoinRateLimit  float64
	JoinBurst      int
}

// DatabaseConfig selects the gorm driver. DSN is passed to it unchanged.
type DatabaseConfig struct {
	Driver      string
	DSN         string
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// MirrorConfig enables the Redis offline mirror when Addr is set.
type MirrorConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// EventsConfig enables NATS publishing when URL is set.
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

type AuthConfig struct {
	JWTSecret         string
	PlatformAdminUser string
	PlatformAdminHash string
}

type ArchiveConfig struct {
	CutoverMonth    string
	MaxDocBytes     int
	SafetyBuffer    int
	RecordBytes     int
	Timezone        string
	CleanupInterval time.Duration
	AutoCleanup     bool
}

type QueueConfig struct {
	FreeMonthlyLimit int
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			GinMode:        getEnv("GIN_MODE", "debug"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			TrustedProxies: []string{"127.0.0.1"},
			JoinRateLimit:  getEnvFloat("JOIN_RATE_PER_SECOND", 1),
			JoinBurst:      getEnvInt("JOIN_RATE_BURST", 5),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", "sqlite"),
			DSN:         getEnv("DB_DSN", "queueapp.db"),
			MaxOpen:     getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdle:     getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Mirror: MirrorConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "queueapp"),
		},
		Events: EventsConfig{
			NATSURL:       getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "queueapp"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			PlatformAdminUser: getEnv("PLATFORM_ADMIN_USER", "admin"),
			PlatformAdminHash: getEnv("PLATFORM_ADMIN_PASSWORD_HASH", ""),
		},
		Archive: ArchiveConfig{
			CutoverMonth:    getEnv("ARCHIVE_CUTOVER_MONTH", "2026-01"),
			MaxDocBytes:     getEnvInt("ARCHIVE_MAX_DOC_BYTES", 1024*1024),
			SafetyBuffer:    getEnvInt("ARCHIVE_SAFETY_BUFFER_BYTES", 100*1024),
			RecordBytes:     getEnvInt("ARCHIVE_RECORD_BYTES", 200),
			Timezone:        getEnv("APP_TIMEZONE", "Asia/Kolkata"),
			CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 15*time.Minute),
			AutoCleanup:     getEnvBool("AUTO_CLEANUP", true),
		},
		Queue: QueueConfig{
			FreeMonthlyLimit: getEnvInt("FREE_MONTHLY_LIMIT", 500),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if _, err := time.Parse("2006-01", c.Archive.CutoverMonth); err != nil {
		return fmt.Errorf("invalid ARCHIVE_CUTOVER_MONTH %q: %w", c.Archive.CutoverMonth, err)
	}
	if c.Archive.MaxDocBytes <= c.Archive.SafetyBuffer {
		return fmt.Errorf("ARCHIVE_MAX_DOC_BYTES must exceed the safety buffer")
	}
	if c.Queue.FreeMonthlyLimit < 1 {
		return fmt.Errorf("FREE_MONTHLY_LIMIT must be positive")
	}
	return nil
}

// Location resolves the restaurant time zone, falling back to local time.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Archive.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
