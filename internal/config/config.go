package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultDatabasePath is used when DATABASE_PATH is not set.
const DefaultDatabasePath = "./gym.db"

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Tasks
		Maintenance
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Auth struct {
		// JWTSecret signs bearer tokens. Auto-generated at startup when
		// empty, which invalidates tokens across restarts.
		JWTSecret   string
		TokenExpiry time.Duration
		BcryptCost  int
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Maintenance struct {
		Enabled  bool
		Schedule string // Cron format: "10 0 * * *" = nightly at 00:10
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 10000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("jwt_secret", "") // Auto-generated if empty
	v.SetDefault("auth_token_expiry", "24h")
	v.SetDefault("auth_bcrypt_cost", 10)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Maintenance scheduler defaults
	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "10 0 * * *") // Nightly at 00:10

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:   v.GetString("JWT_SECRET"),
			TokenExpiry: v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("AUTH_BCRYPT_COST"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Maintenance: Maintenance{
			Enabled:  v.GetBool("MAINTENANCE_ENABLED"),
			Schedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
	}
}
