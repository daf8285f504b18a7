// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration
type Config struct {
	// --- Server ---
	Port        int    `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"dev"`
	Version     string `envconfig:"VERSION" default:"dev"`

	// --- Logging ---
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogDir    string `envconfig:"LOG_DIR" default:"logs"`

	// --- Database ---
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBName     string `envconfig:"DB_NAME" default:"racebot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Races ---
	MinBet              int64         `envconfig:"MIN_BET" default:"1"`
	MaxBet              int64         `envconfig:"MAX_BET" default:"100000"`
	ChallengeTTL        time.Duration `envconfig:"CHALLENGE_TTL" default:"2m"`
	ChallengeSweepEvery time.Duration `envconfig:"CHALLENGE_SWEEP_INTERVAL" default:"30s"`
	SettledCacheSize    int           `envconfig:"SETTLED_CACHE_SIZE" default:"4096"`
	ReconcileEvery      time.Duration `envconfig:"RECONCILE_INTERVAL" default:"1m"`
	ReconcileGrace      time.Duration `envconfig:"RECONCILE_GRACE" default:"1m"`

	// --- Activity feed ---
	ActivityRetentionDays int    `envconfig:"ACTIVITY_RETENTION_DAYS" default:"30"`
	ActivityCleanupCron   string `envconfig:"ACTIVITY_CLEANUP_CRON" default:"0 4 * * *"`
	Timezone              string `envconfig:"TIMEZONE" default:"UTC"`

	// --- Workers ---
	WorkerCount     int `envconfig:"WORKER_COUNT" default:"4"`
	WorkerQueueSize int `envconfig:"WORKER_QUEUE_SIZE" default:"100"`

	// --- Events ---
	EventMaxRetries     int           `envconfig:"EVENT_MAX_RETRIES" default:"5"`
	EventRetryDelay     time.Duration `envconfig:"EVENT_RETRY_DELAY" default:"2s"`
	EventDeadLetterPath string        `envconfig:"EVENT_DEADLETTER_PATH" default:"logs/event_deadletter.jsonl"`
}

// Load loads the configuration from the environment. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// Location returns the time zone cron schedules run in
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
