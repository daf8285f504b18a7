package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks ranges and cross-field constraints. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < MinPort || c.Port > MaxPort {
		errs = append(errs, fmt.Errorf("PORT must be between %d and %d, got %d", MinPort, MaxPort, c.Port))
	}
	if !slices.Contains(ValidLogLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of %s", strings.Join(ValidLogLevels, ", ")))
	}
	if !slices.Contains(ValidLogFormats, strings.ToLower(c.LogFormat)) {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of %s", strings.Join(ValidLogFormats, ", ")))
	}
	if !slices.Contains(ValidEnvironment, c.Environment) {
		errs = append(errs, fmt.Errorf("ENVIRONMENT must be one of %s", strings.Join(ValidEnvironment, ", ")))
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		errs = append(errs, errors.New("invalid DB_MIN_CONNS/DB_MAX_CONNS"))
	}
	if c.MinBet <= 0 {
		errs = append(errs, errors.New("MIN_BET must be positive"))
	}
	if c.MaxBet < c.MinBet {
		errs = append(errs, errors.New("MAX_BET must not be below MIN_BET"))
	}
	if c.ChallengeTTL <= 0 {
		errs = append(errs, errors.New("CHALLENGE_TTL must be positive"))
	}
	if c.ChallengeSweepEvery <= 0 {
		errs = append(errs, errors.New("CHALLENGE_SWEEP_INTERVAL must be positive"))
	}
	if c.ReconcileEvery <= 0 || c.ReconcileGrace <= 0 {
		errs = append(errs, errors.New("RECONCILE_INTERVAL and RECONCILE_GRACE must be positive"))
	}
	if c.SettledCacheSize <= 0 {
		errs = append(errs, errors.New("SETTLED_CACHE_SIZE must be positive"))
	}
	if c.ActivityRetentionDays <= 0 {
		errs = append(errs, errors.New("ACTIVITY_RETENTION_DAYS must be positive"))
	}
	if _, err := cron.ParseStandard(c.ActivityCleanupCron); err != nil {
		errs = append(errs, fmt.Errorf("ACTIVITY_CLEANUP_CRON is invalid: %w", err))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.WorkerCount <= 0 || c.WorkerQueueSize <= 0 {
		errs = append(errs, errors.New("WORKER_COUNT and WORKER_QUEUE_SIZE must be positive"))
	}
	if c.EventMaxRetries < 0 {
		errs = append(errs, errors.New("EVENT_MAX_RETRIES must not be negative"))
	}

	return errors.Join(errs...)
}

// Warnings returns non-fatal issues such as example credentials
func (c *Config) Warnings() []string {
	var warnings []string
	if c.DBPassword == ExampleDBPassword {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}
	if c.Environment == "production" && c.DBSSLMode == "disable" {
		warnings = append(warnings, "DB_SSLMODE is disabled in production")
	}
	return warnings
}
