// Package sheets integrates with the Google Sheets and Drive APIs: it
// implements the spreadsheet gateway, the sheet locator, sheet creation with
// default taxonomy seeding, and the write-propagator that mirrors local
// cache mutations back into the spreadsheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/spendsheet/spendsheet/internal/common"
)

// Config holds the configuration for the spreadsheet service.
type Config struct {
	// ServiceAccountJSON is the service identity key as an inline JSON
	// string. Takes precedence over ServiceAccountPath.
	ServiceAccountJSON string
	// ServiceAccountPath is a path to the service identity key file.
	ServiceAccountPath string
	// RequestTimeout bounds every remote call. Expiry surfaces as an
	// operation failure, never a hang.
	RequestTimeout time.Duration
	// RetryAttempts applies to idempotent writes (header initialization).
	RetryAttempts int
	// RetryDelay is the initial backoff between retries.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 30 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ServiceAccountJSON == "" && c.ServiceAccountPath == "" {
		return fmt.Errorf("%w: no service account credentials configured", common.ErrInvalidConfig)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", common.ErrInvalidConfig)
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}

	return nil
}
