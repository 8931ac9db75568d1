// internal/session/config.go
package session

import (
	"fmt"
	"time"

	"wms-dispatch/internal/common/errors"
)

const (
	DefaultTotal       = 30 * time.Minute
	DefaultWarningLead = 30 * time.Second
)

// TimeoutConfig is fixed for the lifetime of a monitor.
type TimeoutConfig struct {
	Total       time.Duration
	WarningLead time.Duration
}

// DefaultTimeoutConfig is 30 minutes with a 30 second warning.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{Total: DefaultTotal, WarningLead: DefaultWarningLead}
}

// Validate requires positive durations and a warning lead shorter than the total.
func (c TimeoutConfig) Validate() error {
	switch {
	case c.Total <= 0:
		return errors.NewInvalidTimeoutConfigError(fmt.Sprintf("total duration must be positive, got %s", c.Total))
	case c.WarningLead <= 0:
		return errors.NewInvalidTimeoutConfigError(fmt.Sprintf("warning lead time must be positive, got %s", c.WarningLead))
	case c.WarningLead >= c.Total:
		return errors.NewInvalidTimeoutConfigError(
			fmt.Sprintf("warning lead time %s must be shorter than total duration %s", c.WarningLead, c.Total))
	}
	return nil
}

// WarningAfter is the idle time before the warning fires.
func (c TimeoutConfig) WarningAfter() time.Duration {
	return c.Total - c.WarningLead
}
