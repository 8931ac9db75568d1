// internal/workers/notification/send-parcel-sms/config.go
package sendparcelsms

import (
	"fmt"
	"time"

	"wms-dispatch/internal/common/config"
)

type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxJobsActive   int           `mapstructure:"max_jobs_active"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DefaultTestMode bool          `mapstructure:"default_test_mode"`

	// ReportRecipients receive an e-mail when a batch has failed sends.
	ReportRecipients []string `mapstructure:"report_recipients"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 2,
		Timeout:       5 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	if workerCfg, exists := appConfig.Workers[TaskType]; exists {
		cfg.Enabled = workerCfg.Enabled
		if workerCfg.MaxJobsActive > 0 {
			cfg.MaxJobsActive = workerCfg.MaxJobsActive
		}
		if workerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(workerCfg.Timeout)
		}
	}

	cfg.DefaultTestMode = appConfig.SMS.DefaultTestMode
	if appConfig.Integrations.AWS.SES.Enabled {
		cfg.ReportRecipients = appConfig.Integrations.AWS.SES.ReportRecipients
	}
	return cfg
}
