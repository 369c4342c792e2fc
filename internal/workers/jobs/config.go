package jobs

import (
	"time"

	"telugu-assistant/internal/common/config"
)

const DefaultTimeout = 30 * time.Second

// Config is the per-handler part of a worker's configuration.
type Config struct {
	Timeout time.Duration
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Config{Timeout: timeout}
}
