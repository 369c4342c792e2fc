package generative

import (
	"time"

	"telugu-assistant/internal/common/config"
)

type Config struct {
	BaseURL    string
	Model      string
	Token      string
	Timeout    time.Duration
	MaxRetries int

	// Circuit breaker: trips after BreakerFailures consecutive failures and
	// stays open for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

func NewConfig(cfg *config.Config) *Config {
	hf := cfg.APIs.HuggingFace
	return &Config{
		BaseURL:         hf.BaseURL,
		Model:           hf.Model,
		Token:           hf.Token,
		Timeout:         config.GetDuration(hf.Timeout),
		MaxRetries:      hf.MaxRetries,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// endpoint is the inference URL of the configured model.
func (c *Config) endpoint() string {
	return c.BaseURL + "/models/" + c.Model
}
