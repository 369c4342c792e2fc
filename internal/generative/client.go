// Package generative calls the Hugging Face inference API for free-form
// conversational continuations.
package generative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/metrics"
)

var (
	ErrTokenMissing     = errors.New("GENERATOR_TOKEN_MISSING")
	ErrCircuitOpen      = errors.New("GENERATOR_CIRCUIT_OPEN")
	ErrGenerationFailed = errors.New("GENERATION_FAILED")
	ErrEmptyGeneration  = errors.New("GENERATION_EMPTY")
)

type Client struct {
	config  *Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  logger.Logger
}

func NewClient(in *Config, log logger.Logger) *Client {
	c := *in
	cfg := &c
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	log = log.With(map[string]interface{}{"component": "generative"})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "huggingface",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// A model answering with nothing usable is not an outage.
			return err == nil || errors.Is(err, ErrEmptyGeneration)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &Client{
		config:  cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  log,
	}
}

// Enabled reports whether an API token is configured.
func (c *Client) Enabled() bool {
	return c.config.Token != ""
}

// Generate returns the model continuation for text with every occurrence of
// text removed and surrounding whitespace trimmed.
func (c *Client) Generate(ctx context.Context, text string) (string, error) {
	if !c.Enabled() {
		return "", ErrTokenMissing
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generateWithRetry(ctx, text)
	})

	outcome := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "circuit_open"
		err = fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	case errors.Is(err, ErrEmptyGeneration):
		outcome = "empty"
	case errors.Is(err, context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	metrics.GeneratorRequests.WithLabelValues(outcome).Inc()
	metrics.GeneratorDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) generateWithRetry(ctx context.Context, text string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		out, retryable, err := c.generateOnce(ctx, text)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
		c.logger.Debug("generation attempt failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}
	return "", lastErr
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

// generateOnce performs one request. retryable is true for transport errors
// and 5xx answers.
func (c *Client) generateOnce(ctx context.Context, text string) (string, bool, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", resp.StatusCode >= 500, fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var results []generation
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		// Anything other than a list (e.g. an error object) yields no reply.
		return "", false, fmt.Errorf("%w: %v", ErrEmptyGeneration, err)
	}
	if len(results) == 0 {
		return "", false, ErrEmptyGeneration
	}

	return strings.TrimSpace(strings.ReplaceAll(results[0].GeneratedText, text, "")), false, nil
}
