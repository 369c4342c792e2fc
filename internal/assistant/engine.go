// Package assistant implements the Telugu reply engine: script detection,
// keyword intent classification and canned or generated reply selection.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/metrics"
)

const (
	// EmptyInputReply asks the user to type something.
	EmptyInputReply = "దయచేసి ఏదైనా టైప్ చేయండి."
	// FaultReply is returned when reply generation fails unexpectedly.
	FaultReply = "క్షమించండి, ప్రస్తుతం నేను సరిగ్గా జవాబు ఇవ్వలేకపోతున్నాను. దయచేసి మళ్లీ ప్రయత్నించండి."

	DefaultGenerationTimeout = 10 * time.Second
)

var (
	ErrGeneratorDisabled = errors.New("GENERATOR_DISABLED")
	ErrReplyTooShort     = errors.New("REPLY_TOO_SHORT")
)

// Generator produces a free-form continuation for a message.
type Generator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// Attempt is the outcome of the bounded external stage. Text is only used
// when Err is nil.
type Attempt struct {
	Text     string
	Err      error
	Duration time.Duration
}

// Usable reports whether the attempt produced a reply long enough to use.
func (a Attempt) Usable() bool {
	return a.Err == nil && utf8.RuneCountInString(a.Text) > MinExternalLength
}

// Reply is the engine's answer to one message.
type Reply struct {
	Text         string   `json:"response"`
	Intent       Intent   `json:"intent,omitempty"`
	Language     Language `json:"language,omitempty"`
	Source       Source   `json:"source"`
	LanguageHint string   `json:"languageHint,omitempty"`
}

type Config struct {
	GenerationTimeout time.Duration
}

// Engine combines classification, selection and an optional generator.
// It is safe for concurrent use.
type Engine struct {
	config     *Config
	classifier *Classifier
	selector   *Selector
	generator  Generator
	logger     logger.Logger
}

// NewEngine builds an engine over catalog. generator may be nil, in which case
// every reply comes from the pools.
func NewEngine(config *Config, catalog *Catalog, generator Generator, rnd RandomSource, log logger.Logger) *Engine {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	config = &cfg
	if config.GenerationTimeout <= 0 {
		config.GenerationTimeout = DefaultGenerationTimeout
	}
	return &Engine{
		config:     config,
		classifier: NewClassifier(catalog),
		selector:   NewSelector(catalog, rnd),
		generator:  generator,
		logger:     log.With(map[string]interface{}{"component": "assistant"}),
	}
}

// Respond always returns a reply with non-empty text.
func (e *Engine) Respond(ctx context.Context, input string) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("reply generation panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
			})
			reply = Reply{Text: FaultReply, Source: SourceFault}
		}
	}()

	text := strings.TrimSpace(input)
	if text == "" {
		return Reply{Text: EmptyInputReply, Source: SourceEmptyInput}
	}

	lang := DetectLanguage(text)
	intent := e.classifier.Classify(text)

	attempt := e.attempt(ctx, text)
	external := ""
	if attempt.Usable() {
		external = attempt.Text
	} else if attempt.Err != nil && !errors.Is(attempt.Err, ErrGeneratorDisabled) {
		e.logger.Warn("generated reply unusable, using canned reply", map[string]interface{}{
			"code":       generationError(attempt.Err).Code,
			"error":      attempt.Err.Error(),
			"durationMs": attempt.Duration.Milliseconds(),
		})
	}

	out, source := e.selector.choose(intent, lang, external)
	metrics.AssistantReplies.WithLabelValues(string(intent), string(lang), string(source)).Inc()

	e.logger.Debug("reply selected", map[string]interface{}{
		"intent":   intent,
		"language": lang,
		"source":   source,
	})

	return Reply{
		Text:         out,
		Intent:       intent,
		Language:     lang,
		Source:       source,
		LanguageHint: LanguageHint(text),
	}
}

func generationError(err error) *apperrors.StandardError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewGenerationTimeoutError()
	}
	return apperrors.NewGenerationFailedError(err)
}

// attempt runs the generator under the configured timeout. A generator that
// ignores cancellation is abandoned once the deadline passes.
func (e *Engine) attempt(ctx context.Context, text string) Attempt {
	if e.generator == nil {
		return Attempt{Err: ErrGeneratorDisabled}
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.GenerationTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan Attempt, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Attempt{Err: fmt.Errorf("generator panicked: %v", r)}
			}
		}()
		out, err := e.generator.Generate(ctx, text)
		done <- Attempt{Text: out, Err: err}
	}()

	var a Attempt
	select {
	case a = <-done:
	case <-ctx.Done():
		a = Attempt{Err: ctx.Err()}
	}
	a.Duration = time.Since(start)

	if a.Err == nil && utf8.RuneCountInString(a.Text) <= MinExternalLength {
		a.Err = ErrReplyTooShort
	}
	return a
}
