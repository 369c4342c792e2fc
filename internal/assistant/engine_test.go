package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
)

type stubGenerator struct {
	text  string
	err   error
	delay time.Duration
	panic bool

	mu    sync.Mutex
	calls []string
}

func (g *stubGenerator) Generate(ctx context.Context, text string) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, text)
	g.mu.Unlock()

	if g.panic {
		panic("model exploded")
	}
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.text, g.err
}

// stubbornGenerator ignores cancellation.
type stubbornGenerator struct{ release chan struct{} }

func (g stubbornGenerator) Generate(context.Context, string) (string, error) {
	<-g.release
	return "far too late to matter anyway", nil
}

func newTestEngine(t *testing.T, gen Generator, rnd RandomSource) *Engine {
	t.Helper()
	return NewEngine(&Config{GenerationTimeout: 50 * time.Millisecond}, DefaultCatalog(), gen, rnd, logger.NewTestLogger(t))
}

// ==========================
// Canned Replies
// ==========================

func TestEngine_Respond_WithoutGenerator(t *testing.T) {
	c := DefaultCatalog()
	e := newTestEngine(t, nil, fixedRandom(0))

	tests := []struct {
		name     string
		input    string
		intent   Intent
		language Language
	}{
		{"english greeting", "hello", IntentGreeting, LanguageEnglish},
		{"telugu greeting", "నమస్కారం", IntentGreeting, LanguageTelugu},
		{"help outranks thanks", "thank you so much for your help", IntentHelp, LanguageEnglish},
		{"unmatched", "xyz123", IntentDefault, LanguageEnglish},
		{"mixed", "hi నమస్కారం", IntentGreeting, LanguageMixed},
		{"punctuation only", "?!...", IntentDefault, LanguageUnknown},
		{"emoji and punctuation", "🙂!!", IntentDefault, LanguageUnknown},
		{"invalid utf-8", "\xff\xfe", IntentDefault, LanguageUnknown},
		{"very long", strings.Repeat("x", 200000), IntentDefault, LanguageEnglish},
		{"very long telugu", strings.Repeat("ఈ", 200000), IntentDefault, LanguageTelugu},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := e.Respond(context.Background(), tt.input)
			assert.Equal(t, tt.intent, reply.Intent)
			assert.Equal(t, tt.language, reply.Language)
			assert.Equal(t, SourcePool, reply.Source)
			assert.Equal(t, c.Responses[tt.intent][0], reply.Text)
		})
	}
}

func TestEngine_Respond_EmptyInput(t *testing.T) {
	gen := &stubGenerator{text: "should never be asked"}
	e := newTestEngine(t, gen, fixedRandom(0))

	for _, input := range []string{"", "   ", "\n\t"} {
		reply := e.Respond(context.Background(), input)
		assert.Equal(t, EmptyInputReply, reply.Text)
		assert.Equal(t, SourceEmptyInput, reply.Source)
		assert.Empty(t, reply.Intent)
	}
	assert.Empty(t, gen.calls)
}

func TestEngine_Respond_TrimsInput(t *testing.T) {
	gen := &stubGenerator{}
	e := newTestEngine(t, gen, fixedRandom(0))

	reply := e.Respond(context.Background(), "  hello  ")
	assert.Equal(t, IntentGreeting, reply.Intent)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, "hello", gen.calls[0])
}

// ==========================
// Generated Replies
// ==========================

func TestEngine_Respond_WithGenerator(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name   string
		gen    *stubGenerator
		input  string
		want   string
		source Source
	}{
		{
			name:  "english uses generated text verbatim",
			gen:   &stubGenerator{text: "Hello there, nice to meet you"},
			input: "hello", want: "Hello there, nice to meet you", source: SourceGenerated,
		},
		{
			name:  "telugu adapts generated text",
			gen:   &stubGenerator{text: "Hello friend, good morning"},
			input: "నమస్కారం", want: "నమస్కారం friend, బాగుంది morning", source: SourceAdapted,
		},
		{
			name:  "telugu falls back when adaptation does not take",
			gen:   &stubGenerator{text: "xyzzy plugh quux"},
			input: "నమస్కారం", want: c.Responses[IntentGreeting][0], source: SourcePool,
		},
		{
			name:  "short generation falls back",
			gen:   &stubGenerator{text: "ok"},
			input: "hello", want: c.Responses[IntentGreeting][0], source: SourcePool,
		},
		{
			name:  "generator error falls back",
			gen:   &stubGenerator{err: errors.New("model loading")},
			input: "help me", want: c.Responses[IntentHelp][0], source: SourcePool,
		},
		{
			name:  "generator timeout falls back",
			gen:   &stubGenerator{text: "Hello there, nice to meet you", delay: time.Second},
			input: "thanks", want: c.Responses[IntentThanks][0], source: SourcePool,
		},
		{
			name:  "generator panic falls back",
			gen:   &stubGenerator{panic: true},
			input: "hello", want: c.Responses[IntentGreeting][0], source: SourcePool,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, tt.gen, fixedRandom(0))
			reply := e.Respond(context.Background(), tt.input)
			assert.Equal(t, tt.want, reply.Text)
			assert.Equal(t, tt.source, reply.Source)
		})
	}
}

func TestEngine_Respond_AbandonsStubbornGenerator(t *testing.T) {
	gen := stubbornGenerator{release: make(chan struct{})}
	defer close(gen.release)

	e := newTestEngine(t, gen, fixedRandom(0))

	start := time.Now()
	reply := e.Respond(context.Background(), "hello")

	assert.Equal(t, SourcePool, reply.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEngine_Respond_Fault(t *testing.T) {
	e := newTestEngine(t, nil, panicRandom{})

	reply := e.Respond(context.Background(), "hello")
	assert.Equal(t, FaultReply, reply.Text)
	assert.Equal(t, SourceFault, reply.Source)
}

func TestEngine_Respond_Concurrent(t *testing.T) {
	e := newTestEngine(t, &stubGenerator{text: "Hello there, nice to meet you"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply := e.Respond(context.Background(), "hello")
			assert.NotEmpty(t, reply.Text)
		}()
	}
	wg.Wait()
}

func TestNewEngine_DefaultTimeout(t *testing.T) {
	e := NewEngine(nil, DefaultCatalog(), nil, nil, logger.NewNoOpLogger())
	assert.Equal(t, DefaultGenerationTimeout, e.config.GenerationTimeout)
	assert.NotNil(t, e.classifier)
	assert.NotNil(t, e.selector)
}

func TestNewEngine_LeavesCallerConfigAlone(t *testing.T) {
	cfg := &Config{}
	e := NewEngine(cfg, DefaultCatalog(), nil, nil, logger.NewNoOpLogger())

	assert.Zero(t, cfg.GenerationTimeout)
	assert.Equal(t, DefaultGenerationTimeout, e.config.GenerationTimeout)
}

func TestGenerationError(t *testing.T) {
	assert.Equal(t, apperrors.ErrCodeGenerationTimeout, generationError(context.DeadlineExceeded).Code)
	assert.Equal(t, apperrors.ErrCodeGenerationFailed, generationError(errors.New("status 500")).Code)
}
