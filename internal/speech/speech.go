// Package speech turns Telugu text into MP3 audio through the Google
// Translate text-to-speech endpoint.
package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"telugu-assistant/internal/common/config"
	commonhttp "telugu-assistant/internal/common/http"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/metrics"
)

var (
	ErrEmptyText        = errors.New("EMPTY_TEXT")
	ErrSynthesisFailed  = errors.New("SPEECH_SYNTHESIS_FAILED")
	ErrSynthesisTimeout = errors.New("SPEECH_SYNTHESIS_TIMEOUT")
)

const (
	DefaultChunkSize = 100
	ttsPath          = "/translate_tts"
	maxAudioBytes    = 8 << 20
)

type Config struct {
	BaseURL   string
	Language  string
	Timeout   time.Duration
	ChunkSize int
}

func NewConfig(cfg *config.Config) *Config {
	tts := cfg.APIs.TTS
	return &Config{
		BaseURL:   tts.BaseURL,
		Language:  tts.Language,
		Timeout:   config.GetDuration(tts.Timeout),
		ChunkSize: tts.ChunkSize,
	}
}

type Synthesizer struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

func NewSynthesizer(cfg *Config, log logger.Logger) *Synthesizer {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Language == "" {
		cfg.Language = "te"
	}
	return &Synthesizer{
		config: cfg,
		client: commonhttp.NewClient(cfg.Timeout).WithUserAgent(config.DefaultUserAgent),
		logger: log.With(map[string]interface{}{"component": "speech"}),
	}
}

// Synthesize returns MP3 audio for text in the configured language.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return s.SynthesizeLang(ctx, text, s.config.Language)
}

// SynthesizeLang fetches every chunk in order and concatenates the MP3
// frames. The whole call is bounded by the configured timeout.
func (s *Synthesizer) SynthesizeLang(ctx context.Context, text, lang string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if lang == "" {
		lang = s.config.Language
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	chunks := SplitText(text, s.config.ChunkSize)
	var audio []byte
	for i, chunk := range chunks {
		data, err := s.client.GetBytes(ctx, s.chunkURL(chunk, lang, i, len(chunks)), maxAudioBytes)
		if err != nil {
			metrics.SpeechRequests.WithLabelValues("error").Inc()
			if ctx.Err() != nil || isTimeout(err) {
				return nil, fmt.Errorf("%w: %v", ErrSynthesisTimeout, err)
			}
			return nil, fmt.Errorf("%w: chunk %d/%d: %v", ErrSynthesisFailed, i+1, len(chunks), err)
		}
		audio = append(audio, data...)
	}

	metrics.SpeechRequests.WithLabelValues("ok").Inc()
	s.logger.Debug("speech synthesized", map[string]interface{}{
		"chunks": len(chunks),
		"bytes":  len(audio),
		"lang":   lang,
	})
	return audio, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (s *Synthesizer) chunkURL(chunk, lang string, idx, total int) string {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))
	return s.config.BaseURL + ttsPath + "?" + q.Encode()
}

// SplitText cuts text into pieces of at most size code points. Cuts prefer
// the last whitespace or punctuation inside the window; a window without one
// is cut hard.
func SplitText(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	runes := []rune(strings.TrimSpace(text))
	var chunks []string

	for len(runes) > 0 {
		if len(runes) <= size {
			chunks = appendChunk(chunks, runes)
			break
		}

		cut := -1
		for i := size; i > 0; i-- {
			if isBoundary(runes[i-1]) {
				cut = i
				break
			}
		}
		if cut <= 0 {
			cut = size
		}

		chunks = appendChunk(chunks, runes[:cut])
		runes = runes[cut:]
	}
	return chunks
}

func appendChunk(chunks []string, runes []rune) []string {
	if s := strings.TrimSpace(string(runes)); s != "" {
		return append(chunks, s)
	}
	return chunks
}

func isBoundary(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// EncodeAudio returns audio as standard base64, or "" for no audio.
func EncodeAudio(audio []byte) string {
	if len(audio) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(audio)
}

// DecodeAudio reverses EncodeAudio.
func DecodeAudio(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}
