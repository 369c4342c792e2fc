package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telugu-assistant/internal/common/logger"
)

func TestSplitText(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		assert.Equal(t, []string{"నమస్కారం"}, SplitText("  నమస్కారం ", 100))
	})

	t.Run("cuts at whitespace", func(t *testing.T) {
		assert.Equal(t, []string{"aaa bbb", "ccc"}, SplitText("aaa bbb ccc", 8))
	})

	t.Run("cuts after punctuation", func(t *testing.T) {
		assert.Equal(t, []string{"ab,", "cd"}, SplitText("ab,cd", 4))
	})

	t.Run("hard cut without boundary", func(t *testing.T) {
		assert.Equal(t, []string{"abcd", "efgh", "ij"}, SplitText("abcdefghij", 4))
	})

	t.Run("chunks never exceed the size in code points", func(t *testing.T) {
		text := strings.Repeat("మీకు స్వాగతం! ఇంకా ఏదైనా కావాలా? ", 20)
		chunks := SplitText(text, 100)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
			assert.NotEmpty(t, c)
		}
		assert.Equal(t, strings.Join(strings.Fields(text), ""), strings.Join(strings.Fields(strings.Join(chunks, " ")), ""))
	})
}

func TestSynthesizer_Synthesize(t *testing.T) {
	var mu sync.Mutex
	var queries []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_tts", r.URL.Path)
		assert.Equal(t, "te", r.URL.Query().Get("tl"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		mu.Unlock()

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("[" + r.URL.Query().Get("idx") + "]"))
	}))
	defer server.Close()

	s := NewSynthesizer(&Config{BaseURL: server.URL, ChunkSize: 8}, logger.NewTestLogger(t))
	audio, err := s.Synthesize(context.Background(), "aaa bbb ccc")

	require.NoError(t, err)
	assert.Equal(t, "[0][1]", string(audio))
	assert.Equal(t, []string{"aaa bbb", "ccc"}, queries)
}

func TestSynthesizer_Errors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		s := NewSynthesizer(&Config{BaseURL: "http://unused"}, logger.NewNoOpLogger())
		_, err := s.Synthesize(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("upstream failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		s := NewSynthesizer(&Config{BaseURL: server.URL}, logger.NewNoOpLogger())
		_, err := s.Synthesize(context.Background(), "నమస్కారం")
		assert.ErrorIs(t, err, ErrSynthesisFailed)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		s := NewSynthesizer(&Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, logger.NewNoOpLogger())
		_, err := s.Synthesize(context.Background(), "నమస్కారం")
		assert.ErrorIs(t, err, ErrSynthesisTimeout)
	})
}

func TestEncodeAudio(t *testing.T) {
	assert.Equal(t, "", EncodeAudio(nil))
	encoded := EncodeAudio([]byte("ID3mp3"))
	assert.Equal(t, "SUQzbXAz", encoded)

	decoded, err := DecodeAudio(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3mp3"), decoded)

	decoded, err = DecodeAudio("")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}
