package synthesizespeech

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/speech"
	"telugu-assistant/internal/workers/jobs"
)

type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) SynthesizeLang(ctx context.Context, text, lang string) ([]byte, error) {
	args := m.Called(ctx, text, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func createTestHandler(t *testing.T, s Synthesizer) *Handler {
	return NewHandler(&jobs.Config{Timeout: time.Second}, s, nil, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	synth := new(MockSynthesizer)
	synth.On("SynthesizeLang", mock.Anything, "నమస్కారం", "te").Return([]byte("ID3mp3"), nil)

	out, err := createTestHandler(t, synth).execute(context.Background(), &Input{Text: "నమస్కారం", Lang: "te"})

	require.NoError(t, err)
	assert.Equal(t, "SUQzbXAz", out.AudioBase64)
	assert.Equal(t, 6, out.Bytes)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  apperrors.ErrorCode
		retryable bool
	}{
		{"empty text", speech.ErrEmptyText, apperrors.ErrCodeValidationFailed, false},
		{"upstream failure", fmt.Errorf("%w: status 429", speech.ErrSynthesisFailed), apperrors.ErrCodeSpeechSynthesisFailed, true},
		{"timeout", fmt.Errorf("%w: deadline", speech.ErrSynthesisTimeout), apperrors.ErrCodeSpeechSynthesisFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synth := new(MockSynthesizer)
			synth.On("SynthesizeLang", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := createTestHandler(t, synth).execute(context.Background(), &Input{Text: "x"})

			stdErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}
