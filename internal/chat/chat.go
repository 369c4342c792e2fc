// Package chat runs one conversational turn end to end: reply, optional
// speech, optional persistence.
package chat

import (
	"context"
	"errors"
	"fmt"

	"telugu-assistant/internal/assistant"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/validation"
	"telugu-assistant/internal/models"
	"telugu-assistant/internal/speech"
	"telugu-assistant/internal/store"
)

const (
	// ErrorReply replaces the reply when the turn fails unexpectedly.
	ErrorReply = "క్షమించండి, ప్రస్తుతం సమస్య ఉంది. దయచేసి మళ్లీ ప్రయత్నించండి."
	// VoiceUnavailable is the warning attached when speech synthesis fails.
	VoiceUnavailable = "వాయిస్ ఔట్‌పుట్ ప్రస్తుతం అందుబాటులో లేదు."
)

var ErrHistoryDisabled = errors.New("HISTORY_DISABLED")

type Responder interface {
	Respond(ctx context.Context, input string) assistant.Reply
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Options struct {
	Voice       bool `json:"voice"`
	SaveHistory bool `json:"saveHistory"`
}

// Result is the reply plus whatever the optional stages produced.
type Result struct {
	assistant.Reply
	Audio   string `json:"audio,omitempty"`
	Warning string `json:"warning,omitempty"`
	Saved   bool   `json:"saved"`
}

type Service struct {
	responder  Responder
	speech     Synthesizer
	chats      store.ChatStore
	maxHistory int
	logger     logger.Logger
}

// NewService wires the turn pipeline. synth and chats may be nil to disable
// voice and history.
func NewService(responder Responder, synth Synthesizer, chats store.ChatStore, maxHistory int, log logger.Logger) *Service {
	if maxHistory <= 0 {
		maxHistory = store.DefaultHistoryLimit
	}
	return &Service{
		responder:  responder,
		speech:     synth,
		chats:      chats,
		maxHistory: maxHistory,
		logger:     log.With(map[string]interface{}{"component": "chat"}),
	}
}

// Send answers text for userID. It never fails: a panic anywhere in the turn
// turns into ErrorReply.
func (s *Service) Send(ctx context.Context, userID, text string, opts Options) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chat turn panicked", map[string]interface{}{
				"userId": userID,
				"panic":  fmt.Sprint(r),
			})
			result = &Result{Reply: assistant.Reply{Text: ErrorReply, Source: assistant.SourceFault}}
		}
	}()

	reply := s.responder.Respond(ctx, text)
	result = &Result{Reply: reply}
	if reply.Source == assistant.SourceEmptyInput {
		return result
	}

	var audio []byte
	if opts.Voice && s.speech != nil {
		var err error
		audio, err = s.speech.Synthesize(ctx, reply.Text)
		if err != nil {
			s.logger.Warn("speech synthesis failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
			result.Warning = VoiceUnavailable
		}
		result.Audio = speech.EncodeAudio(audio)
	}

	if opts.SaveHistory && s.chats != nil && userID != "" {
		if err := s.chats.SaveChatMessage(ctx, userID, text, reply.Text, result.Audio); err != nil {
			s.logger.Error("failed to save chat turn", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		} else {
			result.Saved = true
		}
	}

	return result
}

// History returns the stored conversation as alternating messages.
func (s *Service) History(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	if s.chats == nil {
		return nil, ErrHistoryDisabled
	}
	turns, err := s.chats.ChatHistory(ctx, userID, s.maxHistory)
	if err != nil {
		return nil, err
	}

	messages := models.Messages(turns)
	for i := range messages {
		messages[i].Content = validation.SanitizeInput(messages[i].Content)
	}
	return messages, nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	if s.chats == nil {
		return ErrHistoryDisabled
	}
	return s.chats.ClearChatHistory(ctx, userID)
}

func (s *Service) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	if s.chats == nil {
		return &models.UserStats{DaysActive: 1}, nil
	}
	n, err := s.chats.CountMessages(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.UserStats{TotalMessages: n, DaysActive: 1, NewsRead: 0}, nil
}
