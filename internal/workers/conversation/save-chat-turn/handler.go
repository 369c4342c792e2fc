// internal/workers/conversation/save-chat-turn/handler.go
package savechatturn

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/workers/jobs"
)

const TaskType = "save-chat-turn"

type TurnSaver interface {
	SaveChatMessage(ctx context.Context, userID, userMessage, aiResponse, audioFile string) error
}

type Handler struct {
	config   *jobs.Config
	chats    TurnSaver
	registry jobs.Validator
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *jobs.Config, chats TurnSaver, reg jobs.Validator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		chats:    chats,
		registry: reg,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := jobs.Decode(job, TaskType, h.registry, &input); err != nil {
		jobs.Fail(context.Background(), h.errors, client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		jobs.Fail(context.Background(), h.errors, client, job, err)
		return
	}
	jobs.Complete(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, apperrors.NewValidationFailedError("userId is required")
	}

	if err := h.chats.SaveChatMessage(ctx, input.UserID, input.UserMessage, input.AIResponse, input.AudioFile); err != nil {
		return nil, apperrors.NewChatSaveFailedError(err).WithMetadata("userId", input.UserID)
	}

	h.logger.Info("chat turn saved", map[string]interface{}{
		"userId":   input.UserID,
		"hasAudio": input.AudioFile != "",
	})
	return &Output{Saved: true}, nil
}
