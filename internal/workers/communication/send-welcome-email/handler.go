// internal/workers/communication/send-welcome-email/handler.go
package sendwelcome

import (
	"context"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/notify"
	"telugu-assistant/internal/workers/jobs"
)

const TaskType = "send-welcome-email"

type Welcomer interface {
	SendWelcome(ctx context.Context, email string) (string, error)
}

type Handler struct {
	config   *jobs.Config
	welcomer Welcomer
	registry jobs.Validator
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *jobs.Config, welcomer Welcomer, reg jobs.Validator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		welcomer: welcomer,
		registry: reg,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
		now:      time.Now,
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
	id, err := h.welcomer.SendWelcome(ctx, input.Email)
	switch {
	case errors.Is(err, notify.ErrInvalidEmail):
		return nil, apperrors.NewValidationFailedError(err.Error())
	case errors.Is(err, notify.ErrEmailDisabled):
		stdErr := apperrors.NewNotificationSendFailedError("email", err)
		stdErr.Retryable = false
		return nil, stdErr
	case err != nil:
		return nil, apperrors.NewNotificationSendFailedError("email", err)
	}

	return &Output{
		Success:   true,
		MessageID: id,
		Provider:  "SES",
		SentAt:    h.now().UTC(),
	}, nil
}
