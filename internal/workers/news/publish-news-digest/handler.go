// internal/workers/news/publish-news-digest/handler.go
package publishdigest

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/models"
	"telugu-assistant/internal/notify"
	"telugu-assistant/internal/workers/jobs"
)

const TaskType = "publish-news-digest"

type Publisher interface {
	PublishDigest(ctx context.Context, headlines []models.Headline) (string, error)
}

type Handler struct {
	config    *jobs.Config
	publisher Publisher
	registry  jobs.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *jobs.Config, publisher Publisher, reg jobs.Validator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		publisher: publisher,
		registry:  reg,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
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
	id, err := h.publisher.PublishDigest(ctx, input.Articles)
	if err != nil {
		stdErr := apperrors.NewNotificationSendFailedError("digest", err)
		// A disabled channel or an empty digest will not succeed on retry.
		if errors.Is(err, notify.ErrDigestDisabled) || errors.Is(err, notify.ErrEmptyDigest) {
			stdErr.Retryable = false
		}
		return nil, stdErr
	}

	return &Output{MessageID: id, Headlines: len(input.Articles)}, nil
}
