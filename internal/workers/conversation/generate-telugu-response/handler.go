// internal/workers/conversation/generate-telugu-response/handler.go
package generateresponse

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"telugu-assistant/internal/assistant"
	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/workers/jobs"
)

const TaskType = "generate-telugu-response"

type Responder interface {
	Respond(ctx context.Context, input string) assistant.Reply
}

type Handler struct {
	config    *jobs.Config
	responder Responder
	registry  jobs.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *jobs.Config, responder Responder, reg jobs.Validator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		responder: responder,
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

	jobs.Complete(ctx, client, job, h.execute(ctx, &input), h.logger)
}

// execute cannot fail: the engine always produces a reply.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	reply := h.responder.Respond(ctx, input.Message)

	h.logger.Info("reply generated", map[string]interface{}{
		"userId": input.UserID,
		"intent": reply.Intent,
		"source": reply.Source,
	})

	return &Output{
		Response:     reply.Text,
		Intent:       string(reply.Intent),
		Language:     string(reply.Language),
		Source:       string(reply.Source),
		LanguageHint: reply.LanguageHint,
	}
}
