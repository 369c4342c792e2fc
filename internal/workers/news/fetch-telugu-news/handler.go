// internal/workers/news/fetch-telugu-news/handler.go
package fetchnews

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/news"
	"telugu-assistant/internal/workers/jobs"
)

const TaskType = "fetch-telugu-news"

type NewsSource interface {
	ByCategory(ctx context.Context, category string) news.Result
}

type Handler struct {
	config   *jobs.Config
	news     NewsSource
	registry jobs.Validator
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *jobs.Config, source NewsSource, reg jobs.Validator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		news:     source,
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

	jobs.Complete(ctx, client, job, h.execute(ctx, &input), h.logger)
}

// execute always completes; when no feed answers the backup articles are
// returned with FromBackup set.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	result := h.news.ByCategory(ctx, input.Category)

	if result.FromBackup {
		h.logger.Warn("no feed returned articles, using backup set", map[string]interface{}{
			"category": input.Category,
		})
	}

	return &Output{
		Articles:   result.Articles,
		Count:      len(result.Articles),
		FromBackup: result.FromBackup,
	}
}
