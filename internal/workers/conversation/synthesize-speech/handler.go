// internal/workers/conversation/synthesize-speech/handler.go
package synthesizespeech

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/speech"
	"telugu-assistant/internal/workers/jobs"
)

const TaskType = "synthesize-speech"

type Synthesizer interface {
	SynthesizeLang(ctx context.Context, text, lang string) ([]byte, error)
}

type Handler struct {
	config   *jobs.Config
	synth    Synthesizer
	registry jobs.Validator
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *jobs.Config, synth Synthesizer, reg jobs.Validator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		synth:    synth,
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
	audio, err := h.synth.SynthesizeLang(ctx, input.Text, input.Lang)
	if err != nil {
		if errors.Is(err, speech.ErrEmptyText) {
			return nil, apperrors.NewValidationFailedError("text is empty")
		}
		return nil, apperrors.NewSpeechSynthesisFailedError(err)
	}

	return &Output{
		AudioBase64: speech.EncodeAudio(audio),
		Bytes:       len(audio),
	}, nil
}
