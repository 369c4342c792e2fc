// Package jobs holds the plumbing shared by every Zeebe job handler:
// variable decoding against the activity registry, completion and failure.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/metrics"
	"telugu-assistant/pkg/registry"
)

// Validator checks job variables against the input schema of a task type.
type Validator interface {
	Validate(taskType string, variables interface{}) error
}

// Decode validates the job variables (when v is non-nil) and unmarshals them
// into out. Failures are VALIDATION_FAILED errors.
func Decode(job entities.Job, taskType string, v Validator, out interface{}) error {
	raw := job.Variables
	if raw == "" {
		raw = "{}"
	}

	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &vars); err != nil {
		return apperrors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}

	if v != nil {
		if err := v.Validate(taskType, vars); err != nil {
			var schemaErr *registry.SchemaError
			if errors.As(err, &schemaErr) {
				return apperrors.NewValidationFailedError(err.Error())
			}
			return apperrors.NewInternalError(err)
		}
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return apperrors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}
	return nil
}

// Complete sends the output as job variables.
func Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		log.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(job.Type).Inc()
}

// Fail records the failure and hands the job to the shared error handler,
// which either retries it or throws a BPMN error.
func Fail(ctx context.Context, handler *apperrors.ErrorHandler, client worker.JobClient, job entities.Job, err error) {
	stdErr := apperrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(job.Type, string(stdErr.Code)).Inc()
	handler.HandleJobError(ctx, client, job, stdErr)
}
