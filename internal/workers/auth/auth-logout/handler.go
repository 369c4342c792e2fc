// Package authlogout handles user logout requests.
package authlogout

import (
	"context"
	"errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"telugu-assistant/internal/auth"
	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/workers/jobs"
)

const TaskType = "auth-logout"

// SessionRevoker ends one or all sessions of a user.
type SessionRevoker interface {
	Logout(ctx context.Context, userID, sessionID string, all bool) (int, error)
}

type Handler struct {
	config   *jobs.Config
	sessions SessionRevoker
	registry jobs.Validator
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(config *jobs.Config, sessions SessionRevoker, reg jobs.Validator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		sessions: sessions,
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

	input, err := h.parseInput(job)
	if err != nil {
		jobs.Fail(context.Background(), h.errors, client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		jobs.Fail(context.Background(), h.errors, client, job, err)
		return
	}
	jobs.Complete(ctx, client, job, output, h.logger)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := jobs.Decode(job, TaskType, h.registry, &input); err != nil {
		return nil, err
	}
	if input.UserID == "" {
		return nil, apperrors.NewValidationFailedError("userId is required")
	}
	if !input.LogoutAll && input.JTI == "" {
		return nil, apperrors.NewValidationFailedError("jti is required unless logoutAll is set")
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	h.logger.Info("Executing auth logout", map[string]interface{}{
		"userId":    input.UserID,
		"logoutAll": input.LogoutAll,
		"reason":    input.Reason,
	})

	n, err := h.sessions.Logout(ctx, input.UserID, input.JTI, input.LogoutAll)
	if err != nil {
		if errors.Is(err, auth.ErrValidationFailed) {
			return nil, apperrors.NewValidationFailedError(err.Error())
		}
		return nil, apperrors.NewDatabaseConnectionFailedError(err).WithMetadata("userId", input.UserID)
	}

	return &Output{
		Success:             true,
		Message:             "Logout successful",
		SessionsInvalidated: n,
		LogoutAt:            h.now().UTC(),
	}, nil
}
