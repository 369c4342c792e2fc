package api

import (
	"errors"

	"telugu-assistant/internal/auth"
	"telugu-assistant/internal/chat"
	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/news"
	"telugu-assistant/internal/speech"
)

// toStandardError maps service sentinels to API error codes.
func toStandardError(err error) *apperrors.StandardError {
	if stdErr, ok := apperrors.As(err); ok {
		return stdErr
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperrors.NewInvalidCredentialsError()
	case errors.Is(err, auth.ErrUserExists):
		return apperrors.NewUserAlreadyExistsError("")
	case errors.Is(err, auth.ErrValidationFailed):
		return apperrors.NewValidationFailedError(err.Error())
	case errors.Is(err, auth.ErrSessionExpired):
		return apperrors.NewSessionExpiredError()
	case errors.Is(err, auth.ErrInvalidToken):
		return apperrors.NewUnauthorizedError("invalid token")

	case errors.Is(err, speech.ErrEmptyText):
		return apperrors.NewValidationFailedError("text is required")
	case errors.Is(err, speech.ErrSynthesisTimeout), errors.Is(err, speech.ErrSynthesisFailed):
		return apperrors.NewSpeechSynthesisFailedError(err)

	case errors.Is(err, news.ErrSearchFailed):
		return apperrors.NewSearchQueryFailedError("", err)
	case errors.Is(err, news.ErrArchiveDisabled):
		stdErr := apperrors.NewSearchQueryFailedError("", err)
		stdErr.Retryable = false
		return stdErr

	case errors.Is(err, chat.ErrHistoryDisabled):
		stdErr := apperrors.NewHistoryQueryFailedError(err)
		stdErr.Retryable = false
		return stdErr
	}

	return apperrors.NewInternalError(err)
}
