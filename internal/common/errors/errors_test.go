package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_Error(t *testing.T) {
	err := NewInvalidCredentialsError()
	assert.Equal(t, "StandardError[INVALID_CREDENTIALS]: Invalid email or password", err.Error())
	assert.False(t, err.Retryable)
	assert.False(t, err.Timestamp.IsZero())
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewChatSaveFailedError(cause)

	assert.True(t, err.Retryable)
	assert.Equal(t, "connection refused", err.Details)
	assert.ErrorIs(t, err, cause)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("saving turn: %w", NewChatSaveFailedError(stderrors.New("boom")))

	stdErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeChatSaveFailed, stdErr.Code)

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, ErrCodeUserAlreadyExists, Normalize(NewUserAlreadyExistsError("a@b.co")).Code)

	internal := Normalize(stderrors.New("nil pointer"))
	assert.Equal(t, ErrCodeInternal, internal.Code)
	assert.Equal(t, "nil pointer", internal.Details)
	assert.False(t, internal.Retryable)
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeDatabaseConnectionFailed, 3},
		{ErrCodeNewsFetchFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeGenerationFailed, 2},
		{ErrCodeGenerationTimeout, 1},
		{ErrCodeValidationFailed, 0},
		{ErrCodeUserAlreadyExists, 0},
		{ErrCodeInternal, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewNewsFetchFailedError("Sakshi", stderrors.New("timeout"))
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "NEWS_FETCH_FAILED", bpmnErr.Code)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.True(t, bpmnErr.Retryable)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "NEWS_FETCH_FAILED", vars["errorCode"])
	assert.Equal(t, "timeout", vars["errorDetails"])
	assert.Equal(t, "Sakshi", vars["source"])
	assert.Equal(t, "NEWS_FETCH_FAILED", vars["originalErrorCode"])
}

func TestConvertToBPMNError_NonRetryableHasNoRetries(t *testing.T) {
	stdErr := NewChatSaveFailedError(stderrors.New("x"))
	stdErr.Retryable = false
	assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeInvalidCredentials))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeUserAlreadyExists))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeGenerationTimeout))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeSpeechSynthesisFailed))
	assert.Equal(t, "NEWS", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeHistoryQueryFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeEmptyInput))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeValidationFailed))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeInvalidCredentials))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrCodeSessionExpired))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrCodeUserAlreadyExists))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrCodeSpeechSynthesisFailed))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(ErrCodeGenerationTimeout))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeInternal))
}
