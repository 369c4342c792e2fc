// Package errors provides standardized error handling shared by the HTTP API
// and the Zeebe workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEmptyInput            ErrorCode = "EMPTY_INPUT"
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodeGenerationFailed      ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout     ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeSpeechSynthesisFailed ErrorCode = "SPEECH_SYNTHESIS_FAILED"

	ErrCodeNewsFetchFailed   ErrorCode = "NEWS_FETCH_FAILED"
	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeChatSaveFailed           ErrorCode = "CHAT_SAVE_FAILED"
	ErrCodeHistoryQueryFailed       ErrorCode = "HISTORY_QUERY_FAILED"

	ErrCodeUserAlreadyExists  ErrorCode = "USER_ALREADY_EXISTS"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeSessionExpired     ErrorCode = "SESSION_EXPIRED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// New builds a StandardError whose retryability follows GetRetryCount.
func New(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: IsRetryableErrorCode(code),
		Timestamp: time.Now().UTC(),
	}
}

// Wrap is New with err kept as the cause and used as details.
func Wrap(code ErrorCode, message string, err error) *StandardError {
	e := New(code, message, "")
	if err != nil {
		e.Details = err.Error()
		e.cause = err
	}
	return e
}

// As extracts the first StandardError in err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewValidationFailedError(details string) *StandardError {
	return New(ErrCodeValidationFailed, "Input validation failed", details)
}

func NewGenerationFailedError(err error) *StandardError {
	return Wrap(ErrCodeGenerationFailed, "Reply generation failed", err)
}

func NewGenerationTimeoutError() *StandardError {
	return New(ErrCodeGenerationTimeout, "Reply generation timed out", "")
}

func NewSpeechSynthesisFailedError(err error) *StandardError {
	return Wrap(ErrCodeSpeechSynthesisFailed, "Speech synthesis failed", err)
}

func NewNewsFetchFailedError(source string, err error) *StandardError {
	return Wrap(ErrCodeNewsFetchFailed, "Failed to fetch news", err).WithMetadata("source", source)
}

func NewSearchQueryFailedError(query string, err error) *StandardError {
	return Wrap(ErrCodeSearchQueryFailed, "News search failed", err).WithMetadata("query", query)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return Wrap(ErrCodeDatabaseConnectionFailed, "Failed to connect to the database", err)
}

func NewChatSaveFailedError(err error) *StandardError {
	return Wrap(ErrCodeChatSaveFailed, "Failed to save chat message", err)
}

func NewHistoryQueryFailedError(err error) *StandardError {
	return Wrap(ErrCodeHistoryQueryFailed, "Failed to load chat history", err)
}

func NewUserAlreadyExistsError(email string) *StandardError {
	return New(ErrCodeUserAlreadyExists, "User already exists", email)
}

func NewInvalidCredentialsError() *StandardError {
	return New(ErrCodeInvalidCredentials, "Invalid email or password", "")
}

func NewUnauthorizedError(details string) *StandardError {
	return New(ErrCodeUnauthorized, "Authentication required", details)
}

func NewSessionExpiredError() *StandardError {
	return New(ErrCodeSessionExpired, "Session expired", "")
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return Wrap(ErrCodeNotificationSendFailed, fmt.Sprintf("Failed to send %s notification", channel), err)
}

func NewInternalError(err error) *StandardError {
	return Wrap(ErrCodeInternal, "Unexpected error", err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeChatSaveFailed,
		ErrCodeHistoryQueryFailed,
		ErrCodeNewsFetchFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeSpeechSynthesisFailed:
		return 3

	case ErrCodeGenerationFailed:
		return 2

	case ErrCodeGenerationTimeout:
		return 1

	default:
		return 0 // business errors
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN codes are the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CREDENTIALS") || strings.Contains(codeStr, "SESSION") ||
		strings.Contains(codeStr, "UNAUTHORIZED") || strings.Contains(codeStr, "USER"):
		return "AUTH"
	case strings.Contains(codeStr, "GENERATION") || strings.Contains(codeStr, "SPEECH"):
		return "AI"
	case strings.Contains(codeStr, "NEWS") || strings.Contains(codeStr, "SEARCH"):
		return "NEWS"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CHAT") || strings.Contains(codeStr, "HISTORY"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INPUT") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps a code to the status the API answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeEmptyInput, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeInvalidCredentials, ErrCodeUnauthorized, ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case ErrCodeUserAlreadyExists:
		return http.StatusConflict
	case ErrCodeGenerationTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeGenerationFailed, ErrCodeSpeechSynthesisFailed, ErrCodeNewsFetchFailed,
		ErrCodeSearchQueryFailed, ErrCodeNotificationSendFailed:
		return http.StatusBadGateway
	case ErrCodeDatabaseConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
