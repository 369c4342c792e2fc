package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	activityNamePattern = regexp.MustCompile(`^[a-z]+(-[a-z]+)+$`)
)

// MaxMessageLength bounds a single chat message in code points.
const MaxMessageLength = 2000

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (vr *ValidationResult) add(field, code, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message, Code: code})
}

// GetErrorMessages returns "field: message" for every error.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Error joins all messages; handy for wrapping.
func (vr *ValidationResult) Error() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// SanitizeInput escapes angle brackets and trims surrounding whitespace.
func SanitizeInput(text string) string {
	if text == "" {
		return ""
	}
	sanitized := strings.ReplaceAll(text, "<", "&lt;")
	sanitized = strings.ReplaceAll(sanitized, ">", "&gt;")
	return strings.TrimSpace(sanitized)
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateCredentials checks a sign-up request. Password length is counted
// in code points.
func ValidateCredentials(email, password string, minPasswordLength int) *ValidationResult {
	vr := &ValidationResult{Valid: true}
	if email == "" {
		vr.add("email", "REQUIRED_FIELD_MISSING", "email is required")
	} else if !ValidateEmail(email) {
		vr.add("email", "INVALID_FORMAT", "email address is not valid")
	}
	if password == "" {
		vr.add("password", "REQUIRED_FIELD_MISSING", "password is required")
	} else if utf8.RuneCountInString(password) < minPasswordLength {
		vr.add("password", "MIN_LENGTH_VIOLATION",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return vr
}

// ValidateMessage rejects chat messages that are blank or too long.
func ValidateMessage(text string) *ValidationResult {
	vr := &ValidationResult{Valid: true}
	switch {
	case strings.TrimSpace(text) == "":
		vr.add("message", "REQUIRED_FIELD_MISSING", "message is required")
	case utf8.RuneCountInString(text) > MaxMessageLength:
		vr.add("message", "MAX_LENGTH_VIOLATION",
			fmt.Sprintf("message must be at most %d characters", MaxMessageLength))
	}
	return vr
}

// ValidateTaskType checks the kebab-case naming used for Zeebe task types,
// e.g. generate-telugu-response.
func ValidateTaskType(taskType string) error {
	if !activityNamePattern.MatchString(taskType) {
		return fmt.Errorf("task type must be lower-case words joined by hyphens (e.g. fetch-telugu-news)")
	}
	return nil
}
