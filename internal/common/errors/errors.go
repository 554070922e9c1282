// Package errors provides standardized error handling for the intake service.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeScreenValidationFailed ErrorCode = "SCREEN_VALIDATION_FAILED"
	ErrCodeInvalidPatch           ErrorCode = "INVALID_PATCH"

	ErrCodeDraftPersistFailed ErrorCode = "DRAFT_PERSIST_FAILED"
	ErrCodeDraftNotFound      ErrorCode = "DRAFT_NOT_FOUND"
	ErrCodeDraftDeleteFailed  ErrorCode = "DRAFT_DELETE_FAILED"

	ErrCodeSnapshotReadFailed  ErrorCode = "SNAPSHOT_READ_FAILED"
	ErrCodeSnapshotWriteFailed ErrorCode = "SNAPSHOT_WRITE_FAILED"

	ErrCodeGenerationFailed      ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationParseFailed ErrorCode = "GENERATION_PARSE_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeSearchIndexFailed      ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewScreenValidationFailedError creates a non-retryable validation error.
// Validation errors block navigation; they are surfaced inline, never thrown.
func NewScreenValidationFailedError(screen, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScreenValidationFailed,
		Message:   fmt.Sprintf("Screen %q validation failed", screen),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPatchError creates a non-retryable patch rejection error.
func NewInvalidPatchError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPatch,
		Message:   "Draft update rejected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftPersistFailedError creates a retryable persistence error.
func NewDraftPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftPersistFailed,
		Message:   "Draft persistence failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftNotFoundError creates a non-retryable not-found error.
func NewDraftNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftNotFound,
		Message:   "Draft document not found",
		Details:   fmt.Sprintf("documentId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDraftDeleteFailedError creates a retryable delete error.
func NewDraftDeleteFailedError(id string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDraftDeleteFailed,
		Message:   "Draft delete failed",
		Details:   fmt.Sprintf("documentId: %s, error: %s", id, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSnapshotReadFailedError creates a non-retryable snapshot error.
// A bad local snapshot is ignored, never retried; the empty draft stands in.
func NewSnapshotReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotReadFailed,
		Message:   "Local snapshot read failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSnapshotWriteFailedError creates a retryable snapshot write error.
func NewSnapshotWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotWriteFailed,
		Message:   "Local snapshot write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a generation transport error.
// The caller must treat this as "no new content" and leave fields untouched.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Narrative generation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexFailedError creates a retryable search index error.
func NewSearchIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Submission indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Submission search failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable session error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Wizard session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// GetErrorCategory returns the broad category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PATCH"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DRAFT"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "SNAPSHOT"):
		return "SNAPSHOT"
	case strings.Contains(codeStr, "GENERATION"):
		return "AI"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	default:
		return "OTHER"
	}
}
