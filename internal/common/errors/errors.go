// Package errors provides standardized error handling for the matching and
// placement engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Engine error codes. The first four form the documented taxonomy; the rest
// cover infrastructure collaborators.
const (
	ErrCodeDataIntegrity        ErrorCode = "DATA_INTEGRITY_VIOLATION"
	ErrCodeIllegalTransition    ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeTransitionConflict   ErrorCode = "TRANSITION_CONFLICT"
	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"

	ErrCodeRecordNotFound       ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeResponseAlreadySet   ErrorCode = "RESPONSE_ALREADY_RECORDED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeRegistryInvalid          ErrorCode = "REGISTRY_INVALID"
)

// StandardError represents a structured engine error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewDataIntegrityError reports a record that violates a structural
// invariant. Never auto-corrected; the caller must surface it.
func NewDataIntegrityError(record, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataIntegrity,
		Message:   fmt.Sprintf("Record '%s' violates a data invariant", record),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIllegalTransitionError reports a workflow transition not permitted from
// the aggregate's current state. The aggregate is left unchanged.
func NewIllegalTransitionError(aggregate, id, from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIllegalTransition,
		Message:   fmt.Sprintf("Transition %s -> %s not permitted for %s", from, to, aggregate),
		Details:   fmt.Sprintf("%sId: %s", aggregate, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError reports a concurrent transition attempted on stale state.
// Retryable: the caller must re-fetch the aggregate and retry.
func NewConflictError(aggregate, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransitionConflict,
		Message:   fmt.Sprintf("Concurrent modification of %s detected", aggregate),
		Details:   fmt.Sprintf("%sId: %s; re-read the aggregate and retry the transition", aggregate, id),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError reports invalid engine configuration. Raised at
// construction time, never at score time.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "Invalid engine configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable lookup error.
func NewRecordNotFoundError(record, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   fmt.Sprintf("%s not found", record),
		Details:   fmt.Sprintf("%sId: %s", record, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError reports a second active application for the
// same (professional, job) pair.
func NewDuplicateApplicationError(professionalID, jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "Professional already holds an active application for this job",
		Details:   fmt.Sprintf("professionalId: %s, jobId: %s", professionalID, jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseAlreadySetError reports a second client response attached to a
// presentation that has already been answered.
func NewResponseAlreadySetError(presentationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseAlreadySet,
		Message:   "Presentation already carries a client response",
		Details:   fmt.Sprintf("presentationId: %s", presentationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable delivery error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryInvalidError reports a credential registry file that failed
// schema validation.
func NewRegistryInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryInvalid,
		Message:   "Credential registry failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf extracts the engine error code from err, or "" when err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsConflict reports whether err is a stale-state transition conflict or a
// duplicate client response, both of which require the caller to re-read.
func IsConflict(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeTransitionConflict || code == ErrCodeResponseAlreadySet
}

// IsIllegalTransition reports whether err is a rejected workflow transition.
func IsIllegalTransition(err error) bool {
	return CodeOf(err) == ErrCodeIllegalTransition
}

// IsDataIntegrity reports whether err is a data invariant violation.
func IsDataIntegrity(err error) bool {
	return CodeOf(err) == ErrCodeDataIntegrity
}

// IsNotFound reports whether err is a missing-record lookup failure.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeRecordNotFound
}

// IsRetryable reports whether the caller may retry after re-reading state.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
