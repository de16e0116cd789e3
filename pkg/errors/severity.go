// Package errors provides severity-aware error types.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// CostError is a structured error with context.
type CostError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	ProjectID   string   `json:"project_id,omitempty"`
	Recoverable bool     `json:"recoverable"`
	Err         error    `json:"-"`
}

func (e *CostError) Error() string {
	if e.ProjectID != "" {
		return fmt.Sprintf("[%s] %s: %s (project: %s)", e.Severity, e.Code, e.Message, e.ProjectID)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

func (e *CostError) Unwrap() error { return e.Err }

// Error codes
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrCodeSnapshotWriteFailed = "SNAPSHOT_WRITE_FAILED"
	ErrCodeAlertWriteFailed    = "ALERT_WRITE_FAILED"
	ErrCodeNotFound            = "NOT_FOUND"
)

// NewInvalidInputError flags a request that cannot be computed.
func NewInvalidInputError(message, projectID string) *CostError {
	return &CostError{
		Code:        ErrCodeInvalidInput,
		Message:     message,
		Severity:    SeverityError,
		ProjectID:   projectID,
		Recoverable: false,
	}
}

// NewSnapshotWriteError wraps a failed metrics snapshot write. Recoverable:
// the report itself is unaffected.
func NewSnapshotWriteError(projectID string, err error) *CostError {
	return &CostError{
		Code:        ErrCodeSnapshotWriteFailed,
		Message:     "failed to persist metrics snapshot",
		Severity:    SeverityWarning,
		ProjectID:   projectID,
		Recoverable: true,
		Err:         err,
	}
}

// NewAlertWriteError wraps a failed alert persistence write.
func NewAlertWriteError(projectID string, err error) *CostError {
	return &CostError{
		Code:        ErrCodeAlertWriteFailed,
		Message:     "failed to persist alerts",
		Severity:    SeverityWarning,
		ProjectID:   projectID,
		Recoverable: true,
		Err:         err,
	}
}
