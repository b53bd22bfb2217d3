package errors

import "fmt"

// ErrorCode is a stable, machine-checkable error kind.
type ErrorCode string

const (
	// Travel state machine errors
	ErrCodeInvalidState     ErrorCode = "INVALID_STATE"
	ErrCodeSnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	ErrCodeMissingBackup    ErrorCode = "MISSING_BACKUP"
	ErrCodeRecoveryPending  ErrorCode = "RECOVERY_PENDING"

	// Issue errors
	ErrCodeMissingSessionSnapshot ErrorCode = "MISSING_SESSION_SNAPSHOT"
	ErrCodeMissingRequiredField   ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidIssueID         ErrorCode = "INVALID_ISSUE_ID"
	ErrCodeIssueNotFound          ErrorCode = "ISSUE_NOT_FOUND"
	ErrCodeIssueReadFailed        ErrorCode = "ISSUE_READ_FAILED"
	ErrCodeIssueInvalid           ErrorCode = "ISSUE_INVALID"
	ErrCodeIssueListFailed        ErrorCode = "ISSUE_LIST_FAILED"
	ErrCodeIssueGetFailed         ErrorCode = "ISSUE_GET_FAILED"

	// General errors
	ErrCodeWorkspaceLocked ErrorCode = "WORKSPACE_LOCKED"
	ErrCodeIOFailure       ErrorCode = "IO_FAILURE"
)

// Error is a structured error carrying a code and contextual details.
type Error struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Envelope renders the error as the flat payload used by tool outputs:
// code and message first, details merged alongside them.
func (e *Error) Envelope() map[string]interface{} {
	out := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
	}
	for k, v := range e.Details {
		if k == "code" || k == "message" {
			continue
		}
		out[k] = v
	}
	return out
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an Error
func Wrap(err error, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// Is checks if an error is a specific Error code
func Is(err error, code ErrorCode) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

// FromError coerces any error into an *Error. Errors without a code are
// reported as IO_FAILURE with the original message kept as detail.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	return Wrap(err, ErrCodeIOFailure, "filesystem operation failed").
		WithDetail("detail", err.Error())
}
