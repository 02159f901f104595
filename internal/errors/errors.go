package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, corrupt files, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, permissions, etc.).
	ExitSystem = 2
)

// Error kinds. Store and orchestration failures are marked with exactly one
// of these so callers can classify them with [Is].
var (
	// ErrNotFound indicates a file or record is absent. Callers treat it as
	// empty state rather than as a failure.
	ErrNotFound = crdb.New("not found")

	// ErrCorrupt indicates persisted bytes could not be parsed. Operations
	// abort before any write when they see it.
	ErrCorrupt = crdb.New("corrupt")

	// ErrIO indicates a read or filesystem failure other than absence.
	ErrIO = crdb.New("i/o error")

	// ErrWriteFailed indicates a write did not complete. The manifest is
	// never updated after this kind.
	ErrWriteFailed = crdb.New("write failed")

	// ErrInvalidConfig indicates tool configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")
)

// Re-exports so callers need a single errors import.
var (
	New         = crdb.New
	Newf        = crdb.Newf
	Errorf      = crdb.Errorf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	Is          = crdb.Is
	As          = crdb.As
	Mark        = crdb.Mark
	WithHint    = crdb.WithHint
	GetAllHints = crdb.GetAllHints
	Join        = crdb.Join
)

// CorruptError reports a file whose contents could not be parsed.
type CorruptError struct {
	// Path is the offending file.
	Path string

	// Err is the parse failure.
	Err error
}

// NewCorruptError wraps a parse failure for path and marks it ErrCorrupt.
func NewCorruptError(path string, err error) error {
	return crdb.Mark(&CorruptError{Path: path, Err: err}, ErrCorrupt)
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: mcpfed doctor",
	}
}

// Classify converts an operation error into an ExitError based on its kind.
// Errors that are already ExitErrors are returned unchanged.
func Classify(err error) *ExitError {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr
	}

	switch {
	case crdb.Is(err, ErrCorrupt):
		return NewUserError(err, "Fix or restore the file: mcpfed backup restore")
	case crdb.Is(err, ErrWriteFailed):
		return NewSystemError(err, "The previous contents are kept in a backup: mcpfed backup list")
	case crdb.Is(err, ErrIO):
		return NewSystemError(err, "Check file permissions and disk space")
	case crdb.Is(err, ErrInvalidConfig):
		return NewConfigError(err)
	default:
		return NewExitError(err, ExitUser)
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
