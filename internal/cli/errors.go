package cli

import (
	"errors"
	"fmt"
	"io"
)

// ExitCode classifies CLI failures so scripts can branch on them.
type ExitCode int

const (
	ExitSuccess       ExitCode = 0
	ExitGeneralError  ExitCode = 1
	ExitConfigError   ExitCode = 2
	ExitKeyError      ExitCode = 3
	ExitExchangeError ExitCode = 4
	ExitStoreError    ExitCode = 5
)

// Error carries a message and the exit code the process should finish with.
type Error struct {
	Message string
	Code    ExitCode
}

// NewError creates a CLI error with an explicit exit code.
func NewError(message string, code ExitCode) *Error {
	return &Error{Message: message, Code: code}
}

// Errorf formats a CLI error with an explicit exit code.
func Errorf(code ExitCode, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Code: code}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// PrintError writes err to w and returns the exit code to finish with.
// Errors without an explicit code map to ExitGeneralError.
func PrintError(w io.Writer, err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}

	var clierr *Error
	if errors.As(err, &clierr) {
		if clierr.Message != "" {
			_, _ = fmt.Fprintf(w, "error: %s\n", clierr.Message)
		}
		return clierr.Code
	}

	_, _ = fmt.Fprintf(w, "error: %v\n", err)
	return ExitGeneralError
}
