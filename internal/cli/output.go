package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/homotopy/internal/compiler"
	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
	"github.com/roach88/homotopy/internal/store"
	"github.com/roach88/homotopy/internal/typecheck"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check or scenario failure
	ExitCommandError = 2 // Command error (invalid paths, unreadable config, etc.)
)

// Error codes for failures that carry no code of their own.
const (
	ErrCodeGeneric   = "E001" // Generic/unknown error
	ErrCodeScanError = "E002" // Directory scan error
	ErrCodeNoFiles   = "E003" // No input files found
	ErrCodeNotFound  = "E005" // Path or stored proof not found
	ErrCodeCancelled = "E006" // Timeout or interrupt
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCode returns the most specific code carried by err: a compile,
// typecheck, action or core code, or one of the generic E00x codes.
func ErrorCode(err error) string {
	var ce *compiler.CompileError
	var te *typecheck.TypecheckError
	var ae *proof.ActionError
	var coreErr *core.Error
	var le *LoadError
	switch {
	case errors.As(err, &le):
		return le.Code
	case errors.As(err, &ce):
		return ce.Code
	case errors.As(err, &te):
		return te.Code
	case errors.As(err, &ae):
		return string(ae.Code)
	case errors.Is(err, core.ErrCancelled):
		return ErrCodeCancelled
	case errors.As(err, &coreErr):
		return string(coreErr.Code)
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E120", "STRUCTURAL", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err with its ErrorCode and returns it as an ExitError with
// the given exit code.
func (f *OutputFormatter) Fail(exitCode int, message string, err error) error {
	if outErr := f.Error(ErrorCode(err), fmt.Sprintf("%s: %v", message, err), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(exitCode, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
