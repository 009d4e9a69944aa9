package cmd

import (
	"errors"
	"fmt"
)

// Exit codes for the reqspec CLI
const (
	// ExitSuccess indicates every specifier parsed
	ExitSuccess = 0

	// ExitInvalid indicates one or more specifiers failed to parse
	ExitInvalid = 1

	// ExitParseError indicates a file could not be read or decoded
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code for an error. A nil err exits
// without printing anything, for failures the formatter already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExit(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCode maps an error returned by a command to a process exit code.
// Errors that carry no code come from cobra's argument handling.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}

// silent reports whether err should exit without a message.
func silent(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.err == nil
}
