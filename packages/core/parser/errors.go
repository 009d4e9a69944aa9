package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is the kind of errors for inputs that do not match the grammar.
	ErrSyntax = errors.New("invalid requirement syntax")
	// ErrVersion is the kind of errors for well-formed inputs whose version
	// clause is rejected by the version parser.
	ErrVersion = errors.New("invalid version spec")
)

// ParseError is returned by Parse. Kind is ErrSyntax or ErrVersion and Err is
// the underlying diagnostic: a *grammar.SyntaxError for syntax errors or the
// version parser's error otherwise.
type ParseError struct {
	Input string
	Kind  error
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Input, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// IsSyntax reports whether err is a syntax error from Parse.
func IsSyntax(err error) bool {
	return errors.Is(err, ErrSyntax)
}

// IsVersion reports whether err is a version error from Parse.
func IsVersion(err error) bool {
	return errors.Is(err, ErrVersion)
}
