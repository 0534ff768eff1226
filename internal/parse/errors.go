package parse

import (
	"errors"
	"fmt"
)

// MalformedInputError reports a result file that could not be turned into
// suites. It always names the offending file.
type MalformedInputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := fmt.Sprintf("malformed input %q", e.Path)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// Malformed builds a MalformedInputError for path.
func Malformed(path, reason string, err error) error {
	return &MalformedInputError{Path: path, Reason: reason, Err: err}
}

// Malformedf builds a MalformedInputError with a formatted reason.
func Malformedf(path, format string, args ...any) error {
	return &MalformedInputError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// IsMalformed reports whether err wraps a MalformedInputError.
func IsMalformed(err error) bool {
	var target *MalformedInputError
	return errors.As(err, &target)
}
