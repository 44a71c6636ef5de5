package dupdir

import (
	"errors"
	"fmt"
)

// Every error below is fatal to a run. Nothing in the pipeline retries.
var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrMalformedLine = errors.New("malformed line")
	ErrCorruptCache  = errors.New("corrupt hash cache")
	ErrInvariant     = errors.New("invariant violation")
)

// PathError reports a path that failed validation
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidPath, e.Path, e.Reason)
}

func (e *PathError) Unwrap() error { return ErrInvalidPath }

// LineError reports an intermediate line that could not be split into its fields
type LineError struct {
	Line   int // 1-based, 0 when unknown
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v at line %d %q: %s", ErrMalformedLine, e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("%v %q: %s", ErrMalformedLine, e.Text, e.Reason)
}

func (e *LineError) Unwrap() error { return ErrMalformedLine }

func invariantf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
