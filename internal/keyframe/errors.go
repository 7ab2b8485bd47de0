package keyframe

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty      = errors.New("empty keyframe file")
	ErrTime       = errors.New("missing or non-increasing time")
	ErrVector     = errors.New("vector must have 3 numeric components")
	ErrTooFew     = errors.New("at least 2 keyframes are needed for an animation")
	ErrLoopTooFew = errors.New("at least 3 keyframes are needed for an animation to loop")
)

// FormatError reports a problem found on a specific line (or script entry)
type FormatError struct {
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
