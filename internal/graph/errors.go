package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad matches every LoadError.
	ErrLoad = errors.New("graph load failed")

	ErrUnknownNode   = errors.New("unknown node")
	ErrDuplicateNode = errors.New("duplicate node")
	ErrMalformed     = errors.New("malformed payload")
)

// LoadError is returned when a payload cannot be turned into a graph. The
// graph is left exactly as it was before the failed load.
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load graph: %s: %v", e.Reason, e.Err)
	}
	return "load graph: " + e.Reason
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoad) true for any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

func loadErrorf(sentinel error, format string, args ...any) *LoadError {
	return &LoadError{Reason: fmt.Sprintf(format, args...), Err: sentinel}
}
