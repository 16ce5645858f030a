// Package core provides the tiered memory engine and its configuration.
package core

import "errors"

// Predefined errors for common failure scenarios.
var (
	// ErrCapacityExceeded indicates that the long-term tier is full and no
	// record could be evicted to make room.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrUnsupportedKind indicates a memory kind outside the configured set.
	ErrUnsupportedKind = errors.New("unsupported memory kind")

	// ErrNotFound indicates that a requested memory was not found.
	ErrNotFound = errors.New("memory not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// MemoryError records the engine operation that failed. Match the cause
// with errors.Is against the sentinels above.
//
//	_, err := engine.Store(core.KindEpisodic, "x", 0.9)
//	// err.Error() == "tiermem: Store: capacity exceeded: long_term at 1000/1000"
type MemoryError struct {
	Op  string
	Err error
}

func (e *MemoryError) Error() string {
	return "tiermem: " + e.Op + ": " + e.Err.Error()
}

func (e *MemoryError) Unwrap() error {
	return e.Err
}

// NewMemoryError wraps err with op. A nil err yields nil.
func NewMemoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &MemoryError{Op: op, Err: err}
}
