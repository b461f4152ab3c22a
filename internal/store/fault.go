package store

import (
	"errors"
	"fmt"
)

// ErrRowNotFound reports that no row matched the lookup key. It is always
// terminal: retrying a lookup for a row that does not exist cannot help.
var ErrRowNotFound = errors.New("row not found")

// FaultClass separates remote failures into the two classes the retry
// executor understands.
type FaultClass string

const (
	// ClassTransient marks network-level failures and server-side remote
	// failures worth retrying.
	ClassTransient FaultClass = "transient"
	// ClassTerminal marks everything else: not-found, malformed input,
	// auth and configuration failures.
	ClassTerminal FaultClass = "terminal"
)

// Fault is a classified failure raised by a remote operation.
type Fault struct {
	Class FaultClass
	Op    string
	Err   error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s fault: %v", f.Op, f.Class, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// NewTransient wraps err as a retryable fault.
func NewTransient(op string, err error) error {
	return &Fault{Class: ClassTransient, Op: op, Err: err}
}

// NewTerminal wraps err as a non-retryable fault.
func NewTerminal(op string, err error) error {
	return &Fault{Class: ClassTerminal, Op: op, Err: err}
}

// Classify returns the fault class for err. Unclassified errors are terminal;
// only failures explicitly marked transient by an adapter are retried.
func Classify(err error) FaultClass {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault.Class
	}
	return ClassTerminal
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	return Classify(err) == ClassTransient
}
