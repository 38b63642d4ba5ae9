package runtime

import (
	"github.com/pkg/errors"
)

// ErrorKind classifies runtime failures. Every error the runtime returns
// wraps one of these sentinels, so callers can branch with errors.Is while
// still seeing the full context chain.
type ErrorKind struct {
	name string
}

func (k *ErrorKind) Error() string { return k.name }

var (
	ErrArityMismatch         = &ErrorKind{name: "ArityMismatch"}
	ErrCaptureExpired        = &ErrorKind{name: "CaptureExpired"}
	ErrOutOfMemory           = &ErrorKind{name: "OutOfMemory"}
	ErrResourceLimitExceeded = &ErrorKind{name: "ResourceLimitExceeded"}
	ErrUnknownFunction       = &ErrorKind{name: "UnknownFunction"}
	ErrUseAfterFree          = &ErrorKind{name: "UseAfterFree"}
)

func arityMismatch(name string, expected, got int) error {
	return errors.Wrapf(ErrArityMismatch, "%s expects %d arguments, got %d", name, expected, got)
}

func captureExpired(name string) error {
	return errors.Wrapf(ErrCaptureExpired, "capture %q refers to a dropped value", name)
}

func outOfMemory(requested, budget int) error {
	return errors.Wrapf(ErrOutOfMemory, "allocation of %d bytes exceeds remaining budget of %d", requested, budget)
}

func callDepthExceeded(depth int) error {
	return errors.Wrapf(ErrResourceLimitExceeded, "call depth limit %d reached", depth)
}

func collectionIterationsExceeded(cap int) error {
	return errors.Wrapf(ErrResourceLimitExceeded, "cycle collection exceeded %d iterations", cap)
}

func unknownFunction(id FunctionID) error {
	return errors.Wrapf(ErrUnknownFunction, "no function registered under id %d", id)
}
