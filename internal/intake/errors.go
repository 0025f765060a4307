package intake

import (
	"errors"
	"fmt"
)

// Error kinds returned by the store. Match them with errors.Is.
var (
	ErrInvalidID      = errors.New("invalid intake id")
	ErrInvalidValue   = errors.New("invalid field value")
	ErrIntakeNotFound = errors.New("intake not found")
	ErrMetricExists   = errors.New("metrics already exist")
	ErrMetricNotFound = errors.New("metrics not found")
)

// Error carries a client-facing message and its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
