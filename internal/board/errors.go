package board

import (
	"errors"
	"fmt"
)

var (
	ErrNoSchedule   = errors.New("class has no scheduled time")
	ErrUnknownClass = errors.New("class not found")
	// ErrSignUpPending is returned when the class already has a sign-up in flight.
	ErrSignUpPending = errors.New("sign up already in progress")
	// ErrStaleLoad is returned by a load that finished after a newer one was issued.
	ErrStaleLoad = errors.New("load superseded by a newer load")
)

type Kind int

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindSignUp:
		return "sign up"
	default:
		return "unknown"
	}
}

const (
	KindLoad Kind = iota + 1
	KindSignUp
)

// Error is a failure the user can retry. Callers branch on Kind.
type Error struct {
	Kind    Kind
	ClassID string
	Err     error
}

func (e *Error) Error() string {
	if e.ClassID != "" {
		return fmt.Sprintf("%s failed for class %s: %v", e.Kind, e.ClassID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
