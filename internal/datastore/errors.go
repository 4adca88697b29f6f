package datastore

import (
	"errors"
	"fmt"
)

// NotFoundError reports a read whose key path is absent.
type NotFoundError struct {
	// What names the missing segment, e.g. "channel 'A'".
	What string
	// Where is the path that was searched, e.g. "elpp_signals/324".
	Where string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found in storage: %s in %s", e.What, e.Where)
}

// ConflictError reports a singleton slot receiving a value that differs from
// the one already stored.
type ConflictError struct {
	Slot   Compartment
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("storage conflict in %s: %s", e.Slot, e.Reason)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Fallback returns primary's result unless it is a not-found miss, in which
// case secondary is consulted. Any other error is returned as is.
func Fallback[T any](primary, secondary func() (T, error)) (T, error) {
	v, err := primary()
	if err == nil || !IsNotFound(err) {
		return v, err
	}
	return secondary()
}
