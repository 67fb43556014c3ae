// Package apperr defines the error taxonomy shared by the data-access layer.
//
// Every failure that leaves a repository is one of the kinds below. Only
// KindBackend participates in the retry-then-fallback policy; all other kinds
// are deterministic outcomes of the input and are returned as-is.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindAuth         Kind = "auth"
	KindForbidden    Kind = "forbidden"
	KindRateLimit    Kind = "rate_limit"
	KindBackend      Kind = "backend"
	KindPartialOrder Kind = "partial_order"
	KindInternal     Kind = "internal"
)

// Error is the concrete error type carried through the layer.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed or missing input.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing record.
func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Msg: what + " not found"}
}

// Conflict reports a uniqueness violation. The message is always "duplicate";
// the violated field is kept in the wrapped error for logs.
func Conflict(field string) error {
	return &Error{Kind: KindConflict, Msg: "duplicate", Err: fmt.Errorf("duplicate %s", field)}
}

// Auth reports a missing caller identity.
func Auth(msg string) error {
	return &Error{Kind: KindAuth, Msg: msg}
}

// Forbidden reports a caller without the required role.
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// RateLimited reports that the caller exhausted the current window.
func RateLimited() error {
	return &Error{Kind: KindRateLimit, Msg: "rate limit exceeded"}
}

// Backend wraps a failure of the storage backend itself (network, timeout,
// misconfiguration).
func Backend(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindBackend, Msg: "backend unavailable", Err: err}
}

// PartialOrder reports a compound order write that failed after the order
// header was persisted.
func PartialOrder(orderID string, err error) error {
	return &Error{Kind: KindPartialOrder, Msg: fmt.Sprintf("partial order %s", orderID), Err: err}
}

// KindOf returns the kind of err. Context cancellation and deadline errors
// count as backend failures; anything unclassified is internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindBackend
	}
	return KindInternal
}

// Is reports whether err is of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Retryable reports whether err may be retried or degraded to the fallback
// store.
func Retryable(err error) bool {
	return Is(err, KindBackend)
}
