// Package envelope provides the uniform success/error wrapper returned by
// every repository and aggregation operation.
package envelope

import (
	"encoding/json"
	"fmt"

	"storefront/internal/apperr"
)

// Envelope is either {success:true, data} or {success:false, error}.
type Envelope[T any] struct {
	Success bool
	Data    T
	Error   string
	Kind    apperr.Kind
	Err     error
}

// OK wraps a successful payload.
func OK[T any](v T) Envelope[T] {
	return Envelope[T]{Success: true, Data: v}
}

// Fail converts err into a failed envelope.
func Fail[T any](err error) Envelope[T] {
	if err == nil {
		err = &apperr.Error{Kind: apperr.KindInternal, Msg: "unknown error"}
	}
	return Envelope[T]{
		Error: err.Error(),
		Kind:  apperr.KindOf(err),
		Err:   err,
	}
}

// From builds an envelope from a (value, error) pair.
func From[T any](v T, err error) Envelope[T] {
	if err != nil {
		return Fail[T](err)
	}
	return OK(v)
}

// Guard runs fn and converts a panic into an internal failure so nothing
// escapes the layer boundary.
func Guard[T any](fn func() Envelope[T]) (out Envelope[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Fail[T](&apperr.Error{Kind: apperr.KindInternal, Msg: "internal error", Err: fmt.Errorf("panic: %v", r)})
		}
	}()
	return fn()
}

// Map transforms the payload of a successful envelope.
func Map[T, U any](e Envelope[T], fn func(T) U) Envelope[U] {
	if !e.Success {
		return Envelope[U]{Error: e.Error, Kind: e.Kind, Err: e.Err}
	}
	return OK(fn(e.Data))
}

// Unwrap returns the payload or the error carried by the envelope.
func (e Envelope[T]) Unwrap() (T, error) {
	if e.Success {
		return e.Data, nil
	}
	var zero T
	if e.Err != nil {
		return zero, e.Err
	}
	return zero, &apperr.Error{Kind: e.Kind, Msg: e.Error}
}

type wire struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// MarshalJSON keeps "data": null on a successful empty read.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	if e.Success {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Data    T    `json:"data"`
		}{true, e.Data})
	}
	return json.Marshal(wire{Error: e.Error, Code: string(e.Kind)})
}
