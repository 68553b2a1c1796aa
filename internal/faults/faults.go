// SPDX-License-Identifier: AGPL-3.0-or-later

// Package faults classifies the errors intellidb can hit so the command layer
// can report them uniformly.
package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindRequest       Kind = "request"
	KindIO            Kind = "io"
	KindValidation    Kind = "validation"
)

// E is a classified error. Op names the operation that failed.
type E struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *E) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind) + " error"
	}
}

// Unwrap enables errors.Is/As to reach the cause.
func (e *E) Unwrap() error { return e.Err }

// New creates a classified error without a cause.
func New(kind Kind, op, msg string) error {
	return &E{Kind: kind, Op: op, Msg: msg}
}

// Newf is a formatted variant of New.
func Newf(kind Kind, op, format string, args ...any) error {
	return &E{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error. A nil err yields nil.
func Wrap(kind Kind, op, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &E{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain,
// or the empty Kind when err carries none.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
