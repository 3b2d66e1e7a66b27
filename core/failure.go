// Package core provides the primitives every array package builds on.
//
// The central piece is the failure callback. Containers and guards never
// recover from an unrecoverable condition (allocation failure, size
// mismatch, misuse of growth-only resize). They describe it and hand it to
// the installed Handler, which must not return. The default handler panics
// with the *Error, so the failure unwinds through ordinary call frames and
// every deferred guard on the way restores the state it protects. The
// evaluator, or any other collaborator, converts the failure back into an
// error at its own boundary with Catch:
//
//	err := core.Catch(func() {
//		b := sizedbuf.New[types.DDouble](n)
//		...
//	})
//
// The package also carries the shared zap logger and the overflow-checked
// size arithmetic used by the heap allocator.
package core

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Kind categorizes a failure.
type Kind string

const (
	KindAllocation   Kind = "allocation"    // heap store could not be obtained
	KindSizeMismatch Kind = "size_mismatch" // operands must have equal size
	KindResize       Kind = "resize"        // growth-only resize asked to shrink
	KindInvalidInput Kind = "invalid_input" // negative sizes, bad tunables
)

// Error is the value raised through the failure callback.
type Error struct {
	Kind   Kind
	Op     string // operation that failed, e.g. "sizedbuf.Resize"
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteString("] ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Detail)
	return b.String()
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrAllocation   = &Error{Kind: KindAllocation}
	ErrSizeMismatch = &Error{Kind: KindSizeMismatch}
	ErrResize       = &Error{Kind: KindResize}
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
)

// Handler receives every failure. It must not return normally.
type Handler func(err *Error)

// PanicHandler is the default Handler. It unwinds the stack with err as the
// panic value.
func PanicHandler(err *Error) {
	panic(err)
}

var handler Handler = PanicHandler

// SetHandler installs h as the failure callback and returns the previous
// one. A nil h restores PanicHandler. Install handlers at startup; the
// callback is not synchronized.
//
// A failure raised inside a parallel.For chunk calls the handler on that
// worker's goroutine, possibly from several workers at once, so h must be
// safe for concurrent use.
func SetHandler(h Handler) Handler {
	prev := handler
	if h == nil {
		h = PanicHandler
	}
	handler = h
	return prev
}

// Raise builds an *Error and passes it to the installed handler. Raise never
// returns: should a handler return anyway, Raise panics with the error.
func Raise(kind Kind, op string, format string, args ...any) {
	err := &Error{Kind: kind, Op: op}
	if len(args) > 0 {
		err.Detail = fmt.Sprintf(format, args...)
	} else {
		err.Detail = format
	}
	RaiseError(err)
}

// RaiseError passes an already built error to the handler.
func RaiseError(err *Error) {
	Logger().Debug("failure raised",
		zap.String("kind", string(err.Kind)),
		zap.String("op", err.Op),
		zap.String("detail", err.Detail))
	handler(err)
	panic(err)
}

// Fail raises an invalid_input failure carrying msg verbatim.
func Fail(msg string) {
	RaiseError(&Error{Kind: KindInvalidInput, Detail: msg})
}

// Catch runs fn and converts a raised *Error back into an ordinary error.
// Panics that are not failures propagate unchanged.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	fn()
	return nil
}
