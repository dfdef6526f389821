// Package ioerr defines the stable error taxonomy shared by every fskit
// component. Platform-specific syscall failures are translated into one
// of these kinds so callers never need to branch on errno or a GOOS
// build tag.
package ioerr

import (
	"errors"
	"fmt"
)

// Kind is one of the distinct error categories a caller can match on with
// Is. It intentionally does not distinguish between the many underlying
// platform error codes that map onto it.
type Kind int

const (
	// Unknown is the zero value; New and Wrap never produce it.
	Unknown Kind = iota
	NotFound
	AlreadyExists
	PermissionDenied
	IsDirectory
	NotDirectory
	NoSpace
	InvalidArgument
	InvalidHandle
	ScopeMismatch
	Shutdown
	Cancelled
	IO
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case AlreadyExists:
		return "already-exists"
	case PermissionDenied:
		return "permission-denied"
	case IsDirectory:
		return "is-directory"
	case NotDirectory:
		return "not-directory"
	case NoSpace:
		return "no-space"
	case InvalidArgument:
		return "invalid-argument"
	case InvalidHandle:
		return "invalid-handle"
	case ScopeMismatch:
		return "scope-mismatch"
	case Shutdown:
		return "shutdown"
	case Cancelled:
		return "cancelled"
	case IO:
		return "io"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is the concrete error type produced by New and Wrap. It carries a
// Kind so errors.Is can match on category, and an optional wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a kind sentinel or another *Error of the
// same Kind. It is what lets ioerr.Is(err, ioerr.NotFound) match through
// errors.Is without the caller constructing an *Error to compare against.
func (e *Error) Is(target error) bool {
	k, ok := asKindSentinel(target)
	return ok && k == e.Kind
}

// kindSentinel wraps a Kind as an error so the package-level Is can pass
// it to errors.Is as the target.
type kindSentinel Kind

func (k kindSentinel) Error() string { return Kind(k).String() }

func asKindSentinel(err error) (Kind, bool) {
	if ks, ok := err.(kindSentinel); ok {
		return Kind(ks), true
	}
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return Unknown, false
}

// New constructs an error of the given kind with a message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an error of the given kind that wraps cause, preserving
// it for errors.Unwrap/errors.As.
func Wrap(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Is reports whether err (or anything it wraps) is of the given kind.
// Usage: ioerr.Is(err, ioerr.NotFound).
func Is(err error, kind Kind) bool {
	return errors.Is(err, kindSentinel(kind))
}

// KindOf returns the Kind carried by err, if any, and whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return Unknown, false
}
