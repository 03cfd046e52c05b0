package hapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine and core errors.
type ErrorKind int

const (
	// KindRuntime is any engine-call failure carrying the engine's
	// status string.
	KindRuntime ErrorKind = iota

	// KindInvalidArgument is malformed input to a core operation, such
	// as a wrong-length value array.
	KindInvalidArgument

	// KindNotFound is a missing lookup. It matches KindInvalidArgument
	// under errors.Is.
	KindNotFound

	// KindIgnorable is a violation that should be logged but must not
	// abort the surrounding multi-part operation.
	KindIgnorable

	// KindProgressCancelled means the user aborted a long-running cook
	// or load.
	KindProgressCancelled

	// KindUnsupportedPlatform means the engine is unavailable on the
	// current host.
	KindUnsupportedPlatform
)

func (k ErrorKind) String() string {
	switch k {
	case KindRuntime:
		return "runtime"
	case KindInvalidArgument:
		return "invalid argument"
	case KindNotFound:
		return "not found"
	case KindIgnorable:
		return "ignorable"
	case KindProgressCancelled:
		return "progress cancelled"
	case KindUnsupportedPlatform:
		return "unsupported platform"
	default:
		return "unknown"
	}
}

// Error is the error type crossing the engine boundary.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Status string // engine status string, runtime errors only
}

func (e *Error) Error() string {
	if e.Status != "" {
		return e.Msg + ": " + e.Status
	}
	return e.Msg
}

// Is treats NotFound as a specialization of InvalidArgument so that
// errors.Is(err, &Error{Kind: KindInvalidArgument}) matches both.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return e.Kind == KindNotFound && t.Kind == KindInvalidArgument
}

// NewError returns a runtime error with the given message.
func NewError(format string, args ...any) *Error {
	return &Error{Kind: KindRuntime, Msg: fmt.Sprintf(format, args...)}
}

// InvalidArgument returns an invalid-argument error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// NotFound returns a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Ignorable returns an error that callers log and swallow at its origin.
func Ignorable(format string, args ...any) *Error {
	return &Error{Kind: KindIgnorable, Msg: fmt.Sprintf(format, args...)}
}

// ErrUnsupportedPlatform is returned by engine constructors when no native
// engine is available on the current host.
var ErrUnsupportedPlatform = &Error{
	Kind: KindUnsupportedPlatform,
	Msg:  "cook engine unavailable on this platform",
}

// ErrProgressCancelled is the terminal error for a user-aborted cook/load.
var ErrProgressCancelled = &Error{
	Kind: KindProgressCancelled,
	Msg:  "cancelled by user",
}

// IsIgnorable reports whether err is an ignorable violation.
func IsIgnorable(err error) bool {
	var he *Error
	return errors.As(err, &he) && he.Kind == KindIgnorable
}

// CheckResult converts a non-success engine result into an error at the
// call site, attaching the engine's status string. op names the failed call.
func CheckResult(eng Engine, res Result, op string) error {
	if res == ResultSuccess {
		return nil
	}
	if res == ResultUserCancelled {
		return ErrProgressCancelled
	}
	return &Error{
		Kind:   KindRuntime,
		Msg:    fmt.Sprintf("%s failed (%s)", op, res),
		Status: eng.StatusString(),
	}
}
