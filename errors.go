package arena

import (
	"fmt"
	"strings"
)

// Kind categorizes an arena error.
type Kind string

const (
	KindCapacity         Kind = "capacity"          // fixed arena is full
	KindOutOfBounds      Kind = "out_of_bounds"     // range outside a frame or array
	KindInvalidSize      Kind = "invalid_size"      // negative or oversized request
	KindInvalidRef       Kind = "invalid_ref"       // offset does not name a frame of this arena
	KindDeadFrame        Kind = "dead_frame"        // frame reference count is zero
	KindAliased          Kind = "aliased"           // source and destination are the same frame
	KindUnspecifiedRange Kind = "unspecified_range" // neither range endpoint given
	KindDestroyed        Kind = "destroyed"         // arena used after Destroy
	KindCorrupt          Kind = "corrupt"           // payload layout is inconsistent
)

// Error is the structured error type used by the arena and the layers built on it.
// Recoverable failures are returned; contract violations are raised with panic(*Error)
// and can be caught with Try.
type Error struct {
	Cause  error
	Op     string
	Kind   Kind
	Detail string
	Off    uint32
	HasOff bool
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("arena: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))

	if e.HasOff {
		fmt.Fprintf(&b, " at offset %d", e.Off)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrCapacity         = &Error{Kind: KindCapacity}
	ErrOutOfBounds      = &Error{Kind: KindOutOfBounds}
	ErrInvalidSize      = &Error{Kind: KindInvalidSize}
	ErrInvalidRef       = &Error{Kind: KindInvalidRef}
	ErrDeadFrame        = &Error{Kind: KindDeadFrame}
	ErrAliased          = &Error{Kind: KindAliased}
	ErrUnspecifiedRange = &Error{Kind: KindUnspecifiedRange}
	ErrDestroyed        = &Error{Kind: KindDestroyed}
	ErrCorrupt          = &Error{Kind: KindCorrupt}
)

// Errorf builds an *Error for op with a formatted detail.
func Errorf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

// CapacityExceeded creates the error returned when a fixed arena cannot fit a frame.
func CapacityExceeded(op string, need, capacity int) *Error {
	return &Error{
		Op:     op,
		Kind:   KindCapacity,
		Detail: fmt.Sprintf("need %d bytes, fixed capacity is %d", need, capacity),
	}
}

// OutOfBounds creates a range error. start and stop are inclusive positions.
func OutOfBounds(op string, start, stop, length int) *Error {
	return &Error{
		Op:     op,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d] outside length %d", start, stop, length),
	}
}

func refError(op string, kind Kind, off uint32, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Off:    off,
		HasOff: true,
		Detail: detail,
	}
}

// Violate raises a contract violation. Without an enclosing Try the process dies.
func Violate(err *Error) {
	panic(err)
}

// Try runs fn and converts a contract violation raised inside it into a returned error.
// It is the recovery continuation for code that would otherwise terminate: control
// returns here once, with the arena in the state it had before the failing call.
// Panics that are not *Error values propagate unchanged.
func Try(fn func()) (err error) {
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
