// Package errors defines the typed error taxonomy shared by the issue
// credential state machines. Every failure that the machines surface to a
// caller carries one of these kinds so callers can switch on Kind instead
// of matching error strings.
package errors

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure.
type Kind int

const (
	// KindUnknown is the zero value; never constructed directly.
	KindUnknown Kind = iota
	// KindInvalidState marks an operation not legal in the interaction's
	// current state (e.g. a query only meaningful after Finished).
	KindInvalidState
	// KindInvalidJSON marks a payload that could not be parsed or was
	// missing required fields.
	KindInvalidJSON
	// KindInvalidAttributesStructure marks attribute JSON that parsed
	// fine but lacked a name/value pair.
	KindInvalidAttributesStructure
	// KindInvalidRevocationDetails marks a revoke call made without a
	// complete RevocationInfo.
	KindInvalidRevocationDetails
	// KindNotReady marks a revoke call made before the Issuer reached
	// Finished; the Holder's GetTailsHash also returns it, since the
	// tails hash is not tracked.
	KindNotReady
	// KindThreadIDMismatch marks an inbound message whose thread
	// reference disagrees with the interaction's thread id.
	KindThreadIDMismatch
	// KindBackend wraps an error returned by the injected AnoncredsBackend.
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindInvalidState:
		return "InvalidState"
	case KindInvalidJSON:
		return "InvalidJson"
	case KindInvalidAttributesStructure:
		return "InvalidAttributesStructure"
	case KindInvalidRevocationDetails:
		return "InvalidRevocationDetails"
	case KindNotReady:
		return "NotReady"
	case KindThreadIDMismatch:
		return "ThreadIdMismatch"
	case KindBackend:
		return "Backend"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type every package in this module returns
// for domain failures. It wraps an optional cause so err2's annotation
// chain keeps working with errors.Is/errors.As from the standard library.
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

// New builds an *Error of the given kind with a formatted message.
func New(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind, carrying cause as the
// underlying error for inspection or logging.
func Wrap(k Kind, cause error, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err, or any error it wraps, is an *Error of kind k.
// err2's annotation chain wraps an *Error behind fmt.Errorf's %w, so this
// walks Unwrap rather than asserting the top-level type.
func Is(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == k
}
