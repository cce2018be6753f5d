package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies ledger failures. Transports map each kind to one reply.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindDuplicatePending
	KindNotFoundOrUnauthorized
	KindPersistenceFailure
	KindStartupCorruption
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindDuplicatePending:
		return "duplicate pending debt"
	case KindNotFoundOrUnauthorized:
		return "not found or unauthorized"
	case KindPersistenceFailure:
		return "persistence failure"
	case KindStartupCorruption:
		return "startup corruption"
	default:
		return "unknown"
	}
}

// Error is returned by every ledger operation that fails.
type Error struct {
	Kind  Kind
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of Op and Cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Cause == nil
}

var (
	ErrInvalidArgument        = &Error{Kind: KindInvalidArgument}
	ErrDuplicatePending       = &Error{Kind: KindDuplicatePending}
	ErrNotFoundOrUnauthorized = &Error{Kind: KindNotFoundOrUnauthorized}
	ErrPersistenceFailure     = &Error{Kind: KindPersistenceFailure}
	ErrStartupCorruption      = &Error{Kind: KindStartupCorruption}
)

// KindOf extracts the Kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}
