package rx

import "fmt"

// Kind classifies an error surfaced by the library, per the error taxonomy
// in §7: protocol errors, user errors, operator errors, and disposed-handle
// errors are distinguished so callers can branch on cause rather than on
// message text.
type Kind int

const (
	// KindUser marks an error raised by a user-supplied function (map,
	// filter, reduce, ...) that panicked or returned an error.
	KindUser Kind = iota
	// KindProtocol marks a violation of the observer grammar caught by the
	// protocol gate (next after terminal, double terminal).
	KindProtocol
	// KindOperator marks an error synthesized by an operator itself
	// (elementAt out of range, timeout, retry exhausted, ...).
	KindOperator
	// KindDisposed marks an operation attempted on an already-disposed
	// handle.
	KindDisposed
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindProtocol:
		return "protocol"
	case KindOperator:
		return "operator"
	case KindDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned or delivered by this package.
// It wraps an underlying cause (if any) so errors.Is/errors.As work against
// both the Kind and the original cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("rx: %s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("rx: %s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// ErrOutOfRange is returned by ElementAt when the source completes before
// producing the requested index.
var ErrOutOfRange = newError(KindOperator, "elementAt", fmt.Errorf("index out of range"))

// ErrEmptySequence is returned by First/Last/Min/Max/Wait when the
// source completes without ever emitting a value and no default was
// supplied.
var ErrEmptySequence = newError(KindOperator, "sequence", fmt.Errorf("sequence contains no elements"))

// ErrTimeout is delivered by the Timeout operator when no value arrives
// within the configured duration.
var ErrTimeout = newError(KindOperator, "timeout", fmt.Errorf("operation timed out"))

// errRetryExhausted builds the error RetryWithBackoff delivers once its
// backoff policy stops allowing resubscriptions; it wraps the final upstream
// error. (Plain Retry forwards the final upstream error unwrapped.)
func errRetryExhausted(last error) error {
	return newError(KindOperator, "retry", fmt.Errorf("exhausted retries: %w", last))
}

// ErrDisposed is returned by RefCountDisposable.AddRef once the root
// reference has been released, even while other references remain
// outstanding (§4.2).
var ErrDisposed = newError(KindDisposed, "disposable", fmt.Errorf("handle already disposed"))

// AggregateError is raised by CompositeDisposable when one or more inner
// disposals panic; all panics are collected, and its message shows the
// first, noting how many there were when there is more than one.
type AggregateError struct {
	Errors []error
}

func (a *AggregateError) Error() string {
	if len(a.Errors) == 1 {
		return a.Errors[0].Error()
	}
	return fmt.Sprintf("rx: %d disposal errors, first: %v", len(a.Errors), a.Errors[0])
}

func (a *AggregateError) Unwrap() []error { return a.Errors }
