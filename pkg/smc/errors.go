package smc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tells callers how to treat a failed transaction.
type ErrorKind int

const (
	// InvalidArgument means the request was rejected before the channel was used.
	InvalidArgument ErrorKind = iota + 1
	// NotFound means the controller does not know the key.
	NotFound
	// InternalError means the controller reported any other failure, or
	// returned a malformed response.
	InternalError
	// ChannelError means the channel to the controller could not be opened
	// or failed while submitting a call.
	ChannelError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case NotFound:
		return "not found"
	case InternalError:
		return "internal error"
	case ChannelError:
		return "channel error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrInternal        = &Error{Kind: InternalError}
	ErrChannel         = &Error{Kind: ChannelError}
)

// Error is the error type returned by every SMC transaction.
type Error struct {
	Kind ErrorKind
	// Op is the failed step, e.g. "get key info" or "read key".
	Op  string
	Key Key
	// Result is the controller result code, if the controller answered.
	Result Result
	Err    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("smc")
	if e.Op != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Op)
	}
	if !e.Key.IsZero() {
		sb.WriteString(" ")
		sb.WriteString(e.Key.String())
	}
	sb.WriteString(": ")
	sb.WriteString(e.Kind.String())
	if e.Result != Success {
		sb.WriteString(" (")
		sb.WriteString(e.Result.String())
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t == sentinelOf(e.Kind)
}

func sentinelOf(k ErrorKind) *Error {
	switch k {
	case InvalidArgument:
		return ErrInvalidArgument
	case NotFound:
		return ErrNotFound
	case InternalError:
		return ErrInternal
	case ChannelError:
		return ErrChannel
	}
	return nil
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// resultError converts a non-success controller result into an *Error.
func resultError(op string, key Key, r Result) *Error {
	kind := InternalError
	if r == KeyNotFound {
		kind = NotFound
	}
	return &Error{Kind: kind, Op: op, Key: key, Result: r}
}

func errDataSizeTooLarge(n uint32) error {
	return fmt.Errorf("controller reported data size %d, payload holds %d", n, MaxDataSize)
}

var errConnClosed = errors.New("connection closed")
