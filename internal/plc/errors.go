package plc

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies an adapter failure.
type ErrorKind int

const (
	// KindConnection covers unreachable hosts and rejected credentials.
	KindConnection ErrorKind = iota
	// KindProtocol covers malformed or truncated responses.
	KindProtocol
	// KindTimeout covers deadline expiry on connect or read.
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindProtocol:
		return "protocol"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an adapter failure with its kind and the line it
// occurred on.
type ClassifiedError struct {
	Kind   ErrorKind
	LineID string
	Op     string
	Err    error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s error on line %s during %s: %v", e.Kind, e.LineID, e.Op, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// classify wraps err with the right kind, preferring timeout detection over
// the caller's default kind.
func classify(kind ErrorKind, lineID, op string, err error) error {
	if isTimeout(err) {
		kind = KindTimeout
	}
	return &ClassifiedError{Kind: kind, LineID: lineID, Op: op, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// KindOf returns the kind of a classified error, or KindConnection and false
// for anything else.
func KindOf(err error) (ErrorKind, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return KindConnection, false
}
