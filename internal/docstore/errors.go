package docstore

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed store call. Kinds are checked in declaration
// order and exactly one applies per call.
type ErrorKind int

const (
	// KindInvalidTarget: the URL, path, filter or request body could not be built.
	KindInvalidTarget ErrorKind = iota + 1
	// KindTransport: no connection, timeout, or the body could not be read.
	KindTransport
	// KindStatus: the store answered with a non-2xx status.
	KindStatus
	// KindBadBody: a body was returned but it is not the expected JSON shape.
	KindBadBody
	// KindNoBody: the call succeeded without the body a read requires.
	KindNoBody
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidTarget:
		return "invalid_target"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindBadBody:
		return "bad_body"
	case KindNoBody:
		return "no_body"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ClientError is returned by every failed Client call.
type ClientError struct {
	Kind       ErrorKind
	Method     string
	Path       string
	StatusCode int // set for KindStatus
	Err        error
}

func (e *ClientError) Error() string {
	var msg string
	switch e.Kind {
	case KindInvalidTarget:
		msg = "invalid request target"
	case KindTransport:
		msg = "request failed"
	case KindStatus:
		msg = fmt.Sprintf("server returned status %d", e.StatusCode)
	case KindBadBody:
		msg = "unexpected response body"
	case KindNoBody:
		msg = "no data received"
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, msg)
}

func (e *ClientError) Unwrap() error { return e.Err }

// IsKind reports whether err is a *ClientError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Kind == kind
}
