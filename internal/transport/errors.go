package transport

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindTransport covers failures before a response arrived: refused
	// connections, timeouts, TLS.
	KindTransport Kind = iota
	// KindProtocol is a response with a non-2xx status.
	KindProtocol
	// KindDecode is a 2xx response whose body did not decode.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind   Kind
	Op     string // endpoint, e.g. "register"
	Status int    // HTTP status for KindProtocol
	Body   string // raw response body, if any
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindProtocol:
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Status, e.Body)
	case KindDecode:
		return fmt.Sprintf("%s: decode response: %v - body: %s", e.Op, e.Err, e.Body)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the failure class of err, or false if err did not come from
// this package.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}
