package transport

import (
	"errors"
	"fmt"
)

// ErrKind tags transport failures with a stable kind that survives into
// diagnostic reports. Retry policy is the caller's choice; nothing in this
// package retries.
type ErrKind int

const (
	ErrUnknown ErrKind = iota
	ErrConnectionRefused
	ErrTimedOut
	ErrNetworkUnreachable
	ErrProxyAuthRequired
	ErrProxyMethodNotAllowed
	ErrProxyTunnelRejected
	ErrWriteFailed
	ErrReadFailed
)

// String returns the stable tag for this kind.
func (k ErrKind) String() string {
	switch k {
	case ErrConnectionRefused:
		return "ConnectionRefused"
	case ErrTimedOut:
		return "TimedOut"
	case ErrNetworkUnreachable:
		return "NetworkUnreachable"
	case ErrProxyAuthRequired:
		return "ProxyAuthRequired"
	case ErrProxyMethodNotAllowed:
		return "ProxyMethodNotAllowed"
	case ErrProxyTunnelRejected:
		return "ProxyTunnelRejected"
	case ErrWriteFailed:
		return "WriteError"
	case ErrReadFailed:
		return "ReadError"
	default:
		return "Unknown"
	}
}

// Error is a tagged transport failure. Proxy-tunnel kinds carry the raw
// status line for diagnostics.
type Error struct {
	Kind       ErrKind
	StatusLine string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusLine != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.StatusLine, e.Err)
	case e.StatusLine != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.StatusLine)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrKind from any error in the chain, or ErrUnknown.
func KindOf(err error) ErrKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrUnknown
}

// IsKind reports whether err carries the given transport error kind.
func IsKind(err error, kind ErrKind) bool {
	return KindOf(err) == kind
}
