package transport

import (
	"net"
	"strconv"
	"time"
)

// DefaultTimeout bounds every socket operation when the endpoint does not
// set its own.
const DefaultTimeout = 30 * time.Second

// ProxyConfig describes an HTTP CONNECT proxy, optionally with Basic-auth
// credentials.
type ProxyConfig struct {
	Host     string
	Port     uint16
	Username string
	Password string
}

// HasAuth reports whether credentials were configured.
func (p *ProxyConfig) HasAuth() bool {
	return p != nil && p.Username != ""
}

// Addr returns the proxy dial address.
func (p *ProxyConfig) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(int(p.Port)))
}

// Endpoint is the fully resolved target plus optional proxy configuration
// for one diagnostic run. It is immutable once constructed and owned by a
// single run.
type Endpoint struct {
	TargetHost string
	TargetPort uint16

	// Proxy, when non-nil, routes the connection through an HTTP CONNECT
	// tunnel. Composition, not subclassing: the tunnel is a step applied
	// after dialing.
	Proxy *ProxyConfig

	// Timeout bounds each blocking socket operation. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// TLSVersions to advertise in the probe, highest preference first.
	// Empty means the probe builder's default.
	TLSVersions []uint16
}

// TargetAddr returns the target dial address.
func (e Endpoint) TargetAddr() string {
	return net.JoinHostPort(e.TargetHost, strconv.Itoa(int(e.TargetPort)))
}

// DialAddr returns the address the TCP connection is opened to: the proxy
// when one is configured, otherwise the target.
func (e Endpoint) DialAddr() string {
	if e.Proxy != nil {
		return e.Proxy.Addr()
	}
	return e.TargetAddr()
}

// EffectiveTimeout returns the per-operation timeout for this endpoint.
func (e Endpoint) EffectiveTimeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return DefaultTimeout
}
