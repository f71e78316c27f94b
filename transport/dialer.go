package transport

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/brunojet/tlsprobe/shared"
)

// connectUserAgent identifies the probe in CONNECT requests.
const connectUserAgent = "TLS-Raw-Client/1.0"

// maxTunnelResponse caps how many header bytes a proxy may send in reply to
// CONNECT before we give up on it.
const maxTunnelResponse = 16 * 1024

// Dialer opens probe connections, either directly to the target or through
// an HTTP CONNECT tunnel when the endpoint configures a proxy.
type Dialer struct {
	logger *zap.Logger
}

// NewDialer creates a Dialer. A nil logger disables logging.
func NewDialer(logger *shared.Logger) *Dialer {
	if logger == nil {
		logger = shared.NewNopLogger()
	}
	return &Dialer{logger: logger.WithComponent("transport")}
}

// Connect opens a byte-stream connection per the endpoint configuration and,
// when a proxy is set, negotiates the CONNECT tunnel. On any failure the
// underlying socket is closed before returning.
func (d *Dialer) Connect(ctx context.Context, ep Endpoint) (*Conn, error) {
	timeout := ep.EffectiveTimeout()
	addr := ep.DialAddr()

	d.logger.Info("Dialing",
		zap.String("addr", addr),
		zap.Bool("via_proxy", ep.Proxy != nil),
		zap.Duration("timeout", timeout))

	nd := net.Dialer{Timeout: timeout}
	netConn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, mapDialError(err)
	}

	conn := &Conn{
		conn:   netConn,
		br:     bufio.NewReader(netConn),
		logger: d.logger,
	}

	if ep.Proxy != nil {
		deadline := time.Now().Add(timeout)
		if err := conn.establishTunnel(ep, deadline); err != nil {
			conn.Close()
			return nil, err
		}
		d.logger.Info("Proxy tunnel established", zap.String("target", ep.TargetAddr()))
	}

	return conn, nil
}

// establishTunnel sends the CONNECT request and parses the proxy's reply.
// Any non-2xx reply is a tagged failure carrying the raw status line.
func (c *Conn) establishTunnel(ep Endpoint, deadline time.Time) error {
	if err := c.conn.SetDeadline(deadline); err != nil {
		return &Error{Kind: ErrWriteFailed, Err: err}
	}

	target := ep.TargetAddr()
	var req strings.Builder
	fmt.Fprintf(&req, "CONNECT %s HTTP/1.1\r\n", target)
	fmt.Fprintf(&req, "Host: %s\r\n", target)
	fmt.Fprintf(&req, "User-Agent: %s\r\n", connectUserAgent)
	if ep.Proxy.HasAuth() {
		credentials := ep.Proxy.Username + ":" + ep.Proxy.Password
		encoded := base64.StdEncoding.EncodeToString([]byte(credentials))
		fmt.Fprintf(&req, "Proxy-Authorization: Basic %s\r\n", encoded)
	}
	req.WriteString("\r\n")

	if _, err := c.conn.Write([]byte(req.String())); err != nil {
		return wrapIOError(ErrWriteFailed, err)
	}

	statusLine, err := c.readTunnelResponse()
	if err != nil {
		return err
	}
	c.logger.Debug("CONNECT response", zap.String("status_line", statusLine))

	code := parseStatusCode(statusLine)
	switch {
	case code >= 200 && code < 300:
		// Tunnel up; everything from here is opaque pass-through.
		if err := c.conn.SetDeadline(time.Time{}); err != nil {
			return &Error{Kind: ErrReadFailed, Err: err}
		}
		return nil
	case code == 407:
		return &Error{Kind: ErrProxyAuthRequired, StatusLine: statusLine}
	case code == 405:
		return &Error{Kind: ErrProxyMethodNotAllowed, StatusLine: statusLine}
	default:
		return &Error{Kind: ErrProxyTunnelRejected, StatusLine: statusLine}
	}
}

// readTunnelResponse consumes the proxy's status line and headers up to the
// blank-line terminator, returning the status line.
func (c *Conn) readTunnelResponse() (string, error) {
	var statusLine string
	total := 0
	for {
		line, err := c.br.ReadString('\n')
		if err != nil {
			return "", wrapIOError(ErrReadFailed, err)
		}
		total += len(line)
		if total > maxTunnelResponse {
			return "", &Error{Kind: ErrProxyTunnelRejected, StatusLine: "oversized CONNECT response"}
		}

		line = strings.TrimRight(line, "\r\n")
		if statusLine == "" {
			statusLine = line
			continue
		}
		if line == "" {
			return statusLine, nil
		}
	}
}

// parseStatusCode extracts the status code from an HTTP/1.x status line,
// returning 0 for anything unparsable.
func parseStatusCode(line string) int {
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "HTTP/") {
		return 0
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil || code < 100 || code > 599 {
		return 0
	}
	return code
}

// mapDialError converts dial failures into tagged transport errors.
func mapDialError(err error) error {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: ErrTimedOut, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: ErrTimedOut, Err: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &Error{Kind: ErrConnectionRefused, Err: err}
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return &Error{Kind: ErrNetworkUnreachable, Err: err}
	default:
		return &Error{Kind: ErrUnknown, Err: err}
	}
}

// wrapIOError tags a mid-transfer socket failure, preferring the timeout
// kind when the deadline expired.
func wrapIOError(kind ErrKind, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: ErrTimedOut, Err: err}
	}
	return &Error{Kind: kind, Err: err}
}
