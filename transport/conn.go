package transport

import (
	"bufio"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/brunojet/tlsprobe/tlswire"
)

// RawResponse holds unparsed bytes received from the peer. It is produced
// once per Receive and never mutated afterwards.
type RawResponse struct {
	Data    []byte
	Elapsed time.Duration
}

// Len returns the received byte count.
func (r *RawResponse) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Data)
}

// Conn is an open probe connection: either a direct stream to the target or
// an established CONNECT tunnel.
type Conn struct {
	conn   net.Conn
	br     *bufio.Reader
	logger *zap.Logger
}

// Send writes a wire message in full before the deadline.
func (c *Conn) Send(msg tlswire.WireMessage, deadline time.Time) error {
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return &Error{Kind: ErrWriteFailed, Err: err}
	}
	if _, err := c.conn.Write(msg); err != nil {
		return wrapIOError(ErrWriteFailed, err)
	}
	c.logger.Debug("Wire message sent", zap.Int("bytes", len(msg)))
	return nil
}

// Receive performs a single bounded read, returning whatever the peer sent
// before the deadline. A clean close with no data yields an empty
// RawResponse, not an error: "the peer hung up" is a valid diagnostic
// observation.
func (c *Conn) Receive(maxBytes int, deadline time.Time) (*RawResponse, error) {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, &Error{Kind: ErrReadFailed, Err: err}
	}

	start := time.Now()
	buf := make([]byte, maxBytes)
	n, err := c.br.Read(buf)
	elapsed := time.Since(start)

	if n > 0 {
		c.logger.Debug("Response received", zap.Int("bytes", n), zap.Duration("elapsed", elapsed))
		return &RawResponse{Data: buf[:n], Elapsed: elapsed}, nil
	}
	if err == io.EOF {
		c.logger.Debug("Connection closed without response", zap.Duration("elapsed", elapsed))
		return &RawResponse{Data: []byte{}, Elapsed: elapsed}, nil
	}
	return nil, wrapIOError(ErrReadFailed, err)
}

// RemoteAddr returns the peer address of the underlying socket.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close releases the underlying socket. Safe to call on every exit path.
func (c *Conn) Close() error {
	return c.conn.Close()
}
