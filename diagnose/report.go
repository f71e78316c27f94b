package diagnose

import (
	"errors"
	"time"

	"github.com/brunojet/tlsprobe/classify"
	"github.com/brunojet/tlsprobe/fingerprint"
	"github.com/brunojet/tlsprobe/tlswire"
	"github.com/brunojet/tlsprobe/transport"
)

// Report is the aggregated outcome of one diagnostic run. It is assembled
// incrementally by the runner and immutable once returned; the stage booleans
// are the authoritative record of how far execution got.
type Report struct {
	RunID      string `json:"run_id"`
	TargetHost string `json:"target_host"`
	TargetPort uint16 `json:"target_port"`
	ViaProxy   bool   `json:"via_proxy"`
	Profile    string `json:"profile"`

	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`

	// Stage flags, in execution order. Connected means the TCP connection
	// to the proxy (or, without a proxy, the target) came up.
	Connected         bool `json:"connected"`
	TunnelEstablished bool `json:"tunnel_established"`
	HelloSent         bool `json:"hello_sent"`
	ResponseReceived  bool `json:"response_received"`

	HelloSize int `json:"hello_size,omitempty"`

	Response        *transport.RawResponse `json:"-"`
	ResponseSize    int                    `json:"response_size"`
	Classification  *classify.Result       `json:"classification,omitempty"`
	Fingerprint     *fingerprint.Match     `json:"fingerprint,omitempty"`
	Recommendations []string               `json:"recommendations"`

	Err          error  `json:"-"`
	ErrorTag     string `json:"error_tag,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

// Failed reports whether the run ended with a terminal error.
func (r *Report) Failed() bool { return r.Err != nil }

// errTag maps the terminal error to its stable kind tag.
func (r *Report) errTag() string {
	switch {
	case r.Err == nil:
		return ""
	case errors.Is(r.Err, tlswire.ErrInvalidSpec):
		return "InvalidSpec"
	default:
		return transport.KindOf(r.Err).String()
	}
}
