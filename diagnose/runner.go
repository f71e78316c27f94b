// Package diagnose drives one TLS connectivity diagnosis end to end:
// connect, tunnel if a proxy is configured, send a raw ClientHello, then
// classify and fingerprint whatever comes back. Each run is linear and
// synchronous; a failed stage short-circuits the rest but the partial report
// is always returned.
package diagnose

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brunojet/tlsprobe/classify"
	"github.com/brunojet/tlsprobe/fingerprint"
	"github.com/brunojet/tlsprobe/shared"
	"github.com/brunojet/tlsprobe/tlswire"
	"github.com/brunojet/tlsprobe/transport"
)

// Profile selects which ClientHello shape the probe sends.
type Profile int

const (
	// ProfileStandard is the full OpenSSL-like hello with TLS 1.3.
	ProfileStandard Profile = iota
	// ProfileMinimal is a TLS 1.2-only hello with basic extensions, for
	// middleboxes that choke on modern hellos.
	ProfileMinimal
	// ProfileLegacy resembles a very old client: classic RSA suites, SNI only.
	ProfileLegacy
)

func (p Profile) String() string {
	switch p {
	case ProfileMinimal:
		return "minimal"
	case ProfileLegacy:
		return "legacy"
	default:
		return "standard"
	}
}

// ParseProfile converts a profile name into a Profile.
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "", "standard":
		return ProfileStandard, nil
	case "minimal":
		return ProfileMinimal, nil
	case "legacy":
		return ProfileLegacy, nil
	default:
		return ProfileStandard, fmt.Errorf("unknown probe profile %q", s)
	}
}

// defaultMaxResponse bounds how much of the peer's reply one run reads.
const defaultMaxResponse = 8192

// Runner executes diagnostic runs. It holds no cross-run mutable state, so
// one Runner may serve concurrent runs.
type Runner struct {
	dialer *transport.Dialer
	corpus []fingerprint.Signature
	logger *shared.Logger

	// Profile selects the hello shape; zero value is ProfileStandard.
	Profile Profile

	// DisableSNI omits the server_name extension from the probe.
	DisableSNI bool

	// MaxResponse caps the response read; zero means defaultMaxResponse.
	MaxResponse int
}

// NewRunner creates a Runner using the built-in vendor corpus. A nil logger
// disables logging.
func NewRunner(logger *shared.Logger) *Runner {
	if logger == nil {
		logger = shared.NewNopLogger()
	}
	return &Runner{
		dialer: transport.NewDialer(logger),
		corpus: fingerprint.DefaultCorpus(),
		logger: logger,
	}
}

// Run performs one full diagnosis against the endpoint. It always returns a
// report; on failure the report carries the terminal error and the stage
// booleans reflect how far the run got.
func (r *Runner) Run(ctx context.Context, ep transport.Endpoint) *Report {
	rep := &Report{
		RunID:      uuid.NewString(),
		TargetHost: ep.TargetHost,
		TargetPort: ep.TargetPort,
		ViaProxy:   ep.Proxy != nil,
		Profile:    r.Profile.String(),
		StartedAt:  time.Now(),
	}
	defer func() {
		rep.Elapsed = time.Since(rep.StartedAt)
		rep.Recommendations = Recommend(rep)
		if rep.Err != nil {
			rep.ErrorTag = rep.errTag()
			rep.ErrorMessage = rep.Err.Error()
		}
	}()

	log := r.logger.WithRun(rep.RunID)
	log.Info("Starting diagnosis",
		zap.String("target", ep.TargetAddr()),
		zap.Bool("via_proxy", rep.ViaProxy),
		zap.String("profile", rep.Profile))

	conn, err := r.dialer.Connect(ctx, ep)
	if err != nil {
		// Tunnel-stage failures mean TCP to the proxy itself succeeded.
		switch transport.KindOf(err) {
		case transport.ErrProxyAuthRequired,
			transport.ErrProxyMethodNotAllowed,
			transport.ErrProxyTunnelRejected:
			rep.Connected = true
		}
		rep.Err = err
		log.Warn("Connection stage failed", zap.Error(err))
		return rep
	}
	defer conn.Close()
	rep.Connected = true
	rep.TunnelEstablished = rep.ViaProxy

	spec, err := r.buildSpec(ep)
	if err != nil {
		rep.Err = err
		return rep
	}
	msg, err := tlswire.Marshal(spec)
	if err != nil {
		rep.Err = err
		return rep
	}

	deadline := time.Now().Add(ep.EffectiveTimeout())
	if err := conn.Send(msg, deadline); err != nil {
		rep.Err = err
		log.Warn("ClientHello send failed", zap.Error(err))
		return rep
	}
	rep.HelloSent = true
	rep.HelloSize = len(msg)
	log.Info("ClientHello sent", zap.Int("bytes", len(msg)))

	maxBytes := r.MaxResponse
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponse
	}
	resp, err := conn.Receive(maxBytes, deadline)
	if err != nil {
		rep.Err = err
		log.Warn("Response read failed", zap.Error(err))
		return rep
	}
	rep.Response = resp
	rep.ResponseSize = resp.Len()
	rep.ResponseReceived = resp.Len() > 0

	res := classify.Classify(resp.Data)
	rep.Classification = &res
	match := fingerprint.Identify(res, r.corpus)
	rep.Fingerprint = &match

	log.Info("Diagnosis complete",
		zap.String("classification", res.Kind.String()),
		zap.Int("response_bytes", resp.Len()),
		zap.String("vendor", match.Vendor))
	return rep
}

// ProbeProxy checks CONNECT-tunnel connectivity only, without sending a TLS
// probe. A nil return means the tunnel came up.
func (r *Runner) ProbeProxy(ctx context.Context, ep transport.Endpoint) error {
	conn, err := r.dialer.Connect(ctx, ep)
	if err != nil {
		return err
	}
	return conn.Close()
}

// buildSpec derives the hello spec for this run from the endpoint and the
// runner's profile.
func (r *Runner) buildSpec(ep transport.Endpoint) (*tlswire.ClientHelloSpec, error) {
	serverName := ep.TargetHost
	if r.DisableSNI {
		serverName = ""
	}

	var spec *tlswire.ClientHelloSpec
	var err error
	switch r.Profile {
	case ProfileMinimal:
		spec, err = tlswire.MinimalSpec(serverName)
	case ProfileLegacy:
		spec, err = tlswire.LegacySpec(serverName)
	default:
		spec, err = tlswire.DefaultSpec(serverName)
	}
	if err != nil {
		return nil, err
	}

	if len(ep.TLSVersions) > 0 {
		spec.Versions = ep.TLSVersions
	}
	return spec, nil
}
