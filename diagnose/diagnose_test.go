package diagnose

import (
	"bufio"
	"context"
	"encoding/hex"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/brunojet/tlsprobe/classify"
	"github.com/brunojet/tlsprobe/shared"
	"github.com/brunojet/tlsprobe/transport"
)

const serverHelloHex = "160303003502000031030364ce8c09e0a0e8e4d77d1b51e9b2b8c1a1f8e2d3c4b5a69788b1a2c3d4e5f600130000090000000014000000"

func serverHelloSample(t *testing.T) []byte {
	t.Helper()
	data, err := hex.DecodeString(serverHelloHex)
	if err != nil {
		t.Fatalf("Bad sample hex: %v", err)
	}
	return data
}

// startFakeTarget accepts one connection, reads a ClientHello-sized chunk and
// answers with the given bytes.
func startFakeTarget(t *testing.T, response []byte) (string, uint16) {
	t.Helper()
	return startFakeServer(t, func(conn net.Conn) {
		buf := make([]byte, 4096)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		conn.Write(response)
	})
}

// startFakeProxy accepts one connection, consumes the CONNECT request,
// answers with tunnelReply and, for 2xx replies, keeps serving the tunneled
// bytes via target.
func startFakeProxy(t *testing.T, tunnelReply string, target func(conn net.Conn)) (string, uint16) {
	t.Helper()
	return startFakeServer(t, func(conn net.Conn) {
		br := bufio.NewReader(conn)
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			if line == "\r\n" {
				break
			}
		}
		conn.Write([]byte(tunnelReply))
		if target != nil {
			target(conn)
		}
	})
}

func startFakeServer(t *testing.T, handler func(conn net.Conn)) (string, uint16) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("Failed to split listener addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Bad listener port: %v", err)
	}
	return host, uint16(port)
}

func containsSubstring(recs []string, substr string) bool {
	for _, r := range recs {
		if strings.Contains(strings.ToLower(r), substr) {
			return true
		}
	}
	return false
}

func TestRunThroughProxyServerHello(t *testing.T) {
	host, port := startFakeProxy(t, "HTTP/1.1 200 Connection established\r\n\r\n", func(conn net.Conn) {
		buf := make([]byte, 4096)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		conn.Write(serverHelloSample(t))
	})

	r := NewRunner(shared.NewNopLogger())
	rep := r.Run(context.Background(), transport.Endpoint{
		TargetHost: "secure.example.com",
		TargetPort: 443,
		Proxy:      &transport.ProxyConfig{Host: host, Port: port},
		Timeout:    5 * time.Second,
	})

	if rep.Failed() {
		t.Fatalf("Run failed: %v", rep.Err)
	}
	if !rep.Connected || !rep.TunnelEstablished || !rep.HelloSent || !rep.ResponseReceived {
		t.Errorf("Stage flags = %v/%v/%v/%v, want all true",
			rep.Connected, rep.TunnelEstablished, rep.HelloSent, rep.ResponseReceived)
	}
	if rep.Classification == nil || rep.Classification.Kind != classify.KindTLSRecord {
		t.Fatalf("Classification = %+v, want TLS record", rep.Classification)
	}
	tls := rep.Classification.TLS
	if tls == nil || !tls.HasHandshake || tls.HandshakeTypeName() != "server_hello" {
		t.Errorf("TLS info = %+v, want ServerHello", tls)
	}
	if rep.RunID == "" {
		t.Error("Report has no run id")
	}
}

func TestRunProxyAuthRequired(t *testing.T) {
	host, port := startFakeProxy(t, "HTTP/1.1 407 Proxy Authentication Required\r\n\r\n", nil)

	r := NewRunner(shared.NewNopLogger())
	rep := r.Run(context.Background(), transport.Endpoint{
		TargetHost: "secure.example.com",
		TargetPort: 443,
		Proxy:      &transport.ProxyConfig{Host: host, Port: port},
		Timeout:    5 * time.Second,
	})

	if !rep.Failed() {
		t.Fatal("Run succeeded, want tunnel failure")
	}
	if !rep.Connected {
		t.Error("Connected = false; TCP to the proxy did succeed")
	}
	if rep.TunnelEstablished {
		t.Error("TunnelEstablished = true, want false")
	}
	if rep.HelloSent {
		t.Error("HelloSent = true, want false")
	}
	if got := transport.KindOf(rep.Err); got != transport.ErrProxyAuthRequired {
		t.Errorf("Error kind = %v, want ProxyAuthRequired", got)
	}
	if rep.ErrorTag != "ProxyAuthRequired" {
		t.Errorf("ErrorTag = %q, want ProxyAuthRequired", rep.ErrorTag)
	}
	if !containsSubstring(rep.Recommendations, "credential") && !containsSubstring(rep.Recommendations, "password") {
		t.Errorf("Recommendations lack an authentication hint: %v", rep.Recommendations)
	}
}

func TestRunDirectFirewallBlockPage(t *testing.T) {
	body := "HTTP/1.1 403 Forbidden\r\nServer: FortiGate-100D\r\nContent-Type: text/html\r\n\r\nblocked by FortiGuard web filtering"
	host, port := startFakeTarget(t, []byte(body))

	r := NewRunner(shared.NewNopLogger())
	rep := r.Run(context.Background(), transport.Endpoint{
		TargetHost: host,
		TargetPort: port,
		Timeout:    5 * time.Second,
	})

	if rep.Failed() {
		t.Fatalf("Run failed: %v", rep.Err)
	}
	if rep.ViaProxy {
		t.Error("ViaProxy = true on a direct run")
	}
	if rep.Classification == nil || rep.Classification.Kind != classify.KindHTTP {
		t.Fatalf("Classification = %+v, want HTTP", rep.Classification)
	}
	if rep.Classification.HTTP.StatusCode != 403 {
		t.Errorf("Status = %d, want 403", rep.Classification.HTTP.StatusCode)
	}
	if rep.Fingerprint == nil || rep.Fingerprint.Vendor != "fortinet" {
		t.Fatalf("Fingerprint = %+v, want fortinet", rep.Fingerprint)
	}
	if !containsSubstring(rep.Recommendations, "fortinet") {
		t.Errorf("Recommendations never name the vendor: %v", rep.Recommendations)
	}
	if !containsSubstring(rep.Recommendations, "content-filtering") && !containsSubstring(rep.Recommendations, "ssl") {
		t.Errorf("Recommendations lack a filtering/inspection hint: %v", rep.Recommendations)
	}
}

func TestRunEmptyResponse(t *testing.T) {
	host, port := startFakeServer(t, func(conn net.Conn) {
		buf := make([]byte, 4096)
		conn.Read(buf)
		// Close without answering: silent drop after the hello.
	})

	r := NewRunner(shared.NewNopLogger())
	rep := r.Run(context.Background(), transport.Endpoint{
		TargetHost: host,
		TargetPort: port,
		Timeout:    5 * time.Second,
	})

	if rep.Failed() {
		t.Fatalf("Run failed: %v", rep.Err)
	}
	if !rep.HelloSent {
		t.Error("HelloSent = false, want true")
	}
	if rep.ResponseReceived {
		t.Error("ResponseReceived = true for an empty response")
	}
	if rep.Classification == nil || rep.Classification.Kind != classify.KindEmpty {
		t.Fatalf("Classification = %+v, want empty", rep.Classification)
	}
	if !containsSubstring(rep.Recommendations, "firewall") {
		t.Errorf("Recommendations lack a firewall hint: %v", rep.Recommendations)
	}
}

func TestRunConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)

	r := NewRunner(shared.NewNopLogger())
	rep := r.Run(context.Background(), transport.Endpoint{
		TargetHost: host,
		TargetPort: uint16(port),
		Timeout:    2 * time.Second,
	})

	if !rep.Failed() {
		t.Fatal("Run succeeded against a closed port")
	}
	if rep.Connected {
		t.Error("Connected = true, want false")
	}
	if rep.ErrorTag != "ConnectionRefused" {
		t.Errorf("ErrorTag = %q, want ConnectionRefused", rep.ErrorTag)
	}
	if len(rep.Recommendations) == 0 {
		t.Error("No recommendations on a refused connection")
	}
}

func TestProbeProxy(t *testing.T) {
	host, port := startFakeProxy(t, "HTTP/1.1 200 Connection established\r\n\r\n", nil)

	r := NewRunner(shared.NewNopLogger())
	ep := transport.Endpoint{
		TargetHost: "secure.example.com",
		TargetPort: 443,
		Proxy:      &transport.ProxyConfig{Host: host, Port: port},
		Timeout:    5 * time.Second,
	}
	if err := r.ProbeProxy(context.Background(), ep); err != nil {
		t.Fatalf("ProbeProxy failed: %v", err)
	}

	host, port = startFakeProxy(t, "HTTP/1.1 502 Bad Gateway\r\n\r\n", nil)
	ep.Proxy = &transport.ProxyConfig{Host: host, Port: port}
	err := r.ProbeProxy(context.Background(), ep)
	if err == nil {
		t.Fatal("ProbeProxy succeeded against a rejecting proxy")
	}
	if got := transport.KindOf(err); got != transport.ErrProxyTunnelRejected {
		t.Errorf("Error kind = %v, want ProxyTunnelRejected", got)
	}
}

func TestBuildSpecProfiles(t *testing.T) {
	ep := transport.Endpoint{TargetHost: "example.com", TargetPort: 443}

	r := NewRunner(shared.NewNopLogger())
	spec, err := r.buildSpec(ep)
	if err != nil {
		t.Fatalf("buildSpec failed: %v", err)
	}
	if spec.ServerName != "example.com" {
		t.Errorf("ServerName = %q, want example.com", spec.ServerName)
	}
	if len(spec.KeyShares) == 0 {
		t.Error("Standard profile has no key share")
	}

	r.Profile = ProfileLegacy
	spec, err = r.buildSpec(ep)
	if err != nil {
		t.Fatalf("buildSpec failed: %v", err)
	}
	if len(spec.CipherSuites) != 3 {
		t.Errorf("Legacy profile has %d ciphers, want 3", len(spec.CipherSuites))
	}

	r.Profile = ProfileStandard
	r.DisableSNI = true
	spec, err = r.buildSpec(ep)
	if err != nil {
		t.Fatalf("buildSpec failed: %v", err)
	}
	if spec.ServerName != "" {
		t.Errorf("ServerName = %q with SNI disabled", spec.ServerName)
	}

	r.DisableSNI = false
	versions := []uint16{0x0303}
	ep.TLSVersions = versions
	spec, err = r.buildSpec(ep)
	if err != nil {
		t.Fatalf("buildSpec failed: %v", err)
	}
	if len(spec.Versions) != 1 || spec.Versions[0] != 0x0303 {
		t.Errorf("Versions = %v, want endpoint override %v", spec.Versions, versions)
	}
}

func TestParseProfile(t *testing.T) {
	testCases := []struct {
		in      string
		want    Profile
		wantErr bool
	}{
		{"", ProfileStandard, false},
		{"standard", ProfileStandard, false},
		{"minimal", ProfileMinimal, false},
		{"legacy", ProfileLegacy, false},
		{"paranoid", ProfileStandard, true},
	}
	for _, tc := range testCases {
		got, err := ParseProfile(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseProfile(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseProfile(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRecommendIsPure(t *testing.T) {
	res := classify.Classify([]byte("HTTP/1.1 407 Proxy Authentication Required\r\n\r\n"))
	rep := &Report{Classification: &res, HelloSent: true}

	first := Recommend(rep)
	second := Recommend(rep)
	if len(first) == 0 {
		t.Fatal("No recommendations for a 407 page")
	}
	if len(first) != len(second) {
		t.Fatalf("Recommend not deterministic: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Recommendation %d differs: %q vs %q", i, first[i], second[i])
		}
	}
	if !containsSubstring(first, "authentication") && !containsSubstring(first, "credential") {
		t.Errorf("407 recommendations lack an authentication hint: %v", first)
	}
}
