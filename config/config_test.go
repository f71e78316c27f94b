package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brunojet/tlsprobe/shared"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadAndResolveEndpoint(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "proxy_basic.json", `{
		"target_host": "secure.example.com",
		"target_port": 443,
		"proxy_host": "proxy.corp.example",
		"proxy_port": 8080,
		"proxy_username": "user",
		"proxy_password": "secret",
		"timeout": 15
	}`)

	f, err := Load(path, shared.NewNopLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ep, err := f.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint failed: %v", err)
	}
	if ep.TargetAddr() != "secure.example.com:443" {
		t.Errorf("TargetAddr = %q", ep.TargetAddr())
	}
	if ep.Proxy == nil || ep.Proxy.Addr() != "proxy.corp.example:8080" {
		t.Fatalf("Proxy = %+v", ep.Proxy)
	}
	if !ep.Proxy.HasAuth() {
		t.Error("Proxy auth not carried over")
	}
	if ep.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", ep.Timeout)
	}
	if ep.DialAddr() != "proxy.corp.example:8080" {
		t.Errorf("DialAddr = %q, want the proxy", ep.DialAddr())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), shared.NewNopLogger())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "broken.json", `{"target_host": `)
	if _, err := Load(path, shared.NewNopLogger()); err == nil {
		t.Fatal("Load succeeded on malformed JSON")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TLSPROBE_TARGET_HOST", "env.example.com")
	t.Setenv("TLSPROBE_PROXY_PORT", "3128")
	t.Setenv("TLSPROBE_TIMEOUT", "45")

	f := &File{
		TargetHost: "file.example.com",
		TargetPort: 8443,
		ProxyHost:  "proxy.corp.example",
		ProxyPort:  8080,
	}
	f.ApplyEnv()

	if f.TargetHost != "env.example.com" {
		t.Errorf("TargetHost = %q, want env override", f.TargetHost)
	}
	if f.TargetPort != 8443 {
		t.Errorf("TargetPort = %d, want file value kept", f.TargetPort)
	}
	if f.ProxyPort != 3128 {
		t.Errorf("ProxyPort = %d, want env override", f.ProxyPort)
	}
	if f.TimeoutSeconds != 45 {
		t.Errorf("TimeoutSeconds = %d, want env override", f.TimeoutSeconds)
	}
}

func TestEndpointValidation(t *testing.T) {
	testCases := []struct {
		name    string
		file    File
		wantErr bool
	}{
		{"Missing target host", File{TargetPort: 443}, true},
		{"Proxy without port", File{TargetHost: "h", ProxyHost: "p"}, true},
		{"Credentials without proxy", File{TargetHost: "h", ProxyUsername: "u"}, true},
		{"Direct minimal", File{TargetHost: "h"}, false},
		{"Full proxy", File{TargetHost: "h", ProxyHost: "p", ProxyPort: 8080}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.file.Endpoint()
			if (err != nil) != tc.wantErr {
				t.Errorf("Endpoint() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestEndpointDefaultPort(t *testing.T) {
	f := File{TargetHost: "h"}
	ep, err := f.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint failed: %v", err)
	}
	if ep.TargetPort != 443 {
		t.Errorf("TargetPort = %d, want default 443", ep.TargetPort)
	}
	if ep.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 (transport default)", ep.Timeout)
	}
}
