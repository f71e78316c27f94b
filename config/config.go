// Package config resolves a probe endpoint from JSON configuration files and
// environment variables. Precedence, lowest to highest: file, environment,
// caller overrides (CLI flags).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/brunojet/tlsprobe/shared"
	"github.com/brunojet/tlsprobe/transport"
)

// ErrNotFound is returned when a named configuration file exists in none of
// the search paths.
var ErrNotFound = errors.New("config file not found")

// userConfigDir is the per-user directory searched after the working
// directory.
const userConfigDir = ".tlsprobe"

// File mirrors the JSON configuration format:
//
//	{
//	  "target_host": "secure.example.com",
//	  "target_port": 443,
//	  "proxy_host": "proxy.corp.example",
//	  "proxy_port": 8080,
//	  "proxy_username": "user",
//	  "proxy_password": "secret",
//	  "timeout": 30
//	}
type File struct {
	TargetHost    string `json:"target_host"`
	TargetPort    uint16 `json:"target_port"`
	ProxyHost     string `json:"proxy_host,omitempty"`
	ProxyPort     uint16 `json:"proxy_port,omitempty"`
	ProxyUsername string `json:"proxy_username,omitempty"`
	ProxyPassword string `json:"proxy_password,omitempty"`

	// TimeoutSeconds bounds each socket operation; zero means the transport
	// default.
	TimeoutSeconds int `json:"timeout,omitempty"`
}

// Load reads a configuration file, trying the search paths in order: the
// path as given, relative to the working directory, then ~/.tlsprobe.
// A nil logger disables logging.
func Load(name string, logger *shared.Logger) (*File, error) {
	if logger == nil {
		logger = shared.NewNopLogger()
	}
	log := logger.WithComponent("config")

	path, err := resolve(name)
	if err != nil {
		log.Warn("Config file not found", zap.String("name", name))
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	log.Info("Config loaded", zap.String("path", path))
	return &f, nil
}

// resolve finds the first existing file among the search paths.
func resolve(name string) (string, error) {
	for _, path := range searchPaths(name) {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func searchPaths(name string) []string {
	paths := []string{name}
	if !filepath.IsAbs(name) {
		if cwd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(cwd, name))
		}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, userConfigDir, name))
		}
	}
	return paths
}

// ApplyEnv overrides fields from TLSPROBE_* environment variables when set.
// godotenv runs at process start, so .env entries land here too.
func (f *File) ApplyEnv() {
	if v := os.Getenv("TLSPROBE_TARGET_HOST"); v != "" {
		f.TargetHost = v
	}
	if v := shared.GetEnvIntOrDefault("TLSPROBE_TARGET_PORT", 0); v > 0 && v <= 65535 {
		f.TargetPort = uint16(v)
	}
	if v := os.Getenv("TLSPROBE_PROXY_HOST"); v != "" {
		f.ProxyHost = v
	}
	if v := shared.GetEnvIntOrDefault("TLSPROBE_PROXY_PORT", 0); v > 0 && v <= 65535 {
		f.ProxyPort = uint16(v)
	}
	if v := os.Getenv("TLSPROBE_PROXY_USERNAME"); v != "" {
		f.ProxyUsername = v
	}
	if v := os.Getenv("TLSPROBE_PROXY_PASSWORD"); v != "" {
		f.ProxyPassword = v
	}
	if v := shared.GetEnvIntOrDefault("TLSPROBE_TIMEOUT", 0); v > 0 {
		f.TimeoutSeconds = v
	}
}

// Endpoint validates the configuration and converts it into a fully resolved
// transport endpoint.
func (f *File) Endpoint() (transport.Endpoint, error) {
	if f.TargetHost == "" {
		return transport.Endpoint{}, errors.New("target_host is required")
	}
	port := f.TargetPort
	if port == 0 {
		port = 443
	}

	ep := transport.Endpoint{
		TargetHost: f.TargetHost,
		TargetPort: port,
		Timeout:    time.Duration(f.TimeoutSeconds) * time.Second,
	}

	if f.ProxyHost != "" {
		if f.ProxyPort == 0 {
			return transport.Endpoint{}, errors.New("proxy_port is required when proxy_host is set")
		}
		ep.Proxy = &transport.ProxyConfig{
			Host:     f.ProxyHost,
			Port:     f.ProxyPort,
			Username: f.ProxyUsername,
			Password: f.ProxyPassword,
		}
	} else if f.ProxyUsername != "" {
		return transport.Endpoint{}, errors.New("proxy credentials set without proxy_host")
	}

	return ep, nil
}
