package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/brunojet/tlsprobe/classify"
	"github.com/brunojet/tlsprobe/config"
	"github.com/brunojet/tlsprobe/diagnose"
	"github.com/brunojet/tlsprobe/shared"
)

func main() {
	var (
		host       = flag.String("host", "", "target host to probe")
		port       = flag.Uint("port", 0, "target port (default 443)")
		proxyHost  = flag.String("proxy-host", "", "HTTP proxy host")
		proxyPort  = flag.Uint("proxy-port", 0, "HTTP proxy port")
		proxyUser  = flag.String("proxy-user", "", "proxy username (Basic auth)")
		proxyPass  = flag.String("proxy-pass", "", "proxy password")
		timeout    = flag.Int("timeout", 0, "socket timeout in seconds (default 30)")
		configFile = flag.String("config", "", "JSON config file (searched in cwd and ~/.tlsprobe)")
		profile    = flag.String("profile", "standard", "probe profile: standard, minimal or legacy")
		noSNI      = flag.Bool("no-sni", false, "omit the SNI extension")
		repeat     = flag.Int("repeat", 1, "number of diagnostic runs")
		probeOnly  = flag.Bool("probe-proxy", false, "only check proxy CONNECT connectivity, no TLS probe")
		jsonOut    = flag.Bool("json", false, "print the report as JSON")
		verbose    = flag.Bool("v", false, "verbose (debug) logging")
	)
	flag.Parse()

	// .env is optional; real environment always wins.
	_ = godotenv.Load()

	logger, err := shared.NewLogger(shared.LoggerConfig{
		ServiceName: "tlsprobe",
		Development: *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := &config.File{}
	if *configFile != "" {
		loaded, err := config.Load(*configFile, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	// Flags take precedence over file and environment.
	if *host != "" {
		cfg.TargetHost = *host
	}
	if *port > 0 && *port <= 65535 {
		cfg.TargetPort = uint16(*port)
	}
	if *proxyHost != "" {
		cfg.ProxyHost = *proxyHost
	}
	if *proxyPort > 0 && *proxyPort <= 65535 {
		cfg.ProxyPort = uint16(*proxyPort)
	}
	if *proxyUser != "" {
		cfg.ProxyUsername = *proxyUser
	}
	if *proxyPass != "" {
		cfg.ProxyPassword = *proxyPass
	}
	if *timeout > 0 {
		cfg.TimeoutSeconds = *timeout
	}

	ep, err := cfg.Endpoint()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	prof, err := diagnose.ParseProfile(*profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	runner := diagnose.NewRunner(logger)
	runner.Profile = prof
	runner.DisableSNI = *noSNI

	ctx := context.Background()

	if *probeOnly {
		if ep.Proxy == nil {
			fmt.Fprintln(os.Stderr, "-probe-proxy requires a proxy configuration")
			os.Exit(2)
		}
		if err := runner.ProbeProxy(ctx, ep); err != nil {
			fmt.Printf("❌ Proxy tunnel to %s failed: %v\n", ep.TargetAddr(), err)
			os.Exit(1)
		}
		fmt.Printf("✅ Proxy tunnel to %s established\n", ep.TargetAddr())
		return
	}

	failed := false
	for i := 0; i < *repeat; i++ {
		if *repeat > 1 {
			fmt.Printf("=== Run %d/%d ===\n", i+1, *repeat)
		}
		rep := runner.Run(ctx, ep)
		if rep.Failed() {
			failed = true
		}
		if *jsonOut {
			printJSON(rep)
		} else {
			printReport(rep)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func printJSON(rep *diagnose.Report) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode report: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printReport(rep *diagnose.Report) {
	fmt.Printf("TLS diagnosis of %s:%d (run %s, profile %s, %.0fms)\n",
		rep.TargetHost, rep.TargetPort, rep.RunID, rep.Profile,
		float64(rep.Elapsed.Microseconds())/1000)

	stage := func(label string, ok bool) {
		mark := "❌"
		if ok {
			mark = "✅"
		}
		fmt.Printf("  %s %s\n", mark, label)
	}
	stage("connected", rep.Connected)
	if rep.ViaProxy {
		stage("proxy tunnel established", rep.TunnelEstablished)
	}
	stage("client hello sent", rep.HelloSent)
	stage("response received", rep.ResponseReceived)

	if rep.Err != nil {
		fmt.Printf("  error: [%s] %v\n", rep.ErrorTag, rep.Err)
	}

	if c := rep.Classification; c != nil {
		fmt.Printf("  classification: %s (%d bytes)\n", c.Kind, c.ByteCount)
		switch {
		case c.TLS != nil && c.TLS.HasAlert:
			fmt.Printf("    tls alert: %s\n", c.TLS.AlertString())
		case c.TLS != nil && c.TLS.HasHandshake:
			fmt.Printf("    tls handshake: %s (version 0x%04x)\n", c.TLS.HandshakeTypeName(), c.TLS.Version)
		case c.HTTP != nil:
			fmt.Printf("    http status: %s\n", c.HTTP.StatusLine)
			if server := c.HTTP.Header("Server"); server != "" {
				fmt.Printf("    server: %s\n", server)
			}
		case c.Kind == classify.KindBanner:
			fmt.Printf("    banner: %s\n", c.Banner)
		case c.Kind == classify.KindUnknown:
			fmt.Printf("    preview: %s\n", c.Preview)
		}
	}

	if m := rep.Fingerprint; m != nil && m.Matched() {
		fmt.Printf("  vendor: %s (keywords: %s)\n", m.Vendor, strings.Join(m.MatchedKeywords, ", "))
	}

	if len(rep.Recommendations) > 0 {
		fmt.Println("  recommendations:")
		for _, rec := range rep.Recommendations {
			fmt.Printf("    - %s\n", rec)
		}
	}

	if rep.Response != nil && rep.Response.Len() > 0 {
		fmt.Println("  raw response:")
		fmt.Print(indent(shared.Hexdump(rep.Response.Data, 16), "    "))
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}
