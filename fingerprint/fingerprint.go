// Package fingerprint matches classified responses against a static corpus
// of proxy/firewall vendor signatures.
package fingerprint

import (
	"strings"

	"github.com/brunojet/tlsprobe/classify"
)

// Signature is one entry in the vendor corpus.
type Signature struct {
	Vendor        string
	Keywords      []string // matched as lower-case substrings
	TypicalPorts  []uint16
	SupportsAuth  bool // vendor's proxy tier supports authentication
	SSLInspection bool // vendor is known to intercept TLS
}

// Match is the result of matching one response against the corpus.
// A zero Vendor means no corpus entry scored.
type Match struct {
	Vendor          string
	MatchedKeywords []string
	SupportsAuth    bool
	SSLInspection   bool
}

// Matched reports whether any corpus entry scored.
func (m Match) Matched() bool { return m.Vendor != "" }

// defaultCorpus is loaded once and never mutated. Declaration order is the
// deterministic tie-breaker.
var defaultCorpus = []Signature{
	{Vendor: "fortinet", Keywords: []string{"fortigate", "fortinet", "fortiguard"}, TypicalPorts: []uint16{443, 8010}, SSLInspection: true},
	{Vendor: "paloalto", Keywords: []string{"palo alto", "pan-os", "paloalto"}, TypicalPorts: []uint16{443}, SSLInspection: true},
	{Vendor: "checkpoint", Keywords: []string{"check point", "checkpoint"}, TypicalPorts: []uint16{443}, SSLInspection: true},
	{Vendor: "cisco", Keywords: []string{"cisco", "ironport", "umbrella"}, TypicalPorts: []uint16{80, 443}, SupportsAuth: true, SSLInspection: true},
	{Vendor: "sonicwall", Keywords: []string{"sonicwall"}, TypicalPorts: []uint16{443}, SSLInspection: true},
	{Vendor: "squid", Keywords: []string{"squid"}, TypicalPorts: []uint16{3128, 8080}, SupportsAuth: true},
	{Vendor: "bluecoat", Keywords: []string{"bluecoat", "blue coat", "proxysg"}, TypicalPorts: []uint16{8080}, SupportsAuth: true, SSLInspection: true},
	{Vendor: "zscaler", Keywords: []string{"zscaler"}, TypicalPorts: []uint16{80, 443, 9400}, SupportsAuth: true, SSLInspection: true},
	{Vendor: "forcepoint", Keywords: []string{"websense", "forcepoint"}, TypicalPorts: []uint16{8080}, SupportsAuth: true, SSLInspection: true},
	{Vendor: "mcafee", Keywords: []string{"mcafee", "smartfilter"}, TypicalPorts: []uint16{9090}, SupportsAuth: true},
	{Vendor: "barracuda", Keywords: []string{"barracuda"}, TypicalPorts: []uint16{443, 8000}},
	{Vendor: "watchguard", Keywords: []string{"watchguard"}, TypicalPorts: []uint16{443}},
	{Vendor: "juniper", Keywords: []string{"juniper", "netscreen"}, TypicalPorts: []uint16{443}},
	{Vendor: "f5", Keywords: []string{"big-ip", "bigip", "f5 networks"}, TypicalPorts: []uint16{443}},
}

// DefaultCorpus returns the built-in vendor signature corpus.
func DefaultCorpus() []Signature { return defaultCorpus }

// Identify scores a classified response against the corpus. Only HTTP and
// banner classifications carry fingerprintable text; everything else yields
// no match. Ties break by corpus declaration order.
func Identify(res classify.Result, corpus []Signature) Match {
	haystack := haystackFor(res)
	if haystack == "" {
		return Match{}
	}

	best := Match{}
	bestScore := 0
	for _, sig := range corpus {
		var hits []string
		for _, kw := range sig.Keywords {
			if strings.Contains(haystack, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) > bestScore {
			bestScore = len(hits)
			best = Match{
				Vendor:          sig.Vendor,
				MatchedKeywords: hits,
				SupportsAuth:    sig.SupportsAuth,
				SSLInspection:   sig.SSLInspection,
			}
		}
	}
	return best
}

// haystackFor builds the lower-cased text a signature is matched against:
// the Server header (when present) concatenated with the body preview, or
// the banner line.
func haystackFor(res classify.Result) string {
	switch res.Kind {
	case classify.KindHTTP:
		if res.HTTP == nil {
			return ""
		}
		return strings.ToLower(res.HTTP.Header("Server") + " " + res.HTTP.BodyPreview)
	case classify.KindBanner:
		return strings.ToLower(res.Banner)
	default:
		return ""
	}
}
