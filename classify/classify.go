// Package classify decides which protocol family produced an untrusted blob
// of response bytes. Classification is best-effort by design: ambiguous or
// malformed input degrades to Unknown instead of failing.
package classify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the closed set of protocol families a response can classify as.
type Kind int

const (
	KindEmpty Kind = iota
	KindTLSRecord
	KindHTTP
	KindBanner
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty_response"
	case KindTLSRecord:
		return "tls_record"
	case KindHTTP:
		return "http_response"
	case KindBanner:
		return "protocol_banner"
	case KindUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// MarshalJSON emits the kind as its stable string tag.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Result is the outcome of protocol sniffing over one raw response.
// Exactly one of TLS/HTTP/Banner is populated, matching Kind.
type Result struct {
	Kind      Kind
	LikelyTLS bool
	ByteCount int

	TLS    *TLSInfo
	HTTP   *HTTPInfo
	Banner string

	// Preview is a short printable rendering of the first bytes, populated
	// for Unknown responses.
	Preview string
}

// Classify sniffs raw response bytes into a Result. It never fails: an
// unparseable blob is itself a valid classification. The byte-level TLS check
// runs before the HTTP text check so a TLS alert whose bytes happen to look
// printable is not misread as text.
func Classify(data []byte) Result {
	if len(data) == 0 {
		return Result{Kind: KindEmpty}
	}

	if looksLikeTLSRecord(data) {
		return Result{
			Kind:      KindTLSRecord,
			LikelyTLS: true,
			ByteCount: len(data),
			TLS:       parseTLSRecord(data),
		}
	}

	if looksLikeHTTP(data) {
		return Result{
			Kind:      KindHTTP,
			ByteCount: len(data),
			HTTP:      parseHTTP(data),
		}
	}

	if banner, ok := matchBanner(data); ok {
		return Result{
			Kind:      KindBanner,
			ByteCount: len(data),
			Banner:    banner,
		}
	}

	return Result{
		Kind:      KindUnknown,
		ByteCount: len(data),
		Preview:   printablePreview(data, previewLimit),
	}
}

const previewLimit = 48

// bannerPrefixes are line-oriented greetings from well-known non-TLS
// services: SSH, FTP ready, FTP service-not-available.
var bannerPrefixes = []string{"SSH-", "220 ", "421 "}

const bannerLimit = 256

func matchBanner(data []byte) (string, bool) {
	for _, prefix := range bannerPrefixes {
		if len(data) >= len(prefix) && string(data[:len(prefix)]) == prefix {
			return bannerLine(data), true
		}
	}
	return "", false
}

// bannerLine extracts the banner text up to the first line terminator or
// bannerLimit bytes, whichever is shorter.
func bannerLine(data []byte) string {
	end := len(data)
	if end > bannerLimit {
		end = bannerLimit
	}
	line := data[:end]
	if i := strings.IndexAny(string(line), "\r\n"); i >= 0 {
		line = line[:i]
	}
	return printablePreview(line, bannerLimit)
}

// printablePreview renders bytes as text, escaping anything outside printable
// ASCII as \xNN, capped at limit input bytes.
func printablePreview(data []byte, limit int) string {
	if len(data) > limit {
		data = data[:limit]
	}
	var b strings.Builder
	for _, c := range data {
		if c >= 0x20 && c < 0x7f {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "\\x%02x", c)
		}
	}
	return b.String()
}
