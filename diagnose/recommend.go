package diagnose

import (
	"fmt"

	"github.com/brunojet/tlsprobe/classify"
	"github.com/brunojet/tlsprobe/tlswire"
	"github.com/brunojet/tlsprobe/transport"
)

// Recommend derives human-actionable hints from the outcome of a run. It is
// a pure function of the report's stage flags, terminal error, classification
// and fingerprint; it never inspects live state.
func Recommend(rep *Report) []string {
	if rep.Err != nil {
		return recommendForError(rep)
	}
	if rep.Classification == nil {
		return nil
	}

	var recs []string
	recs = append(recs, recommendForClassification(rep)...)
	recs = append(recs, recommendForVendor(rep)...)
	return recs
}

func recommendForError(rep *Report) []string {
	switch transport.KindOf(rep.Err) {
	case transport.ErrProxyAuthRequired:
		return []string{
			"Verify the proxy username and password",
			"Try the DOMAIN\\user username format if the proxy authenticates against a Windows domain",
		}
	case transport.ErrProxyMethodNotAllowed:
		return []string{
			fmt.Sprintf("Confirm the proxy allows the CONNECT method to port %d", rep.TargetPort),
			"Some proxies only permit CONNECT to port 443",
		}
	case transport.ErrProxyTunnelRejected:
		return []string{
			"Check the proxy's firewall policies for the target host",
			"The proxy may be blocking TLS traffic to this destination",
		}
	case transport.ErrConnectionRefused:
		if rep.ViaProxy {
			return []string{"Verify the proxy address and port; nothing accepted the connection"}
		}
		return []string{"Verify the target address and port; nothing accepted the connection"}
	case transport.ErrTimedOut:
		if rep.HelloSent {
			return []string{
				"No response before the deadline; a firewall may be silently dropping TLS traffic",
				"Retry with a longer timeout or the minimal probe profile",
			}
		}
		return []string{"Connection attempt timed out; check network path and any packet filtering"}
	case transport.ErrNetworkUnreachable:
		return []string{"No route to the destination; check routing, VPN, and proxy requirements on this network"}
	case transport.ErrWriteFailed, transport.ErrReadFailed:
		return []string{"The connection broke mid-probe; a middlebox may be resetting TLS sessions"}
	default:
		if rep.errTag() == "InvalidSpec" {
			return []string{"The probe configuration is invalid; check hostname and cipher settings"}
		}
		return []string{"Unexpected failure; rerun with verbose logging for details"}
	}
}

func recommendForClassification(rep *Report) []string {
	c := rep.Classification
	switch c.Kind {
	case classify.KindEmpty:
		return []string{
			"Connection closed without a response; a firewall may be dropping the connection after inspecting the ClientHello",
			"Retry with the minimal or legacy probe profile",
		}
	case classify.KindTLSRecord:
		return recommendForTLS(c.TLS)
	case classify.KindHTTP:
		return recommendForHTTP(c.HTTP)
	case classify.KindBanner:
		return []string{
			fmt.Sprintf("The port answered with a non-TLS service banner (%q); verify the target host and port", c.Banner),
		}
	default:
		return []string{"Unrecognized response bytes; inspect the raw hex dump to identify the protocol"}
	}
}

func recommendForTLS(info *classify.TLSInfo) []string {
	if info == nil {
		return nil
	}
	if info.HasAlert {
		recs := []string{
			fmt.Sprintf("The server rejected the handshake with a TLS alert (%s)", info.AlertString()),
		}
		switch info.AlertDescription {
		case tlswire.AlertHandshakeFailure, tlswire.AlertProtocolVersion, tlswire.AlertInsufficientSecurity:
			recs = append(recs, "Retry with the minimal or legacy probe profile to test older parameter sets")
		case tlswire.AlertUnrecognizedName:
			recs = append(recs, "The SNI hostname is unknown to the server; verify the hostname")
		}
		return recs
	}
	if info.HasHandshake && info.HandshakeType == tlswire.TypeServerHello {
		return []string{"The target answered the handshake; the TLS path to it looks clear"}
	}
	return nil
}

func recommendForHTTP(info *classify.HTTPInfo) []string {
	recs := []string{
		"Received an HTTP response to a TLS probe; a proxy or firewall is intercepting or blocking TLS",
		"Check SSL/TLS inspection settings on the network path",
	}
	if info == nil {
		return recs
	}
	switch info.StatusCode {
	case 407:
		recs = append(recs, "HTTP 407 received: verify proxy authentication credentials")
	case 403:
		recs = append(recs, "HTTP 403 received: the destination is likely blocked by a content-filtering policy")
	}
	return recs
}

func recommendForVendor(rep *Report) []string {
	m := rep.Fingerprint
	if m == nil || !m.Matched() {
		return nil
	}
	recs := []string{
		fmt.Sprintf("Detected %s equipment on the network path", m.Vendor),
	}
	if m.SSLInspection {
		recs = append(recs, fmt.Sprintf("%s devices commonly perform SSL inspection; the inspection CA may need to be trusted, or the destination whitelisted", m.Vendor))
	}
	if m.SupportsAuth && rep.ViaProxy {
		recs = append(recs, "This proxy tier supports authentication; confirm the account has outbound TLS access")
	}
	return recs
}
