package tlswire

import (
	"errors"
	"fmt"

	"golang.org/x/net/idna"
)

// WireMessage is a serialized TLS record ready for transmission.
type WireMessage []byte

// ErrInvalidSpec marks a malformed ClientHelloSpec. It signals a caller bug
// and is never retryable.
var ErrInvalidSpec = errors.New("invalid ClientHello spec")

// Marshal serializes the spec into a single TLS record containing exactly one
// ClientHello handshake message.
//
// Wire layout (all integers big-endian):
//
//	record:    type=0x16, version=0x0301 (historic wire convention), uint16 length
//	handshake: type=0x01, uint24 length
//	body:      legacy version 0x0303, 32-byte random, empty session id,
//	           cipher suites, null compression, extensions
func Marshal(spec *ClientHelloSpec) (WireMessage, error) {
	if len(spec.CipherSuites) == 0 {
		return nil, fmt.Errorf("%w: empty cipher suite list", ErrInvalidSpec)
	}
	if len(spec.Versions) == 0 {
		return nil, fmt.Errorf("%w: no TLS versions to advertise", ErrInvalidSpec)
	}
	if len(spec.Random) != 32 {
		return nil, fmt.Errorf("%w: random nonce must be 32 bytes, got %d", ErrInvalidSpec, len(spec.Random))
	}

	serverName, err := wireHostname(spec.ServerName)
	if err != nil {
		return nil, err
	}

	var b []byte
	// Handshake header: message type plus a placeholder for the uint24 length.
	b = append(b, TypeClientHello, 0, 0, 0)

	// Legacy client version: pinned to TLS 1.2 for middlebox compatibility.
	b = append(b, 0x03, 0x03)
	// Client random
	b = append(b, spec.Random...)
	// Session ID (empty)
	b = append(b, 0)
	// Cipher suites
	suitesLen := len(spec.CipherSuites) * 2
	b = append(b, byte(suitesLen>>8), byte(suitesLen))
	for _, suite := range spec.CipherSuites {
		b = append(b, byte(suite>>8), byte(suite))
	}
	// Compression methods: null only
	b = append(b, 1, 0)

	extensions := marshalExtensions(spec, serverName)
	b = append(b, byte(len(extensions)>>8), byte(len(extensions)))
	b = append(b, extensions...)

	putUint24(b[1:4], uint32(len(b)-4))

	record := []byte{RecordTypeHandshake, 0x03, 0x01, byte(len(b) >> 8), byte(len(b))}
	record = append(record, b...)
	return record, nil
}

// marshalExtensions emits extensions in the order captured from the OpenSSL
// reference dump. Every field of ClientHelloSpec has an encoder here; the
// spec type is closed, so an unencodable extension cannot occur.
func marshalExtensions(spec *ClientHelloSpec, serverName string) []byte {
	var ext []byte

	// server_name (0)
	if len(serverName) > 0 {
		ext = appendExtHeader(ext, extensionServerName, len(serverName)+5)
		listLen := len(serverName) + 3
		ext = append(ext, byte(listLen>>8), byte(listLen))
		ext = append(ext, 0) // name type: host_name
		ext = append(ext, byte(len(serverName)>>8), byte(len(serverName)))
		ext = append(ext, serverName...)
	}

	// ec_point_formats (11)
	if len(spec.ECPointFormats) > 0 {
		ext = appendExtHeader(ext, extensionECPointFormats, len(spec.ECPointFormats)+1)
		ext = append(ext, byte(len(spec.ECPointFormats)))
		ext = append(ext, spec.ECPointFormats...)
	}

	// supported_groups (10)
	if len(spec.SupportedGroups) > 0 {
		groupsLen := len(spec.SupportedGroups) * 2
		ext = appendExtHeader(ext, extensionSupportedGroups, groupsLen+2)
		ext = append(ext, byte(groupsLen>>8), byte(groupsLen))
		for _, g := range spec.SupportedGroups {
			ext = append(ext, byte(g>>8), byte(g))
		}
	}

	// session_ticket (35), empty
	if spec.SessionTicket {
		ext = appendExtHeader(ext, extensionSessionTicket, 0)
	}

	// encrypt_then_mac (22), empty
	if spec.EncryptThenMAC {
		ext = appendExtHeader(ext, extensionEncryptThenMAC, 0)
	}

	// extended_master_secret (23), empty
	if spec.ExtendedMasterSecret {
		ext = appendExtHeader(ext, extensionExtendedMasterSecret, 0)
	}

	// signature_algorithms (13)
	if len(spec.SignatureAlgorithms) > 0 {
		algsLen := len(spec.SignatureAlgorithms) * 2
		ext = appendExtHeader(ext, extensionSignatureAlgorithms, algsLen+2)
		ext = append(ext, byte(algsLen>>8), byte(algsLen))
		for _, a := range spec.SignatureAlgorithms {
			ext = append(ext, byte(a>>8), byte(a))
		}
	}

	// application_layer_protocol_negotiation (16)
	if len(spec.ALPNProtocols) > 0 {
		listLen := 0
		for _, p := range spec.ALPNProtocols {
			listLen += len(p) + 1
		}
		ext = appendExtHeader(ext, extensionALPN, listLen+2)
		ext = append(ext, byte(listLen>>8), byte(listLen))
		for _, p := range spec.ALPNProtocols {
			ext = append(ext, byte(len(p)))
			ext = append(ext, p...)
		}
	}

	// supported_versions (43), required whenever TLS 1.3 is advertised
	if advertisesTLS13(spec.Versions) {
		versionsLen := len(spec.Versions) * 2
		ext = appendExtHeader(ext, extensionSupportedVersions, versionsLen+1)
		ext = append(ext, byte(versionsLen))
		for _, v := range spec.Versions {
			ext = append(ext, byte(v>>8), byte(v))
		}
	}

	// psk_key_exchange_modes (45)
	if len(spec.PSKModes) > 0 {
		ext = appendExtHeader(ext, extensionPSKModes, len(spec.PSKModes)+1)
		ext = append(ext, byte(len(spec.PSKModes)))
		ext = append(ext, spec.PSKModes...)
	}

	// key_share (51)
	if len(spec.KeyShares) > 0 {
		sharesLen := 0
		for _, ks := range spec.KeyShares {
			sharesLen += 4 + len(ks.Data)
		}
		ext = appendExtHeader(ext, extensionKeyShare, sharesLen+2)
		ext = append(ext, byte(sharesLen>>8), byte(sharesLen))
		for _, ks := range spec.KeyShares {
			ext = append(ext, byte(ks.Group>>8), byte(ks.Group))
			ext = append(ext, byte(len(ks.Data)>>8), byte(len(ks.Data)))
			ext = append(ext, ks.Data...)
		}
	}

	return ext
}

func appendExtHeader(b []byte, extType uint16, length int) []byte {
	b = append(b, byte(extType>>8), byte(extType))
	b = append(b, byte(length>>8), byte(length))
	return b
}

func advertisesTLS13(versions []uint16) bool {
	for _, v := range versions {
		if v == VersionTLS13 {
			return true
		}
	}
	return false
}

// wireHostname returns the hostname as it must appear on the wire.
// Non-ASCII names go through punycode; names that survive neither check are
// an InvalidSpec.
func wireHostname(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if isPrintableASCII(name) {
		return name, nil
	}
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return "", fmt.Errorf("%w: hostname %q is not ASCII and punycode conversion failed: %v", ErrInvalidSpec, name, err)
	}
	return ascii, nil
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] <= 0x20 || s[i] >= 0x7f {
			return false
		}
	}
	return true
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
