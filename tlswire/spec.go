package tlswire

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// KeyShare is a single (group, public key) entry for the key_share extension.
type KeyShare struct {
	Group uint16
	Data  []byte
}

// ClientHelloSpec declaratively describes the probe to send. It is derived
// once per run and is a read-only input to Marshal.
//
// Marshal is deterministic for a fully populated spec: Random and KeyShares
// are filled by the constructors, not by the encoder, so tests can pin them.
type ClientHelloSpec struct {
	// ServerName is the SNI hostname. Empty disables the SNI extension.
	// Non-ASCII names are converted to punycode during Marshal.
	ServerName string

	// Versions to advertise, highest preference first. When TLS 1.3 is
	// present a supported_versions extension is emitted.
	Versions []uint16

	// CipherSuites in caller-specified order. Must not be empty.
	CipherSuites []uint16

	// Random is the 32-byte client nonce.
	Random []byte

	SupportedGroups     []uint16
	ECPointFormats      []uint8
	SignatureAlgorithms []uint16
	ALPNProtocols       []string

	SessionTicket        bool
	EncryptThenMAC       bool
	ExtendedMasterSecret bool

	PSKModes  []uint8
	KeyShares []KeyShare
}

// defaultCipherSuites is the cipher list captured from an OpenSSL s_client
// ClientHello, in the exact wire order.
var defaultCipherSuites = []uint16{
	TLS_AES_256_GCM_SHA384,
	TLS_CHACHA20_POLY1305_SHA256,
	TLS_AES_128_GCM_SHA256,
	TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	TLS_DHE_RSA_WITH_AES_256_GCM_SHA384,
	TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
	TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	TLS_DHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	TLS_DHE_RSA_WITH_AES_128_GCM_SHA256,
	0xc024, // TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA384
	0xc028, // TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA384
	0x006b, // TLS_DHE_RSA_WITH_AES_256_CBC_SHA256
	0xc023, // TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256
	0xc027, // TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256
	0x0067, // TLS_DHE_RSA_WITH_AES_128_CBC_SHA256
	0xc00a, // TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA
	0xc014, // TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA
	0x0039, // TLS_DHE_RSA_WITH_AES_256_CBC_SHA
	0xc009, // TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA
	0xc013, // TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA
	0x0033, // TLS_DHE_RSA_WITH_AES_128_CBC_SHA
	TLS_RSA_WITH_AES_256_GCM_SHA384,
	TLS_RSA_WITH_AES_128_GCM_SHA256,
	0x003d, // TLS_RSA_WITH_AES_256_CBC_SHA256
	0x003c, // TLS_RSA_WITH_AES_128_CBC_SHA256
	TLS_RSA_WITH_AES_256_CBC_SHA,
	TLS_RSA_WITH_AES_128_CBC_SHA,
	TLS_EMPTY_RENEGOTIATION_INFO_SCSV,
}

var defaultSupportedGroups = []uint16{
	X25519, Secp256r1, X448, Secp521r1, Secp384r1,
	FFDHE2048, FFDHE3072, FFDHE4096, FFDHE6144, FFDHE8192,
}

var defaultSignatureAlgorithms = []uint16{
	ecdsa_secp256r1_sha256,
	ecdsa_secp384r1_sha384,
	ecdsa_secp521r1_sha512,
	ed25519,
	ed448,
	rsa_pss_pss_sha256,
	rsa_pss_pss_sha384,
	rsa_pss_pss_sha512,
	rsa_pss_rsae_sha256,
	rsa_pss_rsae_sha384,
	rsa_pss_rsae_sha512,
	rsa_pkcs1_sha256,
	rsa_pkcs1_sha384,
	rsa_pkcs1_sha512,
}

// DefaultSpec builds the full OpenSSL-like probe spec for a hostname,
// advertising TLS 1.3 and 1.2. The nonce and the X25519 key share are
// generated here so the resulting spec marshals deterministically.
func DefaultSpec(serverName string) (*ClientHelloSpec, error) {
	random, err := randomBytes(32)
	if err != nil {
		return nil, err
	}
	share, err := generateX25519Share()
	if err != nil {
		return nil, err
	}
	return &ClientHelloSpec{
		ServerName:           serverName,
		Versions:             []uint16{VersionTLS13, VersionTLS12},
		CipherSuites:         defaultCipherSuites,
		Random:               random,
		SupportedGroups:      defaultSupportedGroups,
		ECPointFormats:       []uint8{0, 1, 2},
		SignatureAlgorithms:  defaultSignatureAlgorithms,
		SessionTicket:        true,
		EncryptThenMAC:       true,
		ExtendedMasterSecret: true,
		PSKModes:             []uint8{1}, // psk_dhe_ke
		KeyShares:            []KeyShare{share},
	}, nil
}

// MinimalSpec builds a simplified TLS 1.2-only probe with basic extensions.
// Useful against middleboxes that choke on modern ClientHellos.
func MinimalSpec(serverName string) (*ClientHelloSpec, error) {
	random, err := randomBytes(32)
	if err != nil {
		return nil, err
	}
	return &ClientHelloSpec{
		ServerName: serverName,
		Versions:   []uint16{VersionTLS12},
		CipherSuites: []uint16{
			TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			TLS_RSA_WITH_AES_128_GCM_SHA256,
			TLS_RSA_WITH_AES_256_GCM_SHA384,
			TLS_RSA_WITH_AES_128_CBC_SHA,
			TLS_RSA_WITH_AES_256_CBC_SHA,
		},
		Random:          random,
		SupportedGroups: []uint16{Secp256r1, Secp384r1, Secp521r1},
		ECPointFormats:  []uint8{0},
		SignatureAlgorithms: []uint16{
			rsa_pkcs1_sha256,
			rsa_pkcs1_sha384,
			ecdsa_secp256r1_sha256,
			ecdsa_secp384r1_sha384,
		},
	}, nil
}

// LegacySpec builds a bare-bones probe resembling very old clients:
// classic RSA suites, SNI only.
func LegacySpec(serverName string) (*ClientHelloSpec, error) {
	random, err := randomBytes(32)
	if err != nil {
		return nil, err
	}
	return &ClientHelloSpec{
		ServerName: serverName,
		Versions:   []uint16{VersionTLS12},
		CipherSuites: []uint16{
			TLS_RSA_WITH_AES_128_CBC_SHA,
			TLS_RSA_WITH_AES_256_CBC_SHA,
			TLS_RSA_WITH_3DES_EDE_CBC_SHA,
		},
		Random: random,
	}, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

func generateX25519Share() (KeyShare, error) {
	key, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return KeyShare{}, fmt.Errorf("failed to generate X25519 key: %w", err)
	}
	return KeyShare{Group: X25519, Data: key.PublicKey().Bytes()}, nil
}
