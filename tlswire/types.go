package tlswire

// TLS version constants (following Go's crypto/tls conventions)
const (
	VersionTLS10 = 0x0301
	VersionTLS11 = 0x0302
	VersionTLS12 = 0x0303
	VersionTLS13 = 0x0304
)

// TLS record content types
const (
	RecordTypeChangeCipherSpec uint8 = 20
	RecordTypeAlert            uint8 = 21
	RecordTypeHandshake        uint8 = 22
	RecordTypeApplicationData  uint8 = 23
)

// TLS handshake message types
const (
	TypeHelloRequest       uint8 = 0
	TypeClientHello        uint8 = 1
	TypeServerHello        uint8 = 2
	TypeNewSessionTicket   uint8 = 4
	TypeEncryptedExtension uint8 = 8
	TypeCertificate        uint8 = 11
	TypeServerKeyExchange  uint8 = 12
	TypeCertificateRequest uint8 = 13
	TypeServerHelloDone    uint8 = 14
	TypeCertificateVerify  uint8 = 15
	TypeClientKeyExchange  uint8 = 16
	TypeFinished           uint8 = 20
)

// TLS 1.3 cipher suites
const (
	TLS_AES_128_GCM_SHA256       = 0x1301
	TLS_AES_256_GCM_SHA384       = 0x1302
	TLS_CHACHA20_POLY1305_SHA256 = 0x1303
)

// TLS 1.2 cipher suites (following Go's crypto/tls constants)
const (
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256         = 0xc02f
	TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256       = 0xc02b
	TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384         = 0xc030
	TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384       = 0xc02c
	TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256   = 0xcca8
	TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256 = 0xcca9
	TLS_DHE_RSA_WITH_AES_128_GCM_SHA256           = 0x009e
	TLS_DHE_RSA_WITH_AES_256_GCM_SHA384           = 0x009f
	TLS_DHE_RSA_WITH_CHACHA20_POLY1305_SHA256     = 0xccaa
	TLS_RSA_WITH_AES_128_GCM_SHA256               = 0x009c
	TLS_RSA_WITH_AES_256_GCM_SHA384               = 0x009d
	TLS_RSA_WITH_AES_128_CBC_SHA                  = 0x002f
	TLS_RSA_WITH_AES_256_CBC_SHA                  = 0x0035
	TLS_RSA_WITH_3DES_EDE_CBC_SHA                 = 0x000a
	TLS_EMPTY_RENEGOTIATION_INFO_SCSV             = 0x00ff
)

// Extension types
const (
	extensionServerName           = 0
	extensionSupportedGroups      = 10
	extensionECPointFormats       = 11
	extensionSignatureAlgorithms  = 13
	extensionEncryptThenMAC       = 22
	extensionExtendedMasterSecret = 23
	extensionALPN                 = 16
	extensionSessionTicket        = 35
	extensionSupportedVersions    = 43
	extensionPSKModes             = 45
	extensionKeyShare             = 51
)

// Supported groups
const (
	Secp256r1 = 23
	Secp384r1 = 24
	Secp521r1 = 25
	X25519    = 29
	X448      = 30
	FFDHE2048 = 0x0100
	FFDHE3072 = 0x0101
	FFDHE4096 = 0x0102
	FFDHE6144 = 0x0103
	FFDHE8192 = 0x0104
)

// Signature algorithms
const (
	ecdsa_secp256r1_sha256 = 0x0403
	ecdsa_secp384r1_sha384 = 0x0503
	ecdsa_secp521r1_sha512 = 0x0603
	ed25519                = 0x0807
	ed448                  = 0x0808
	rsa_pss_pss_sha256     = 0x0809
	rsa_pss_pss_sha384     = 0x080a
	rsa_pss_pss_sha512     = 0x080b
	rsa_pss_rsae_sha256    = 0x0804
	rsa_pss_rsae_sha384    = 0x0805
	rsa_pss_rsae_sha512    = 0x0806
	rsa_pkcs1_sha256       = 0x0401
	rsa_pkcs1_sha384       = 0x0501
	rsa_pkcs1_sha512       = 0x0601
)

// TLS alert levels
const (
	AlertLevelWarning uint8 = 1
	AlertLevelFatal   uint8 = 2
)

// TLS alert descriptions (RFC 8446, Section 6)
const (
	AlertCloseNotify            = 0
	AlertUnexpectedMessage      = 10
	AlertBadRecordMAC           = 20
	AlertDecryptionFailed       = 21
	AlertRecordOverflow         = 22
	AlertDecompressionFailure   = 30
	AlertHandshakeFailure       = 40
	AlertBadCertificate         = 42
	AlertUnsupportedCertificate = 43
	AlertCertificateRevoked     = 44
	AlertCertificateExpired     = 45
	AlertCertificateUnknown     = 46
	AlertIllegalParameter       = 47
	AlertUnknownCA              = 48
	AlertAccessDenied           = 49
	AlertDecodeError            = 50
	AlertDecryptError           = 51
	AlertProtocolVersion        = 70
	AlertInsufficientSecurity   = 71
	AlertInternalError          = 80
	AlertInappropriateFallback  = 86
	AlertUserCanceled           = 90
	AlertMissingExtension       = 109
	AlertUnsupportedExtension   = 110
	AlertUnrecognizedName       = 112
	AlertUnknownPSKIdentity     = 115
	AlertCertificateRequired    = 116
	AlertNoApplicationProtocol  = 120
)

// RecordTypeString returns a human-readable name for a TLS record content type.
func RecordTypeString(t uint8) string {
	switch t {
	case RecordTypeChangeCipherSpec:
		return "change_cipher_spec"
	case RecordTypeAlert:
		return "alert"
	case RecordTypeHandshake:
		return "handshake"
	case RecordTypeApplicationData:
		return "application_data"
	default:
		return "unknown"
	}
}

// HandshakeTypeString returns a human-readable name for a handshake message type.
func HandshakeTypeString(t uint8) string {
	switch t {
	case TypeHelloRequest:
		return "hello_request"
	case TypeClientHello:
		return "client_hello"
	case TypeServerHello:
		return "server_hello"
	case TypeNewSessionTicket:
		return "new_session_ticket"
	case TypeEncryptedExtension:
		return "encrypted_extensions"
	case TypeCertificate:
		return "certificate"
	case TypeServerKeyExchange:
		return "server_key_exchange"
	case TypeCertificateRequest:
		return "certificate_request"
	case TypeServerHelloDone:
		return "server_hello_done"
	case TypeCertificateVerify:
		return "certificate_verify"
	case TypeClientKeyExchange:
		return "client_key_exchange"
	case TypeFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// AlertLevelString returns a human-readable name for a TLS alert level.
func AlertLevelString(l uint8) string {
	switch l {
	case AlertLevelWarning:
		return "warning"
	case AlertLevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// AlertDescriptionString returns the RFC name of a TLS alert description byte.
func AlertDescriptionString(d uint8) string {
	switch d {
	case AlertCloseNotify:
		return "close_notify"
	case AlertUnexpectedMessage:
		return "unexpected_message"
	case AlertBadRecordMAC:
		return "bad_record_mac"
	case AlertDecryptionFailed:
		return "decryption_failed"
	case AlertRecordOverflow:
		return "record_overflow"
	case AlertDecompressionFailure:
		return "decompression_failure"
	case AlertHandshakeFailure:
		return "handshake_failure"
	case AlertBadCertificate:
		return "bad_certificate"
	case AlertUnsupportedCertificate:
		return "unsupported_certificate"
	case AlertCertificateRevoked:
		return "certificate_revoked"
	case AlertCertificateExpired:
		return "certificate_expired"
	case AlertCertificateUnknown:
		return "certificate_unknown"
	case AlertIllegalParameter:
		return "illegal_parameter"
	case AlertUnknownCA:
		return "unknown_ca"
	case AlertAccessDenied:
		return "access_denied"
	case AlertDecodeError:
		return "decode_error"
	case AlertDecryptError:
		return "decrypt_error"
	case AlertProtocolVersion:
		return "protocol_version"
	case AlertInsufficientSecurity:
		return "insufficient_security"
	case AlertInternalError:
		return "internal_error"
	case AlertInappropriateFallback:
		return "inappropriate_fallback"
	case AlertUserCanceled:
		return "user_canceled"
	case AlertMissingExtension:
		return "missing_extension"
	case AlertUnsupportedExtension:
		return "unsupported_extension"
	case AlertUnrecognizedName:
		return "unrecognized_name"
	case AlertUnknownPSKIdentity:
		return "unknown_psk_identity"
	case AlertCertificateRequired:
		return "certificate_required"
	case AlertNoApplicationProtocol:
		return "no_application_protocol"
	default:
		return "unknown"
	}
}
