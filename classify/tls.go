package classify

import (
	"golang.org/x/crypto/cryptobyte"

	"github.com/brunojet/tlsprobe/tlswire"
)

// TLSInfo is the structured view of a response that classified as a TLS
// record. Fields past the header are filled only when enough bytes arrived.
type TLSInfo struct {
	RecordType uint8
	Version    uint16
	Length     int

	HasHandshake  bool
	HandshakeType uint8

	HasAlert         bool
	AlertLevel       uint8
	AlertDescription uint8
}

// RecordTypeName returns the RFC name of the record content type.
func (i *TLSInfo) RecordTypeName() string {
	return tlswire.RecordTypeString(i.RecordType)
}

// HandshakeTypeName returns the RFC name of the handshake message type.
func (i *TLSInfo) HandshakeTypeName() string {
	return tlswire.HandshakeTypeString(i.HandshakeType)
}

// AlertString renders a received alert as "level:description".
func (i *TLSInfo) AlertString() string {
	return tlswire.AlertLevelString(i.AlertLevel) + ":" + tlswire.AlertDescriptionString(i.AlertDescription)
}

// looksLikeTLSRecord is the byte-level predicate for step 2 of the decision
// order: a plausible record content type followed by a plausible protocol
// version (0x03 0x00..0x04).
func looksLikeTLSRecord(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	switch data[0] {
	case tlswire.RecordTypeChangeCipherSpec,
		tlswire.RecordTypeAlert,
		tlswire.RecordTypeHandshake,
		tlswire.RecordTypeApplicationData:
	default:
		return false
	}
	return data[1] == 0x03 && data[2] <= 0x04
}

// parseTLSRecord extracts the record header and, when present, the first
// handshake-type or alert bytes. Truncated records degrade to header-only
// info; this parse cannot fail.
func parseTLSRecord(data []byte) *TLSInfo {
	s := cryptobyte.String(data)

	info := &TLSInfo{}
	var vers, length uint16
	if !s.ReadUint8(&info.RecordType) || !s.ReadUint16(&vers) {
		return info
	}
	info.Version = vers

	if !s.ReadUint16(&length) {
		return info
	}
	info.Length = int(length)

	// s now holds the fragment, possibly truncated.
	switch info.RecordType {
	case tlswire.RecordTypeHandshake:
		var hsType uint8
		if s.ReadUint8(&hsType) {
			info.HasHandshake = true
			info.HandshakeType = hsType
		}
	case tlswire.RecordTypeAlert:
		var level, desc uint8
		if s.ReadUint8(&level) && s.ReadUint8(&desc) {
			info.HasAlert = true
			info.AlertLevel = level
			info.AlertDescription = desc
		}
	}

	return info
}
