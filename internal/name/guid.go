package name

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Domain prefixes for digest separation.
// Version suffix enables future algorithm migration.
const (
	domainName   = "rdfsql/name/v1"
	domainDigest = "rdfsql/digest/v1"
)

// GUIDPrefix starts every GUID so it is a legal SPARQL variable name.
const GUIDPrefix = "v_"

// GUID returns a deterministic identifier for the fully segmented name.
//
// Segments are NFC normalized at construction and tagged with their
// presence, so a set empty segment and an absent segment hash differently.
// The result is stable across processes.
func (n ItemName) GUID() string {
	h := sha256.New()
	h.Write([]byte(domainName))
	h.Write([]byte{0x00})
	var buf []byte
	for i, seg := range segmentOrder {
		if !n.set.Has(seg) {
			h.Write([]byte{0x00})
			continue
		}
		v := n.parts[i]
		buf = binary.AppendUvarint(buf[:0], uint64(len(v)))
		h.Write([]byte{0x01})
		h.Write(buf)
		h.Write([]byte(v))
	}
	return GUIDPrefix + hex.EncodeToString(h.Sum(nil)[:16])
}

// Digest returns a short deterministic hex digest of the given parts.
// Used to derive stable labels for values that have no name, such as
// computed projections.
func Digest(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(domainDigest))
	var buf []byte
	for _, p := range parts {
		h.Write([]byte{0x00})
		buf = binary.AppendUvarint(buf[:0], uint64(len(p)))
		h.Write(buf)
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
