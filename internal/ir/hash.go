package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainRevision is the domain prefix for revision checksums.
// The version suffix allows a future algorithm change.
const DomainRevision = "revline/revision/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Checksum computes the content checksum of a revision.
// It covers identity, parent, message and, for SQL payloads, both statement
// lists. Other payload kinds contribute only their Go type name.
func Checksum(rev *Revision) (string, error) {
	obj := map[string]any{
		"revision":      rev.ID,
		"down_revision": rev.DownRevision,
		"message":       rev.Message,
	}
	switch p := rev.Payload.(type) {
	case SQLPayload:
		obj["upgrade"] = nonNil(p.Up)
		obj["downgrade"] = nonNil(p.Down)
	case *SQLPayload:
		obj["upgrade"] = nonNil(p.Up)
		obj["downgrade"] = nonNil(p.Down)
	case nil:
	default:
		obj["payload_type"] = fmt.Sprintf("%T", p)
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", rev.ID, err)
	}
	return hashWithDomain(DomainRevision, canonical), nil
}

// MustChecksum is like Checksum but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustChecksum(rev *Revision) string {
	sum, err := Checksum(rev)
	if err != nil {
		panic(err)
	}
	return sum
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
