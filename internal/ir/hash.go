package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainLog    = "kumihimo/log/v1"
	DomainLayout = "kumihimo/layout/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// LogDigest computes the content address of a move log for a pattern.
// The same pattern id and moves always produce the same digest.
func LogDigest(patternID string, log MoveLog) (string, error) {
	movesJSON, err := MarshalCanonical(log)
	if err != nil {
		return "", fmt.Errorf("LogDigest: failed to marshal: %w", err)
	}
	idJSON, err := MarshalCanonical(patternID)
	if err != nil {
		return "", fmt.Errorf("LogDigest: failed to marshal: %w", err)
	}

	data := make([]byte, 0, len(idJSON)+len(movesJSON)+1)
	data = append(data, idJSON...)
	data = append(data, 0x00)
	data = append(data, movesJSON...)
	return hashWithDomain(DomainLog, data), nil
}

// LayoutDigest computes the content address of a layout.
// Strands are hashed in slot order so the digest ignores setup order.
func LayoutDigest(l Layout) (string, error) {
	canonical, err := MarshalCanonical(l.ByPosition())
	if err != nil {
		return "", fmt.Errorf("LayoutDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainLayout, canonical), nil
}

// MustLogDigest is like LogDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustLogDigest(patternID string, log MoveLog) string {
	d, err := LogDigest(patternID, log)
	if err != nil {
		panic(err)
	}
	return d
}
