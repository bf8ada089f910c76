package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// ComputeChecksum computes the hex-encoded SHA-256 of data.
func ComputeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ComputeChecksumReader computes the hex-encoded SHA-256 of everything read
// from r.
func ComputeChecksumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ValidateChecksum compares a computed checksum against the stored one.
func ValidateChecksum(computed, stored string) error {
	if computed != stored {
		return fmt.Errorf("%w: computed %s, stored %s", ErrChecksumMismatch, computed, stored)
	}
	return nil
}
