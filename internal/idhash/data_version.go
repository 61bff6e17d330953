package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// ComputeDataVersion computes a deterministic data version for raw input bytes.
// Formula: SHA256(input)
// Returns hex-encoded hash (64 characters).
func ComputeDataVersion(input []byte) string {
	hash := sha256.Sum256(input)
	return hex.EncodeToString(hash[:])
}

// ComputeDataVersionReader hashes everything readable from r.
func ComputeDataVersionReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
