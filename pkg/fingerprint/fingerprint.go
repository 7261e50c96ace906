// Package fingerprint computes stable content fingerprints used as cache keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Bytes returns the hex-encoded SHA-256 digest of data.
func Bytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
