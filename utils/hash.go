package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashIP computes the one-way sha256 hex digest of a client IP.
// Only this digest is ever persisted; the raw IP is discarded.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}
