// Package idhash computes deterministic record identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSignalID computes a deterministic signal_id using SHA256.
// Formula: SHA256(token_address|strategy|emitted_at)
// Returns hex-encoded hash (64 characters).
func ComputeSignalID(tokenAddress, strategy string, emittedAt int64) string {
	data := fmt.Sprintf("%s|%s|%d", tokenAddress, strategy, emittedAt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
