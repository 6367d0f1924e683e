package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a stage-prefixed cache key from the hash of its components.
// The prefix ("snapshot", "artifact") survives in clear text so backends can
// separate stages; the full 256-bit hash makes collisions between distinct
// solve or render inputs a non-concern.
func hashKey(stage string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", stage, hex.EncodeToString(sum[:]))
}

// Hash computes the SHA-256 content hash of data as a 64-character hex
// string. Serialized snapshots are hashed with this to derive artifact cache
// keys and the API's snapshot identity.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortHash abbreviates a content hash for log lines and display. Twelve hex
// characters are plenty to tell frames apart by eye.
func ShortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
