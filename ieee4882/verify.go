package ieee4882

import (
	"crypto/sha256"
	"time"
)

// Stamp returns the current UTC instant and the SHA-256 digest of data.
// The digest is deterministic for a given data; the timestamp is
// informational only and carries no equality semantics.
func Stamp(data []byte) (time.Time, [sha256.Size]byte) {
	return time.Now().UTC(), sha256.Sum256(data)
}
