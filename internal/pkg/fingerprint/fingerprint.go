// Package fingerprint builds deterministic cache keys from request content.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex sha256 of the JSON encoding of v. Callers are
// responsible for normalizing v (sorted slices, lowercased strings) so that
// semantically equal inputs produce equal keys.
func Hash(v any) string {
	b, _ := json.Marshal(v)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Key prefixes a hash with a cache namespace: "selection:" + hex.
func Key(prefix string, v any) string {
	return prefix + Hash(v)
}
