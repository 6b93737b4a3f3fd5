package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashQuery produces a stable cache key for a user query, insensitive to
// case and surrounding whitespace.
func HashQuery(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:16])
}
