// Package checksum fingerprints input files by content.
//
// Two report files with the same fingerprint hold the same export; loading
// both duplicates every row, so the assembler warns when it sees one twice.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortLength is the number of hex digits shown in reports.
const ShortLength = 12

// Sum returns the hex SHA-256 of content.
func Sum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Short abbreviates a checksum for display.
func Short(sum string) string {
	if len(sum) <= ShortLength {
		return sum
	}
	return sum[:ShortLength]
}

// Registry remembers which path first produced each checksum.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	seen map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]string)}
}

// Add records sum for path and returns the earlier path with the same sum,
// or "" when the content is new.
func (r *Registry) Add(path, sum string) string {
	if prev, ok := r.seen[sum]; ok {
		return prev
	}
	r.seen[sum] = path
	return ""
}
