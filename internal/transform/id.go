package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// RecordID derives a deterministic ID from a record's date, location and the
// full raw content. Re-running the pipeline on unchanged input yields the
// same ID, so persistence is idempotent; two raw records collide only when
// every field matches. The digest is truncated to 64 bits, wide enough that
// collisions are negligible at registry scale.
func RecordID(date, location string, raw map[string]any) string {
	var b strings.Builder
	b.WriteString(date)
	b.WriteString("-")
	b.WriteString(location)
	b.WriteString("-")
	b.WriteString(canonicalize(raw))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// canonicalize serializes a raw record with sorted keys so the hash does not
// depend on map iteration order
func canonicalize(raw map[string]any) string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, raw[k]))
	}
	return strings.Join(parts, "|")
}
