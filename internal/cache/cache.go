package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores raw provider payloads so batch runs do not refetch or
// re-read unchanged dumps
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a provider URL or file path
func Key(source string) string {
	hash := sha256.Sum256([]byte(source))
	return "unify:v1:" + hex.EncodeToString(hash[:])
}
