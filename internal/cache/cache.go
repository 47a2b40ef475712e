package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching search results.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SearchKey generates a cache key for an evidence-search query so that
// re-checking the same claim within the TTL does not hit the backend again.
func SearchKey(query string, assets []string) string {
	sum := sha256.Sum256([]byte(query + "|" + strings.Join(assets, ",")))
	return "confirmd:search:v1:" + hex.EncodeToString(sum[:])
}
