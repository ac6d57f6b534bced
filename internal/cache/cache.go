// Package cache stores parsed Source payloads so repeated merges of
// unchanged exports skip re-reading and re-parsing the spreadsheet.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/pmezentsev/mergebook/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from the raw file bytes, so any edit to an
// export invalidates its cached parse.
func Key(data []byte) string {
	hash := sha256.Sum256(data)
	return "mergebook:v1:" + hex.EncodeToString(hash[:])
}

// GetSource retrieves and decodes a cached Source
func GetSource(c Cache, key string) (*model.Source, bool) {
	data, found := c.Get(key)
	if !found {
		return nil, false
	}
	var src model.Source
	if err := json.Unmarshal(data, &src); err != nil {
		// A corrupt entry is treated as a miss and evicted.
		_ = c.Delete(key)
		return nil, false
	}
	return &src, true
}

// SetSource encodes and stores a parsed Source
func SetSource(c Cache, key string, src *model.Source, ttl time.Duration) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}
