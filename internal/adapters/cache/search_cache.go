package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/velez/storefront/internal/domain"
)

// SearchCache keeps search results in process memory for a fixed TTL.
// Entries are never invalidated on product writes; stale results inside
// the window are accepted.
type SearchCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	products []domain.Product
	total    int64
	expires  time.Time
}

func NewSearchCache(ttl time.Duration) *SearchCache {
	return &SearchCache{ttl: ttl, entries: map[string]entry{}}
}

// Key hashes the query text together with paging and sort so distinct
// result pages do not collide.
func Key(f domain.ProductFilter) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%d", f.Query, f.Sort, f.Page, f.PageSize)))
	return hex.EncodeToString(h[:])
}

func (c *SearchCache) Get(key string) ([]domain.Product, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		delete(c.entries, key)
		return nil, 0, false
	}
	return e.products, e.total, true
}

func (c *SearchCache) Put(key string, products []domain.Product, total int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{products: products, total: total, expires: now.Add(c.ttl)}
}
