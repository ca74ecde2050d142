package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

type (
	// postCache keeps the encoded body of recently read posts.
	// Every forget bumps the generation of the post, bodies read under an
	// older generation are never stored.
	postCache struct {
		entries *bigcache.BigCache

		mu          sync.Mutex
		generations map[string]uint64
	}
)

func newPostCache(ctx context.Context, ttl time.Duration) (*postCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 4096
	// megabytes
	cfg.HardMaxCacheSize = 32
	cfg.Verbose = false
	entries, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create post cache, cause %w", err)
	}
	return &postCache{entries: entries, generations: make(map[string]uint64)}, nil
}

func (c *postCache) get(id string) ([]byte, bool) {
	buf, err := c.entries.Get(id)
	if err != nil {
		return nil, false
	}
	return buf, true
}

func (c *postCache) generation(id string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[id]
}

// putIfCurrent stores body only if id was not forgotten since gen was
// taken, it reports whether the body was stored
func (c *postCache) putIfCurrent(id string, gen uint64, body []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[id] != gen {
		return false
	}
	return c.entries.Set(id, body) == nil
}

// forget drops the cached body of id, a missing entry is not an error
func (c *postCache) forget(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[id]++
	err := c.entries.Delete(id)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func etag(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}
