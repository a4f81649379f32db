package catalog

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"saaqreg/internal/pairs"
)

type cacheKey struct {
	fingerprint string
	key         pairs.Key
}

// Cache memoizes successful lookups across tasks. Failed lookups are never
// cached so a transient outage does not stick. Keys carry the configuration
// fingerprint, so entries from one configuration never answer another.
type Cache struct {
	fingerprint string
	entries     *lru.Cache[cacheKey, Entry]
}

// NewCache returns a cache holding up to size entries for the given
// configuration fingerprint. A size <= 0 returns nil, which disables caching.
func NewCache(size int, fingerprint string) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[cacheKey, Entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{fingerprint: fingerprint, entries: entries}, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func (c *Cache) get(key pairs.Key) (Entry, bool) {
	return c.entries.Get(cacheKey{fingerprint: c.fingerprint, key: key})
}

func (c *Cache) add(key pairs.Key, entry Entry) {
	c.entries.Add(cacheKey{fingerprint: c.fingerprint, key: key}, entry)
}

// Wrap returns a Lookuper that consults the cache before next. A nil cache
// returns next unchanged.
func (c *Cache) Wrap(next Lookuper) Lookuper {
	if c == nil {
		return next
	}
	return &cached{cache: c, next: next}
}

type cached struct {
	cache *Cache
	next  Lookuper
}

func (c *cached) Lookup(ctx context.Context, key pairs.Key) (Entry, error) {
	if entry, ok := c.cache.get(key); ok {
		return entry, nil
	}
	entry, err := c.next.Lookup(ctx, key)
	if err != nil {
		return Entry{}, err
	}
	c.cache.add(key, entry)
	return entry, nil
}

func (c *cached) Close() error {
	return c.next.Close()
}

// NewOpener returns an Opener for the catalog at path, wrapping every handle
// with cache (which may be nil).
func NewOpener(path string, separators []string, cache *Cache) Opener {
	return func(ctx context.Context) (Lookuper, error) {
		store, err := Open(ctx, path, separators)
		if err != nil {
			return nil, err
		}
		return cache.Wrap(store), nil
	}
}
