package storage

import (
	"hash/crc32"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/user-none/gbalink/cheat"
)

// Cache holds recently-parsed cheat sets keyed by the CRC32 of their
// source file's raw line content, so reloading a file a file-watcher
// keeps re-surfacing doesn't re-run decode/decrypt.
type Cache struct {
	lru *lru.Cache[uint32, *cheat.Set]
}

// NewCache returns a cache holding up to size parsed sets.
func NewCache(size int) (*Cache, error) {
	l, err := lru.New[uint32, *cheat.Set](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Digest returns the cache key for a cheat file's decoded lines.
func Digest(lines []string) uint32 {
	h := crc32.NewIEEE()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return h.Sum32()
}

// Get returns the cached set for digest, if any.
func (c *Cache) Get(digest uint32) (*cheat.Set, bool) {
	return c.lru.Get(digest)
}

// Put records set under digest.
func (c *Cache) Put(digest uint32, set *cheat.Set) {
	c.lru.Add(digest, set)
}
