// Package sessioncache is a process-wide, best-effort cache of recent
// session resolutions, keyed by the raw access-token cookie value. It only
// saves the JWT parse on bursts of requests carrying the same token. It is
// never consulted for authorization: role lookups and guard decisions happen
// on every request regardless of a cache hit, so a stale or missing entry is
// always safe.
package sessioncache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"elshome/internal/auth"
)

const DefaultSize = 1024

type entry struct {
	identity  auth.Identity
	expiresAt time.Time
}

type Cache struct {
	lru *lru.Cache[string, entry]
	ttl time.Duration
}

func New(size int, ttl time.Duration) (*Cache, error) {
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, ttl: ttl}, nil
}

func (c *Cache) Get(token string) (auth.Identity, bool) {
	e, ok := c.lru.Get(token)
	if !ok {
		return auth.Identity{}, false
	}
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(token)
		return auth.Identity{}, false
	}
	return e.identity, true
}

func (c *Cache) Put(token string, id auth.Identity) {
	c.lru.Add(token, entry{identity: id, expiresAt: time.Now().Add(c.ttl)})
}

// Invalidate drops a single token, called when that token is rotated out.
func (c *Cache) Invalidate(token string) {
	c.lru.Remove(token)
}

// PurgeUser drops every cached entry for a user, called on sign-out.
func (c *Cache) PurgeUser(userID int64) {
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok && e.identity.UserID == userID {
			c.lru.Remove(key)
		}
	}
}
