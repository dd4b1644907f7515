package svcacct

import "time"

// cacheEntry pairs a token with the instant it stops being served.
type cacheEntry struct {
	tok     Token
	staleAt time.Time
}

// tokenCache is a bounded map with insertion-ordered eviction. It is not
// safe for concurrent use; Credentials serializes access under its mutex.
type tokenCache struct {
	cap     int
	entries map[string]cacheEntry
	order   []string // insertion order, oldest first
}

func newTokenCache(capacity int) *tokenCache {
	return &tokenCache{
		cap:     capacity,
		entries: make(map[string]cacheEntry, capacity),
	}
}

// get returns the token under key while it is still ahead of its staleness
// instant. Stale entries read as absent; the next put supersedes them.
func (c *tokenCache) get(key string, now time.Time) (Token, bool) {
	e, ok := c.entries[key]
	if !ok || !now.Before(e.staleAt) {
		return Token{}, false
	}
	return e.tok, true
}

// put stores tok under key. A genuinely new key at capacity evicts the
// oldest-inserted entry; re-inserting an existing key refreshes its value
// without changing its eviction position.
func (c *tokenCache) put(key string, tok Token, staleAt time.Time) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = cacheEntry{tok: tok, staleAt: staleAt}
		return
	}

	if len(c.entries) >= c.cap && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = cacheEntry{tok: tok, staleAt: staleAt}
	c.order = append(c.order, key)
}
