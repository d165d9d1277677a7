package wikidata

import "sync"

// LabelCache memoizes entity ID to English label. Entries never expire.
type LabelCache struct {
	mu     sync.RWMutex
	labels map[string]string
}

// NewLabelCache creates an empty cache.
func NewLabelCache() *LabelCache {
	return &LabelCache{labels: make(map[string]string)}
}

// Get returns the cached label for id.
func (c *LabelCache) Get(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.labels[id]
	return l, ok
}

// Put stores label for id. Empty labels are not cached.
func (c *LabelCache) Put(id, label string) {
	if label == "" {
		return
	}
	c.mu.Lock()
	c.labels[id] = label
	c.mu.Unlock()
}

// Len returns the number of cached labels.
func (c *LabelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.labels)
}
