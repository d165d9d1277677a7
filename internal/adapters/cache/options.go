package cache

import (
	"time"

	"github.com/okian/playerhunt/pkg/logger"
)

// Option applies a configuration option to the Lookup cache.
type Option func(*Lookup)

// WithTTL sets how long a result, including "not found", is reused.
func WithTTL(ttl time.Duration) Option {
	return func(c *Lookup) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxSize bounds the number of cached names. Non-positive means unbounded.
func WithMaxSize(n int) Option {
	return func(c *Lookup) {
		c.maxSize = n
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Lookup) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Lookup) {
		if l != nil {
			c.logger = l
		}
	}
}
