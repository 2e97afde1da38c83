// Package identity resolves which executable the current process is running.
package identity

import (
	"os"
	"sync"
)

// Unknown is the sentinel identity used when the executable path cannot be
// resolved. Real identities are absolute paths, so it can never collide
// with one, though a ban entry may still match it deliberately.
const Unknown = "(unknown)"

// Cache resolves the process's executable path once and keeps the answer
// for the process lifetime. An executable cannot change mid-run, and a
// failed lookup is kept too: retrying would only flap the identity that
// policy decisions and log prefixes have already been made with.
type Cache struct {
	once   sync.Once
	path   string
	lookup func() (string, error)
}

// Option customizes a Cache.
type Option func(*Cache)

// WithLookup replaces the platform executable lookup, for tests.
func WithLookup(fn func() (string, error)) Option {
	return func(c *Cache) { c.lookup = fn }
}

// NewCache creates an identity cache backed by os.Executable.
func NewCache(opts ...Option) *Cache {
	c := &Cache{lookup: os.Executable}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the executable path, or Unknown when resolution failed
// on first use.
func (c *Cache) Current() string {
	c.once.Do(func() {
		path, err := c.lookup()
		if err != nil || path == "" {
			c.path = Unknown
			return
		}
		c.path = path
	})
	return c.path
}

// Resolved reports whether the identity is a real path rather than the
// Unknown sentinel. It forces resolution on first call.
func (c *Cache) Resolved() bool {
	return c.Current() != Unknown
}
