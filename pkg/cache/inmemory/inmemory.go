// Package inmemory provides a bounded, TTL-aware in-process cache.Cache.
package inmemory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/papercomputeco/folio/pkg/cache"
)

// DefaultCapacity is the entry bound used when none is given.
const DefaultCapacity = 10000

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Cache is a least-recently-used cache with lazy expiration.
type Cache struct {
	mu       sync.Mutex
	capacity int
	now      func() time.Time

	// order holds *entry values, most recently used at the front.
	order *list.List
	items map[string]*list.Element
}

var _ cache.Cache = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache holding at most capacity entries.
func New(capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		capacity: capacity,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the live value stored under key.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.remove(el)
		return nil, false
	}

	c.order.MoveToFront(el)
	return append([]byte(nil), e.value...), true
}

// Set stores a copy of value under key, evicting the least recently used
// entries beyond capacity.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	value = append([]byte(nil), value...)

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return nil
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	for c.order.Len() > c.capacity {
		c.remove(c.order.Back())
	}
	return nil
}

// Len returns the number of stored entries, expired ones included until
// they are next touched.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
