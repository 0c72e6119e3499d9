// Package cache holds the recovered tickets and orders behind an
// initialization barrier: readers see nothing until the recovery pass
// has run to completion.
package cache

import (
	"sync"

	"rrs/pkg/recall"
)

type Cache struct {
	mu      sync.RWMutex
	tickets map[string]*recall.Ticket
	orders  map[string]*recall.Order

	initMu      sync.Mutex
	initialized bool
}

func New() *Cache {
	return &Cache{
		tickets: make(map[string]*recall.Ticket),
		orders:  make(map[string]*recall.Order),
	}
}

// IsInitialized reports whether Initialize has run to completion.
func (c *Cache) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.initialized
}

// Initialize runs fn exactly once and then opens the cache for readers.
// Concurrent callers are serialised and observe a single execution;
// later calls are no-ops. If fn fails the cache stays uninitialised and
// a later call may try again.
func (c *Cache) Initialize(fn func() error) (err error) {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.IsInitialized() {
		return
	}

	if fn != nil {
		err = fn()
		if err != nil {
			return
		}
	}

	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()

	return
}

// Ticket returns a ticket by id. Before initialization it reports
// nothing, whatever the maps hold.
func (c *Cache) Ticket(id string) (t *recall.Ticket, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized {
		return
	}

	t, ok = c.tickets[id]
	return
}

// Order returns an order by id, gated like Ticket.
func (c *Cache) Order(id string) (o *recall.Order, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized {
		return
	}

	o, ok = c.orders[id]
	return
}

func (c *Cache) UpdateRecallTicket(id string, t *recall.Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tickets[id] = t
}

func (c *Cache) UpdateOrder(id string, o *recall.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.orders[id] = o
}

// Sizes reports the map sizes for the recovery summary.
func (c *Cache) Sizes() (tickets int, orders int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.tickets), len(c.orders)
}
