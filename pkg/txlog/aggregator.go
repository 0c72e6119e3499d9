package txlog

import (
	"sort"
	"sync"

	"github.com/google/btree"
)

// Aggregator buffers log entries per order while the replay window is
// open. Subscribers on different goroutines may add concurrently; the
// recovery driver reads once the window closes.
type Aggregator struct {
	mu    sync.Mutex
	trees map[string]*btree.BTree
	seq   int64
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		trees: make(map[string]*btree.BTree),
	}
}

// Add stamps the entry with its arrival sequence and buffers it under
// its order id.
func (a *Aggregator) Add(e *Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	e.seq = a.seq

	tree, ok := a.trees[e.orderID]
	if !ok {
		tree = btree.New(2)
		a.trees[e.orderID] = tree
	}

	tree.ReplaceOrInsert(e)
}

// OrderIDs returns the buffered order ids in lexical order.
func (a *Aggregator) OrderIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]string, 0, len(a.trees))
	for id := range a.trees {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Entries returns an order's entries in timestamp order, arrival order
// breaking ties.
func (a *Aggregator) Entries(orderID string) []*Entry {
	a.mu.Lock()
	defer a.mu.Unlock()

	tree, ok := a.trees[orderID]
	if !ok {
		return nil
	}

	entries := make([]*Entry, 0, tree.Len())
	tree.Ascend(func(item btree.Item) bool {
		entries = append(entries, item.(*Entry))
		return true
	})

	return entries
}

// Len is the total number of buffered entries.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return int(a.seq)
}
