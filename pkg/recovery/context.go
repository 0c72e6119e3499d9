// Package recovery rebuilds orders from the replayed transaction log and
// reconciles each one against the last published ticket state.
package recovery

import (
	"rrs/pkg/recall"
	"rrs/pkg/txlog"
	"rrs/pkg/xlog"
)

var logger = xlog.GetLogger()

// Context is the per-order bundle the driver assembles for one
// reconciliation: the split entry lists, the latest entries per stream,
// and the scratch flags the comparator sets.
type Context struct {
	OrderID string

	TicketHistoryEntry   *txlog.Entry
	TicketHistoryEntries []*txlog.Entry
	OmsEntries           []*txlog.Entry

	LatestRecallToOms *txlog.Entry
	LatestOmsToRecall *txlog.Entry

	NeedsDfdRequest        bool
	ForceTicketStateUpdate bool

	// PreviousTicketState records the ticket state seen at comparison
	// time, before any overwrite.
	PreviousTicketState recall.State

	order      *recall.Order
	orderBuilt bool
}

// Ticket returns the ticket payload of the latest history entry, nil
// when there is none.
func (c *Context) Ticket() *recall.Ticket {
	if c.TicketHistoryEntry == nil {
		return nil
	}
	return c.TicketHistoryEntry.Ticket()
}

// Order returns the rebuilt order. The rebuild runs on first access and
// the result is stable across repeated reads.
func (c *Context) Order() *recall.Order {
	if !c.orderBuilt {
		c.order = RebuildOrder(c.Ticket(), c.OmsEntries)
		c.orderBuilt = true
	}
	return c.order
}
