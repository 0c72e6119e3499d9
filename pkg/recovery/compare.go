package recovery

import (
	"math"

	"rrs/pkg/recall"
)

// Action is the recovery decision for one order.
type Action int8

const (
	ActionIgnore Action = iota
	ActionRebuild
	ActionRepublish
)

func (a Action) String() string {
	switch a {
	case ActionRebuild:
		return "REBUILD"
	case ActionRepublish:
		return "REPUBLISH"
	}
	return "IGNORE"
}

// Compare decides the action for a context. It never touches the rebuilt
// order; the only mutation is the ticket state overwrite in the explicit
// mismatch branches, with the flags recording what happened.
func Compare(c *Context) Action {
	order := c.Order()
	ticket := c.Ticket()
	if order == nil || ticket == nil {
		return ActionIgnore
	}

	c.PreviousTicketState = ticket.CurrentState

	orderState := order.CurrentState
	ticketState := ticket.CurrentState

	if recall.StatesEquivalent(orderState, ticketState) {
		if orderState.Final() && ticketState.Final() {
			c.NeedsDfdRequest = true
		}
		return ActionRebuild
	}

	// mismatch
	if orderState.Final() && ticketState.Final() {
		c.NeedsDfdRequest = true
		return ActionRebuild
	}

	if ticketState.Pending() && orderState != ticketState {
		if quantitiesAndPriceMatch(order, ticket) {
			ticket.CurrentState = orderState
			c.ForceTicketStateUpdate = true
			return ActionRebuild
		}

		ticket.CurrentState = orderState
		return ActionRepublish
	}

	return ActionRepublish
}

// quantitiesAndPriceMatch holds when the rebuilt order and the ticket
// agree on quantity, filled quantity and average price (to 1e-4).
func quantitiesAndPriceMatch(o *recall.Order, t *recall.Ticket) bool {
	if o.OrdQty != t.RecallQty {
		return false
	}

	var cumQty int64
	var avgPrice float64
	if o.FillRequest != nil {
		cumQty = o.FillRequest.CumQty
		avgPrice = o.FillRequest.AvgPrice
	}

	if cumQty != t.FillQty {
		return false
	}

	return math.Abs(avgPrice-t.FillPrice) < 1e-4
}
