// Package recall holds the recall-ticket domain objects and their wire
// codecs: JSON for ticket traffic, NVFIX for the OMS-facing streams.
package recall

// State is the lifecycle state of an order or ticket. Order traffic uses
// the closed set below; ticket traffic may surface further strings which
// the reconciler treats by its fall-through rules.
type State string

const (
	StateNew             State = "New"
	StateCreated         State = "Created"
	StatePendingNew      State = "PendingNew"
	StatePendingReplace  State = "PendingReplace"
	StatePendingFill     State = "PendingFill"
	StatePendingCancel   State = "PendingCancel"
	StateFilled          State = "Filled"
	StatePartiallyFilled State = "PartiallyFilled"
	StateCanceled        State = "Canceled"
	StateDoneOfDay       State = "DoneOfDay"
)

// Final reports membership in the fill-or-cancel terminal set.
func (s State) Final() bool {
	switch s {
	case StateFilled, StatePartiallyFilled, StateCanceled:
		return true
	}
	return false
}

// Pending reports membership in the pending set.
func (s State) Pending() bool {
	switch s {
	case StatePendingNew, StatePendingReplace, StatePendingFill, StatePendingCancel:
		return true
	}
	return false
}

// StatesEquivalent reports whether an order state and a ticket state name
// the same lifecycle position. Tickets call a fresh order "Created", and
// an order that went done-of-day covers any terminal ticket state.
func StatesEquivalent(order, ticket State) bool {
	if order == ticket {
		return true
	}
	if order == StateNew && ticket == StateCreated {
		return true
	}
	if order == StateDoneOfDay && ticket.Final() {
		return true
	}
	return false
}
