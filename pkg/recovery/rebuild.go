package recovery

import (
	"rrs/pkg/recall"
	"rrs/pkg/txlog"

	"github.com/google/uuid"
)

// RebuildOrder folds the OMS entries chronologically over an order
// seeded from the ticket. A nil ticket aborts with nil, which the caller
// treats as IGNORE.
func RebuildOrder(t *recall.Ticket, omsEntries []*txlog.Entry) *recall.Order {
	o := recall.OrderFromTicket(t)
	if o == nil {
		return nil
	}

	o.CurrentState = recall.StateNew
	o.FillQty = 0

	recallQty := t.RecallQty
	if len(omsEntries) > 0 {
		recallQty = omsEntries[0].RecallQty()
	}
	o.OrdQty = recallQty
	if o.FillRequest != nil {
		o.FillRequest.LeavesQty = recallQty
	}
	if o.AmendRequest != nil {
		o.AmendRequest.OrderQty = recallQty
	}

	for _, e := range omsEntries {
		switch {
		case e.Order() != nil:
			applyOrderEntry(o, e)
		case e.ExecReport() != nil:
			applyExecEntry(o, e)
		default:
			logger.Warningf("rebuild orderID:%s skipped entry with unknown payload, source:%s state:%s",
				o.OrderID, e.Source(), e.State())
		}
	}

	return o
}

// applyOrderEntry folds an outbound order message. PendingFill and
// DoneOfDay on the outbound stream are carried by execution reports
// only, so those do not move the state here.
func applyOrderEntry(o *recall.Order, e *txlog.Entry) {
	state := e.State()

	viaExecOnly := e.Source() == txlog.SourceRecallToOms &&
		(state == recall.StatePendingFill || state == recall.StateDoneOfDay)
	if !viaExecOnly {
		o.CurrentState = state
	}

	if state == recall.StatePendingReplace || state == recall.StatePendingCancel {
		if src := e.Order(); src.AmendRequest != nil {
			amend := *src.AmendRequest
			o.AmendRequest = &amend
		} else {
			o.AmendRequest = &recall.AmendRequest{
				OrderQty:    e.RecallQty(),
				Price:       e.FillPrice(),
				ClOrdID:     uuid.New().String(),
				OrigClOrdID: o.OrderID,
			}
		}
	}
}

// applyExecEntry folds an execution report. Inbound reports always move
// the state; outbound ones only for PendingFill and DoneOfDay. Fill
// events materialise or refine the order's fill request.
func applyExecEntry(o *recall.Order, e *txlog.Entry) {
	state := e.State()
	src := e.Source()

	if src == txlog.SourceOmsToRecall {
		o.CurrentState = state
	} else if src == txlog.SourceRecallToOms &&
		(state == recall.StatePendingFill || state == recall.StateDoneOfDay) {
		o.CurrentState = state
	}

	fillEvent := (src == txlog.SourceRecallToOms && state == recall.StatePendingFill) ||
		(src == txlog.SourceOmsToRecall &&
			(state == recall.StateFilled || state == recall.StatePartiallyFilled))
	if !fillEvent {
		return
	}

	report := e.ExecReport()
	if o.FillRequest == nil {
		fr := report.Clone()
		fr.DefaultIdentity(o)
		o.FillRequest = fr
	} else {
		o.FillRequest.PatchFrom(report)
	}

	// leaves always re-derives from the order quantity
	o.FillRequest.LeavesQty = o.OrdQty - o.FillRequest.CumQty
}
