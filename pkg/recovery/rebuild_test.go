package recovery

import (
	"testing"
	"time"

	"rrs/pkg/recall"
	"rrs/pkg/txlog"

	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func ts(sec int) time.Time {
	return base.Add(time.Duration(sec) * time.Second)
}

func testTicket(state recall.State) *recall.Ticket {
	return &recall.Ticket{
		ID:           "RC-1001",
		CurrentState: state,
		RecallQty:    500,
		Currency:     "USD",
		Ticker:       "AAPL",
		Fund:         "FUND-7",
		UpdatedAt:    base,
	}
}

func orderEntry(t *testing.T, src txlog.Source, state recall.State, at time.Time, mod func(*recall.Order)) *txlog.Entry {
	o := &recall.Order{
		OrderID:      "RC-1001",
		CurrentState: state,
		OrdQty:       500,
		TransactTime: at,
	}
	if mod != nil {
		mod(o)
	}

	e, err := txlog.NewOrderEntry(src, o)
	require.Nil(t, err)
	return e
}

func execEntry(t *testing.T, src txlog.Source, state recall.State, at time.Time, mod func(*recall.ExecutionReport)) *txlog.Entry {
	r := &recall.ExecutionReport{
		OrderID:      "RC-1001",
		OrderState:   state,
		LeavesQty:    500,
		TransactTime: at,
	}
	if mod != nil {
		mod(r)
	}

	e, err := txlog.NewExecReportEntry(src, r)
	require.Nil(t, err)
	return e
}

func TestRebuildOrderNilTicket(t *testing.T) {
	require.Nil(t, RebuildOrder(nil, nil))
}

func TestRebuildOrderSeedFromTicket(t *testing.T) {
	ticket := testTicket(recall.StatePendingFill)
	ticket.FillQty = 200
	ticket.FillPrice = 10.5

	o := RebuildOrder(ticket, nil)
	require.NotNil(t, o)
	require.Equal(t, "RC-1001", o.OrderID)
	require.Equal(t, recall.StateNew, o.CurrentState)
	require.Equal(t, int64(500), o.OrdQty)
	require.Equal(t, int64(0), o.FillQty)
	require.Equal(t, "AAPL", o.Symbol)
	require.Equal(t, "FUND-7", o.Account)
	require.Equal(t, "USD", o.Currency)
}

func TestRebuildOrderRecallQtyFromEarliestOmsEntry(t *testing.T) {
	ticket := testTicket(recall.StateNew)

	entries := []*txlog.Entry{
		orderEntry(t, txlog.SourceRecallToOms, recall.StatePendingNew, ts(1), func(o *recall.Order) {
			o.OrdQty = 300
		}),
		orderEntry(t, txlog.SourceRecallToOms, recall.StatePendingNew, ts(2), nil),
	}

	o := RebuildOrder(ticket, entries)
	require.Equal(t, int64(300), o.OrdQty)
}

func TestRebuildOrderOutboundPendingStates(t *testing.T) {
	ticket := testTicket(recall.StateNew)

	entries := []*txlog.Entry{
		orderEntry(t, txlog.SourceRecallToOms, recall.StatePendingNew, ts(1), nil),
		// outbound PendingFill and DoneOfDay ride on exec reports only
		orderEntry(t, txlog.SourceRecallToOms, recall.StatePendingFill, ts(2), nil),
		orderEntry(t, txlog.SourceRecallToOms, recall.StateDoneOfDay, ts(3), nil),
	}

	o := RebuildOrder(ticket, entries)
	require.Equal(t, recall.StatePendingNew, o.CurrentState)
}

func TestRebuildOrderAmendCopied(t *testing.T) {
	ticket := testTicket(recall.StateNew)
	amend := &recall.AmendRequest{OrderQty: 400, Price: 9.75, ClOrdID: "CL-9", OrigClOrdID: "RC-1001"}

	entries := []*txlog.Entry{
		orderEntry(t, txlog.SourceRecallToOms, recall.StatePendingReplace, ts(1), func(o *recall.Order) {
			o.AmendRequest = amend
		}),
	}

	o := RebuildOrder(ticket, entries)
	require.Equal(t, recall.StatePendingReplace, o.CurrentState)
	require.NotNil(t, o.AmendRequest)
	require.Equal(t, *amend, *o.AmendRequest)
	require.NotSame(t, amend, o.AmendRequest)
}

func TestRebuildOrderAmendSynthesized(t *testing.T) {
	ticket := testTicket(recall.StateNew)

	entries := []*txlog.Entry{
		orderEntry(t, txlog.SourceRecallToOms, recall.StatePendingCancel, ts(1), func(o *recall.Order) {
			o.OrdQty = 350
			o.Price = 11.25
		}),
	}

	o := RebuildOrder(ticket, entries)
	require.NotNil(t, o.AmendRequest)
	require.Equal(t, int64(350), o.AmendRequest.OrderQty)
	require.Equal(t, 11.25, o.AmendRequest.Price)
	require.Len(t, o.AmendRequest.ClOrdID, 36)
	require.Equal(t, "RC-1001", o.AmendRequest.OrigClOrdID)
}

func TestRebuildOrderInboundExecMovesState(t *testing.T) {
	ticket := testTicket(recall.StateNew)

	entries := []*txlog.Entry{
		orderEntry(t, txlog.SourceRecallToOms, recall.StatePendingNew, ts(1), nil),
		execEntry(t, txlog.SourceOmsToRecall, recall.StateCanceled, ts(2), nil),
	}

	o := RebuildOrder(ticket, entries)
	require.Equal(t, recall.StateCanceled, o.CurrentState)
	require.Nil(t, o.FillRequest)
}

func TestRebuildOrderOutboundExecPendingFill(t *testing.T) {
	ticket := testTicket(recall.StateNew)

	entries := []*txlog.Entry{
		execEntry(t, txlog.SourceRecallToOms, recall.StatePendingFill, ts(1), func(r *recall.ExecutionReport) {
			r.CumQty = 200
			r.LeavesQty = 300
			r.AvgPrice = 10.4
		}),
	}

	o := RebuildOrder(ticket, entries)
	require.Equal(t, recall.StatePendingFill, o.CurrentState)
	require.NotNil(t, o.FillRequest)
	require.Equal(t, int64(200), o.FillRequest.CumQty)
	require.Equal(t, 10.4, o.FillRequest.AvgPrice)
	require.Equal(t, "RC-1001", o.FillRequest.ClOrdID)
	require.Equal(t, "RC-1001", o.FillRequest.OrderID)
	require.Equal(t, "USD", o.FillRequest.Currency)
	require.Equal(t, o.OrdQty-o.FillRequest.CumQty, o.FillRequest.LeavesQty)
}

func TestRebuildOrderFillPatchMonotonic(t *testing.T) {
	ticket := testTicket(recall.StateNew)

	entries := []*txlog.Entry{
		execEntry(t, txlog.SourceOmsToRecall, recall.StatePartiallyFilled, ts(1), func(r *recall.ExecutionReport) {
			r.LastQty = 100
			r.CumQty = 100
			r.LeavesQty = 400
			r.LastPrice = 10.4
			r.AvgPrice = 10.4
		}),
		execEntry(t, txlog.SourceOmsToRecall, recall.StateFilled, ts(2), func(r *recall.ExecutionReport) {
			r.CumQty = 500
			r.LeavesQty = 0
			r.AvgPrice = 10.45
			// zero lastQty/lastPrice must not wipe the earlier values
		}),
	}

	o := RebuildOrder(ticket, entries)
	require.Equal(t, recall.StateFilled, o.CurrentState)
	require.Equal(t, int64(500), o.FillRequest.CumQty)
	require.Equal(t, int64(100), o.FillRequest.LastQty)
	require.Equal(t, 10.4, o.FillRequest.LastPrice)
	require.Equal(t, 10.45, o.FillRequest.AvgPrice)
	require.Equal(t, int64(0), o.FillRequest.LeavesQty)
}

func TestRebuildOrderOutboundFilledExecIsNoFill(t *testing.T) {
	ticket := testTicket(recall.StateNew)

	entries := []*txlog.Entry{
		execEntry(t, txlog.SourceRecallToOms, recall.StateFilled, ts(1), func(r *recall.ExecutionReport) {
			r.CumQty = 500
			r.LeavesQty = 0
		}),
	}

	o := RebuildOrder(ticket, entries)
	require.Equal(t, recall.StateNew, o.CurrentState)
	require.Nil(t, o.FillRequest)
}

func TestRebuildOrderArrivalOrderIndependent(t *testing.T) {
	ticket := testTicket(recall.StateNew)

	early := execEntry(t, txlog.SourceOmsToRecall, recall.StatePartiallyFilled, ts(1), func(r *recall.ExecutionReport) {
		r.CumQty = 100
		r.LeavesQty = 400
		r.AvgPrice = 10.4
	})
	late := execEntry(t, txlog.SourceOmsToRecall, recall.StateFilled, ts(2), func(r *recall.ExecutionReport) {
		r.CumQty = 500
		r.LeavesQty = 0
		r.AvgPrice = 10.45
	})

	// the late report arrives first, chronological processing still wins
	agg := txlog.NewAggregator()
	agg.Add(late)
	agg.Add(early)

	o := RebuildOrder(ticket, agg.Entries("RC-1001"))
	require.Equal(t, recall.StateFilled, o.CurrentState)
	require.Equal(t, int64(500), o.FillRequest.CumQty)
	require.Equal(t, 10.45, o.FillRequest.AvgPrice)
}

func TestRebuildOrderRecallQtyAppliedToAttachments(t *testing.T) {
	ticket := testTicket(recall.StateNew)

	entries := []*txlog.Entry{
		execEntry(t, txlog.SourceRecallToOms, recall.StatePendingFill, ts(1), func(r *recall.ExecutionReport) {
			r.CumQty = 100
			r.LeavesQty = 150
		}),
		orderEntry(t, txlog.SourceRecallToOms, recall.StatePendingReplace, ts(2), func(o *recall.Order) {
			o.OrdQty = 250
		}),
	}

	o := RebuildOrder(ticket, entries)
	require.Equal(t, int64(250), o.OrdQty)
	require.Equal(t, o.OrdQty-o.FillRequest.CumQty, o.FillRequest.LeavesQty)
	require.Equal(t, int64(250), o.AmendRequest.OrderQty)
}
