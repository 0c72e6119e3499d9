// Package txlog models the transaction log replayed from the three
// recall topics: immutable per-message entries and the per-order
// aggregation used by the recovery pass.
package txlog

import (
	"errors"
	"time"

	"rrs/pkg/recall"

	"github.com/google/btree"
)

// Source identifies the topic class an entry was read from.
type Source int8

const (
	SourceTicketHistory Source = iota + 1
	SourceRecallToOms
	SourceOmsToRecall
)

func (s Source) String() string {
	switch s {
	case SourceTicketHistory:
		return "ticket_history"
	case SourceRecallToOms:
		return "recall_to_oms"
	case SourceOmsToRecall:
		return "oms_to_recall"
	}
	return "unknown"
}

// Entry is one immutable transaction log record. Construct through
// Builder; the zero Entry is not valid.
type Entry struct {
	orderID   string
	source    Source
	state     recall.State
	timestamp time.Time
	seq       int64
	message   interface{}

	recallQty int64
	fillQty   int64
	fillPrice float64

	execID   string
	execType string
}

func (e *Entry) OrderID() string      { return e.orderID }
func (e *Entry) Source() Source       { return e.source }
func (e *Entry) State() recall.State  { return e.state }
func (e *Entry) Timestamp() time.Time { return e.timestamp }
func (e *Entry) Seq() int64           { return e.seq }
func (e *Entry) Message() interface{} { return e.message }
func (e *Entry) RecallQty() int64     { return e.recallQty }
func (e *Entry) FillQty() int64       { return e.fillQty }
func (e *Entry) FillPrice() float64   { return e.fillPrice }
func (e *Entry) ExecID() string       { return e.execID }
func (e *Entry) ExecType() string     { return e.execType }

// Ticket returns the payload as a ticket, or nil if it is another type.
func (e *Entry) Ticket() *recall.Ticket {
	t, _ := e.message.(*recall.Ticket)
	return t
}

// Order returns the payload as an order, or nil if it is another type.
func (e *Entry) Order() *recall.Order {
	o, _ := e.message.(*recall.Order)
	return o
}

// ExecReport returns the payload as an execution report, or nil if it is
// another type.
func (e *Entry) ExecReport() *recall.ExecutionReport {
	r, _ := e.message.(*recall.ExecutionReport)
	return r
}

// Less orders entries by timestamp, arrival sequence breaking ties.
func (e *Entry) Less(item btree.Item) bool {
	b, _ := item.(*Entry)

	if e.seq == b.seq {
		return false
	}

	if e.timestamp.Equal(b.timestamp) {
		return e.seq < b.seq
	}

	return e.timestamp.Before(b.timestamp)
}

// Builder assembles an Entry and validates the required attributes.
type Builder struct {
	OrderID   string
	Source    Source
	State     recall.State
	Timestamp time.Time
	Message   interface{}

	RecallQty int64
	FillQty   int64
	FillPrice float64

	ExecID   string
	ExecType string
}

var (
	ErrNoOrderID   = errors.New("entry requires an orderID")
	ErrNoSource    = errors.New("entry requires a source")
	ErrNoState     = errors.New("entry requires a state")
	ErrNoTimestamp = errors.New("entry requires a timestamp")
)

func (b Builder) Build() (e *Entry, err error) {
	if b.OrderID == "" {
		return nil, ErrNoOrderID
	}
	switch b.Source {
	case SourceTicketHistory, SourceRecallToOms, SourceOmsToRecall:
	default:
		return nil, ErrNoSource
	}
	if b.State == "" {
		return nil, ErrNoState
	}
	if b.Timestamp.IsZero() {
		return nil, ErrNoTimestamp
	}

	e = &Entry{
		orderID:   b.OrderID,
		source:    b.Source,
		state:     b.State,
		timestamp: b.Timestamp,
		message:   b.Message,
		recallQty: b.RecallQty,
		fillQty:   b.FillQty,
		fillPrice: b.FillPrice,
		execID:    b.ExecID,
		execType:  b.ExecType,
	}

	return
}

// NewTicketEntry lifts a history ticket into a log entry.
func NewTicketEntry(t *recall.Ticket) (*Entry, error) {
	if t == nil {
		return nil, errors.New("nil ticket")
	}

	return Builder{
		OrderID:   t.ID,
		Source:    SourceTicketHistory,
		State:     t.CurrentState,
		Timestamp: t.UpdatedAt,
		Message:   t,
		RecallQty: t.RecallQty,
		FillQty:   t.FillQty,
		FillPrice: t.FillPrice,
	}.Build()
}

// NewOrderEntry lifts an OMS order message into a log entry.
func NewOrderEntry(src Source, o *recall.Order) (*Entry, error) {
	if o == nil {
		return nil, errors.New("nil order")
	}

	return Builder{
		OrderID:   o.OrderID,
		Source:    src,
		State:     o.CurrentState,
		Timestamp: o.TransactTime,
		Message:   o,
		RecallQty: o.OrdQty,
		FillQty:   o.FillQty,
		FillPrice: o.Price,
	}.Build()
}

// NewExecReportEntry lifts an execution report into a log entry. The
// entry timestamp is the transact time, falling back to sending time.
// The recall quantity is recovered from cumQty+leavesQty.
func NewExecReportEntry(src Source, r *recall.ExecutionReport) (*Entry, error) {
	if r == nil {
		return nil, errors.New("nil execution report")
	}

	ts := r.TransactTime
	if ts.IsZero() {
		ts = r.SendingTime
	}

	return Builder{
		OrderID:   r.OrderID,
		Source:    src,
		State:     r.OrderState,
		Timestamp: ts,
		Message:   r,
		RecallQty: r.CumQty + r.LeavesQty,
		FillQty:   r.CumQty,
		FillPrice: r.AvgPrice,
		ExecID:    r.ExecID,
		ExecType:  r.ExecType,
	}.Build()
}
