package recall

import "time"

// ExecutionReport mirrors the FIX execution report fields the recall flow
// reads. Quantities are plain integers, prices reals.
type ExecutionReport struct {
	ExecID      string `json:"execID,omitempty"`
	ExecType    string `json:"execType,omitempty"`
	ClOrdID     string `json:"clOrdID,omitempty"`
	OrigClOrdID string `json:"origClOrdID,omitempty"`
	OrderID     string `json:"orderID,omitempty"`

	LastQty   int64   `json:"lastQty,omitempty"`
	CumQty    int64   `json:"cumQty,omitempty"`
	LeavesQty int64   `json:"leavesQty,omitempty"`
	LastPrice float64 `json:"lastPrice,omitempty"`
	AvgPrice  float64 `json:"avgPrice,omitempty"`

	OrderState State  `json:"orderState,omitempty"`
	Symbol     string `json:"symbol,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Side       string `json:"side,omitempty"`

	TransactTime time.Time `json:"transactTime,omitempty"`
	SendingTime  time.Time `json:"sendingTime,omitempty"`
}

// Clone returns an independent copy of the report.
func (r *ExecutionReport) Clone() *ExecutionReport {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// DefaultIdentity fills blank identity fields from the owning order.
func (r *ExecutionReport) DefaultIdentity(o *Order) {
	if r == nil || o == nil {
		return
	}

	if r.ClOrdID == "" {
		r.ClOrdID = o.OrderID
	}
	if r.OrigClOrdID == "" {
		r.OrigClOrdID = o.OrderID
	}
	if r.OrderID == "" {
		r.OrderID = o.OrderID
	}
	if r.Currency == "" {
		r.Currency = o.Currency
	}
	if r.Side == "" {
		r.Side = o.Side
	}
	if r.Symbol == "" {
		r.Symbol = o.Symbol
	}
}

// PatchFrom applies the monotonic-fill rule: a later report refines the
// quantities and prices but never regresses a non-zero value back to zero.
func (r *ExecutionReport) PatchFrom(src *ExecutionReport) {
	if r == nil || src == nil {
		return
	}

	if src.LastQty > 0 {
		r.LastQty = src.LastQty
	}
	if src.CumQty > 0 {
		r.CumQty = src.CumQty
	}
	if src.LeavesQty >= 0 {
		r.LeavesQty = src.LeavesQty
	}
	if src.LastPrice > 0 {
		r.LastPrice = src.LastPrice
	}
	if src.AvgPrice > 0 {
		r.AvgPrice = src.AvgPrice
	}
}
