package recall

import "time"

// Order is the OMS-side view of a recall, keyed by the ticket id.
type Order struct {
	OrderID      string  `json:"orderID"`
	CurrentState State   `json:"currentState"`
	OrdQty       int64   `json:"ordQty"`
	FillQty      int64   `json:"fillQty"`
	Price        float64 `json:"price,omitempty"`

	ClOrdID     string `json:"clOrdID,omitempty"`
	OrigClOrdID string `json:"origClOrdID,omitempty"`

	FillRequest  *ExecutionReport `json:"fillRequest,omitempty"`
	AmendRequest *AmendRequest    `json:"amendRequest,omitempty"`

	Symbol        string    `json:"symbol,omitempty"`
	Account       string    `json:"account,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Side          string    `json:"side,omitempty"`
	EffectiveDate string    `json:"effectiveDate,omitempty"`
	TransactTime  time.Time `json:"transactTime,omitempty"`
}

// AmendRequest is the replace/cancel payload attached to an order.
type AmendRequest struct {
	OrderQty    int64   `json:"orderQty"`
	Price       float64 `json:"price"`
	ClOrdID     string  `json:"clOrdID"`
	OrigClOrdID string  `json:"origClOrdID"`
}

// OrderFromTicket seeds an order from a ticket's defaulting fields. A nil
// ticket yields a nil order.
func OrderFromTicket(t *Ticket) *Order {
	if t == nil {
		return nil
	}

	return &Order{
		OrderID:       t.ID,
		CurrentState:  t.CurrentState,
		OrdQty:        t.RecallQty,
		FillQty:       t.FillQty,
		Price:         t.FillPrice,
		Symbol:        t.Ticker,
		Account:       t.Fund,
		Currency:      t.Currency,
		EffectiveDate: t.EffectiveDate,
	}
}
