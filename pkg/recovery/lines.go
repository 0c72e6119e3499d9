package recovery

import "time"

// Journal line discriminators.
const (
	LineTypeOutcome = "outcome"
	LineTypeSummary = "summary"
)

// OutcomeLine is one order's recovery outcome as appended to the
// journal and archived to MySQL.
type OutcomeLine struct {
	Type  string `json:"type"`
	RunID string `json:"runID"`
	Seq   int64  `json:"seq"`

	OrderID         string `json:"orderID"`
	Action          string `json:"action"`
	OrderState      string `json:"orderState,omitempty"`
	TicketState     string `json:"ticketState,omitempty"`
	PrevTicketState string `json:"prevTicketState,omitempty"`

	NeedsDfd          bool `json:"needsDfd,omitempty"`
	ForcedTicketState bool `json:"forcedTicketState,omitempty"`

	RecallQty int64   `json:"recallQty,omitempty"`
	CumQty    int64   `json:"cumQty,omitempty"`
	AvgPrice  float64 `json:"avgPrice,omitempty"`

	Ts time.Time `json:"ts"`
}

// SummaryLine closes a run in the journal with the counters reported in
// the final INFO line.
type SummaryLine struct {
	Type  string `json:"type"`
	RunID string `json:"runID"`

	Processed        int64 `json:"processed"`
	Rebuilt          int64 `json:"rebuilt"`
	Republished      int64 `json:"republished"`
	Ignored          int64 `json:"ignored"`
	Errored          int64 `json:"errored"`
	DiscardedHistory int64 `json:"discardedHistory"`
	DiscardedOms     int64 `json:"discardedOms"`

	CacheTickets int `json:"cacheTickets"`
	CacheOrders  int `json:"cacheOrders"`

	TicketBookmark string `json:"ticketBookmark,omitempty"`
	OmsBookmark    string `json:"omsBookmark,omitempty"`

	DurationMs int64     `json:"durationMs"`
	Ts         time.Time `json:"ts"`
}
