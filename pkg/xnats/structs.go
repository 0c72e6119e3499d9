package xnats

import "rrs/pkg/recall"

// CacheReadReq asks for one cached object by id, sent over request-reply
type CacheReadReq struct {
	Kind string `json:"kind"` // ticket or order
	ID   string `json:"id"`
}

// CacheReadResp carries the lookup result. Error is set when the cache
// is not initialized yet or the request is malformed.
type CacheReadResp struct {
	Found bool   `json:"found"`
	Error string `json:"error,omitempty"`

	Ticket *recall.Ticket `json:"ticket,omitempty"`
	Order  *recall.Order  `json:"order,omitempty"`
}

const (
	CacheReadKindTicket = "ticket"
	CacheReadKindOrder  = "order"
)
