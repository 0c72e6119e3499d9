package recall

import (
	"encoding/json"
	"strings"
	"time"

	"rrs/pkg/nvfix"
)

// Ticket is a recall ticket as published on the ticket topics. Only
// CurrentState is mutated by the reconciler; everything else is read-only
// once decoded.
type Ticket struct {
	ID           string  `json:"id"`
	CurrentState State   `json:"currentState"`
	RecallQty    int64   `json:"recallQty"`
	FillQty      int64   `json:"fillQty"`
	FillPrice    float64 `json:"fillPrice"`

	EffectiveDate string `json:"effectiveDate,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Ticker        string `json:"ticker,omitempty"`
	Fund          string `json:"fund,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`

	// Meta carries the lower-cased, numerically promoted metadata tail of
	// a hybrid message. Not serialised back out.
	Meta map[string]interface{} `json:"-"`
}

// DecodeTicket parses a ticket from plain JSON or from the hybrid form
// with a trailing SOH metadata section.
func DecodeTicket(raw string) (t *Ticket, err error) {
	jsonPart := raw
	var meta []nvfix.Field

	if nvfix.IsHybrid(raw) {
		jsonPart, meta, err = nvfix.SplitHybrid(raw)
		if err != nil {
			return
		}
	}

	t = &Ticket{}
	err = json.Unmarshal([]byte(jsonPart), t)
	if err != nil {
		err = &nvfix.ParseError{Raw: raw, Err: err}
		return nil, err
	}

	if len(meta) > 0 {
		t.Meta = make(map[string]interface{}, len(meta))
		for _, f := range meta {
			t.Meta[strings.ToLower(f.Tag)] = nvfix.Promote(f.Value)
		}
	}

	return
}

// EncodeTicketHybrid renders a ticket as JSON plus an SOH metadata tail.
func EncodeTicketHybrid(t *Ticket, meta []nvfix.Field) (s string, err error) {
	b, err := json.Marshal(t)
	if err != nil {
		return
	}

	s = string(b)
	if len(meta) > 0 {
		s += nvfix.SOH + nvfix.Join(meta)
	}

	return
}
