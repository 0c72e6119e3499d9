package recall_test

import (
	"testing"
	"time"

	"rrs/pkg/nvfix"
	"rrs/pkg/recall"

	"github.com/stretchr/testify/require"
)

func TestDecodeTicketJSON(t *testing.T) {
	raw := `{"id":"RT-1","currentState":"PendingFill","recallQty":100,"fillQty":50,` +
		`"fillPrice":10.0,"currency":"USD","ticker":"IBM","fund":"F01",` +
		`"updatedAt":"2025-03-21T13:58:00Z"}`

	tk, err := recall.DecodeTicket(raw)
	require.Nil(t, err)
	require.Equal(t, "RT-1", tk.ID)
	require.Equal(t, recall.StatePendingFill, tk.CurrentState)
	require.Equal(t, int64(100), tk.RecallQty)
	require.Equal(t, int64(50), tk.FillQty)
	require.Equal(t, 10.0, tk.FillPrice)
	require.Equal(t, "IBM", tk.Ticker)
	require.Equal(t, time.Date(2025, 3, 21, 13, 58, 0, 0, time.UTC), tk.UpdatedAt)
	require.Nil(t, tk.Meta)
}

func TestDecodeTicketHybrid(t *testing.T) {
	tk := &recall.Ticket{
		ID:           "RT-2",
		CurrentState: recall.StateCreated,
		RecallQty:    200,
		UpdatedAt:    time.Date(2025, 3, 21, 14, 0, 0, 0, time.UTC),
	}
	meta := []nvfix.Field{
		{Tag: "EVENT", Value: "RECALL"},
		{Tag: "SEQ", Value: "7"},
		{Tag: "RATE", Value: "0.25"},
	}

	raw, err := recall.EncodeTicketHybrid(tk, meta)
	require.Nil(t, err)

	got, err := recall.DecodeTicket(raw)
	require.Nil(t, err)
	require.Equal(t, tk.ID, got.ID)
	require.Equal(t, tk.CurrentState, got.CurrentState)
	require.Equal(t, tk.RecallQty, got.RecallQty)
	require.Equal(t, "RECALL", got.Meta["event"])
	require.Equal(t, int64(7), got.Meta["seq"])
	require.Equal(t, 0.25, got.Meta["rate"])
}

func TestDecodeTicketMalformed(t *testing.T) {
	_, err := recall.DecodeTicket(`{"id":`)
	require.NotNil(t, err)

	_, err = recall.DecodeTicket(`{"id":"x"}` + "\x01garbage\x01")
	require.NotNil(t, err)
}

func TestOrderFromTicket(t *testing.T) {
	require.Nil(t, recall.OrderFromTicket(nil))

	tk := &recall.Ticket{
		ID:           "RT-3",
		CurrentState: recall.StateCreated,
		RecallQty:    150,
		FillQty:      25,
		FillPrice:    9.5,
		Currency:     "USD",
		Ticker:       "MSFT",
		Fund:         "F02",
	}

	o := recall.OrderFromTicket(tk)
	require.NotNil(t, o)
	require.Equal(t, "RT-3", o.OrderID)
	require.Equal(t, recall.StateCreated, o.CurrentState)
	require.Equal(t, int64(150), o.OrdQty)
	require.Equal(t, int64(25), o.FillQty)
	require.Equal(t, "MSFT", o.Symbol)
	require.Equal(t, "F02", o.Account)
	require.Equal(t, "USD", o.Currency)
}
