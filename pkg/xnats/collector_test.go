package xnats

import (
	"testing"

	"rrs/pkg/txlog"

	"github.com/stretchr/testify/require"
)

func TestDecodeEntry(t *testing.T) {
	e, err := decodeEntry(txlog.SourceTicketHistory,
		`{"id":"RC-1","currentState":"Created","recallQty":500,"updatedAt":"2026-03-02T09:30:00Z"}`)
	require.Nil(t, err)
	require.Equal(t, txlog.SourceTicketHistory, e.Source())
	require.NotNil(t, e.Ticket())
	require.Equal(t, int64(500), e.RecallQty())

	raw := "35=8\x0137=RC-1\x0139=Canceled\x01151=500\x0160=20260302-09:31:00.000\x01"
	e, err = decodeEntry(txlog.SourceOmsToRecall, raw)
	require.Nil(t, err)
	require.NotNil(t, e.ExecReport())
	require.Equal(t, int64(500), e.RecallQty())

	raw = "35=G\x0137=RC-1\x0139=PendingReplace\x0138=300\x0160=20260302-09:32:00.000\x01"
	e, err = decodeEntry(txlog.SourceRecallToOms, raw)
	require.Nil(t, err)
	require.NotNil(t, e.Order())
	require.Equal(t, int64(300), e.RecallQty())

	_, err = decodeEntry(txlog.SourceOmsToRecall, "35=X\x01")
	require.NotNil(t, err)

	_, err = decodeEntry(txlog.SourceTicketHistory, "not json")
	require.NotNil(t, err)
}
