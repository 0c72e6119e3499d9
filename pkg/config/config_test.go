package config_test

import (
	"os"
	"path"
	"testing"

	"rrs/pkg/config"

	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	fpath := path.Join(t.TempDir(), "config.yml")
	body := `
is_debug: true
nats:
  url: nats://127.0.0.1:4222
recovery:
  timeout_ms: 250
`
	require.NoError(t, os.WriteFile(fpath, []byte(body), 0o644))

	config.Init(fpath)
	c := config.Shared
	require.NotNil(t, c)
	require.True(t, c.IsDebug)
	require.Equal(t, "nats://127.0.0.1:4222", c.Nats.Url)
	require.Equal(t, 250, c.Recovery.TimeoutMs)

	// unset values fall back to the production defaults
	require.Equal(t, "data", c.DataDir)
	require.Equal(t, "RECALL.TICKET.HISTORY", c.Recovery.TicketHistoryTopic)
	require.Equal(t, "RECALL.TO.OMS", c.Recovery.RecallToOmsTopic)
	require.Equal(t, "OMS.TO.RECALL", c.Recovery.OmsToRecallTopic)
	require.Equal(t, "RECALL.TICKET", c.Recovery.RecallTicketTopic)
	require.Equal(t, "OMS.DFD.REQUEST", c.Recovery.DfdRequestTopic)
	require.Equal(t, "RECALL.CACHE.GET", c.Recovery.CacheReadTopic)
}
