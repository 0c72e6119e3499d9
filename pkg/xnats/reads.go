package xnats

import (
	"encoding/json"

	"rrs/pkg/cache"
	"rrs/pkg/config"

	"github.com/nats-io/nats.go"
)

// ServeCacheReads answers cache lookups over request-reply. Requests are
// rejected until the cache has finished initializing, so no reader ever
// sees a half-recovered state.
func ServeCacheReads(c *Client, ca *cache.Cache) (sub *nats.Subscription, err error) {
	topic := "RECALL.CACHE.GET"
	if config.Shared != nil && config.Shared.Recovery.CacheReadTopic != "" {
		topic = config.Shared.Recovery.CacheReadTopic
	}

	sub, err = c.Nc.Subscribe(topic, func(m *nats.Msg) {
		resp := handleCacheRead(ca, m.Data)

		b, err := json.Marshal(resp)
		if err != nil {
			logger.Errorf("cache read marshal failed, err:%s", err)
			return
		}

		if err = m.Respond(b); err != nil {
			logger.Errorf("cache read respond failed, err:%s", err)
		}
	})
	if err != nil {
		return
	}

	logger.Infof("cache read service listening on %s", topic)
	return
}

func handleCacheRead(ca *cache.Cache, data []byte) (resp CacheReadResp) {
	req := CacheReadReq{}
	if err := json.Unmarshal(data, &req); err != nil {
		resp.Error = "bad request: " + err.Error()
		return
	}

	if !ca.IsInitialized() {
		resp.Error = "cache not initialized"
		return
	}

	switch req.Kind {
	case CacheReadKindTicket:
		resp.Ticket, resp.Found = ca.Ticket(req.ID)
	case CacheReadKindOrder:
		resp.Order, resp.Found = ca.Order(req.ID)
	default:
		resp.Error = "unknown kind: " + req.Kind
	}

	return
}
