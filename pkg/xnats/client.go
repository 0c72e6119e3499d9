// Package xnats wraps the JetStream connection: stream replay for
// recovery, outbound publishing and the cache read endpoint.
package xnats

import (
	"errors"

	"rrs/pkg/config"
	"rrs/pkg/xetcd"
	"rrs/pkg/xlog"

	"github.com/nats-io/nats.go"
)

var logger = xlog.GetLogger()

// Client keeps one NATS connection with its JetStream context.
type Client struct {
	Nc *nats.Conn
	Js nats.JetStreamContext
}

// Connect resolves the NATS url through etcd discovery when enabled,
// falling back to the configured url.
func Connect() (c *Client, err error) {
	url := ""
	if config.Shared != nil {
		url = config.Shared.Nats.Url

		if config.Shared.Etcd.Main.Enable {
			v, err2 := xetcd.Get(xetcd.KeyNatsRecall())
			if err2 != nil {
				logger.Warningf("etcd nats discovery failed, using config url, err:%s", err2)
			} else if v != "" {
				url = v
			}
		}
	}

	if url == "" {
		url = nats.DefaultURL
	}

	nc, err := nats.Connect(url)
	if err != nil {
		return
	}

	js, err := nc.JetStream(nats.PublishAsyncMaxPending(256))
	if err != nil {
		return
	}

	c = &Client{Nc: nc, Js: js}
	logger.Infof("nats connected %s", url)

	return
}

func (c *Client) Close() {
	if c.Nc != nil {
		c.Nc.Close()
	}
}

// Publish sends one message through JetStream.
func (c *Client) Publish(subject string, data []byte) (err error) {
	_, err = c.Js.Publish(subject, data)
	return
}

// EnsureStreams creates the streams the recovery topics live on.
func (c *Client) EnsureStreams() (err error) {
	streams := []*nats.StreamConfig{
		{Name: "RECALL", Subjects: []string{"RECALL.>"}},
		{Name: "OMS", Subjects: []string{"OMS.>"}},
	}

	for _, sc := range streams {
		_, err = c.Js.AddStream(sc)
		if errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			err = nil
			continue
		}
		if err != nil {
			return
		}
		logger.Infof("stream %s ready subjects:%v", sc.Name, sc.Subjects)
	}

	return
}
