package xnats

import (
	"context"
	"fmt"
	"time"

	"rrs/pkg/config"
	"rrs/pkg/recall"
	"rrs/pkg/txlog"

	"github.com/nats-io/nats.go"
	tomb "gopkg.in/tomb.v2"
)

// Collector replays the three recovery topics into an aggregator. Each
// stream is drained from its beginning and considered complete once no
// message arrives within the timeout.
type Collector struct {
	Client *Client

	HistoryTopic     string
	RecallToOmsTopic string
	OmsToRecallTopic string

	Timeout time.Duration
}

func NewCollector(c *Client) (col *Collector) {
	col = &Collector{
		Client:           c,
		HistoryTopic:     "RECALL.TICKET.HISTORY",
		RecallToOmsTopic: "RECALL.TO.OMS",
		OmsToRecallTopic: "OMS.TO.RECALL",
		Timeout:          time.Second,
	}

	if config.Shared != nil {
		r := config.Shared.Recovery
		col.HistoryTopic = r.TicketHistoryTopic
		col.RecallToOmsTopic = r.RecallToOmsTopic
		col.OmsToRecallTopic = r.OmsToRecallTopic
		col.Timeout = time.Duration(r.TimeoutMs) * time.Millisecond
	}

	return
}

// Collect drains all three topics concurrently, one goroutine per
// stream under a shared tomb. The first subscription failure kills the
// others; idle timeouts end a stream cleanly.
func (col *Collector) Collect(ctx context.Context, agg *txlog.Aggregator) (err error) {
	start := time.Now()

	var tb tomb.Tomb
	tb.Go(func() error {
		return col.drain(ctx, &tb, col.HistoryTopic, txlog.SourceTicketHistory, agg)
	})
	tb.Go(func() error {
		return col.drain(ctx, &tb, col.RecallToOmsTopic, txlog.SourceRecallToOms, agg)
	})
	tb.Go(func() error {
		return col.drain(ctx, &tb, col.OmsToRecallTopic, txlog.SourceOmsToRecall, agg)
	})

	err = tb.Wait()
	if err != nil {
		logger.Errorf("replay failed after %s, err:%s", time.Since(start), err)
		return
	}

	logger.Infof("replay done entries:%d cost:%s", agg.Len(), time.Since(start))
	return
}

func (col *Collector) drain(ctx context.Context, tb *tomb.Tomb, subject string, src txlog.Source, agg *txlog.Aggregator) (err error) {
	ch := make(chan *nats.Msg, 256)
	sub, err := col.Client.Js.ChanSubscribe(subject, ch, nats.DeliverAll(), nats.AckNone())
	if err != nil {
		return
	}
	defer sub.Unsubscribe()

	timer := time.NewTimer(col.Timeout)
	defer timer.Stop()

	count, dropped := 0, 0
	for {
		select {
		case m, ok := <-ch:
			if !ok {
				return
			}

			e, err2 := decodeEntry(src, string(m.Data))
			if err2 != nil {
				dropped++
				logger.Errorf("replay %s skipped message, err:%s", subject, err2)
			} else {
				agg.Add(e)
				count++
			}

			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(col.Timeout)

		case <-timer.C:
			logger.Infof("replay %s idle, closed with count:%d dropped:%d", subject, count, dropped)
			return

		case <-tb.Dying():
			return

		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// decodeEntry turns one raw payload into a log entry: tickets off the
// history stream, orders and exec reports off the OMS streams.
func decodeEntry(src txlog.Source, raw string) (e *txlog.Entry, err error) {
	if src == txlog.SourceTicketHistory {
		t, err2 := recall.DecodeTicket(raw)
		if err2 != nil {
			return nil, err2
		}
		return txlog.NewTicketEntry(t)
	}

	payload, err := recall.DecodeOmsPayload(raw)
	if err != nil {
		return
	}

	switch p := payload.(type) {
	case *recall.Order:
		return txlog.NewOrderEntry(src, p)
	case *recall.ExecutionReport:
		return txlog.NewExecReportEntry(src, p)
	}

	return nil, fmt.Errorf("unsupported payload type %T", payload)
}
