package recovery

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"rrs/pkg/bookmark"
	"rrs/pkg/cache"
	"rrs/pkg/config"
	"rrs/pkg/info"
	"rrs/pkg/journal"
	"rrs/pkg/recall"
	"rrs/pkg/txlog"
)

// Counters is the recovery pass tally reported in the summary line.
type Counters struct {
	Processed        int64
	Rebuilt          int64
	Republished      int64
	Ignored          int64
	Errored          int64
	DiscardedHistory int64
	DiscardedOms     int64
}

// Publisher sends an outbound message; the NATS client satisfies this.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Replayer fills the aggregator from the three topic streams, bounded by
// the configured replay window.
type Replayer interface {
	Collect(ctx context.Context, agg *txlog.Aggregator) error
}

// Worker drives one recovery pass: bookmark the streams, replay, then
// rebuild, compare and execute per order. It runs single-threaded; only
// the aggregator sees concurrent traffic.
type Worker struct {
	Cache     *cache.Cache
	Bookmarks bookmark.Store
	Replayer  Replayer
	Publisher Publisher
	Journal   *journal.Journal

	RunID       string
	TicketTopic string
	DfdTopic    string

	Counters Counters

	ticketBookmarkRaw string
	omsBookmarkRaw    string
	outcomeSeq        int64
}

func NewWorker(c *cache.Cache, store bookmark.Store, rep Replayer, pub Publisher) (w *Worker) {
	w = &Worker{
		Cache:       c,
		Bookmarks:   store,
		Replayer:    rep,
		Publisher:   pub,
		RunID:       info.InstanceID,
		TicketTopic: "RECALL.TICKET",
		DfdTopic:    "OMS.DFD.REQUEST",
	}

	if config.Shared != nil {
		w.TicketTopic = config.Shared.Recovery.RecallTicketTopic
		w.DfdTopic = config.Shared.Recovery.DfdRequestTopic
	}

	return
}

// Run executes the recovery pass behind the cache's initialization
// barrier and opens reads on success.
func (w *Worker) Run(ctx context.Context) (err error) {
	return w.Cache.Initialize(func() error {
		return w.Recover(ctx)
	})
}

// Recover is the raw pass without the barrier, exposed for the ready
// signal wiring.
func (w *Worker) Recover(ctx context.Context) (err error) {
	start := time.Now()
	logger.Infof("recovery start runID:%s", w.RunID)

	defer func() {
		if err != nil {
			logger.Errorf("recovery failed runID:%s err:%s", w.RunID, err)
		}
	}()

	ticketRaw, ticketBm, hasTicketBm := w.fetchBookmark(ctx, bookmark.StreamTicket)
	omsRaw, omsBm, hasOmsBm := w.fetchBookmark(ctx, bookmark.StreamOms)
	w.ticketBookmarkRaw = ticketRaw
	w.omsBookmarkRaw = omsRaw

	agg := txlog.NewAggregator()
	if w.Replayer != nil {
		err = w.Replayer.Collect(ctx, agg)
		if err != nil {
			return
		}
	} else {
		logger.Warningf("no replayer configured, recovering from an empty log")
	}

	for _, orderID := range agg.OrderIDs() {
		w.processOrder(orderID, agg.Entries(orderID), ticketBm, hasTicketBm, omsBm, hasOmsBm)
	}

	w.logSummary(time.Since(start))

	return
}

// fetchBookmark resolves one stream's replay position. Store errors are
// downgraded to "no filter", a broken bookmark must not stop recovery.
func (w *Worker) fetchBookmark(ctx context.Context, stream string) (raw string, t time.Time, ok bool) {
	if w.Bookmarks == nil {
		return
	}

	raw, err := w.Bookmarks.Bookmark(ctx, stream)
	if err != nil {
		logger.Warningf("bookmark fetch failed stream:%s, recovering without filter, err:%s", stream, err)
		return "", time.Time{}, false
	}

	t, ok = bookmark.Parse(raw)
	return
}

func (w *Worker) processOrder(orderID string, entries []*txlog.Entry,
	ticketBm time.Time, hasTicketBm bool, omsBm time.Time, hasOmsBm bool) {

	w.Counters.Processed++

	defer func() {
		if r := recover(); r != nil {
			w.Counters.Errored++
			logger.Errorf("recovery orderID:%s panicked with %v", orderID, r)
		}
	}()

	var hist, oms []*txlog.Entry
	for _, e := range entries {
		switch e.Source() {
		case txlog.SourceTicketHistory:
			if hasTicketBm && e.Timestamp().After(ticketBm) {
				w.Counters.DiscardedHistory++
				continue
			}
			hist = append(hist, e)
		case txlog.SourceRecallToOms, txlog.SourceOmsToRecall:
			if hasOmsBm && e.Timestamp().After(omsBm) {
				w.Counters.DiscardedOms++
				continue
			}
			oms = append(oms, e)
		}
	}

	sortEntries(hist)
	sortEntries(oms)

	if len(hist) == 0 {
		w.Counters.Ignored++
		logger.Debugf("recovery orderID:%s has no valid history, skipped", orderID)
		return
	}

	c := &Context{
		OrderID:              orderID,
		TicketHistoryEntry:   hist[len(hist)-1],
		TicketHistoryEntries: hist,
		OmsEntries:           oms,
		LatestRecallToOms:    latestBySource(oms, txlog.SourceRecallToOms),
		LatestOmsToRecall:    latestBySource(oms, txlog.SourceOmsToRecall),
	}

	action := Compare(c)
	w.execute(c, action)
	w.journalOutcome(c, action)
}

func (w *Worker) execute(c *Context, action Action) {
	switch action {
	case ActionRebuild:
		ticket, order := c.Ticket(), c.Order()
		w.Cache.UpdateRecallTicket(ticket.ID, ticket)
		w.Cache.UpdateOrder(c.OrderID, order)
		w.Counters.Rebuilt++

		if c.NeedsDfdRequest {
			w.publishDfd(order)
		}
		if c.ForceTicketStateUpdate {
			logger.Errorf("recovery orderID:%s ticket state forced from %s to %s with matching quantities",
				c.OrderID, c.PreviousTicketState, order.CurrentState)
		}

	case ActionRepublish:
		ticket, order := c.Ticket(), c.Order()
		w.Cache.UpdateRecallTicket(ticket.ID, ticket)
		w.Cache.UpdateOrder(c.OrderID, order)
		w.Counters.Republished++

		w.republishTicket(ticket)

	default:
		w.Counters.Ignored++
	}
}

func (w *Worker) publishDfd(order *recall.Order) {
	if w.Publisher == nil {
		logger.Warningf("no publisher configured, dfd request skipped orderID:%s", order.OrderID)
		return
	}

	msg := recall.BuildDfdRequest(order, recall.DfdEvent)
	err := w.Publisher.Publish(w.DfdTopic, []byte(msg))
	if err != nil {
		w.Counters.Errored++
		logger.Errorf("dfd publish failed orderID:%s err:%s", order.OrderID, err)
	}
}

func (w *Worker) republishTicket(t *recall.Ticket) {
	if w.Publisher == nil {
		logger.Warningf("no publisher configured, republish skipped ticketID:%s", t.ID)
		return
	}

	data, err := json.Marshal(t)
	if err != nil {
		w.Counters.Errored++
		logger.Errorf("republish marshal failed ticketID:%s err:%s", t.ID, err)
		return
	}

	err = w.Publisher.Publish(w.TicketTopic, data)
	if err != nil {
		w.Counters.Errored++
		logger.Errorf("republish failed ticketID:%s err:%s", t.ID, err)
	}
}

func (w *Worker) journalOutcome(c *Context, action Action) {
	if w.Journal == nil {
		return
	}

	w.outcomeSeq++
	line := OutcomeLine{
		Type:              LineTypeOutcome,
		RunID:             w.RunID,
		Seq:               w.outcomeSeq,
		OrderID:           c.OrderID,
		Action:            action.String(),
		PrevTicketState:   string(c.PreviousTicketState),
		NeedsDfd:          c.NeedsDfdRequest,
		ForcedTicketState: c.ForceTicketStateUpdate,
		Ts:                time.Now(),
	}

	if o := c.Order(); o != nil {
		line.OrderState = string(o.CurrentState)
		line.RecallQty = o.OrdQty
		if o.FillRequest != nil {
			line.CumQty = o.FillRequest.CumQty
			line.AvgPrice = o.FillRequest.AvgPrice
		}
	}
	if t := c.Ticket(); t != nil {
		line.TicketState = string(t.CurrentState)
	}

	b, err := json.Marshal(line)
	if err == nil {
		err = w.Journal.Append(string(b))
	}
	if err != nil {
		logger.Warningf("journal outcome failed orderID:%s err:%s", c.OrderID, err)
	}
}

func (w *Worker) logSummary(cost time.Duration) {
	tickets, orders := w.Cache.Sizes()
	cs := w.Counters

	logger.Infof("recovery done runID:%s processed:%d rebuilt:%d republished:%d ignored:%d errored:%d "+
		"discardedHistory:%d discardedOms:%d cacheTickets:%d cacheOrders:%d cost:%s",
		w.RunID, cs.Processed, cs.Rebuilt, cs.Republished, cs.Ignored, cs.Errored,
		cs.DiscardedHistory, cs.DiscardedOms, tickets, orders, cost)

	if w.Journal == nil {
		return
	}

	line := SummaryLine{
		Type:             LineTypeSummary,
		RunID:            w.RunID,
		Processed:        cs.Processed,
		Rebuilt:          cs.Rebuilt,
		Republished:      cs.Republished,
		Ignored:          cs.Ignored,
		Errored:          cs.Errored,
		DiscardedHistory: cs.DiscardedHistory,
		DiscardedOms:     cs.DiscardedOms,
		CacheTickets:     tickets,
		CacheOrders:      orders,
		TicketBookmark:   w.ticketBookmarkRaw,
		OmsBookmark:      w.omsBookmarkRaw,
		DurationMs:       cost.Milliseconds(),
		Ts:               time.Now(),
	}

	b, err := json.Marshal(line)
	if err == nil {
		err = w.Journal.Append(string(b))
	}
	if err != nil {
		logger.Warningf("journal summary failed runID:%s err:%s", w.RunID, err)
	}
}

func sortEntries(entries []*txlog.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp().Before(entries[j].Timestamp())
	})
}

func latestBySource(entries []*txlog.Entry, src txlog.Source) *txlog.Entry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Source() == src {
			return entries[i]
		}
	}
	return nil
}
