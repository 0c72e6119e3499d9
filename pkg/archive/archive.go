// Package archive tails the recovery journal and writes its lines to
// MySQL in batches, so recovery outcomes survive log rotation.
package archive

import (
	"encoding/json"
	"strings"
	"time"

	"rrs/pkg/journal"
	"rrs/pkg/model"
	"rrs/pkg/recovery"
	"rrs/pkg/xlog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var logger = xlog.GetLogger()

// Worker is the journal archiver
type Worker struct {
	Name string

	jnl *journal.Journal

	savedSeqs map[string]int64 // runID -> highest journal seq written
}

// New opens the journal at path; an empty path means the configured
// default location.
func New(path string) (w *Worker, err error) {
	if path == "" {
		path = journal.DefaultPath()
	}

	w = &Worker{
		Name:      "archiver",
		savedSeqs: map[string]int64{},
	}

	w.jnl, err = journal.Open(path)
	if err != nil {
		return nil, err
	}

	logger.Infof("archive worker created path:%s", path)
	return
}

// Start runs the writer in rounds so a MySQL outage only costs the
// round, not the process
func (w *Worker) Start() (err error) {
	round := 0
	for {
		round++
		logger.Infof("archive round:%d started", round)
		err = w.Run()
		if err != nil {
			logger.Errorf("archive round:%d failed with err:%s", round, err)
		} else {
			logger.Infof("archive round:%d done", round)
		}
		time.Sleep(time.Second)
	}
}

// Run retrieves journal lines in real-time and writes them to MySQL
func (w *Worker) Run() (err error) {
	ch := make(chan string, 1000)

	go func() {
		err = w.jnl.Follow(ch)
		if err != nil {
			close(ch)
		}
	}()

	err2 := w.jnl.Drain(ch, w.ParseAndWriteLines)
	if err == nil {
		err = err2
	}

	return
}

type lineProbe struct {
	Type  string `json:"type"`
	RunID string `json:"runID"`
	Seq   int64  `json:"seq"`
}

// ParseAndWriteLines parses a batch of journal lines and writes them to
// MySQL in one transaction
func (w *Worker) ParseAndWriteLines(ss []string) (err error) {
	newOutcomes := make([]model.RecoveryOutcome, 0)
	newRuns := make([]model.RecoveryRun, 0)
	latestSeqs := map[string]int64{}

	for _, s := range ss {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		probe := new(lineProbe)
		if err = json.Unmarshal([]byte(s), probe); err != nil {
			// incomplete lines can show up when the tail races a write,
			// skip rather than stall the drain
			logger.Errorf("unmarshal journal line failed with data:%s, err:%s", s, err)
			err = nil
			continue
		}

		switch probe.Type {
		case recovery.LineTypeOutcome:
			var saved int64
			saved, err = w.LoadSavedSeq(probe.RunID)
			if err != nil {
				return
			}
			if probe.Seq <= saved {
				logger.Debugf("archive skip runID:%s seq:%d <= saved:%d", probe.RunID, probe.Seq, saved)
				continue
			}

			line := recovery.OutcomeLine{}
			if err = json.Unmarshal([]byte(s), &line); err != nil {
				logger.Errorf("unmarshal outcome line failed with data:%s, err:%s", s, err)
				err = nil
				continue
			}

			newOutcomes = append(newOutcomes, outcomeRow(line))
			if probe.Seq > latestSeqs[probe.RunID] {
				latestSeqs[probe.RunID] = probe.Seq
			}

		case recovery.LineTypeSummary:
			line := recovery.SummaryLine{}
			if err = json.Unmarshal([]byte(s), &line); err != nil {
				logger.Errorf("unmarshal summary line failed with data:%s, err:%s", s, err)
				err = nil
				continue
			}

			newRuns = append(newRuns, runRow(line))

		default:
			logger.Warningf("archive skip unknown journal line type:%s", probe.Type)
		}
	}

	if len(newOutcomes) == 0 && len(newRuns) == 0 {
		return
	}

	db := model.GetMySQL()
	err = db.Transaction(func(tx *gorm.DB) (err error) {
		if len(newOutcomes) > 0 {
			err = tx.Clauses(clause.OnConflict{DoNothing: true}).
				CreateInBatches(newOutcomes, len(newOutcomes)).Error
			if err != nil {
				return
			}
		}

		for _, run := range newRuns {
			err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&run).Error
			if err != nil {
				return
			}
		}

		// move the per-run watermark
		for runID, seq := range latestSeqs {
			err = tx.Model(model.Lastkv{}).
				Where(model.Lastkv{
					App: strings.ToLower(w.Name),
					Key: model.LASTKV_K_SAVED_SEQ + runID,
				}).
				Updates(&model.Lastkv{Val: seq}).
				Error
			if err != nil {
				return
			}
		}

		return nil
	})
	if err != nil {
		return
	}

	for runID, seq := range latestSeqs {
		if seq > w.savedSeqs[runID] {
			w.savedSeqs[runID] = seq
		}
	}

	return
}

// LoadSavedSeq reads a run's watermark, creating the row on first use
func (w *Worker) LoadSavedSeq(runID string) (seq int64, err error) {
	if v, ok := w.savedSeqs[runID]; ok {
		return v, nil
	}

	kv, err := w.CheckoutLastkv(model.LASTKV_K_SAVED_SEQ + runID)
	if err != nil {
		logger.Errorf("LoadSavedSeq failed with runID:%s, err:%s", runID, err)
		return
	}

	w.savedSeqs[runID] = kv.Val
	return kv.Val, nil
}

func (w *Worker) CheckoutLastkv(key string) (kv model.Lastkv, err error) {
	db := model.GetMySQL()

	kv = model.Lastkv{
		App: strings.ToLower(w.Name),
		Key: key,
	}
	err = db.Model(model.Lastkv{}).Where(kv).Limit(1).Find(&kv).Error
	if err != nil {
		return
	}
	if kv.ID > 0 {
		return
	}

	err = db.Model(model.Lastkv{}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "app"}, {Name: "key"}},
			DoNothing: true,
		}).
		Create(&kv).Error
	if err != nil {
		return
	}

	return
}

func outcomeRow(line recovery.OutcomeLine) model.RecoveryOutcome {
	return model.RecoveryOutcome{
		RunID:             line.RunID,
		Seq:               line.Seq,
		OrderID:           line.OrderID,
		Action:            line.Action,
		OrderState:        line.OrderState,
		TicketState:       line.TicketState,
		PrevTicketState:   line.PrevTicketState,
		NeedsDfd:          boolToTiny(line.NeedsDfd),
		ForcedTicketState: boolToTiny(line.ForcedTicketState),
		RecallQty:         line.RecallQty,
		CumQty:            line.CumQty,
		AvgPrice:          decimal.NewFromFloat(line.AvgPrice),
		Time:              model.GormTime(line.Ts),
	}
}

func runRow(line recovery.SummaryLine) model.RecoveryRun {
	return model.RecoveryRun{
		RunID:            line.RunID,
		Processed:        line.Processed,
		Rebuilt:          line.Rebuilt,
		Republished:      line.Republished,
		Ignored:          line.Ignored,
		Errored:          line.Errored,
		DiscardedHistory: line.DiscardedHistory,
		DiscardedOms:     line.DiscardedOms,
		CacheTickets:     line.CacheTickets,
		CacheOrders:      line.CacheOrders,
		TicketBookmark:   line.TicketBookmark,
		OmsBookmark:      line.OmsBookmark,
		DurationMs:       line.DurationMs,
		Time:             model.GormTime(line.Ts),
	}
}

func boolToTiny(b bool) int8 {
	if b {
		return 1
	}
	return 0
}
