package archive_test

import (
	"encoding/json"
	"net"
	"os"
	"path"
	"testing"
	"time"

	"rrs/pkg/archive"
	"rrs/pkg/config"
	"rrs/pkg/model"
	"rrs/pkg/recovery"
	"rrs/pkg/xlog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseAndWriteLines(t *testing.T) {
	conn, err := net.DialTimeout("tcp", "127.0.0.1:3306", time.Second)
	if err != nil {
		t.Skipf("mysql not available: %v", err)
	}
	conn.Close()

	config.Shared = &config.Config{
		IsDebug: true,
		DataDir: t.TempDir(),
	}
	config.Shared.MySQL.Main = config.MySQLServer{
		Host:         "127.0.0.1",
		User:         "rrs",
		Pass:         "localdbtestpwd",
		DB:           "rrs",
		Port:         3306,
		MaxOpenConns: 8,
	}

	xlog.Init("test", path.Join(os.TempDir(), "rrs-archive-test.log"))
	model.DBInit()

	db := model.GetMySQL()
	require.Nil(t, db.AutoMigrate(model.RecoveryRun{}, model.RecoveryOutcome{}, model.Lastkv{}))

	w, err := archive.New("")
	require.Nil(t, err)

	runID := uuid.New().String()

	outcome := recovery.OutcomeLine{
		Type:       recovery.LineTypeOutcome,
		RunID:      runID,
		Seq:        1,
		OrderID:    "RC-9001",
		Action:     "REBUILD",
		OrderState: "Filled",
		RecallQty:  500,
		CumQty:     500,
		AvgPrice:   10.5,
		Ts:         time.Now(),
	}
	summary := recovery.SummaryLine{
		Type:       recovery.LineTypeSummary,
		RunID:      runID,
		Processed:  1,
		Rebuilt:    1,
		DurationMs: 12,
		Ts:         time.Now(),
	}

	b1, err := json.Marshal(outcome)
	require.Nil(t, err)
	b2, err := json.Marshal(summary)
	require.Nil(t, err)
	lines := []string{string(b1), string(b2)}

	require.Nil(t, w.ParseAndWriteLines(lines))

	var count int64
	require.Nil(t, db.Model(model.RecoveryOutcome{}).Where("run_id = ?", runID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	// a replay of the same batch inserts nothing new
	require.Nil(t, w.ParseAndWriteLines(lines))
	require.Nil(t, db.Model(model.RecoveryOutcome{}).Where("run_id = ?", runID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var run model.RecoveryRun
	require.Nil(t, db.Model(model.RecoveryRun{}).Where("run_id = ?", runID).First(&run).Error)
	require.Equal(t, int64(1), run.Rebuilt)

	var kv model.Lastkv
	require.Nil(t, db.Model(model.Lastkv{}).
		Where("`app` = ? AND `key` = ?", "archiver", model.LASTKV_K_SAVED_SEQ+runID).
		First(&kv).Error)
	require.Equal(t, int64(1), kv.Val)
}
