package model_test

import (
	"net"
	"os"
	"path"
	"testing"
	"time"

	"rrs/pkg/config"
	"rrs/pkg/model"
	"rrs/pkg/xlog"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	conn, err := net.DialTimeout("tcp", "127.0.0.1:3306", time.Second)
	if err != nil {
		t.Skipf("mysql not available: %v", err)
	}
	conn.Close()

	config.Shared = &config.Config{
		IsDebug: true,
	}

	config.Shared.MySQL.Main = config.MySQLServer{
		Host:         "127.0.0.1",
		User:         "rrs",
		Pass:         "localdbtestpwd",
		DB:           "rrs",
		Port:         3306,
		MaxOpenConns: 8,
	}

	xlog.Init("test", path.Join(os.TempDir(), "rrs-model-test.log"))

	return model.OpenMySQL()
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)

	require.Nil(t, db.AutoMigrate(model.RecoveryRun{}))
	require.Nil(t, db.AutoMigrate(model.RecoveryOutcome{}))
	require.Nil(t, db.AutoMigrate(model.Lastkv{}))
}

func TestGormTimeValue(t *testing.T) {
	var zero model.GormTime
	v, err := zero.Value()
	require.Nil(t, err)
	require.Equal(t, "1000-01-01 08:00:00.000", v)

	at := model.GormTime(time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC))
	v, err = at.Value()
	require.Nil(t, err)
	require.Equal(t, "2026-03-02 09:30:00", v)
}
