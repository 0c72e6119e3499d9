package xlog_test

import (
	"os"
	"path"
	"testing"

	"rrs/pkg/xlog"

	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	logPath := path.Join(t.TempDir(), "logs/xlog-test.log")
	xlog.Init("test", logPath)
	logger := xlog.GetLogger()
	require.NotNil(t, logger)

	logger.SetLevel("TRACE")

	logger.Trace("this is trace")
	logger.Debug("this is debug")
	logger.Info("this is info")
	logger.Warning("this is warning")
	logger.Error("this is error")

	_, err := os.Stat(logPath)
	require.NoError(t, err)
}

func TestSetLevel(t *testing.T) {
	logger := xlog.GetLogger()
	logger.SetLevel("ERROR")
	require.Equal(t, xlog.ERROR, logger.GetLevel())

	logger.SetLevel("nope")
	require.Equal(t, xlog.ERROR, logger.GetLevel())

	logger.SetLevelNum(xlog.INFO)
	require.Equal(t, xlog.INFO, logger.GetLevel())
}
