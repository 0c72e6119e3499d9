package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"rrs/pkg/archive"
	"rrs/pkg/bookmark"
	"rrs/pkg/cache"
	"rrs/pkg/config"
	"rrs/pkg/journal"
	"rrs/pkg/model"
	"rrs/pkg/recovery"
	"rrs/pkg/xetcd"
	"rrs/pkg/xlog"
	"rrs/pkg/xnats"
)

var logger = xlog.GetLogger()

var (
	fApp     string
	fLogDir  string
	fLogFile string
)

var (
	apps = map[string]bool{"recovery": true, "archiver": true, "jm": true, "prepare": true}
)

func init() {
	flag.StringVar(&fApp, "app", "", "")
	flag.StringVar(&fLogDir, "logdir", "", "")
	flag.StringVar(&fLogFile, "logfile", "", "")
}

func main() {
	var err error
	flag.Parse()

	if !apps[fApp] {
		validApps := ""
		for k := range apps {
			validApps += k + ", "
		}
		panic("invalid app, only (" + validApps + ") avaliable")
	}

	// Initialize the Shared config
	config.EasyInit()

	// Initialize the logger
	if fLogDir == "" {
		fLogDir = filepath.Join(config.Shared.DataDir, "logs")
	}
	if fLogFile == "" {
		fLogFile = fApp + ".log"
	}
	logPath := filepath.Join(fLogDir, fLogFile)
	xlog.Init(fApp, logPath)
	logger.Info(fApp + " started")
	logger.Infof("xlog in %s", logPath)

	// Handle signals
	go handleSignals()

	// Initialize the etcd instance when discovery is on; a dead etcd
	// downgrades to the configured urls
	if config.Shared.Etcd.Main.Enable {
		err = xetcd.InitShared([]string{config.Shared.Etcd.Main.Url})
		if err != nil {
			logger.Errorf("xetcd.InitShared failed, discovery off for this run, err:%s", err)
			config.Shared.Etcd.Main.Enable = false
		}
	}

	// Start the app
	switch fApp {
	case "recovery":
		err = startRecovery()
	case "archiver":
		err = startArchiver()
	case "jm":
		err = startJournalMonitor()
	case "prepare":
		err = Prepare()
	default:
		return
	}

	if err != nil {
		logger.Error(err)
		panic(err)
	}
}

// handleSignals handles linux signals
//
//	Function 1: Change log level via SIGUSR1 signal
//		docker exec <container_id> sh -c 'export XLOG_LVL=TRACE && kill -SIGUSR1 1'
func handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1)
	logLevelChan := make(chan string)

	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGUSR1 {
				// Read log level from environment variable
				level := os.Getenv("XLOG_LVL")
				if level != "" {
					logLevelChan <- level
				}
			}
		case level := <-logLevelChan:
			logger := xlog.GetLogger()
			logger.SetLevel(level)
			logger.Infof("Log level set to %s via signal", level)
		}
	}
}

// startRecovery runs the recovery service: replay the streams, rebuild
// and reconcile every order, then keep serving cache reads.
func startRecovery() (err error) {
	rds := model.OpenRedis("main")

	nc, err := xnats.Connect()
	if err != nil {
		return
	}
	defer nc.Close()

	err = nc.EnsureStreams()
	if err != nil {
		return
	}

	jnl, err := journal.Open(journal.DefaultPath())
	if err != nil {
		return
	}
	defer jnl.Close()

	ca := cache.New()

	w := recovery.NewWorker(ca, bookmark.NewRedisStore(rds), xnats.NewCollector(nc), nc)
	w.Journal = jnl

	// the read endpoint answers with an error until the barrier opens
	sub, err := xnats.ServeCacheReads(nc, ca)
	if err != nil {
		return
	}
	defer sub.Unsubscribe()

	// archive in-process when mysql is around
	if config.Shared.MySQL.Main.Enabled {
		model.DBInit()

		var arw *archive.Worker
		arw, err = archive.New("")
		if err != nil {
			return
		}

		go arw.Start()
	}

	sig := cache.NewReadySignal(ca)
	err = sig.OnReady(func() error {
		return w.Recover(context.Background())
	})
	if err != nil {
		return
	}

	logger.Infof("recovery service ready, serving cache reads")
	select {}
}

// startArchiver runs the journal archiver standalone
func startArchiver() (err error) {
	model.DBInit()

	db := model.GetMySQL()
	err = db.AutoMigrate(model.RecoveryRun{}, model.RecoveryOutcome{}, model.Lastkv{})
	if err != nil {
		return
	}

	w, err := archive.New("")
	if err != nil {
		return
	}

	return w.Start()
}

// startJournalMonitor starts the journal monitor app
//
//	Function 1: Monitor the journal log files and print the throughput every 30 seconds
func startJournalMonitor() (err error) {
	for {
		time.Sleep(30 * time.Second)
		err = runJournalMonitorOne()
		if err != nil {
			logger.Errorf("runJournalMonitorOne failed with err:%s", err)
		}
	}
}

// runJournalMonitorOne runs the journal monitor one time
//
//	Function 1: Traverse all files ending with .log,
//		read the first and last line of each file,
//		each line should be a json object,
//		parse out {seq: int64, ts: time} values,
//		calculate the time difference and seq difference, and output
func runJournalMonitorOne() (err error) {
	dir := filepath.Dir(journal.DefaultPath())

	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(info.Name(), ".log") {
			return nil
		}

		jnl, err := journal.Open(p)
		if err != nil {
			return err
		}
		defer jnl.Close()

		firstLine, err := jnl.FirstLine()
		if err != nil {
			return err
		}
		lastLine, err := jnl.LastLine()
		if err != nil {
			return err
		}

		var firstLog, lastLog struct {
			Seq       int64     `json:"seq"`
			Processed int64     `json:"processed"`
			Ts        time.Time `json:"ts"`
		}

		if err := json.Unmarshal([]byte(firstLine), &firstLog); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(lastLine), &lastLog); err != nil {
			return err
		}

		// a finished run ends on a summary line, which carries the
		// outcome count as processed instead of seq
		if lastLog.Seq == 0 {
			lastLog.Seq = lastLog.Processed
		}

		duration := lastLog.Ts.Sub(firstLog.Ts)
		seqDiff := lastLog.Seq - firstLog.Seq

		rate := int64(0)
		if int64(duration.Seconds()) > 0 {
			rate = seqDiff / int64(duration.Seconds())
		}
		fmt.Printf(
			"Benchmark: %s holds %d outcomes over %s ending %s with rate %d/sec\n",
			p, seqDiff, duration, lastLog.Ts.Format(time.RFC3339), rate,
		)

		return nil
	})
	if err != nil {
		return
	}

	return
}
