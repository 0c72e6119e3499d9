package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"rrs/pkg/bookmark"
	"rrs/pkg/config"
	"rrs/pkg/model"
	"rrs/pkg/xetcd"
	"rrs/pkg/xnats"
)

// Prepare prepares mysql, nats, etcd and the bookmark keys for a local
// docker compose run
func Prepare() (err error) {

	// 0. Check if prepared

	filePath := "/tmp/rrs_prepared_flag"

	_, err = os.Stat(filePath)
	if err == nil || !os.IsNotExist(err) {
		// already prepared, just wait
		select {}
	}

	// 1. Prepare database

	if config.Shared.MySQL.Main.Enabled {
		model.DBInit()
		db := model.GetMySQL()

		type TableName struct {
			TableName string `gorm:"column:TABLE_NAME"`
		}
		var tableNames []TableName
		db.Raw("SELECT TABLE_NAME FROM information_schema.tables WHERE table_schema = DATABASE()").Scan(&tableNames)

		for _, t := range tableNames {
			db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS `%s`", t.TableName))
		}

		err = db.AutoMigrate(model.RecoveryRun{}, model.RecoveryOutcome{}, model.Lastkv{})
		if err != nil {
			logger.Debugf("prepare failed with err:%s", err)
			return
		}
	}

	// 2. Prepare nats

	nc, err := xnats.Connect()
	if err != nil {
		logger.Debugf("prepare failed with err:%s", err)
		return
	}
	defer nc.Close()

	err = nc.EnsureStreams()
	if err != nil {
		logger.Debugf("prepare failed with err:%s", err)
		return
	}

	// 3. Prepare etcd

	if config.Shared.Etcd.Main.Enable {
		err = xetcd.Put(xetcd.KeyNatsRecall(), config.Shared.Nats.Url)
		if err != nil {
			logger.Debugf("prepare failed with err:%s", err)
			return
		}
	}

	// 4. Seed the bookmark keys so the first replay has a bounded window

	rds := model.OpenRedis("main")
	store := bookmark.NewRedisStore(rds)
	mark := bookmark.Format(time.Now())

	ctx := context.Background()
	err = store.SaveBookmark(ctx, bookmark.StreamTicket, mark)
	if err != nil {
		logger.Debugf("prepare failed with err:%s", err)
		return
	}
	err = store.SaveBookmark(ctx, bookmark.StreamOms, mark)
	if err != nil {
		logger.Debugf("prepare failed with err:%s", err)
		return
	}

	// 5. Create flag file -- set prepared

	_, err = os.Create(filePath)
	if err != nil {
		logger.Debugf("prepare failed with err:%s", err)
		return
	}

	logger.Infof("prepared, bookmarks seeded at %s", mark)
	select {}
}
