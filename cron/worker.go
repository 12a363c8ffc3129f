package cron

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/config"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/services/portal"
	syncsvc "github.com/SNS-EUGENE/sto-mediacenter-sub001/services/sync"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSyncRun = "sync:run"

// InitSyncWorker starts the asynq scheduler and worker that run the
// background sync on a fixed cadence. Disabled when SYNC_INTERVAL_MINUTES is
// zero; manual syncs via the HTTP endpoint are unaffected either way.
func InitSyncWorker(engine syncsvc.Engine) {
	interval := config.AppConfig.SyncIntervalMinutes
	if interval <= 0 {
		utils.GetLogger().Info("background sync disabled (SYNC_INTERVAL_MINUTES=0)")
		return
	}

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register(
		fmt.Sprintf("@every %dm", interval),
		asynq.NewTask(TypeSyncRun, nil),
	); err != nil {
		log.Fatalf("[SyncWorker] failed to register periodic sync: %v", err)
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			// One scrape at a time; the engine rejects overlaps anyway.
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSyncRun, handleSyncTask(engine))

	go func() {
		log.Println("[SyncWorker] starting scheduler...")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[SyncWorker] scheduler failed: %v", err)
		}
	}()
	go func() {
		log.Println("[SyncWorker] starting worker...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[SyncWorker] worker failed: %v", err)
		}
	}()
}

func handleSyncTask(engine syncsvc.Engine) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		logger := utils.GetLogger()

		result, err := engine.Sync(ctx, config.AppConfig.SyncMaxRecords, config.AppConfig.SyncFetchDetail)
		if errors.Is(err, syncsvc.ErrAlreadySyncing) {
			logger.Info("scheduled sync skipped, another sync is running")
			return nil
		}
		if portal.CodeOf(err) == portal.CodeAuthRequired {
			// No point retrying until someone logs in again.
			logger.Warn("scheduled sync skipped, portal login required")
			return nil
		}
		if err != nil {
			return err
		}

		logger.Info("scheduled sync completed",
			zap.Int("total", result.TotalCount),
			zap.Int("new", len(result.NewBookings)),
			zap.Int("changed", len(result.StatusChanges)))
		return nil
	}
}
