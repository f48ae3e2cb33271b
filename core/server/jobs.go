package server

import (
	"context"
	"fmt"
	"time"

	"slotshare/core/config"
	"slotshare/core/constants"
	"slotshare/core/logger"

	"github.com/hibiken/asynq"
)

// fallbackJobInterval drives the periodic tasks in-process when Redis is not
// reachable.
const fallbackJobInterval = 10 * time.Minute

type scheduledTask struct {
	taskType string
	cronspec string
}

func scheduledTasks(cfg config.QueueConfig) []scheduledTask {
	return []scheduledTask{
		{taskType: constants.TaskCleanupOAuthStates, cronspec: cfg.CleanupSchedule},
		{taskType: constants.TaskEvictIdleWorkspaces, cronspec: cfg.EvictSchedule},
	}
}

// startJobs runs the periodic maintenance tasks registered on mux. With Redis
// they go through an asynq scheduler and worker; without it a ticker calls
// the handlers directly.
func startJobs(cfg *config.Config, redisAvailable bool, mux *asynq.ServeMux) (func(), error) {
	tasks := scheduledTasks(cfg.Queue)

	if !redisAvailable {
		logger.Warn("Server:Jobs:InProcess", "interval", fallbackJobInterval.String())
		return runInProcess(mux, tasks, fallbackJobInterval), nil
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	worker := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Queue.Concurrency,
		LogLevel:    asynq.WarnLevel,
	})
	if err := worker.Start(mux); err != nil {
		return nil, fmt.Errorf("start job worker: %w", err)
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		LogLevel: asynq.WarnLevel,
	})
	for _, t := range tasks {
		entryID, err := scheduler.Register(t.cronspec, asynq.NewTask(t.taskType, nil), asynq.MaxRetry(1))
		if err != nil {
			worker.Shutdown()
			return nil, fmt.Errorf("schedule %s: %w", t.taskType, err)
		}
		logger.Info("Server:Jobs:Scheduled", "task", t.taskType, "cron", t.cronspec, "entry_id", entryID)
	}
	if err := scheduler.Start(); err != nil {
		worker.Shutdown()
		return nil, fmt.Errorf("start job scheduler: %w", err)
	}

	return func() {
		scheduler.Shutdown()
		worker.Shutdown()
	}, nil
}

func runInProcess(handler asynq.Handler, tasks []scheduledTask, interval time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, t := range tasks {
					if err := handler.ProcessTask(ctx, asynq.NewTask(t.taskType, nil)); err != nil {
						logger.Error("Server:Jobs:InProcess:Error", "task", t.taskType, "error", err)
					}
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
