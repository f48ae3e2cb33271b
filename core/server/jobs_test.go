package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"slotshare/core/config"
	"slotshare/core/constants"

	"github.com/hibiken/asynq"
)

func TestScheduledTasksUseConfiguredSchedules(t *testing.T) {
	tasks := scheduledTasks(config.QueueConfig{CleanupSchedule: "@every 1m", EvictSchedule: "@every 2m"})
	want := map[string]string{
		constants.TaskCleanupOAuthStates:  "@every 1m",
		constants.TaskEvictIdleWorkspaces: "@every 2m",
	}
	if len(tasks) != len(want) {
		t.Fatalf("tasks = %+v", tasks)
	}
	for _, task := range tasks {
		if want[task.taskType] != task.cronspec {
			t.Errorf("%s scheduled %q", task.taskType, task.cronspec)
		}
	}
}

func TestRunInProcessCallsHandlers(t *testing.T) {
	var cleanups, evictions atomic.Int32
	mux := asynq.NewServeMux()
	mux.HandleFunc(constants.TaskCleanupOAuthStates, func(context.Context, *asynq.Task) error {
		cleanups.Add(1)
		return nil
	})
	mux.HandleFunc(constants.TaskEvictIdleWorkspaces, func(context.Context, *asynq.Task) error {
		evictions.Add(1)
		return nil
	})

	stop := runInProcess(mux, scheduledTasks(config.QueueConfig{}), time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for (cleanups.Load() == 0 || evictions.Load() == 0) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()

	if cleanups.Load() == 0 || evictions.Load() == 0 {
		t.Errorf("cleanups = %d evictions = %d", cleanups.Load(), evictions.Load())
	}
}
