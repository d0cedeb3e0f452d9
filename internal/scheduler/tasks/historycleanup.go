package tasks

import (
	"context"

	"github.com/recomarr/recomarr/internal/history"
	"github.com/recomarr/recomarr/internal/scheduler"
)

const HistoryCleanupTaskID = "history-cleanup"

// RegisterHistoryCleanupTask registers the nightly history cleanup. Entries
// older than retentionDays are deleted; a non-positive retention disables
// the deletion but keeps the task visible in the task list.
func RegisterHistoryCleanupTask(sched *scheduler.Scheduler, historyService *history.Service, retentionDays int) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          HistoryCleanupTaskID,
		Name:        "History Cleanup",
		Description: "Deletes history entries older than the configured retention period",
		Cron:        "0 2 * * *",
		RunOnStart:  false,
		Func: func(ctx context.Context) error {
			_, err := historyService.Cleanup(ctx, retentionDays)
			return err
		},
	})
}
