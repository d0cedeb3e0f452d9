package tasks

import (
	"context"

	"github.com/recomarr/recomarr/internal/library"
	"github.com/recomarr/recomarr/internal/recommend"
	"github.com/recomarr/recomarr/internal/scheduler"
)

const SnapshotRefreshTaskID = "snapshot-refresh"

// Broadcaster interface for sending events to clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// RegisterSnapshotRefreshTask keeps the library snapshots warm so the first
// recommendation after an idle period doesn't pay the listing round-trips.
// Refresh failures leave the previous snapshots in place. Each successful
// refresh is announced to connected clients with the new item counts.
func RegisterSnapshotRefreshTask(sched *scheduler.Scheduler, cache *library.Cache, broadcaster Broadcaster) error {
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          SnapshotRefreshTaskID,
		Name:        "Snapshot Refresh",
		Description: "Refreshes the Sonarr and Radarr library snapshots",
		Cron:        "*/15 * * * *",
		RunOnStart:  true,
		Func:        snapshotRefreshFunc(cache, broadcaster),
	})
}

func snapshotRefreshFunc(cache *library.Cache, broadcaster Broadcaster) scheduler.TaskFunc {
	return func(ctx context.Context) error {
		if err := cache.Refresh(ctx); err != nil {
			return err
		}
		if broadcaster != nil {
			broadcaster.Broadcast(recommend.EventSnapshotRefreshed, recommend.SnapshotRefreshedPayload{
				Series: len(cache.Get(ctx, library.SourceSeries, cache.TTL()).Items),
				Movies: len(cache.Get(ctx, library.SourceMovie, cache.TTL()).Items),
			})
		}
		return nil
	}
}
