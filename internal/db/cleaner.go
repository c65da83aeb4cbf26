package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger deletes submission records created before cutoff and returns their ids.
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

// CodeRemover deletes the stored code of a submission.
type CodeRemover interface {
	Remove(id string) error
}

// StartRetentionCleaner purges submissions older than retention every
// interval, removing their code files too. It stops when ctx is done.
func StartRetentionCleaner(
	ctx context.Context,
	purger Purger,
	codes CodeRemover,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				ids, err := purger.PurgeBefore(ctx, cutoff)
				if err != nil {
					log.Error("failed to purge expired submissions", zap.Error(err))
					continue
				}
				for _, id := range ids {
					if err := codes.Remove(id); err != nil {
						log.Warn("failed to remove code file", zap.String("id", id), zap.Error(err))
					}
				}
				if len(ids) > 0 {
					log.Info("purged expired submissions", zap.Int("removed", len(ids)))
				}
			}
		}
	}()
}
