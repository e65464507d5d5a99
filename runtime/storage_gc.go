package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const gcDiscardRatio = 0.5

// StorageGCWorker reclaims space in the store's value log. Badger never
// garbage-collects on its own, so the worker triggers a pass periodically
// and loops while passes keep finding garbage.
type StorageGCWorker struct {
	db       *badger.DB
	log      *slog.Logger
	interval time.Duration
}

func NewStorageGCWorker(db *badger.DB, log *slog.Logger, interval time.Duration) *StorageGCWorker {
	return &StorageGCWorker{db: db, log: log, interval: interval}
}

func (w *StorageGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for {
				err := w.db.RunValueLogGC(gcDiscardRatio)
				if err == badger.ErrNoRewrite {
					break
				}
				if err != nil {
					w.log.Warn("value log gc failed", "error", err)
					break
				}
				w.log.Debug("value log gc pass reclaimed space")
			}
		}
	}
}
