package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartArchiveCleaner periodically deletes ideas that have sat in the
// archived column for longer than retention, together with their subtasks.
// It returns immediately; the loop stops when ctx is done.
func StartArchiveCleaner(
	ctx context.Context,
	db *sql.DB,
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
				removed, err := purgeArchived(ctx, db, time.Now().Add(-retention).UTC())
				if err != nil {
					log.Error("failed to clean archived ideas", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned archived ideas", zap.Int64("removed", removed))
				}
			}
		}
	}()
}

func purgeArchived(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
        DELETE FROM subtasks
         WHERE idea_id IN (SELECT id FROM ideas WHERE status = 'archived' AND updated_at < $1)
    `, cutoff); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `
        DELETE FROM ideas
         WHERE status = 'archived'
           AND updated_at < $1
    `, cutoff)
	if err != nil {
		return 0, err
	}
	rows, _ := res.RowsAffected()
	return rows, tx.Commit()
}
