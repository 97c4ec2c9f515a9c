package database

import (
	"fmt"
	log "log/slog"
	"time"
)

// Prune deletes events recorded before cutoff and returns how many were removed.
func (j *Journal) Prune(cutoff time.Time) (int64, error) {
	stmt, err := j.db.Prepare("DELETE FROM post_events WHERE timestamp < ?")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("pruned post journal", "removed", rowsAffected, "before", cutoff)
	return rowsAffected, nil
}

// PruneOlderThan deletes events older than retention. A non-positive
// retention keeps everything.
func (j *Journal) PruneOlderThan(retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return j.Prune(time.Now().Add(-retention))
}
