package persister

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Sweeper runs the retention policy on a fixed cadence, independent of the
// scrape scheduler (§4.6 retention, §9 "standalone sweeper job"). Grounded on
// the prior cmd/tools/ttl-manager, which runs the same kind of
// DELETE-on-cadence job against a single table; generalized here to the
// three-table retention sweep §4.6 describes.
type Sweeper struct {
	store           *Store
	historyWindow   time.Duration
	matchRetention  time.Duration
	finishedAfter   time.Duration
}

// NewSweeper wires the sweeper to its store. historyWindow defaults to 7
// days and matchRetention to 30 days when zero, matching §6's defaults.
func NewSweeper(store *Store, historyWindow, matchRetention time.Duration) *Sweeper {
	if historyWindow <= 0 {
		historyWindow = 7 * 24 * time.Hour
	}
	if matchRetention <= 0 {
		matchRetention = 30 * 24 * time.Hour
	}
	return &Sweeper{
		store:          store,
		historyWindow:  historyWindow,
		matchRetention: matchRetention,
		finishedAfter:  4 * time.Hour,
	}
}

// Run executes one sweep pass: mark matches finished once their grace period
// has elapsed, trim odds_history beyond the retention window, and delete
// matches (cascading to their odds rows) older than the match retention
// window.
func (sw *Sweeper) Run(ctx context.Context, now time.Time) error {
	finished, err := sw.markFinished(ctx, now)
	if err != nil {
		return fmt.Errorf("sweeper: mark finished: %w", err)
	}
	trimmed, err := sw.trimHistory(ctx, now)
	if err != nil {
		return fmt.Errorf("sweeper: trim history: %w", err)
	}
	purged, err := sw.purgeOldMatches(ctx, now)
	if err != nil {
		return fmt.Errorf("sweeper: purge matches: %w", err)
	}
	slog.Info("sweeper: cycle complete", "marked_finished", finished, "history_rows_trimmed", trimmed, "matches_purged", purged)
	return nil
}

func (sw *Sweeper) markFinished(ctx context.Context, now time.Time) (int64, error) {
	res, err := sw.store.db.ExecContext(ctx,
		`UPDATE match SET status = 'finished'
		 WHERE status IN ('upcoming', 'live') AND start_time + $1::interval <= $2`,
		fmt.Sprintf("%d seconds", int64(sw.finishedAfter.Seconds())), now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (sw *Sweeper) trimHistory(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-sw.historyWindow)
	res, err := sw.store.db.ExecContext(ctx, `DELETE FROM odds_history WHERE observed_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (sw *Sweeper) purgeOldMatches(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-sw.matchRetention)
	res, err := sw.store.db.ExecContext(ctx,
		`DELETE FROM match WHERE status = 'finished' AND start_time < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
