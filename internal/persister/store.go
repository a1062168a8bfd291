// Package persister implements the bulk persister (§4.6): batched upserts
// into the relational store under the strict primary-key contract, plus the
// retention sweeper. Mirrors
// internal/pkg/storage/postgres_odds_snapshot_storage.go (schema-on-connect,
// ON CONFLICT upserts, composite unique index) generalized from one
// line-movement table to the full match/current_odds/odds_history/arbitrage
// schema in §6.
package persister

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/oddsforge/arbiter/internal/models"
)

// Store is the relational persistence layer. One *sql.DB connection pool is
// shared by every task in the pipeline (§5): only the bulk persister writes
// the odds tables, every other component only reads.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres, applies the schema, and bounds the shared
// connection pool (§5: "bounded, e.g. 50 connections").
func Open(ctx context.Context, dsn string, maxConns int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("persister: dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("persister: open: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 50
	}
	db.SetMaxOpenConns(maxConns)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("persister: ping: %w", err)
	}

	s := &Store{db: db}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("persister: init schema: %w", err)
	}
	slog.Info("persister: connected", "max_conns", maxConns)
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SeedVocabulary upserts the static provider/sport/bet_type tables loaded at
// startup (§3, §9 "dynamic runtime lookup tables... make them data").
func (s *Store) SeedVocabulary(ctx context.Context, providers []models.Provider, sports []models.SportID, betTypes map[int]models.BetType) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range providers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO provider (id, name, enabled, driver) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, enabled=EXCLUDED.enabled, driver=EXCLUDED.driver`,
			p.ID, p.Name, p.Enabled, string(p.Driver)); err != nil {
			return fmt.Errorf("seed provider %d: %w", p.ID, err)
		}
	}
	for _, sp := range sports {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sport (id, name) VALUES ($1,$2) ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name`,
			int(sp), sp.String()); err != nil {
			return fmt.Errorf("seed sport %d: %w", sp, err)
		}
	}
	for id, bt := range betTypes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bet_type (id, name, arity) VALUES ($1,$2,$3) ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, arity=EXCLUDED.arity`,
			id, bt.Name, int(bt.Arity)); err != nil {
			return fmt.Errorf("seed bet_type %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// UpsertMatches inserts any new matches and merges external ids on conflict
// on (team1_norm, team2_norm, sport_id, start_time), in one batched
// round-trip, returning the assigned internal id for each input match in the
// same order (§4.6 operation 1).
func (s *Store) UpsertMatches(ctx context.Context, matches []models.Match) ([]int64, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	var b strings.Builder
	args := make([]interface{}, 0, len(matches)*8)
	b.WriteString(`INSERT INTO match (team1_raw, team2_raw, team1_norm, team2_norm, sport_id, league_id, start_time, external_ids, status) VALUES `)
	for i, m := range matches {
		if i > 0 {
			b.WriteString(",")
		}
		extIDs, _ := json.Marshal(m.ExternalIDs)
		base := i * 9
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args, m.Team1Raw, m.Team2Raw, m.Team1Normalized, m.Team2Normalized,
			int(m.Sport), m.LeagueID, m.StartTime, string(extIDs), string(m.Status))
	}
	b.WriteString(` ON CONFLICT (team1_norm, team2_norm, sport_id, start_time) DO UPDATE SET
		external_ids = match.external_ids || EXCLUDED.external_ids
		RETURNING id`)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("upsert matches: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, len(matches))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// WriteOdds dedupes the batch in-memory by the five-tuple primary key, then
// upserts current_odds and appends the same rows to odds_history, both in
// one batched round-trip each (§4.6 operation 2). Duplicate-key conflicts
// from races between providers touching the same match are absorbed
// silently by the ON CONFLICT clause.
func (s *Store) WriteOdds(ctx context.Context, rows []models.CurrentOdds) error {
	deduped := dedupeByKey(rows)
	if len(deduped) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertCurrentOdds(ctx, tx, deduped); err != nil {
		return err
	}
	if err := appendOddsHistory(ctx, tx, deduped); err != nil {
		return err
	}
	return tx.Commit()
}

func dedupeByKey(rows []models.CurrentOdds) []models.CurrentOdds {
	seen := make(map[models.OddsKey]models.CurrentOdds, len(rows))
	order := make([]models.OddsKey, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.OddsKey]; !ok {
			order = append(order, r.OddsKey)
		}
		seen[r.OddsKey] = r // last observation in the batch wins
	}
	out := make([]models.CurrentOdds, 0, len(order))
	for _, k := range order {
		out = append(out, seen[k])
	}
	return out
}

func upsertCurrentOdds(ctx context.Context, tx *sql.Tx, rows []models.CurrentOdds) error {
	var b strings.Builder
	args := make([]interface{}, 0, len(rows)*9)
	b.WriteString(`INSERT INTO current_odds (match_id, provider_id, bet_type_id, margin, selection, p1, p2, p3, updated_at) VALUES `)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		base := i * 9
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args, r.MatchID, r.ProviderID, r.BetTypeID, r.Margin, r.Selection,
			nullableOdd(r.P1), nullableOdd(r.P2), nullableOdd(r.P3), r.UpdatedAt)
	}
	b.WriteString(` ON CONFLICT (match_id, provider_id, bet_type_id, margin, selection) DO UPDATE SET
		p1 = EXCLUDED.p1, p2 = EXCLUDED.p2, p3 = EXCLUDED.p3, updated_at = EXCLUDED.updated_at`)
	_, err := tx.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return fmt.Errorf("upsert current_odds: %w", err)
	}
	return nil
}

func appendOddsHistory(ctx context.Context, tx *sql.Tx, rows []models.CurrentOdds) error {
	var b strings.Builder
	args := make([]interface{}, 0, len(rows)*9)
	b.WriteString(`INSERT INTO odds_history (match_id, provider_id, bet_type_id, margin, selection, p1, p2, p3, observed_at) VALUES `)
	for i, r := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		base := i * 9
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args, r.MatchID, r.ProviderID, r.BetTypeID, r.Margin, r.Selection,
			nullableOdd(r.P1), nullableOdd(r.P2), nullableOdd(r.P3), r.UpdatedAt)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return fmt.Errorf("append odds_history: %w", err)
	}
	return nil
}

func nullableOdd(v float64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// CandidatesInWindow implements resolver.CandidateStore.
func (s *Store) CandidatesInWindow(ctx context.Context, sport models.SportID, from, to time.Time) ([]models.Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, team1_raw, team2_raw, team1_norm, team2_norm, sport_id, league_id, start_time, external_ids, status
		 FROM match WHERE sport_id = $1 AND start_time BETWEEN $2 AND $3`,
		int(sport), from, to)
	if err != nil {
		return nil, fmt.Errorf("candidates in window: %w", err)
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		var m models.Match
		var sportID int
		var extRaw string
		var status string
		if err := rows.Scan(&m.ID, &m.Team1Raw, &m.Team2Raw, &m.Team1Normalized, &m.Team2Normalized,
			&sportID, &m.LeagueID, &m.StartTime, &extRaw, &status); err != nil {
			return nil, err
		}
		m.Sport = models.SportID(sportID)
		m.Status = models.MatchStatus(status)
		_ = json.Unmarshal([]byte(extRaw), &m.ExternalIDs)
		out = append(out, m)
	}
	return out, rows.Err()
}

// LatestPrices implements resolver.CandidateStore.
func (s *Store) LatestPrices(ctx context.Context, matchID int64) ([]models.CurrentOdds, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_id, provider_id, bet_type_id, margin, selection, COALESCE(p1,0), COALESCE(p2,0), COALESCE(p3,0), updated_at
		 FROM current_odds WHERE match_id = $1`, matchID)
	if err != nil {
		return nil, fmt.Errorf("latest prices: %w", err)
	}
	defer rows.Close()

	var out []models.CurrentOdds
	for rows.Next() {
		var c models.CurrentOdds
		if err := rows.Scan(&c.MatchID, &c.ProviderID, &c.BetTypeID, &c.Margin, &c.Selection, &c.P1, &c.P2, &c.P3, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ActiveOddsForArbitrage returns every current_odds row whose match has not
// yet started, grouped implicitly for the caller by (match_id, bet_type_id,
// margin), plus each involved match's start time so the caller can stamp
// each opportunity's expiry in one pass instead of querying per match
// (§4.7 input).
func (s *Store) ActiveOddsForArbitrage(ctx context.Context, now time.Time) ([]models.CurrentOdds, map[int64]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT co.match_id, co.provider_id, co.bet_type_id, co.margin, co.selection, COALESCE(co.p1,0), COALESCE(co.p2,0), COALESCE(co.p3,0), co.updated_at, m.start_time
		 FROM current_odds co JOIN match m ON m.id = co.match_id
		 WHERE m.start_time > $1 AND m.status <> 'cancelled'`, now)
	if err != nil {
		return nil, nil, fmt.Errorf("active odds: %w", err)
	}
	defer rows.Close()

	var out []models.CurrentOdds
	startTimes := make(map[int64]time.Time)
	for rows.Next() {
		var c models.CurrentOdds
		var start time.Time
		if err := rows.Scan(&c.MatchID, &c.ProviderID, &c.BetTypeID, &c.Margin, &c.Selection, &c.P1, &c.P2, &c.P3, &c.UpdatedAt, &start); err != nil {
			return nil, nil, err
		}
		out = append(out, c)
		startTimes[c.MatchID] = start
	}
	return out, startTimes, rows.Err()
}

// UpsertArbitrage inserts a new row on first detection of a unique hash, or
// refreshes last_seen_at on re-detection (idempotent, §3, §4.7 step 6).
// Returns true when this is a newly-created row (for the publisher).
func (s *Store) UpsertArbitrage(ctx context.Context, a models.Arbitrage) (isNew bool, id int64, err error) {
	legs, _ := json.Marshal(a.BestLegs)
	stakes, _ := json.Marshal(a.StakeSplit)
	hashHex := fmt.Sprintf("%032x", a.ContentHash)

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO arbitrage (match_id, bet_type_id, margin, profit_pct, best_legs, stake_split, content_hash, detected_at, last_seen_at, expires_at, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8,$9,true)
		ON CONFLICT (content_hash) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at, active = true
		RETURNING id, (xmax = 0) AS inserted`,
		a.MatchID, a.BetTypeID, a.Margin, a.ProfitPercent, string(legs), string(stakes), hashHex, a.DetectedAt, a.ExpiresAt)
	if err := row.Scan(&id, &isNew); err != nil {
		return false, 0, fmt.Errorf("upsert arbitrage: %w", err)
	}
	return isNew, id, nil
}

// DeactivateStaleArbitrage marks opportunities inactive whose match has started or
// that no longer satisfy S<1 (§4.7 expiry); stillActiveIDs is the authoritative set of
// rows that should remain active this cycle — everything else active is
// flipped off in one statement.
func (s *Store) DeactivateStaleArbitrage(ctx context.Context, stillActiveIDs []int64) error {
	if len(stillActiveIDs) == 0 {
		_, err := s.db.ExecContext(ctx, `UPDATE arbitrage SET active = false WHERE active = true`)
		return err
	}
	placeholders := make([]string, len(stillActiveIDs))
	args := make([]interface{}, len(stillActiveIDs))
	for i, id := range stillActiveIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`UPDATE arbitrage SET active = false WHERE active = true AND id NOT IN (%s)`, strings.Join(placeholders, ","))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}
