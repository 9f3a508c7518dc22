package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/statify/statify/internal/model"
)

// PlayerRepo provides data access to the players and player_audit
// tables.  Every admin stat edit is recorded as an audit row holding the
// old and new values as JSON snapshots.
type PlayerRepo struct {
	db *sql.DB
}

// NewPlayerRepo returns a new PlayerRepo bound to the provided database.
func NewPlayerRepo(db *sql.DB) *PlayerRepo { return &PlayerRepo{db: db} }

// allowedStats whitelists the sortable leaderboard columns.  Anything
// outside this set is rejected before it gets near the SQL, since the
// column name is interpolated into ORDER BY.
var allowedStats = map[string]bool{
	"runs":        true,
	"wickets":     true,
	"sixes":       true,
	"hundreds":    true,
	"average":     true,
	"strike_rate": true,
}

// StatAllowed reports whether stat is a valid leaderboard column.
func StatAllowed(stat string) bool { return allowedStats[strings.ToLower(stat)] }

const playerColumns = `id, name, team, photo_url, runs, wickets, sixes, hundreds, matches, average, strike_rate, created_at, updated_at`

func scanPlayer(row interface{ Scan(...any) error }) (model.Player, error) {
	var p model.Player
	err := row.Scan(&p.ID, &p.Name, &p.Team, &p.PhotoURL, &p.Runs, &p.Wickets,
		&p.Sixes, &p.Hundreds, &p.Matches, &p.Average, &p.StrikeRate,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a player and returns the stored row.
func (r *PlayerRepo) Create(ctx context.Context, p model.Player) (model.Player, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO players (name, team, photo_url, runs, wickets, sixes, hundreds, matches, average, strike_rate)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.Name, p.Team, p.PhotoURL, p.Runs, p.Wickets, p.Sixes, p.Hundreds,
		p.Matches, p.Average, p.StrikeRate)
	if err != nil {
		return model.Player{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Player{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a single player.  Returns ErrPlayerNotFound when the
// ID does not exist.
func (r *PlayerRepo) GetByID(ctx context.Context, id uint64) (model.Player, error) {
	p, err := scanPlayer(r.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Player{}, ErrPlayerNotFound
	}
	return p, err
}

// StatChanges carries the fields an admin may modify.  Nil pointers mean
// "leave unchanged"; Average is recomputed by the caller when runs or
// matches move and no explicit average is given.
type StatChanges struct {
	Runs       *int64
	Wickets    *int64
	Sixes      *int64
	Hundreds   *int64
	Matches    *int64
	Average    *float64
	StrikeRate *float64
	PhotoURL   *string
}

// Empty reports whether no field is set.
func (c StatChanges) Empty() bool {
	return c.Runs == nil && c.Wickets == nil && c.Sixes == nil && c.Hundreds == nil &&
		c.Matches == nil && c.Average == nil && c.StrikeRate == nil && c.PhotoURL == nil
}

// auditSnapshot is the JSON shape stored in player_audit.old_values and
// new_values.
type auditSnapshot struct {
	Runs       int64   `json:"runs"`
	Wickets    int64   `json:"wickets"`
	Sixes      int64   `json:"sixes"`
	Hundreds   int64   `json:"hundreds"`
	Matches    int64   `json:"matches"`
	Average    float64 `json:"average"`
	StrikeRate float64 `json:"strike_rate"`
	PhotoURL   *string `json:"photo_url"`
}

func snapshotOf(p model.Player) auditSnapshot {
	return auditSnapshot{
		Runs:       p.Runs,
		Wickets:    p.Wickets,
		Sixes:      p.Sixes,
		Hundreds:   p.Hundreds,
		Matches:    p.Matches,
		Average:    p.Average,
		StrikeRate: p.StrikeRate,
		PhotoURL:   p.PhotoURL,
	}
}

// UpdateStats applies a partial stat update and writes the audit row in
// one transaction, so an edit without its audit trail can never be
// observed.  The current row is read under FOR UPDATE to keep the
// old-values snapshot consistent with what the update replaces.
func (r *PlayerRepo) UpdateStats(ctx context.Context, id uint64, changes StatChanges, changedBy string) (model.Player, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Player{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cur, err := scanPlayer(tx.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Player{}, ErrPlayerNotFound
	}
	if err != nil {
		return model.Player{}, err
	}

	next := cur
	if changes.Runs != nil {
		next.Runs = *changes.Runs
	}
	if changes.Wickets != nil {
		next.Wickets = *changes.Wickets
	}
	if changes.Sixes != nil {
		next.Sixes = *changes.Sixes
	}
	if changes.Hundreds != nil {
		next.Hundreds = *changes.Hundreds
	}
	if changes.Matches != nil {
		next.Matches = *changes.Matches
	}
	if changes.StrikeRate != nil {
		next.StrikeRate = *changes.StrikeRate
	}
	if changes.PhotoURL != nil {
		next.PhotoURL = changes.PhotoURL
	}
	switch {
	case changes.Average != nil:
		next.Average = *changes.Average
	case (changes.Runs != nil || changes.Matches != nil) && next.Matches > 0:
		next.Average = roundAverage(float64(next.Runs) / float64(next.Matches))
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE players SET runs=?, wickets=?, sixes=?, hundreds=?, matches=?,
		 average=?, strike_rate=?, photo_url=? WHERE id=?`,
		next.Runs, next.Wickets, next.Sixes, next.Hundreds, next.Matches,
		next.Average, next.StrikeRate, next.PhotoURL, id)
	if err != nil {
		return model.Player{}, err
	}

	oldJSON, err := json.Marshal(snapshotOf(cur))
	if err != nil {
		return model.Player{}, err
	}
	newJSON, err := json.Marshal(snapshotOf(next))
	if err != nil {
		return model.Player{}, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO player_audit (player_id, old_values, new_values, changed_by) VALUES (?,?,?,?)`,
		id, oldJSON, newJSON, changedBy)
	if err != nil {
		return model.Player{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Player{}, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// roundAverage keeps derived averages at two decimal places, matching
// the DECIMAL(8,2) column.
func roundAverage(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// Leaderboard returns the top players ordered by the given stat.  The
// stat must pass StatAllowed; Leaderboard rejects anything else rather
// than trusting the caller, since the column is spliced into ORDER BY.
func (r *PlayerRepo) Leaderboard(ctx context.Context, stat string, limit int) ([]model.Player, error) {
	stat = strings.ToLower(stat)
	if !allowedStats[stat] {
		return nil, fmt.Errorf("leaderboard: invalid stat %q", stat)
	}
	if limit < 1 {
		limit = 20
	}
	q := `SELECT ` + playerColumns + ` FROM players ORDER BY ` + stat + ` DESC, name ASC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlayers(rows)
}

// AllrounderEntry is a leaderboard row with the derived all-rounder
// score attached.
type AllrounderEntry struct {
	model.Player
	AllrounderScore float64 `json:"allrounder_score"`
}

// Allrounders ranks players who have both scored runs and taken wickets
// by a weighted score: each stat is normalized against the current
// maximum and weighted 30/30/20/20 (runs, wickets, average, strike
// rate).
func (r *PlayerRepo) Allrounders(ctx context.Context, limit int) ([]AllrounderEntry, error) {
	if limit < 1 {
		limit = 20
	}
	const q = `
		SELECT ` + playerColumns + `,
		       ROUND(
		           (COALESCE(runs, 0) / NULLIF(MAX(runs) OVER(), 0) * 30 +
		            COALESCE(wickets, 0) / NULLIF(MAX(wickets) OVER(), 0) * 30 +
		            COALESCE(average, 0) / NULLIF(MAX(average) OVER(), 0) * 20 +
		            COALESCE(strike_rate, 0) / NULLIF(MAX(strike_rate) OVER(), 0) * 20)
		       , 2) AS allrounder_score
		FROM players
		WHERE runs > 0 AND wickets > 0
		ORDER BY allrounder_score DESC, name ASC
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AllrounderEntry
	for rows.Next() {
		var e AllrounderEntry
		var score sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.Name, &e.Team, &e.PhotoURL, &e.Runs, &e.Wickets,
			&e.Sixes, &e.Hundreds, &e.Matches, &e.Average, &e.StrikeRate,
			&e.CreatedAt, &e.UpdatedAt, &score); err != nil {
			return nil, err
		}
		e.AllrounderScore = score.Float64
		out = append(out, e)
	}
	return out, rows.Err()
}

func collectPlayers(rows *sql.Rows) ([]model.Player, error) {
	var players []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
