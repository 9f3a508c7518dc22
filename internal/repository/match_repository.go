package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/statify/statify/internal/model"
)

// MatchRepo provides data access to the matches table.  A match and its
// stands are created together in one transaction when an admin schedules
// it; after that the match row is never resized.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo returns a new MatchRepo bound to the provided database.
func NewMatchRepo(db *sql.DB) *MatchRepo { return &MatchRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span match and stand creation.
func (r *MatchRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a match within the caller's transaction and populates
// the generated ID and created_at on the provided record.
func (r *MatchRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Match) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO matches (team1, team2, venue, start_time, created_by) VALUES (?,?,?,?,?)`,
		m.Team1, m.Team2, m.Venue, m.StartTime.UTC().Format("2006-01-02 15:04:05"), m.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		`SELECT created_at FROM matches WHERE id = ?`, m.ID).Scan(&m.CreatedAt)
}

// GetByID fetches a single match.  Returns ErrMatchNotFound when the ID
// does not exist.
func (r *MatchRepo) GetByID(ctx context.Context, id uint64) (model.Match, error) {
	var m model.Match
	err := r.db.QueryRowContext(ctx,
		`SELECT id, team1, team2, venue, start_time, created_by, created_at
		 FROM matches WHERE id = ? LIMIT 1`, id).Scan(
		&m.ID, &m.Team1, &m.Team2, &m.Venue, &m.StartTime, &m.CreatedBy, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Match{}, ErrMatchNotFound
	}
	return m, err
}

// List returns all matches ordered by start time.
func (r *MatchRepo) List(ctx context.Context) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, team1, team2, venue, start_time, created_by, created_at
		 FROM matches ORDER BY start_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var matches []model.Match
	for rows.Next() {
		var m model.Match
		if err := rows.Scan(&m.ID, &m.Team1, &m.Team2, &m.Venue, &m.StartTime, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// MatchTickets aggregates a match with the availability of each of its
// stands for the public ticket listing.
type MatchTickets struct {
	MatchID   uint64        `json:"match_id"`
	Team1     string        `json:"team1"`
	Team2     string        `json:"team2"`
	Venue     *string       `json:"venue"`
	StartTime string        `json:"start_time"`
	Stands    []model.Stand `json:"stands"`
}

// ListWithStands joins matches with their stands and groups the rows on
// the Go side (the listing shape the ticket page renders).  Matches come
// back ordered by start time with stands ordered by label.
func (r *MatchRepo) ListWithStands(ctx context.Context) ([]MatchTickets, error) {
	const q = `SELECT m.id, m.team1, m.team2, m.venue, m.start_time,
	                  s.id, s.stand, s.total, s.available, s.created_at
	           FROM matches m
	           LEFT JOIN stands s ON s.match_id = m.id
	           ORDER BY m.start_time ASC, m.id ASC, s.stand ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchTickets
	var cur *MatchTickets
	for rows.Next() {
		var (
			m         model.Match
			standID   sql.NullInt64
			standName sql.NullString
			total     sql.NullInt64
			available sql.NullInt64
			createdAt sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.Team1, &m.Team2, &m.Venue, &m.StartTime,
			&standID, &standName, &total, &available, &createdAt); err != nil {
			return nil, err
		}
		if cur == nil || cur.MatchID != m.ID {
			out = append(out, MatchTickets{
				MatchID:   m.ID,
				Team1:     m.Team1,
				Team2:     m.Team2,
				Venue:     m.Venue,
				StartTime: m.StartTime.UTC().Format(time.RFC3339),
				Stands:    []model.Stand{},
			})
			cur = &out[len(out)-1]
		}
		if standID.Valid {
			cur.Stands = append(cur.Stands, model.Stand{
				ID:        uint64(standID.Int64),
				MatchID:   m.ID,
				Stand:     standName.String,
				Total:     total.Int64,
				Available: available.Int64,
				CreatedAt: createdAt.Time,
			})
		}
	}
	return out, rows.Err()
}
