package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/statify/statify/internal/model"
)

// StandRepo provides data access to the stands table, the per-match
// ticket pools.  The available column is the single point of contention
// in the whole system: it is only ever mutated between FindForUpdateTx
// and the enclosing commit, so all bookings against one stand serialize
// on its row lock while other stands proceed concurrently.
type StandRepo struct {
	db *sql.DB
}

// NewStandRepo returns a new StandRepo bound to the provided database.
func NewStandRepo(db *sql.DB) *StandRepo { return &StandRepo{db: db} }

// CreateBulkTx inserts the initial stands for a match in one statement.
// available starts equal to total.  The caller must commit or roll back
// the transaction.  Passing an empty slice has no effect and returns nil.
func (r *StandRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, stands []model.Stand) error {
	if len(stands) == 0 {
		return nil
	}
	query := `INSERT INTO stands (match_id, stand, total, available) VALUES `
	args := make([]interface{}, 0, len(stands)*4)
	for i, s := range stands {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, s.MatchID, s.Stand, s.Total, s.Total)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// FindForUpdateTx loads the stand for a match and label under an
// exclusive row lock (SELECT ... FOR UPDATE) scoped to the caller's
// transaction.  Holding the lock through the subsequent decrement and
// booking insert is what prevents two requests from both observing
// available == 1 and driving the count negative.  Returns
// ErrStandNotFound when no such stand exists.
func (r *StandRepo) FindForUpdateTx(ctx context.Context, tx *sql.Tx, matchID uint64, stand string) (model.Stand, error) {
	const q = `SELECT id, match_id, stand, total, available, created_at
	           FROM stands WHERE match_id = ? AND stand = ? FOR UPDATE`
	var s model.Stand
	err := tx.QueryRowContext(ctx, q, matchID, stand).Scan(
		&s.ID, &s.MatchID, &s.Stand, &s.Total, &s.Available, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stand{}, ErrStandNotFound
	}
	return s, err
}

// DecrementTx takes one ticket from the stand's pool.  The UPDATE is
// guarded by available > 0 so a sold out stand is never mutated; zero
// affected rows maps to ErrSoldOut.  Must be called while the row lock
// from FindForUpdateTx is held.  On success the post-decrement stand is
// returned.
func (r *StandRepo) DecrementTx(ctx context.Context, tx *sql.Tx, standID uint64) (model.Stand, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE stands SET available = available - 1 WHERE id = ? AND available > 0`,
		standID)
	if err != nil {
		return model.Stand{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Stand{}, err
	}
	if n == 0 {
		return model.Stand{}, ErrSoldOut
	}
	const q = `SELECT id, match_id, stand, total, available, created_at FROM stands WHERE id = ?`
	var s model.Stand
	err = tx.QueryRowContext(ctx, q, standID).Scan(
		&s.ID, &s.MatchID, &s.Stand, &s.Total, &s.Available, &s.CreatedAt)
	return s, err
}

// ListByMatch returns all stands of a match ordered by label.  Used by
// the public availability listing; reads outside the booking transaction
// never observe an uncommitted decrement.
func (r *StandRepo) ListByMatch(ctx context.Context, matchID uint64) ([]model.Stand, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, match_id, stand, total, available, created_at
		 FROM stands WHERE match_id = ? ORDER BY stand`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stands []model.Stand
	for rows.Next() {
		var s model.Stand
		if err := rows.Scan(&s.ID, &s.MatchID, &s.Stand, &s.Total, &s.Available, &s.CreatedAt); err != nil {
			return nil, err
		}
		stands = append(stands, s)
	}
	return stands, rows.Err()
}
