package repository

import (
	"context"
	"database/sql"

	"github.com/statify/statify/internal/model"
)

// BookingRepo persists completed bookings for audit and history.  Rows
// are created once, inside the booking transaction, and never updated or
// deleted; cancellation does not exist in this system.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a booking within the caller's transaction and
// populates the generated ID and created_at on the returned record.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b model.Booking) (model.Booking, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (match_id, stand_id, stand, user_id) VALUES (?,?,?,?)`,
		b.MatchID, b.StandID, b.Stand, b.UserID)
	if err != nil {
		return model.Booking{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Booking{}, err
	}
	b.ID = uint64(id)
	err = tx.QueryRowContext(ctx,
		`SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt)
	return b, err
}

// ListByMatch returns all bookings for a match, newest first.
func (r *BookingRepo) ListByMatch(ctx context.Context, matchID uint64) ([]model.Booking, error) {
	return r.list(ctx, `SELECT id, match_id, stand_id, stand, user_id, created_at
		FROM bookings WHERE match_id = ? ORDER BY created_at DESC, id DESC`, matchID)
}

// ListByStand returns all bookings against one stand, newest first.
func (r *BookingRepo) ListByStand(ctx context.Context, standID uint64) ([]model.Booking, error) {
	return r.list(ctx, `SELECT id, match_id, stand_id, stand, user_id, created_at
		FROM bookings WHERE stand_id = ? ORDER BY created_at DESC, id DESC`, standID)
}

// CountByStand reports how many bookings reference a stand.  Reporting
// uses it to check the ledger invariant total - count == available.
func (r *BookingRepo) CountByStand(ctx context.Context, standID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE stand_id = ?`, standID).Scan(&n)
	return n, err
}

func (r *BookingRepo) list(ctx context.Context, q string, arg uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.MatchID, &b.StandID, &b.Stand, &b.UserID, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
