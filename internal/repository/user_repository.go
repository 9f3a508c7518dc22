package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/statify/statify/internal/model"
)

// UserRepo resolves ticket buyers by phone number.  The phone column
// carries a uniqueness constraint, as does the generated public_id, and
// ResolveTx leans on both to stay correct when two first-time bookings
// from the same phone race each other.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// publicIDAttempts bounds how often ResolveTx retries public_id
// generation after a duplicate-key collision.  Five digits give 100k
// identifiers, so a handful of retries is plenty below saturation.
const publicIDAttempts = 5

// ResolveTx maps a phone number to a user row, creating one when absent.
// It must run inside the caller's booking transaction so that a rollback
// also discards the user creation.  On a repeat booking the stored name
// is returned unchanged; the submitted name is ignored.
//
// Concurrent first-time bookings from the same phone serialize on the
// phone uniqueness constraint: the losing insert fails with a duplicate
// key error and ResolveTx re-reads the winner's committed row with a
// locking read (a snapshot read inside REPEATABLE READ could miss it).
func (r *UserRepo) ResolveTx(ctx context.Context, tx *sql.Tx, phone, name string) (model.User, error) {
	u, err := r.getByPhoneTx(ctx, tx, phone, false)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, err
	}

	for attempt := 0; attempt < publicIDAttempts; attempt++ {
		publicID, err := newPublicID()
		if err != nil {
			return model.User{}, err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO users (public_id, name, phone) VALUES (?,?,?)",
			publicID, name, phone)
		if err == nil {
			id, err := res.LastInsertId()
			if err != nil {
				return model.User{}, err
			}
			u := model.User{ID: uint64(id), PublicID: publicID, Name: name, Phone: phone}
			// Read back created_at rather than guessing it.
			err = tx.QueryRowContext(ctx,
				"SELECT created_at FROM users WHERE id=?", u.ID).Scan(&u.CreatedAt)
			return u, err
		}
		if !isDuplicateKey(err) {
			return model.User{}, err
		}
		if strings.Contains(err.Error(), "uq_user_phone") {
			// Lost the race for this phone; the winner's row is the
			// canonical identity now.
			return r.getByPhoneTx(ctx, tx, phone, true)
		}
		// public_id collision: generate a fresh one and try again.
	}
	return model.User{}, fmt.Errorf("user id generation: %w", ErrPhoneExists)
}

// GetByPhone fetches a user outside of any transaction.  Used by
// reporting, not by the booking path.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, public_id, name, phone, created_at FROM users WHERE phone=? LIMIT 1",
		phone).Scan(&u.ID, &u.PublicID, &u.Name, &u.Phone, &u.CreatedAt)
	return u, err
}

func (r *UserRepo) getByPhoneTx(ctx context.Context, tx *sql.Tx, phone string, lock bool) (model.User, error) {
	q := "SELECT id, public_id, name, phone, created_at FROM users WHERE phone=? LIMIT 1"
	if lock {
		q += " FOR UPDATE"
	}
	var u model.User
	err := tx.QueryRowContext(ctx, q, phone).Scan(&u.ID, &u.PublicID, &u.Name, &u.Phone, &u.CreatedAt)
	return u, err
}

// newPublicID builds an external identifier of the form USER_ plus five
// zero-padded digits from crypto/rand.  Uniqueness is enforced by the
// DB constraint, not by this function; callers retry on collision.
func newPublicID() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(b[:]) % 100000
	return fmt.Sprintf("USER_%05d", n), nil
}

// isDuplicateKey reports whether err is a MySQL 1062 duplicate entry
// error.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
