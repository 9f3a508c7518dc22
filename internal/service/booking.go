// Package service contains the booking transaction coordinator and the
// broker publisher.  The coordinator owns the one piece of this system
// with real concurrency teeth: the atomic check-and-decrement of a
// stand's ticket pool.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/statify/statify/internal/model"
	"github.com/statify/statify/internal/queue"
)

// ValidationError marks a booking request that failed input validation.
// It is raised before any transaction is opened, so no storage is ever
// touched for an invalid request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// BookingRequest is the input to Book.
type BookingRequest struct {
	MatchID uint64
	Stand   string
	Name    string
	Phone   string
}

// BookingResult is returned on a successful booking: the created record,
// the stand's post-decrement state and the resolved user.
type BookingResult struct {
	Booking model.Booking
	Stand   model.Stand
	User    model.User
}

// txBeginner is satisfied by *sql.DB.  Narrowing the dependency keeps
// the coordinator testable without a live pool.
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// identityResolver maps a phone number to a user inside the booking
// transaction, creating one when absent.  Implemented by
// repository.UserRepo.
type identityResolver interface {
	ResolveTx(ctx context.Context, tx *sql.Tx, phone, name string) (model.User, error)
}

// standLedger locks and decrements a stand's ticket pool.  Implemented
// by repository.StandRepo.
type standLedger interface {
	FindForUpdateTx(ctx context.Context, tx *sql.Tx, matchID uint64, stand string) (model.Stand, error)
	DecrementTx(ctx context.Context, tx *sql.Tx, standID uint64) (model.Stand, error)
}

// bookingStore persists completed bookings.  Implemented by
// repository.BookingRepo.
type bookingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, b model.Booking) (model.Booking, error)
}

// eventPublisher pushes a booking event to the broker after commit.
type eventPublisher interface {
	PublishTicketBooked(ctx context.Context, ev queue.TicketBookedEvent) error
}

// BookingService coordinates identity resolution, the inventory
// decrement and the booking insert as one atomic unit.  All three run in
// a single transaction; the row lock taken by FindForUpdateTx is held
// until commit, serializing bookings per stand while leaving other
// stands fully concurrent.
type BookingService struct {
	db       txBeginner
	users    identityResolver
	stands   standLedger
	bookings bookingStore
	events   eventPublisher // optional; nil disables event publishing
}

// NewBookingService wires the coordinator.  events may be nil when no
// broker is configured.
func NewBookingService(db txBeginner, users identityResolver, stands standLedger, bookings bookingStore, events eventPublisher) *BookingService {
	if db == nil || users == nil || stands == nil || bookings == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{db: db, users: users, stands: stands, bookings: bookings, events: events}
}

// Book performs the booking transaction:
//
//  1. validate inputs (no storage touched on failure)
//  2. resolve the user by phone, creating one when absent
//  3. lock the stand row and decrement if available
//  4. insert the booking record
//  5. commit; any failure in 2-4 rolls the whole thing back
//
// On success exactly one stand's available dropped by one, one booking
// exists and at most one user was created.  The broker event is
// published only after the commit and its failure is logged, never
// surfaced to the caller.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (BookingResult, error) {
	if strings.TrimSpace(req.Stand) == "" {
		return BookingResult{}, &ValidationError{Msg: "Stand is required."}
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		return BookingResult{}, &ValidationError{Msg: "Name and phone number are required."}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BookingResult{}, fmt.Errorf("begin booking tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				log.Printf("booking: rollback failed: %v", rbErr)
			}
		}
	}()

	user, err := s.users.ResolveTx(ctx, tx, strings.TrimSpace(req.Phone), strings.TrimSpace(req.Name))
	if err != nil {
		return BookingResult{}, fmt.Errorf("resolve user: %w", err)
	}

	stand, err := s.stands.FindForUpdateTx(ctx, tx, req.MatchID, strings.TrimSpace(req.Stand))
	if err != nil {
		return BookingResult{}, err
	}

	// Lock is held from here to commit; the check and decrement cannot
	// be split from it.
	stand, err = s.stands.DecrementTx(ctx, tx, stand.ID)
	if err != nil {
		return BookingResult{}, err
	}

	booking, err := s.bookings.CreateTx(ctx, tx, model.Booking{
		MatchID: req.MatchID,
		StandID: stand.ID,
		Stand:   stand.Stand,
		UserID:  user.ID,
	})
	if err != nil {
		return BookingResult{}, fmt.Errorf("create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return BookingResult{}, fmt.Errorf("commit booking tx: %w", err)
	}
	committed = true

	if s.events != nil {
		ev := queue.TicketBookedEvent{
			BookingID: booking.ID,
			MatchID:   booking.MatchID,
			StandID:   stand.ID,
			Stand:     stand.Stand,
			UserID:    user.PublicID,
			Name:      user.Name,
			Phone:     user.Phone,
			Available: stand.Available,
			Total:     stand.Total,
			BookedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.events.PublishTicketBooked(ctx, ev); err != nil {
			log.Printf("booking: publish event failed for booking %d: %v", booking.ID, err)
		}
	}

	return BookingResult{Booking: booking, Stand: stand, User: user}, nil
}
