package model

import "time"

// Booking is an immutable record linking a user to one seat-equivalent
// unit in one stand of one match.  It is created in the same transaction
// as the stand decrement; there is no update or cancel in this core, so
// total - count(bookings for a stand) always equals the stand's
// available count.
type Booking struct {
	ID        uint64    `json:"id"`         // bookings.id
	MatchID   uint64    `json:"match_id"`   // bookings.match_id
	StandID   uint64    `json:"ticket_id"`  // bookings.stand_id (exposed as ticket_id)
	Stand     string    `json:"stand"`      // bookings.stand
	UserID    uint64    `json:"user_id"`    // bookings.user_id
	CreatedAt time.Time `json:"created_at"` // bookings.created_at
}
