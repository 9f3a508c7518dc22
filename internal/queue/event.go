// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketBookedEvent is published after a booking transaction commits.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type TicketBookedEvent struct {
	BookingID uint64 `json:"booking_id"`
	MatchID   uint64 `json:"match_id"`
	StandID   uint64 `json:"stand_id"`
	Stand     string `json:"stand"`
	UserID    string `json:"user_id"` // public USER_xxxxx identifier
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Available int64  `json:"available"` // post-decrement availability
	Total     int64  `json:"total"`
	BookedAt  string `json:"booked_at"`
}
