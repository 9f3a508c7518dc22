package model

import "time"

// User is a ticket buyer identified by phone number.  The phone is the
// natural key; PublicID ("USER_" plus five digits) is a presentation
// alias generated on first booking.  Rows are created lazily and never
// mutated afterwards; repeat bookings with a new name keep the stored
// one.
type User struct {
	ID        uint64    `json:"id"`         // users.id
	PublicID  string    `json:"user_id"`    // users.public_id
	Name      string    `json:"name"`       // users.name
	Phone     string    `json:"phone"`      // users.phone
	CreatedAt time.Time `json:"created_at"` // users.created_at
}
