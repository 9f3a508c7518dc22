package model

import "time"

// Stand is a named block of seating with its own ticket pool for one
// match.  The label is unique per match.  Available is only ever mutated
// inside a row-locked transaction, and 0 <= Available <= Total holds at
// all times.
//
// Fields:
//
//	ID        – primary key identifier.
//	MatchID   – match this stand belongs to.
//	Stand     – stand label (e.g. "North Stand").
//	Total     – fixed total capacity.
//	Available – tickets still available.
//	CreatedAt – creation timestamp.
type Stand struct {
	ID        uint64    `json:"ticket_id"`  // stands.id (exposed as ticket_id)
	MatchID   uint64    `json:"match_id"`   // stands.match_id
	Stand     string    `json:"stand"`      // stands.stand
	Total     int64     `json:"total"`      // stands.total
	Available int64     `json:"available"`  // stands.available
	CreatedAt time.Time `json:"created_at"` // stands.created_at
}
