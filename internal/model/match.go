package model

import "time"

// Match is a scheduled cricket fixture.  Stands (the per-match ticket
// pools) are created together with the match and reference it by ID; a
// match is never resized after its stands exist.
//
// Fields:
//
//	ID        – primary key identifier.
//	Team1     – first team name.
//	Team2     – second team name.
//	Venue     – venue name (nullable).
//	StartTime – scheduled start of play.
//	CreatedBy – admin username that scheduled the match.
//	CreatedAt – creation timestamp.
type Match struct {
	ID        uint64    `json:"id"`         // matches.id
	Team1     string    `json:"team1"`      // matches.team1
	Team2     string    `json:"team2"`      // matches.team2
	Venue     *string   `json:"venue"`      // matches.venue (nullable)
	StartTime time.Time `json:"start_time"` // matches.start_time
	CreatedBy string    `json:"created_by"` // matches.created_by
	CreatedAt time.Time `json:"created_at"` // matches.created_at
}
