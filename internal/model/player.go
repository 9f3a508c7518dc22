package model

import "time"

// Player holds a cricketer's career statistics as shown on the public
// leaderboards.  Average and strike rate are stored as decimals; when a
// player is created or updated without an explicit average it is derived
// as runs divided by matches.
//
// Fields:
//
//	ID         – primary key identifier.
//	Name       – player's display name.
//	Team       – team the player belongs to.
//	PhotoURL   – path or URL of the player's photo (nullable).
//	Runs       – career runs scored.
//	Wickets    – career wickets taken.
//	Sixes      – career sixes hit.
//	Hundreds   – career centuries.
//	Matches    – matches played.
//	Average    – batting average.
//	StrikeRate – batting strike rate.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Player struct {
	ID         uint64    `json:"id"`          // players.id
	Name       string    `json:"name"`        // players.name
	Team       string    `json:"team"`        // players.team
	PhotoURL   *string   `json:"photo_url"`   // players.photo_url (nullable)
	Runs       int64     `json:"runs"`        // players.runs
	Wickets    int64     `json:"wickets"`     // players.wickets
	Sixes      int64     `json:"sixes"`       // players.sixes
	Hundreds   int64     `json:"hundreds"`    // players.hundreds
	Matches    int64     `json:"matches"`     // players.matches
	Average    float64   `json:"average"`     // players.average
	StrikeRate float64   `json:"strike_rate"` // players.strike_rate
	CreatedAt  time.Time `json:"created_at"`  // players.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // players.updated_at
}
