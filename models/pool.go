package models

import "time"

// Pool groups a subset of a tournament's teams for round-robin play before
// the elimination bracket.
type Pool struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	LocationID   *int      `json:"location_id,omitempty" db:"location_id"`
	CourtNumber  *int      `json:"court_number,omitempty" db:"court_number"`
	TeamIDs      []int     `json:"team_ids" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Teams     []Team         `json:"teams,omitempty" db:"-"`
	Standings []PoolStanding `json:"standings,omitempty" db:"-"`
	Matches   []PoolMatch    `json:"matches,omitempty" db:"-"`
}
