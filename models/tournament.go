package models

import "time"

// TournamentStatus mirrors the ENUM values stored in the database.
type TournamentStatus string

const (
	TournamentStatusUpcoming    TournamentStatus = "upcoming"
	TournamentStatusPoolPlay    TournamentStatus = "pool_play"
	TournamentStatusBracketPlay TournamentStatus = "bracket_play"
	TournamentStatusCompleted   TournamentStatus = "completed"

	// TournamentStatusInProgress predates the pool_play/bracket_play split.
	// Old rows may still carry it, so it stays readable.
	TournamentStatusInProgress TournamentStatus = "in_progress"
)

type TournamentType string

const (
	TypeSingleElimination TournamentType = "single_elimination"
)

// Tournament is the root entity. Dates are unix seconds, matching the wire
// format consumed by the frontends.
type Tournament struct {
	ID               int              `json:"id" db:"id"`
	Name             string           `json:"name" db:"name"`
	Location         *string          `json:"location,omitempty" db:"location"`
	LocationID       *int             `json:"location_id,omitempty" db:"location_id"`
	StartDate        int64            `json:"start_date" db:"start_date"`
	EndDate          *int64           `json:"end_date,omitempty" db:"end_date"`
	Status           TournamentStatus `json:"status" db:"status"`
	Type             TournamentType   `json:"type" db:"type"`
	HasPoolPlay      bool             `json:"has_pool_play" db:"has_pool_play"`
	PoolPlayComplete bool             `json:"pool_play_complete" db:"pool_play_complete"`
	MinTeams         int              `json:"min_teams" db:"min_teams"`
	MaxTeams         int              `json:"max_teams" db:"max_teams"`
	TeamsPerPool     int              `json:"teams_per_pool" db:"teams_per_pool"`
	PoolSets         int              `json:"pool_sets" db:"pool_sets"`
	BracketSets      int              `json:"bracket_sets" db:"bracket_sets"`
	BracketSize      *int             `json:"bracket_size,omitempty" db:"bracket_size"`
	LogoKey          *string          `json:"-" db:"logo_key"`
	LogoURL          *string          `json:"logo_url,omitempty" db:"-"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`

	// Related entities, loaded on demand (not mapped directly).
	Teams []Team `json:"teams,omitempty" db:"-"`
	Pools []Pool `json:"pools,omitempty" db:"-"`
}
