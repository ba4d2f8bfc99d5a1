package models

import "time"

// PoolStanding is the accumulated record of one team within one pool. Rank
// stays nil until the pool's standings have been computed; once assigned,
// every standing in the pool carries a consistent total ordering.
type PoolStanding struct {
	ID            int       `json:"id" db:"id"`
	PoolID        int       `json:"pool_id" db:"pool_id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	TeamID        int       `json:"team_id" db:"team_id"`
	Wins          int       `json:"wins" db:"wins"`
	Losses        int       `json:"losses" db:"losses"`
	Ties          int       `json:"ties" db:"ties"`
	SetsWon       int       `json:"sets_won" db:"sets_won"`
	SetsLost      int       `json:"sets_lost" db:"sets_lost"`
	PointsScored  int       `json:"points_scored" db:"points_scored"`
	PointsAllowed int       `json:"points_allowed" db:"points_allowed"`
	Rank          *int      `json:"rank" db:"rank"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	TeamName *string `json:"team_name,omitempty" db:"-"`
	PoolName *string `json:"pool_name,omitempty" db:"-"`
}

// WinPercentage counts a tie as half a win.
func (s *PoolStanding) WinPercentage() float64 {
	total := s.Wins + s.Losses + s.Ties
	if total == 0 {
		return 0
	}
	return (float64(s.Wins) + 0.5*float64(s.Ties)) / float64(total)
}

// PointsDifferential returns points scored minus points allowed.
func (s *PoolStanding) PointsDifferential() int {
	return s.PointsScored - s.PointsAllowed
}
