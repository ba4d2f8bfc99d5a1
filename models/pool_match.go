package models

import "encoding/json"

// PoolMatch is a round-robin match scored per set. ScoresTeam1 and
// ScoresTeam2 are always equal-length, one slot per set; a zero in both
// slots means the set has not been played.
type PoolMatch struct {
	ID            int         `json:"id" db:"id"`
	PoolID        int         `json:"pool_id" db:"pool_id"`
	TournamentID  int         `json:"tournament_id" db:"tournament_id"`
	Team1ID       int         `json:"team1_id" db:"team1_id"`
	Team2ID       int         `json:"team2_id" db:"team2_id"`
	ScoresTeam1   []int64     `json:"scores_team1" db:"scores_team1"`
	ScoresTeam2   []int64     `json:"scores_team2" db:"scores_team2"`
	NumSets       int         `json:"num_sets" db:"num_sets"`
	Status        MatchStatus `json:"status" db:"status"`
	LocationID    *int        `json:"location_id,omitempty" db:"location_id"`
	CourtNumber   *int        `json:"court_number,omitempty" db:"court_number"`
	ScheduledTime int64       `json:"scheduled_time" db:"scheduled_time"`

	Team1Name *string `json:"team1_name,omitempty" db:"-"`
	Team2Name *string `json:"team2_name,omitempty" db:"-"`
}

// SetsWonTeam1 counts the sets team1 has taken so far.
func (m *PoolMatch) SetsWonTeam1() int {
	won := 0
	for i := 0; i < len(m.ScoresTeam1) && i < len(m.ScoresTeam2); i++ {
		if m.ScoresTeam1[i] > m.ScoresTeam2[i] {
			won++
		}
	}
	return won
}

// SetsWonTeam2 counts the sets team2 has taken so far.
func (m *PoolMatch) SetsWonTeam2() int {
	won := 0
	for i := 0; i < len(m.ScoresTeam1) && i < len(m.ScoresTeam2); i++ {
		if m.ScoresTeam2[i] > m.ScoresTeam1[i] {
			won++
		}
	}
	return won
}

// WinnerTeamID returns the winning team, or nil while the match is not
// completed or when the sets split evenly (ties are possible in pool play).
func (m *PoolMatch) WinnerTeamID() *int {
	if m.Status != MatchStatusCompleted {
		return nil
	}
	t1, t2 := m.SetsWonTeam1(), m.SetsWonTeam2()
	switch {
	case t1 > t2:
		id := m.Team1ID
		return &id
	case t2 > t1:
		id := m.Team2ID
		return &id
	default:
		return nil
	}
}

// PointsFor sums the points scored by the given team across all sets.
func (m *PoolMatch) PointsFor(teamID int) int64 {
	var scores []int64
	switch teamID {
	case m.Team1ID:
		scores = m.ScoresTeam1
	case m.Team2ID:
		scores = m.ScoresTeam2
	default:
		return 0
	}
	var total int64
	for _, s := range scores {
		total += s
	}
	return total
}

// MarshalJSON adds the derived sets-won counters to the wire representation.
func (m PoolMatch) MarshalJSON() ([]byte, error) {
	type alias PoolMatch
	return json.Marshal(struct {
		alias
		SetsWonTeam1 int `json:"sets_won_team1"`
		SetsWonTeam2 int `json:"sets_won_team2"`
	}{
		alias:        alias(m),
		SetsWonTeam1: m.SetsWonTeam1(),
		SetsWonTeam2: m.SetsWonTeam2(),
	})
}
