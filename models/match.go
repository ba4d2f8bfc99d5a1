package models

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// Forward reports whether moving from s to next is a legal status
// progression. Statuses only ever advance: scheduled -> in_progress ->
// completed.
func (s MatchStatus) Forward(next MatchStatus) bool {
	order := map[MatchStatus]int{
		MatchStatusScheduled:  0,
		MatchStatusInProgress: 1,
		MatchStatusCompleted:  2,
	}
	cur, ok := order[s]
	if !ok {
		return false
	}
	nxt, ok := order[next]
	if !ok {
		return false
	}
	return nxt >= cur
}

// Match is a bracket (elimination) match. Nil team references mean the slot
// is still TBD, waiting on the winner of an earlier round. NextMatchID links
// a match to the one its winner advances into.
type Match struct {
	ID            int         `json:"id" db:"id"`
	TournamentID  int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber   int         `json:"round_number" db:"round_number"`
	Team1ID       *int        `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID       *int        `json:"team2_id,omitempty" db:"team2_id"`
	ScoreTeam1    int         `json:"score_team1" db:"score_team1"`
	ScoreTeam2    int         `json:"score_team2" db:"score_team2"`
	Status        MatchStatus `json:"status" db:"status"`
	Court         *string     `json:"court,omitempty" db:"court"`
	ScheduledTime *int64      `json:"scheduled_time,omitempty" db:"scheduled_time"`
	NextMatchID   *int        `json:"next_match_id,omitempty" db:"next_match_id"`
	WinnerID      *int        `json:"winner_id,omitempty" db:"winner_id"`
}

// BracketRound groups the matches of one elimination round for the bracket
// view.
type BracketRound struct {
	Round   int     `json:"round"`
	Matches []Match `json:"matches"`
}
