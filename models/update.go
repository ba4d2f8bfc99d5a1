package models

type UpdateType string

const (
	UpdateTypeScore            UpdateType = "score_update"
	UpdateTypeMatchComplete    UpdateType = "match_complete"
	UpdateTypeMatchUpdate      UpdateType = "match_update"
	UpdateTypeTournamentUpdate UpdateType = "tournament_update"
)

// Update is one item in a tournament's live-updates feed. Team names are
// denormalized at write time so feed consumers render without extra lookups.
type Update struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	MatchID      *int       `json:"match_id,omitempty" db:"match_id"`
	Type         UpdateType `json:"type" db:"type"`
	Team1ID      *int       `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID      *int       `json:"team2_id,omitempty" db:"team2_id"`
	Team1Name    *string    `json:"team1_name,omitempty" db:"team1_name"`
	Team2Name    *string    `json:"team2_name,omitempty" db:"team2_name"`
	ScoreTeam1   *int       `json:"score_team1,omitempty" db:"score_team1"`
	ScoreTeam2   *int       `json:"score_team2,omitempty" db:"score_team2"`
	Timestamp    int64      `json:"timestamp" db:"timestamp"`
}
