package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPresentationKnownDomain(t *testing.T) {
	cases := map[string]Presentation{
		"upcoming":     {Label: "Upcoming", Color: ColorInfo},
		"pool_play":    {Label: "Pool Play", Color: ColorPrimary},
		"bracket_play": {Label: "Bracket Play", Color: ColorWarning},
		"completed":    {Label: "Completed", Color: ColorSuccess},
		"scheduled":    {Label: "Scheduled", Color: ColorDefault},
		"in_progress":  {Label: "In Progress", Color: ColorWarning},
	}
	for status, want := range cases {
		got := StatusPresentation(status)
		assert.Equal(t, want, got, "status %q", status)
		assert.NotEmpty(t, got.Label)
	}
}

func TestStatusPresentationUnknownPassesThrough(t *testing.T) {
	for _, status := range []string{"", "paused", "forfeited", "ANYTHING"} {
		got := StatusPresentation(status)
		assert.Equal(t, status, got.Label)
		assert.Equal(t, ColorDefault, got.Color)
	}
}

func TestMatchStatusForward(t *testing.T) {
	assert.True(t, MatchStatusScheduled.Forward(MatchStatusInProgress))
	assert.True(t, MatchStatusScheduled.Forward(MatchStatusCompleted))
	assert.True(t, MatchStatusInProgress.Forward(MatchStatusInProgress))
	assert.False(t, MatchStatusCompleted.Forward(MatchStatusInProgress))
	assert.False(t, MatchStatusInProgress.Forward(MatchStatusScheduled))
}

func TestPoolMatchDerivedFields(t *testing.T) {
	m := PoolMatch{
		Team1ID:     10,
		Team2ID:     20,
		ScoresTeam1: []int64{25, 18, 15},
		ScoresTeam2: []int64{20, 25, 10},
		NumSets:     3,
		Status:      MatchStatusCompleted,
	}
	assert.Equal(t, 2, m.SetsWonTeam1())
	assert.Equal(t, 1, m.SetsWonTeam2())
	if assert.NotNil(t, m.WinnerTeamID()) {
		assert.Equal(t, 10, *m.WinnerTeamID())
	}
	assert.Equal(t, int64(58), m.PointsFor(10))
	assert.Equal(t, int64(55), m.PointsFor(20))
	assert.Equal(t, int64(0), m.PointsFor(99))
}

func TestPoolMatchWinnerNilUntilComplete(t *testing.T) {
	m := PoolMatch{
		Team1ID:     1,
		Team2ID:     2,
		ScoresTeam1: []int64{25, 0},
		ScoresTeam2: []int64{15, 0},
		Status:      MatchStatusInProgress,
	}
	assert.Nil(t, m.WinnerTeamID())

	m.Status = MatchStatusCompleted
	m.ScoresTeam1 = []int64{25, 15}
	m.ScoresTeam2 = []int64{15, 25}
	assert.Nil(t, m.WinnerTeamID(), "even set split is a tie")
}
