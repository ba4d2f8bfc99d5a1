package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beachrally/tournament-server/models"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func newMatchServiceForTest() (MatchService, *fakeMatchRepo, *fakeTeamRepo, *fakeUpdateRepo) {
	matchRepo := newFakeMatchRepo()
	teamRepo := newFakeTeamRepo()
	updateRepo := newFakeUpdateRepo()
	svc := NewMatchService(nil, matchRepo, teamRepo, updateRepo, nil)
	return svc, matchRepo, teamRepo, updateRepo
}

func TestUpdateMatch_FirstScoreMovesMatchLive(t *testing.T) {
	svc, matchRepo, teamRepo, updateRepo := newMatchServiceForTest()
	teamRepo.add(models.Team{ID: 10, Name: "Sandstorm", TournamentID: 1})
	teamRepo.add(models.Team{ID: 20, Name: "Net Gains", TournamentID: 1})
	matchRepo.add(models.Match{
		ID: 1, TournamentID: 1, RoundNumber: 1,
		Team1ID: intPtr(10), Team2ID: intPtr(20),
		Status: models.MatchStatusScheduled,
	})

	match, err := svc.UpdateMatch(context.Background(), 1, UpdateMatchInput{
		ScoreTeam1: intPtr(5),
		ScoreTeam2: intPtr(3),
	})
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusInProgress, match.Status)
	assert.Equal(t, 5, match.ScoreTeam1)
	assert.Equal(t, 3, match.ScoreTeam2)
	assert.Nil(t, match.WinnerID)

	require.Len(t, updateRepo.updates, 1)
	assert.Equal(t, models.UpdateTypeScore, updateRepo.updates[0].Type)
	assert.Equal(t, "Sandstorm", *updateRepo.updates[0].Team1Name)
}

func TestUpdateMatch_CompletionAdvancesWinner(t *testing.T) {
	svc, matchRepo, teamRepo, updateRepo := newMatchServiceForTest()
	teamRepo.add(models.Team{ID: 10, Name: "Sandstorm", TournamentID: 1})
	teamRepo.add(models.Team{ID: 20, Name: "Net Gains", TournamentID: 1})
	matchRepo.add(models.Match{
		ID: 1, TournamentID: 1, RoundNumber: 1,
		Team1ID: intPtr(10), Team2ID: intPtr(20),
		ScoreTeam1: 25, ScoreTeam2: 20,
		Status:      models.MatchStatusInProgress,
		NextMatchID: intPtr(3),
	})
	matchRepo.add(models.Match{
		ID: 3, TournamentID: 1, RoundNumber: 2,
		Status: models.MatchStatusScheduled,
	})

	status := models.MatchStatusCompleted
	match, err := svc.UpdateMatch(context.Background(), 1, UpdateMatchInput{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	require.NotNil(t, match.WinnerID)
	assert.Equal(t, 10, *match.WinnerID)

	next, err := matchRepo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, next.Team1ID)
	assert.Equal(t, 10, *next.Team1ID)
	assert.Nil(t, next.Team2ID)

	require.Len(t, updateRepo.updates, 1)
	assert.Equal(t, models.UpdateTypeMatchComplete, updateRepo.updates[0].Type)
}

func TestUpdateMatch_SecondWinnerFillsSecondSlot(t *testing.T) {
	svc, matchRepo, teamRepo, _ := newMatchServiceForTest()
	teamRepo.add(models.Team{ID: 10, Name: "A", TournamentID: 1})
	teamRepo.add(models.Team{ID: 20, Name: "B", TournamentID: 1})
	matchRepo.add(models.Match{
		ID: 2, TournamentID: 1, RoundNumber: 1,
		Team1ID: intPtr(10), Team2ID: intPtr(20),
		ScoreTeam1: 18, ScoreTeam2: 21,
		Status:      models.MatchStatusInProgress,
		NextMatchID: intPtr(3),
	})
	matchRepo.add(models.Match{
		ID: 3, TournamentID: 1, RoundNumber: 2,
		Team1ID: intPtr(99),
		Status:  models.MatchStatusScheduled,
	})

	status := models.MatchStatusCompleted
	_, err := svc.UpdateMatch(context.Background(), 2, UpdateMatchInput{Status: &status})
	require.NoError(t, err)

	next, err := matchRepo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, next.Team2ID)
	assert.Equal(t, 20, *next.Team2ID)
}

func TestUpdateMatch_TieCannotComplete(t *testing.T) {
	svc, matchRepo, teamRepo, _ := newMatchServiceForTest()
	teamRepo.add(models.Team{ID: 10, Name: "A", TournamentID: 1})
	teamRepo.add(models.Team{ID: 20, Name: "B", TournamentID: 1})
	matchRepo.add(models.Match{
		ID: 1, TournamentID: 1, RoundNumber: 1,
		Team1ID: intPtr(10), Team2ID: intPtr(20),
		ScoreTeam1: 21, ScoreTeam2: 21,
		Status: models.MatchStatusInProgress,
	})

	status := models.MatchStatusCompleted
	_, err := svc.UpdateMatch(context.Background(), 1, UpdateMatchInput{Status: &status})
	assert.ErrorIs(t, err, ErrScoreTied)
}

func TestUpdateMatch_StatusNeverRegresses(t *testing.T) {
	svc, matchRepo, teamRepo, _ := newMatchServiceForTest()
	teamRepo.add(models.Team{ID: 10, Name: "A", TournamentID: 1})
	teamRepo.add(models.Team{ID: 20, Name: "B", TournamentID: 1})
	matchRepo.add(models.Match{
		ID: 1, TournamentID: 1, RoundNumber: 1,
		Team1ID: intPtr(10), Team2ID: intPtr(20),
		Status: models.MatchStatusInProgress,
	})

	status := models.MatchStatusScheduled
	_, err := svc.UpdateMatch(context.Background(), 1, UpdateMatchInput{Status: &status})
	assert.ErrorIs(t, err, ErrStatusRegression)
}

func TestUpdateMatch_CompletedMatchIsFrozen(t *testing.T) {
	svc, matchRepo, _, _ := newMatchServiceForTest()
	matchRepo.add(models.Match{
		ID: 1, TournamentID: 1, RoundNumber: 1,
		Team1ID: intPtr(10), Team2ID: intPtr(20),
		Status: models.MatchStatusCompleted,
	})

	_, err := svc.UpdateMatch(context.Background(), 1, UpdateMatchInput{ScoreTeam1: intPtr(30)})
	assert.ErrorIs(t, err, ErrMatchNotEditable)
}

func TestUpdateMatch_NegativeScoreRejected(t *testing.T) {
	svc, matchRepo, _, _ := newMatchServiceForTest()
	matchRepo.add(models.Match{
		ID: 1, TournamentID: 1, RoundNumber: 1,
		Team1ID: intPtr(10), Team2ID: intPtr(20),
		Status: models.MatchStatusScheduled,
	})

	_, err := svc.UpdateMatch(context.Background(), 1, UpdateMatchInput{ScoreTeam1: intPtr(-1)})
	assert.ErrorIs(t, err, ErrScoreNegative)
}

func TestUpdateMatch_NotFound(t *testing.T) {
	svc, _, _, _ := newMatchServiceForTest()
	_, err := svc.UpdateMatch(context.Background(), 42, UpdateMatchInput{})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
