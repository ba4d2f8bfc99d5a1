package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beachrally/tournament-server/models"
)

func newTournamentServiceForTest() (TournamentService, *fakeTournamentRepo, *fakeUpdateRepo) {
	tournamentRepo := newFakeTournamentRepo()
	updateRepo := newFakeUpdateRepo()
	svc := NewTournamentService(tournamentRepo, newFakeTeamRepo(), newFakePoolRepo(), updateRepo, nil, nil)
	return svc, tournamentRepo, updateRepo
}

func TestCreateTournament_DefaultsAndValidation(t *testing.T) {
	svc, _, _ := newTournamentServiceForTest()

	created, err := svc.Create(context.Background(), CreateTournamentInput{
		Name:      "  Summer Slam  ",
		StartDate: 1700000000,
	})
	require.NoError(t, err)
	assert.Equal(t, "Summer Slam", created.Name)
	assert.Equal(t, models.TournamentStatusUpcoming, created.Status)
	assert.Equal(t, models.TypeSingleElimination, created.Type)
	assert.Equal(t, 4, created.MinTeams)
	assert.Equal(t, 16, created.MaxTeams)
	assert.Equal(t, 4, created.TeamsPerPool)
	assert.Equal(t, 2, created.PoolSets)
	assert.Equal(t, 1, created.BracketSets)

	_, err = svc.Create(context.Background(), CreateTournamentInput{Name: "   ", StartDate: 1})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	end := int64(100)
	_, err = svc.Create(context.Background(), CreateTournamentInput{Name: "Backwards", StartDate: 200, EndDate: &end})
	assert.ErrorIs(t, err, ErrTournamentInvalidDates)

	_, err = svc.Create(context.Background(), CreateTournamentInput{Name: "Tiny", StartDate: 1, MinTeams: 8, MaxTeams: 4})
	assert.ErrorIs(t, err, ErrTournamentInvalidCapacity)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	svc, repo, updateRepo := newTournamentServiceForTest()
	tournament := &models.Tournament{Name: "Flow", StartDate: 1, Status: models.TournamentStatusUpcoming}
	require.NoError(t, repo.Create(context.Background(), tournament))

	got, err := svc.UpdateStatus(context.Background(), tournament.ID, models.TournamentStatusPoolPlay)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusPoolPlay, got.Status)

	// Every successful transition leaves a feed entry.
	require.Len(t, updateRepo.updates, 1)
	assert.Equal(t, models.UpdateTypeTournamentUpdate, updateRepo.updates[0].Type)

	_, err = svc.UpdateStatus(context.Background(), tournament.ID, models.TournamentStatusUpcoming)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)

	_, err = svc.UpdateStatus(context.Background(), tournament.ID, "paused")
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)

	got, err = svc.UpdateStatus(context.Background(), tournament.ID, models.TournamentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusCompleted, got.Status)

	_, err = svc.UpdateStatus(context.Background(), tournament.ID, models.TournamentStatusBracketPlay)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)
}

func TestUpdateStatus_SameStatusIsIdempotent(t *testing.T) {
	svc, repo, _ := newTournamentServiceForTest()
	tournament := &models.Tournament{Name: "Idem", StartDate: 1, Status: models.TournamentStatusUpcoming}
	require.NoError(t, repo.Create(context.Background(), tournament))

	got, err := svc.UpdateStatus(context.Background(), tournament.ID, models.TournamentStatusUpcoming)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusUpcoming, got.Status)
}

func TestListUpdates_SinceFilter(t *testing.T) {
	svc, repo, updateRepo := newTournamentServiceForTest()
	tournament := &models.Tournament{Name: "Feed", StartDate: 1, Status: models.TournamentStatusUpcoming}
	require.NoError(t, repo.Create(context.Background(), tournament))

	for _, ts := range []int64{100, 105, 110} {
		require.NoError(t, updateRepo.Create(context.Background(), nil, &models.Update{
			TournamentID: tournament.ID,
			Type:         models.UpdateTypeScore,
			Timestamp:    ts,
		}))
	}

	updates, err := svc.ListUpdates(context.Background(), tournament.ID, int64Ptr(104), 20)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(110), updates[0].Timestamp)
	assert.Equal(t, int64(105), updates[1].Timestamp)

	_, err = svc.ListUpdates(context.Background(), 999, nil, 20)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTeamService_CapacityAndConflicts(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo()
	teamRepo := newFakeTeamRepo()
	svc := NewTeamService(teamRepo, tournamentRepo)

	tournament := &models.Tournament{Name: "Cap", StartDate: 1, Status: models.TournamentStatusUpcoming, MaxTeams: 2}
	require.NoError(t, tournamentRepo.Create(context.Background(), tournament))

	first, err := svc.Create(context.Background(), tournament.ID, CreateTeamInput{Name: "Aces", Players: []string{"Sam", "Riley"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sam", "Riley"}, first.Players)

	_, err = svc.Create(context.Background(), tournament.ID, CreateTeamInput{Name: "Aces"})
	assert.ErrorIs(t, err, ErrTeamNameConflict)

	_, err = svc.Create(context.Background(), tournament.ID, CreateTeamInput{Name: "Spikers"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), tournament.ID, CreateTeamInput{Name: "Overflow"})
	assert.ErrorIs(t, err, ErrTournamentFull)

	_, err = svc.Create(context.Background(), tournament.ID, CreateTeamInput{Name: "  "})
	assert.ErrorIs(t, err, ErrTeamNameRequired)
}
