package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beachrally/tournament-server/models"
)

type poolServiceFixture struct {
	svc            PoolService
	tournamentRepo *fakeTournamentRepo
	teamRepo       *fakeTeamRepo
	poolRepo       *fakePoolRepo
	poolMatchRepo  *fakePoolMatchRepo
	standingRepo   *fakeStandingRepo
	updateRepo     *fakeUpdateRepo
}

func newPoolServiceFixture() *poolServiceFixture {
	f := &poolServiceFixture{
		tournamentRepo: newFakeTournamentRepo(),
		teamRepo:       newFakeTeamRepo(),
		poolRepo:       newFakePoolRepo(),
		poolMatchRepo:  newFakePoolMatchRepo(),
		standingRepo:   newFakeStandingRepo(),
		updateRepo:     newFakeUpdateRepo(),
	}
	f.svc = NewPoolService(nil, f.tournamentRepo, f.teamRepo, f.poolRepo, f.poolMatchRepo, f.standingRepo, f.updateRepo, nil)
	return f
}

func (f *poolServiceFixture) seedTournament(t *testing.T, teamCount int) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{
		Name:         "Beach Open",
		StartDate:    1700000000,
		Status:       models.TournamentStatusUpcoming,
		Type:         models.TypeSingleElimination,
		HasPoolPlay:  true,
		MinTeams:     4,
		MaxTeams:     16,
		TeamsPerPool: 4,
		PoolSets:     2,
		BracketSets:  1,
	}
	require.NoError(t, f.tournamentRepo.Create(context.Background(), tournament))
	for i := 0; i < teamCount; i++ {
		f.teamRepo.add(models.Team{
			Name:         string(rune('A' + i)),
			TournamentID: tournament.ID,
		})
	}
	return tournament
}

func TestCreatePools_DistributesTeamsAndSchedules(t *testing.T) {
	f := newPoolServiceFixture()
	tournament := f.seedTournament(t, 8)

	pools, err := f.svc.CreatePools(context.Background(), tournament.ID, CreatePoolsInput{})
	require.NoError(t, err)
	require.Len(t, pools, 2)

	assert.Equal(t, "Pool A", pools[0].Name)
	assert.Equal(t, "Pool B", pools[1].Name)
	assert.Len(t, pools[0].TeamIDs, 4)
	assert.Len(t, pools[1].TeamIDs, 4)

	// Four teams per pool round-robin is six matches each.
	matchesA, err := f.poolMatchRepo.ListByPool(context.Background(), pools[0].ID)
	require.NoError(t, err)
	assert.Len(t, matchesA, 6)

	for _, m := range matchesA {
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
		assert.Equal(t, 2, m.NumSets)
		assert.Len(t, m.ScoresTeam1, 2)
		assert.GreaterOrEqual(t, m.ScheduledTime, tournament.StartDate)
	}

	standings, err := f.standingRepo.ListByPool(context.Background(), pools[0].ID)
	require.NoError(t, err)
	assert.Len(t, standings, 4)

	updated, err := f.tournamentRepo.GetByID(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusPoolPlay, updated.Status)
}

func TestCreatePools_HalfHourSlotsPerCourt(t *testing.T) {
	f := newPoolServiceFixture()
	tournament := f.seedTournament(t, 4)

	pools, err := f.svc.CreatePools(context.Background(), tournament.ID, CreatePoolsInput{})
	require.NoError(t, err)
	require.Len(t, pools, 1)

	matches, err := f.poolMatchRepo.ListByPool(context.Background(), pools[0].ID)
	require.NoError(t, err)
	require.Len(t, matches, 6)

	slots := make(map[int64]int)
	for _, m := range matches {
		offset := m.ScheduledTime - tournament.StartDate
		assert.Zero(t, offset%1800, "scheduled times fall on half-hour boundaries")
		slots[m.ScheduledTime]++
	}
	// Two concurrent matches per rotation with four teams.
	for _, count := range slots {
		assert.Equal(t, 2, count)
	}
}

func TestCreatePools_RequiresPoolPlay(t *testing.T) {
	f := newPoolServiceFixture()
	tournament := f.seedTournament(t, 4)
	tournament.HasPoolPlay = false
	require.NoError(t, f.tournamentRepo.Update(context.Background(), tournament))

	_, err := f.svc.CreatePools(context.Background(), tournament.ID, CreatePoolsInput{})
	assert.ErrorIs(t, err, ErrPoolPlayNotEnabled)
}

func (f *poolServiceFixture) seedPoolMatch(t *testing.T, tournamentID int, numSets int) *models.PoolMatch {
	t.Helper()
	team1 := f.teamRepo.add(models.Team{Name: "Dig It", TournamentID: tournamentID})
	team2 := f.teamRepo.add(models.Team{Name: "Block Party", TournamentID: tournamentID})

	pool := &models.Pool{TournamentID: tournamentID, Name: "Pool A", TeamIDs: []int{team1.ID, team2.ID}}
	require.NoError(t, f.poolRepo.Create(context.Background(), nil, pool))

	for _, teamID := range pool.TeamIDs {
		standing := &models.PoolStanding{PoolID: pool.ID, TournamentID: tournamentID, TeamID: teamID}
		require.NoError(t, f.standingRepo.Create(context.Background(), nil, standing))
	}

	match := &models.PoolMatch{
		PoolID:       pool.ID,
		TournamentID: tournamentID,
		Team1ID:      team1.ID,
		Team2ID:      team2.ID,
		ScoresTeam1:  make([]int64, numSets),
		ScoresTeam2:  make([]int64, numSets),
		NumSets:      numSets,
		Status:       models.MatchStatusScheduled,
	}
	require.NoError(t, f.poolMatchRepo.Create(context.Background(), nil, match))
	return match
}

func TestRecordSetScore_ThreeSetMatchLifecycle(t *testing.T) {
	f := newPoolServiceFixture()
	tournament := f.seedTournament(t, 0)
	match := f.seedPoolMatch(t, tournament.ID, 3)

	got, err := f.svc.RecordSetScore(context.Background(), match.ID, RecordSetScoreInput{SetNumber: 1, ScoreTeam1: 21, ScoreTeam2: 18})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, got.Status)

	got, err = f.svc.RecordSetScore(context.Background(), match.ID, RecordSetScoreInput{SetNumber: 2, ScoreTeam1: 19, ScoreTeam2: 21})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, got.Status)

	got, err = f.svc.RecordSetScore(context.Background(), match.ID, RecordSetScoreInput{SetNumber: 3, ScoreTeam1: 15, ScoreTeam2: 11})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, got.Status)
	assert.Equal(t, 2, got.SetsWonTeam1())
	assert.Equal(t, 1, got.SetsWonTeam2())
	require.NotNil(t, got.WinnerTeamID())
	assert.Equal(t, match.Team1ID, *got.WinnerTeamID())

	winner, err := f.standingRepo.GetByTeamAndPool(context.Background(), match.Team1ID, match.PoolID)
	require.NoError(t, err)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 0, winner.Losses)
	assert.Equal(t, 2, winner.SetsWon)
	assert.Equal(t, 1, winner.SetsLost)
	assert.Equal(t, 55, winner.PointsScored)
	assert.Equal(t, 50, winner.PointsAllowed)
	require.NotNil(t, winner.Rank)
	assert.Equal(t, 1, *winner.Rank)

	loser, err := f.standingRepo.GetByTeamAndPool(context.Background(), match.Team2ID, match.PoolID)
	require.NoError(t, err)
	assert.Equal(t, 1, loser.Losses)
	require.NotNil(t, loser.Rank)
	assert.Equal(t, 2, *loser.Rank)

	// Three set scores -> two score updates and one completion.
	require.Len(t, f.updateRepo.updates, 3)
	assert.Equal(t, models.UpdateTypeScore, f.updateRepo.updates[0].Type)
	assert.Equal(t, models.UpdateTypeMatchComplete, f.updateRepo.updates[2].Type)
}

func TestRecordSetScore_SplitSetsCountAsTie(t *testing.T) {
	f := newPoolServiceFixture()
	tournament := f.seedTournament(t, 0)
	match := f.seedPoolMatch(t, tournament.ID, 2)

	_, err := f.svc.RecordSetScore(context.Background(), match.ID, RecordSetScoreInput{SetNumber: 1, ScoreTeam1: 21, ScoreTeam2: 15})
	require.NoError(t, err)
	got, err := f.svc.RecordSetScore(context.Background(), match.ID, RecordSetScoreInput{SetNumber: 2, ScoreTeam1: 12, ScoreTeam2: 21})
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusCompleted, got.Status)
	assert.Nil(t, got.WinnerTeamID())

	for _, teamID := range []int{match.Team1ID, match.Team2ID} {
		standing, stErr := f.standingRepo.GetByTeamAndPool(context.Background(), teamID, match.PoolID)
		require.NoError(t, stErr)
		assert.Equal(t, 1, standing.Ties)
		assert.Zero(t, standing.Wins)
		assert.Zero(t, standing.Losses)
		assert.InDelta(t, 0.5, standing.WinPercentage(), 1e-9)
	}

	// The tie breaks on point differential: 33-36 against team1.
	first, err := f.standingRepo.GetByTeamAndPool(context.Background(), match.Team2ID, match.PoolID)
	require.NoError(t, err)
	require.NotNil(t, first.Rank)
	assert.Equal(t, 1, *first.Rank)
}

func TestRecordSetScore_Validation(t *testing.T) {
	f := newPoolServiceFixture()
	tournament := f.seedTournament(t, 0)
	match := f.seedPoolMatch(t, tournament.ID, 2)

	_, err := f.svc.RecordSetScore(context.Background(), match.ID, RecordSetScoreInput{SetNumber: 3, ScoreTeam1: 21, ScoreTeam2: 15})
	assert.ErrorIs(t, err, ErrSetIndexOutOfRange)

	_, err = f.svc.RecordSetScore(context.Background(), match.ID, RecordSetScoreInput{SetNumber: 1, ScoreTeam1: -2, ScoreTeam2: 15})
	assert.ErrorIs(t, err, ErrScoreNegative)

	_, err = f.svc.RecordSetScore(context.Background(), 999, RecordSetScoreInput{SetNumber: 1, ScoreTeam1: 21, ScoreTeam2: 15})
	assert.ErrorIs(t, err, ErrPoolMatchNotFound)
}

func TestCompletePoolPlay_GatesOnMatchCompletion(t *testing.T) {
	f := newPoolServiceFixture()
	tournament := f.seedTournament(t, 0)
	match := f.seedPoolMatch(t, tournament.ID, 1)

	_, err := f.svc.CompletePoolPlay(context.Background(), tournament.ID)
	assert.ErrorIs(t, err, ErrPoolMatchesUnfinished)

	_, err = f.svc.RecordSetScore(context.Background(), match.ID, RecordSetScoreInput{SetNumber: 1, ScoreTeam1: 21, ScoreTeam2: 17})
	require.NoError(t, err)

	updated, err := f.svc.CompletePoolPlay(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.True(t, updated.PoolPlayComplete)

	_, err = f.svc.CompletePoolPlay(context.Background(), tournament.ID)
	assert.ErrorIs(t, err, ErrPoolPlayAlreadyComplete)
}
