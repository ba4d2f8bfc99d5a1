package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beachrally/tournament-server/brackets"
	"github.com/beachrally/tournament-server/models"
	"github.com/beachrally/tournament-server/repositories"
)

// poolMatchSlotInterval is the gap between consecutive round-robin time
// slots on the same court.
const poolMatchSlotInterval = 30 * time.Minute

type CreatePoolsInput struct {
	NumPools   *int   `json:"num_pools,omitempty"`
	LocationID *int   `json:"location_id,omitempty"`
	StartTime  *int64 `json:"start_time,omitempty"`
}

type RecordSetScoreInput struct {
	SetNumber  int   `json:"set_number"`
	ScoreTeam1 int64 `json:"score_team1"`
	ScoreTeam2 int64 `json:"score_team2"`
}

type PoolService interface {
	CreatePools(ctx context.Context, tournamentID int, input CreatePoolsInput) ([]models.Pool, error)
	GetPool(ctx context.Context, poolID int) (*models.Pool, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Pool, error)
	GetPoolMatch(ctx context.Context, id int) (*models.PoolMatch, error)
	ListPoolMatches(ctx context.Context, tournamentID int) ([]models.PoolMatch, error)
	RecordSetScore(ctx context.Context, poolMatchID int, input RecordSetScoreInput) (*models.PoolMatch, error)
	PoolStandings(ctx context.Context, poolID int) ([]models.PoolStanding, error)
	TournamentStandings(ctx context.Context, tournamentID int) ([]models.PoolStanding, error)
	CompletePoolPlay(ctx context.Context, tournamentID int) (*models.Tournament, error)
}

type poolService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	poolRepo       repositories.PoolRepository
	poolMatchRepo  repositories.PoolMatchRepository
	standingRepo   repositories.StandingRepository
	updateRepo     repositories.UpdateRepository
	scheduler      *brackets.RoundRobinGenerator
	hub            *brackets.Hub
}

func NewPoolService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	poolRepo repositories.PoolRepository,
	poolMatchRepo repositories.PoolMatchRepository,
	standingRepo repositories.StandingRepository,
	updateRepo repositories.UpdateRepository,
	hub *brackets.Hub,
) PoolService {
	return &poolService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		poolRepo:       poolRepo,
		poolMatchRepo:  poolMatchRepo,
		standingRepo:   standingRepo,
		updateRepo:     updateRepo,
		scheduler:      brackets.NewRoundRobinGenerator(),
		hub:            hub,
	}
}

// CreatePools splits the registered teams into pools and schedules a full
// round-robin inside each pool. Each pool gets its own court, slots are
// spaced half an hour apart.
func (s *poolService) CreatePools(ctx context.Context, tournamentID int, input CreatePoolsInput) ([]models.Pool, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if !tournament.HasPoolPlay {
		return nil, ErrPoolPlayNotEnabled
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	numPools := poolCount(len(teams), tournament.TeamsPerPool)
	if input.NumPools != nil && *input.NumPools > 0 && *input.NumPools <= len(teams)/2 {
		numPools = *input.NumPools
	}

	// Deal teams out one per pool so sizes stay within one of each other.
	poolTeamIDs := make([][]int, numPools)
	for i, team := range teams {
		poolTeamIDs[i%numPools] = append(poolTeamIDs[i%numPools], team.ID)
	}

	startTime := tournament.StartDate
	if input.StartTime != nil {
		startTime = *input.StartTime
	}

	var pools []models.Pool
	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		pools = make([]models.Pool, 0, numPools)
		for i, teamIDs := range poolTeamIDs {
			court := i + 1
			pool := &models.Pool{
				TournamentID: tournamentID,
				Name:         fmt.Sprintf("Pool %c", 'A'+i),
				LocationID:   input.LocationID,
				CourtNumber:  &court,
				TeamIDs:      teamIDs,
			}
			if txErr := s.poolRepo.Create(ctx, tx, pool); txErr != nil {
				return fmt.Errorf("failed to create %s: %w", pool.Name, txErr)
			}

			for _, teamID := range teamIDs {
				standing := &models.PoolStanding{
					PoolID:       pool.ID,
					TournamentID: tournamentID,
					TeamID:       teamID,
				}
				if txErr := s.standingRepo.Create(ctx, tx, standing); txErr != nil {
					return fmt.Errorf("failed to initialize standing for team %d: %w", teamID, txErr)
				}
			}

			pairings, pairErr := s.scheduler.GeneratePairings(teamIDs)
			if pairErr != nil {
				return fmt.Errorf("failed to schedule %s: %w", pool.Name, pairErr)
			}
			for _, pairing := range pairings {
				match := &models.PoolMatch{
					PoolID:        pool.ID,
					TournamentID:  tournamentID,
					Team1ID:       pairing.Team1ID,
					Team2ID:       pairing.Team2ID,
					ScoresTeam1:   make([]int64, tournament.PoolSets),
					ScoresTeam2:   make([]int64, tournament.PoolSets),
					NumSets:       tournament.PoolSets,
					Status:        models.MatchStatusScheduled,
					LocationID:    input.LocationID,
					CourtNumber:   &court,
					ScheduledTime: startTime + int64(pairing.Slot)*int64(poolMatchSlotInterval/time.Second),
				}
				if txErr := s.poolMatchRepo.Create(ctx, tx, match); txErr != nil {
					return fmt.Errorf("failed to create pool match in %s: %w", pool.Name, txErr)
				}
			}

			pools = append(pools, *pool)
		}

		if tournament.Status == models.TournamentStatusUpcoming {
			if txErr := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.TournamentStatusPoolPlay); txErr != nil {
				return txErr
			}
		}

		update := &models.Update{
			TournamentID: tournamentID,
			Type:         models.UpdateTypeTournamentUpdate,
			Timestamp:    time.Now().Unix(),
		}
		return s.updateRepo.Create(ctx, tx, update)
	})
	if err != nil {
		return nil, err
	}

	broadcastToRoom(s.hub, tournamentID, "POOLS_CREATED", pools)
	return pools, nil
}

func poolCount(teamCount, teamsPerPool int) int {
	if teamsPerPool < 2 {
		teamsPerPool = 4
	}
	n := (teamCount + teamsPerPool - 1) / teamsPerPool
	if n < 1 {
		n = 1
	}
	return n
}

// GetPool returns a pool with its teams, matches and standings attached.
func (s *poolService) GetPool(ctx context.Context, poolID int) (*models.Pool, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return nil, mapPoolRepoError(err)
	}
	if err := s.attachPoolDetails(ctx, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *poolService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Pool, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	pools, err := s.poolRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools for tournament %d: %w", tournamentID, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range pools {
		pool := &pools[i]
		g.Go(func() error {
			return s.attachPoolDetails(gctx, pool)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pools, nil
}

func (s *poolService) attachPoolDetails(ctx context.Context, pool *models.Pool) error {
	teams, err := s.teamRepo.GetByIDs(ctx, pool.TeamIDs)
	if err != nil {
		return fmt.Errorf("failed to load teams for pool %d: %w", pool.ID, err)
	}
	pool.Teams = make([]models.Team, 0, len(pool.TeamIDs))
	for _, teamID := range pool.TeamIDs {
		if team, ok := teams[teamID]; ok {
			pool.Teams = append(pool.Teams, team)
		}
	}

	matches, err := s.poolMatchRepo.ListByPool(ctx, pool.ID)
	if err != nil {
		return fmt.Errorf("failed to load matches for pool %d: %w", pool.ID, err)
	}
	fillPoolMatchTeamNames(matches, teams)
	pool.Matches = matches

	standings, err := s.standingRepo.ListByPool(ctx, pool.ID)
	if err != nil {
		return fmt.Errorf("failed to load standings for pool %d: %w", pool.ID, err)
	}
	for i := range standings {
		if team, ok := teams[standings[i].TeamID]; ok {
			name := team.Name
			standings[i].TeamName = &name
		}
	}
	pool.Standings = standings
	return nil
}

func fillPoolMatchTeamNames(matches []models.PoolMatch, teams map[int]models.Team) {
	for i := range matches {
		if team, ok := teams[matches[i].Team1ID]; ok {
			name := team.Name
			matches[i].Team1Name = &name
		}
		if team, ok := teams[matches[i].Team2ID]; ok {
			name := team.Name
			matches[i].Team2Name = &name
		}
	}
}

func (s *poolService) GetPoolMatch(ctx context.Context, id int) (*models.PoolMatch, error) {
	match, err := s.poolMatchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapPoolMatchRepoError(err)
	}
	return match, nil
}

func (s *poolService) ListPoolMatches(ctx context.Context, tournamentID int) ([]models.PoolMatch, error) {
	matches, err := s.poolMatchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pool matches for tournament %d: %w", tournamentID, err)
	}

	ids := make([]int, 0, len(matches)*2)
	for _, m := range matches {
		ids = append(ids, m.Team1ID, m.Team2ID)
	}
	teams, err := s.teamRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load team names: %w", err)
	}
	fillPoolMatchTeamNames(matches, teams)
	return matches, nil
}

// RecordSetScore writes one set's score. Recording the last outstanding set
// completes the match and folds its result into the pool standings.
func (s *poolService) RecordSetScore(ctx context.Context, poolMatchID int, input RecordSetScoreInput) (*models.PoolMatch, error) {
	match, err := s.poolMatchRepo.GetByID(ctx, poolMatchID)
	if err != nil {
		return nil, mapPoolMatchRepoError(err)
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchNotEditable
	}
	if input.SetNumber < 1 || input.SetNumber > match.NumSets {
		return nil, ErrSetIndexOutOfRange
	}
	if input.ScoreTeam1 < 0 || input.ScoreTeam2 < 0 {
		return nil, ErrScoreNegative
	}

	// Older rows may predate a num_sets change, keep the arrays aligned.
	for len(match.ScoresTeam1) < match.NumSets {
		match.ScoresTeam1 = append(match.ScoresTeam1, 0)
	}
	for len(match.ScoresTeam2) < match.NumSets {
		match.ScoresTeam2 = append(match.ScoresTeam2, 0)
	}

	idx := input.SetNumber - 1
	match.ScoresTeam1[idx] = input.ScoreTeam1
	match.ScoresTeam2[idx] = input.ScoreTeam2

	if match.Status == models.MatchStatusScheduled {
		match.Status = models.MatchStatusInProgress
	}

	completing := allSetsRecorded(match)
	if completing {
		match.Status = models.MatchStatusCompleted
	}

	update, err := s.buildPoolMatchUpdate(ctx, match, completing)
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if txErr := s.poolMatchRepo.Update(ctx, tx, match); txErr != nil {
			return mapPoolMatchRepoError(txErr)
		}
		if completing {
			if txErr := s.applyResultToStandings(ctx, tx, match); txErr != nil {
				return txErr
			}
			if txErr := s.recomputeRanks(ctx, tx, match.PoolID); txErr != nil {
				return txErr
			}
		}
		return s.updateRepo.Create(ctx, tx, update)
	})
	if err != nil {
		return nil, err
	}

	if completing {
		broadcastToRoom(s.hub, match.TournamentID, "POOL_MATCH_COMPLETED", match)
	} else {
		broadcastToRoom(s.hub, match.TournamentID, "POOL_MATCH_UPDATED", match)
	}
	return match, nil
}

// allSetsRecorded treats a set as played once either side has points.
// Volleyball sets cannot end scoreless.
func allSetsRecorded(m *models.PoolMatch) bool {
	for i := 0; i < m.NumSets; i++ {
		if m.ScoresTeam1[i] == 0 && m.ScoresTeam2[i] == 0 {
			return false
		}
	}
	return true
}

func (s *poolService) applyResultToStandings(ctx context.Context, tx *sql.Tx, match *models.PoolMatch) error {
	setsWon1, setsWon2 := match.SetsWonTeam1(), match.SetsWonTeam2()
	points1, points2 := match.PointsFor(match.Team1ID), match.PointsFor(match.Team2ID)

	for _, side := range []struct {
		teamID             int
		setsWon, setsLost  int
		scored, allowed    int64
		won, lost, tied    bool
	}{
		{match.Team1ID, setsWon1, setsWon2, points1, points2, setsWon1 > setsWon2, setsWon1 < setsWon2, setsWon1 == setsWon2},
		{match.Team2ID, setsWon2, setsWon1, points2, points1, setsWon2 > setsWon1, setsWon2 < setsWon1, setsWon1 == setsWon2},
	} {
		standing, err := s.standingRepo.GetByTeamAndPool(ctx, side.teamID, match.PoolID)
		if err != nil {
			return fmt.Errorf("failed to load standing for team %d: %w", side.teamID, err)
		}

		if side.won {
			standing.Wins++
		} else if side.lost {
			standing.Losses++
		} else if side.tied {
			standing.Ties++
		}
		standing.SetsWon += side.setsWon
		standing.SetsLost += side.setsLost
		standing.PointsScored += int(side.scored)
		standing.PointsAllowed += int(side.allowed)

		if err := s.standingRepo.Update(ctx, tx, standing); err != nil {
			return fmt.Errorf("failed to update standing for team %d: %w", side.teamID, err)
		}
	}
	return nil
}

// recomputeRanks reorders the whole pool by win percentage, then point
// differential.
func (s *poolService) recomputeRanks(ctx context.Context, tx *sql.Tx, poolID int) error {
	standings, err := s.standingRepo.ListByPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to list standings for pool %d: %w", poolID, err)
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].WinPercentage() != standings[j].WinPercentage() {
			return standings[i].WinPercentage() > standings[j].WinPercentage()
		}
		return standings[i].PointsDifferential() > standings[j].PointsDifferential()
	})

	for i := range standings {
		rank := i + 1
		if err := s.standingRepo.AssignRank(ctx, tx, standings[i].ID, rank); err != nil {
			return fmt.Errorf("failed to assign rank %d in pool %d: %w", rank, poolID, err)
		}
	}
	return nil
}

func (s *poolService) buildPoolMatchUpdate(ctx context.Context, match *models.PoolMatch, completing bool) (*models.Update, error) {
	teams, err := s.teamRepo.GetByIDs(ctx, []int{match.Team1ID, match.Team2ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load team names for update: %w", err)
	}

	updateType := models.UpdateTypeScore
	if completing {
		updateType = models.UpdateTypeMatchComplete
	}

	setsWon1, setsWon2 := match.SetsWonTeam1(), match.SetsWonTeam2()
	team1ID, team2ID := match.Team1ID, match.Team2ID
	update := &models.Update{
		TournamentID: match.TournamentID,
		MatchID:      &match.ID,
		Type:         updateType,
		Team1ID:      &team1ID,
		Team2ID:      &team2ID,
		ScoreTeam1:   &setsWon1,
		ScoreTeam2:   &setsWon2,
		Timestamp:    time.Now().Unix(),
	}
	if team, ok := teams[match.Team1ID]; ok {
		name := team.Name
		update.Team1Name = &name
	}
	if team, ok := teams[match.Team2ID]; ok {
		name := team.Name
		update.Team2Name = &name
	}
	return update, nil
}

func (s *poolService) PoolStandings(ctx context.Context, poolID int) ([]models.PoolStanding, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return nil, mapPoolRepoError(err)
	}

	standings, err := s.standingRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for pool %d: %w", poolID, err)
	}

	teams, err := s.teamRepo.GetByIDs(ctx, pool.TeamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for pool %d: %w", poolID, err)
	}
	for i := range standings {
		if team, ok := teams[standings[i].TeamID]; ok {
			name := team.Name
			standings[i].TeamName = &name
		}
		poolName := pool.Name
		standings[i].PoolName = &poolName
	}
	return standings, nil
}

// TournamentStandings flattens every pool's standings into the cross-pool
// seeding order.
func (s *poolService) TournamentStandings(ctx context.Context, tournamentID int) ([]models.PoolStanding, error) {
	pools, err := s.poolRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools for tournament %d: %w", tournamentID, err)
	}

	all := make([]models.PoolStanding, 0)
	for _, pool := range pools {
		standings, listErr := s.PoolStandings(ctx, pool.ID)
		if listErr != nil {
			return nil, listErr
		}
		all = append(all, standings...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := rankValue(all[i].Rank), rankValue(all[j].Rank)
		if ri != rj {
			return ri < rj
		}
		if all[i].WinPercentage() != all[j].WinPercentage() {
			return all[i].WinPercentage() > all[j].WinPercentage()
		}
		return all[i].PointsDifferential() > all[j].PointsDifferential()
	})
	return all, nil
}

// CompletePoolPlay closes the pool phase once every pool match has been
// played, unlocking bracket creation.
func (s *poolService) CompletePoolPlay(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if !tournament.HasPoolPlay {
		return nil, ErrPoolPlayNotEnabled
	}
	if tournament.PoolPlayComplete {
		return nil, ErrPoolPlayAlreadyComplete
	}

	matches, err := s.poolMatchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pool matches for tournament %d: %w", tournamentID, err)
	}
	for _, match := range matches {
		if match.Status != models.MatchStatusCompleted {
			return nil, ErrPoolMatchesUnfinished
		}
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if txErr := s.tournamentRepo.SetPoolPlayComplete(ctx, tx, tournamentID, true); txErr != nil {
			return txErr
		}
		update := &models.Update{
			TournamentID: tournamentID,
			Type:         models.UpdateTypeTournamentUpdate,
			Timestamp:    time.Now().Unix(),
		}
		return s.updateRepo.Create(ctx, tx, update)
	})
	if err != nil {
		return nil, err
	}

	tournament.PoolPlayComplete = true
	broadcastToRoom(s.hub, tournamentID, "POOL_PLAY_COMPLETED", tournament)
	return tournament, nil
}

func mapPoolRepoError(err error) error {
	if errors.Is(err, repositories.ErrPoolNotFound) {
		return ErrPoolNotFound
	}
	return err
}

func mapPoolMatchRepoError(err error) error {
	if errors.Is(err, repositories.ErrPoolMatchNotFound) {
		return ErrPoolMatchNotFound
	}
	return err
}
