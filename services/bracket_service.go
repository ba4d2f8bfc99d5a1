package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/beachrally/tournament-server/brackets"
	"github.com/beachrally/tournament-server/models"
	"github.com/beachrally/tournament-server/repositories"
)

type CreateBracketInput struct {
	BracketSize *int `json:"bracket_size,omitempty"`
}

type BracketService interface {
	CreateBracket(ctx context.Context, tournamentID int, input CreateBracketInput) ([]models.BracketRound, error)
	GetBracket(ctx context.Context, tournamentID int) ([]models.BracketRound, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	poolRepo       repositories.PoolRepository
	standingRepo   repositories.StandingRepository
	updateRepo     repositories.UpdateRepository
	generator      brackets.BracketGenerator
	hub            *brackets.Hub
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	poolRepo repositories.PoolRepository,
	standingRepo repositories.StandingRepository,
	updateRepo repositories.UpdateRepository,
	generator brackets.BracketGenerator,
	hub *brackets.Hub,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		poolRepo:       poolRepo,
		standingRepo:   standingRepo,
		updateRepo:     updateRepo,
		generator:      generator,
		hub:            hub,
	}
}

// CreateBracket generates the elimination bracket for a tournament. With
// pool play enabled, teams are seeded from the final pool standings;
// otherwise registration order is used. An existing bracket is replaced.
func (s *bracketService) CreateBracket(ctx context.Context, tournamentID int, input CreateBracketInput) ([]models.BracketRound, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	seededTeamIDs, err := s.seedTeams(ctx, tournament)
	if err != nil {
		return nil, err
	}

	bracketSize, err := resolveBracketSize(input.BracketSize, tournament.BracketSize, len(seededTeamIDs))
	if err != nil {
		return nil, err
	}
	if len(seededTeamIDs) > bracketSize {
		seededTeamIDs = seededTeamIDs[:bracketSize]
	}

	generated, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: tournamentID,
		TeamIDs:      seededTeamIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate bracket for tournament %d: %w", tournamentID, err)
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if txErr := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); txErr != nil {
			return fmt.Errorf("failed to clear previous bracket: %w", txErr)
		}

		uidToID := make(map[string]int, len(generated))
		for _, bm := range generated {
			match := &models.Match{
				TournamentID: tournamentID,
				RoundNumber:  bm.Round,
				Team1ID:      bm.Team1ID,
				Team2ID:      bm.Team2ID,
				Status:       models.MatchStatusScheduled,
			}
			if bm.IsBye {
				// A bye resolves immediately, the generator has already
				// carried its team into the next round.
				match.Status = models.MatchStatusCompleted
				match.WinnerID = bm.ByeTeamID
			}
			if txErr := s.matchRepo.Create(ctx, tx, match); txErr != nil {
				return fmt.Errorf("failed to create bracket match %s: %w", bm.UID, txErr)
			}
			uidToID[bm.UID] = match.ID
		}

		// Second pass links every match to the one its winner feeds.
		for _, bm := range generated {
			targetID := uidToID[bm.UID]
			for _, sourceUID := range []*string{bm.SourceMatch1UID, bm.SourceMatch2UID} {
				if sourceUID == nil {
					continue
				}
				sourceID, ok := uidToID[*sourceUID]
				if !ok {
					return fmt.Errorf("bracket match %s references unknown source %s", bm.UID, *sourceUID)
				}
				if txErr := s.matchRepo.UpdateNextMatchID(ctx, tx, sourceID, &targetID); txErr != nil {
					return fmt.Errorf("failed to link match %s to %s: %w", *sourceUID, bm.UID, txErr)
				}
			}
		}

		if txErr := s.tournamentRepo.SetBracketSize(ctx, tx, tournamentID, bracketSize); txErr != nil {
			return txErr
		}
		if tournament.Status != models.TournamentStatusBracketPlay {
			if txErr := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.TournamentStatusBracketPlay); txErr != nil {
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

	rounds, err := s.GetBracket(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	broadcastToRoom(s.hub, tournamentID, "BRACKET_CREATED", rounds)
	return rounds, nil
}

// GetBracket returns all elimination matches grouped by round.
func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) ([]models.BracketRound, error) {
	matches, err := s.matchRepo.List(ctx, repositories.ListMatchesFilter{TournamentID: tournamentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list bracket matches for tournament %d: %w", tournamentID, err)
	}

	byRound := make(map[int][]models.Match)
	for _, m := range matches {
		byRound[m.RoundNumber] = append(byRound[m.RoundNumber], m)
	}

	roundNumbers := make([]int, 0, len(byRound))
	for r := range byRound {
		roundNumbers = append(roundNumbers, r)
	}
	sort.Ints(roundNumbers)

	rounds := make([]models.BracketRound, 0, len(roundNumbers))
	for _, r := range roundNumbers {
		rounds = append(rounds, models.BracketRound{Round: r, Matches: byRound[r]})
	}
	return rounds, nil
}

// seedTeams produces the bracket field, best seed first.
func (s *bracketService) seedTeams(ctx context.Context, tournament *models.Tournament) ([]int, error) {
	if !tournament.HasPoolPlay {
		teams, err := s.teamRepo.ListByTournament(ctx, tournament.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list teams: %w", err)
		}
		if len(teams) < 2 {
			return nil, ErrNotEnoughTeams
		}
		ids := make([]int, len(teams))
		for i, team := range teams {
			ids[i] = team.ID
		}
		return ids, nil
	}

	if !tournament.PoolPlayComplete {
		return nil, ErrPoolPlayNotComplete
	}

	pools, err := s.poolRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	standings := make([]models.PoolStanding, 0)
	for _, pool := range pools {
		poolStandings, listErr := s.standingRepo.ListByPool(ctx, pool.ID)
		if listErr != nil {
			return nil, fmt.Errorf("failed to list standings for pool %d: %w", pool.ID, listErr)
		}
		standings = append(standings, poolStandings...)
	}
	if len(standings) < 2 {
		return nil, ErrNotEnoughTeams
	}

	// Seed by pool finish, breaking rank ties across pools on overall
	// record and then point differential.
	sort.SliceStable(standings, func(i, j int) bool {
		ri, rj := rankValue(standings[i].Rank), rankValue(standings[j].Rank)
		if ri != rj {
			return ri < rj
		}
		if standings[i].WinPercentage() != standings[j].WinPercentage() {
			return standings[i].WinPercentage() > standings[j].WinPercentage()
		}
		return standings[i].PointsDifferential() > standings[j].PointsDifferential()
	})

	ids := make([]int, len(standings))
	for i, standing := range standings {
		ids[i] = standing.TeamID
	}
	return ids, nil
}

func rankValue(rank *int) int {
	if rank == nil {
		return 1 << 30
	}
	return *rank
}

func resolveBracketSize(requested, stored *int, teamCount int) (int, error) {
	if requested != nil {
		if !validBracketSize(*requested) {
			return 0, ErrInvalidBracketSize
		}
		if *requested > teamCount {
			return 0, ErrNotEnoughTeams
		}
		return *requested, nil
	}
	if stored != nil && validBracketSize(*stored) && *stored <= teamCount {
		return *stored, nil
	}

	// Largest supported size the field can fill.
	for _, size := range []int{12, 8, 4} {
		if teamCount >= size {
			return size, nil
		}
	}
	if teamCount >= 2 {
		return teamCount, nil
	}
	return 0, ErrNotEnoughTeams
}

func validBracketSize(size int) bool {
	return size == 4 || size == 8 || size == 12
}
