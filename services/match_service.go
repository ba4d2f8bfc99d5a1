package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/beachrally/tournament-server/brackets"
	"github.com/beachrally/tournament-server/models"
	"github.com/beachrally/tournament-server/repositories"
)

type UpdateMatchInput struct {
	ScoreTeam1    *int                `json:"score_team1,omitempty"`
	ScoreTeam2    *int                `json:"score_team2,omitempty"`
	Status        *models.MatchStatus `json:"status,omitempty"`
	Court         *string             `json:"court,omitempty"`
	ScheduledTime *int64              `json:"scheduled_time,omitempty"`
}

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]models.Match, error)
	UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
}

type matchService struct {
	db         *sql.DB
	matchRepo  repositories.MatchRepository
	teamRepo   repositories.TeamRepository
	updateRepo repositories.UpdateRepository
	hub        *brackets.Hub
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	updateRepo repositories.UpdateRepository,
	hub *brackets.Hub,
) MatchService {
	return &matchService{
		db:         db,
		matchRepo:  matchRepo,
		teamRepo:   teamRepo,
		updateRepo: updateRepo,
		hub:        hub,
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]models.Match, error) {
	matches, err := s.matchRepo.List(ctx, repositories.ListMatchesFilter{
		TournamentID: tournamentID,
		Status:       status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

// UpdateMatch applies score, scheduling and status changes to a bracket
// match. Completing a match resolves the winner and advances them into the
// next round.
func (s *matchService) UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchNotEditable
	}

	scoreChanged := false
	if input.ScoreTeam1 != nil {
		if *input.ScoreTeam1 < 0 {
			return nil, ErrScoreNegative
		}
		match.ScoreTeam1 = *input.ScoreTeam1
		scoreChanged = true
	}
	if input.ScoreTeam2 != nil {
		if *input.ScoreTeam2 < 0 {
			return nil, ErrScoreNegative
		}
		match.ScoreTeam2 = *input.ScoreTeam2
		scoreChanged = true
	}
	if input.Court != nil {
		match.Court = input.Court
	}
	if input.ScheduledTime != nil {
		match.ScheduledTime = input.ScheduledTime
	}

	newStatus := match.Status
	if input.Status != nil {
		if !match.Status.Forward(*input.Status) {
			return nil, ErrStatusRegression
		}
		newStatus = *input.Status
	} else if scoreChanged && match.Status == models.MatchStatusScheduled &&
		(match.ScoreTeam1 > 0 || match.ScoreTeam2 > 0) {
		// First recorded point moves the match live.
		newStatus = models.MatchStatusInProgress
	}

	completing := newStatus == models.MatchStatusCompleted
	if completing {
		if match.Team1ID == nil || match.Team2ID == nil {
			return nil, fmt.Errorf("%w: both teams must be set before completing", ErrValidationFailed)
		}
		if match.ScoreTeam1 == match.ScoreTeam2 {
			return nil, ErrScoreTied
		}
		winnerID := *match.Team1ID
		if match.ScoreTeam2 > match.ScoreTeam1 {
			winnerID = *match.Team2ID
		}
		match.WinnerID = &winnerID
	}
	match.Status = newStatus

	var update *models.Update
	if scoreChanged || completing || input.Status != nil {
		updateType := models.UpdateTypeMatchUpdate
		if scoreChanged {
			updateType = models.UpdateTypeScore
		}
		if completing {
			updateType = models.UpdateTypeMatchComplete
		}
		update, err = s.buildUpdate(ctx, match, updateType)
		if err != nil {
			return nil, err
		}
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if txErr := s.matchRepo.Update(ctx, tx, match); txErr != nil {
			return mapMatchRepoError(txErr)
		}
		if completing && match.NextMatchID != nil {
			if txErr := s.advanceWinner(ctx, tx, match); txErr != nil {
				return txErr
			}
		}
		if update != nil {
			if txErr := s.updateRepo.Create(ctx, tx, update); txErr != nil {
				return fmt.Errorf("failed to record match update: %w", txErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completing {
		broadcastToRoom(s.hub, match.TournamentID, "MATCH_COMPLETED", match)
	} else if scoreChanged || input.Status != nil {
		broadcastToRoom(s.hub, match.TournamentID, "MATCH_UPDATED", match)
	}

	return match, nil
}

// advanceWinner places the winner into the first open slot of the match they
// feed into.
func (s *matchService) advanceWinner(ctx context.Context, tx *sql.Tx, match *models.Match) error {
	next, err := s.matchRepo.GetByID(ctx, *match.NextMatchID)
	if err != nil {
		return fmt.Errorf("failed to load next match %d: %w", *match.NextMatchID, err)
	}

	switch {
	case next.Team1ID == nil:
		next.Team1ID = match.WinnerID
	case next.Team2ID == nil:
		next.Team2ID = match.WinnerID
	default:
		return fmt.Errorf("next match %d already has both teams", next.ID)
	}

	if err := s.matchRepo.Update(ctx, tx, next); err != nil {
		return fmt.Errorf("failed to advance winner into match %d: %w", next.ID, err)
	}
	return nil
}

func (s *matchService) buildUpdate(ctx context.Context, match *models.Match, updateType models.UpdateType) (*models.Update, error) {
	ids := make([]int, 0, 2)
	if match.Team1ID != nil {
		ids = append(ids, *match.Team1ID)
	}
	if match.Team2ID != nil {
		ids = append(ids, *match.Team2ID)
	}
	teams, err := s.teamRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load team names for update: %w", err)
	}

	update := &models.Update{
		TournamentID: match.TournamentID,
		MatchID:      &match.ID,
		Type:         updateType,
		Team1ID:      match.Team1ID,
		Team2ID:      match.Team2ID,
		ScoreTeam1:   &match.ScoreTeam1,
		ScoreTeam2:   &match.ScoreTeam2,
		Timestamp:    time.Now().Unix(),
	}
	if match.Team1ID != nil {
		if team, ok := teams[*match.Team1ID]; ok {
			update.Team1Name = &team.Name
		}
	}
	if match.Team2ID != nil {
		if team, ok := teams[*match.Team2ID]; ok {
			update.Team2Name = &team.Name
		}
	}
	return update, nil
}

func mapMatchRepoError(err error) error {
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	return err
}
