package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beachrally/tournament-server/brackets"
	"github.com/beachrally/tournament-server/models"
	"github.com/beachrally/tournament-server/repositories"
	"github.com/beachrally/tournament-server/storage"
)

type CreateTournamentInput struct {
	Name         string                `json:"name"`
	Location     *string               `json:"location,omitempty"`
	LocationID   *int                  `json:"location_id,omitempty"`
	StartDate    int64                 `json:"start_date"`
	EndDate      *int64                `json:"end_date,omitempty"`
	Type         models.TournamentType `json:"type"`
	HasPoolPlay  bool                  `json:"has_pool_play"`
	MinTeams     int                   `json:"min_teams"`
	MaxTeams     int                   `json:"max_teams"`
	TeamsPerPool int                   `json:"teams_per_pool"`
	PoolSets     int                   `json:"pool_sets"`
	BracketSets  int                   `json:"bracket_sets"`
}

type UpdateTournamentInput struct {
	Name         *string `json:"name,omitempty"`
	Location     *string `json:"location,omitempty"`
	LocationID   *int    `json:"location_id,omitempty"`
	StartDate    *int64  `json:"start_date,omitempty"`
	EndDate      *int64  `json:"end_date,omitempty"`
	HasPoolPlay  *bool   `json:"has_pool_play,omitempty"`
	MinTeams     *int    `json:"min_teams,omitempty"`
	MaxTeams     *int    `json:"max_teams,omitempty"`
	TeamsPerPool *int    `json:"teams_per_pool,omitempty"`
	PoolSets     *int    `json:"pool_sets,omitempty"`
	BracketSets  *int    `json:"bracket_sets,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error)
	ListUpdates(ctx context.Context, tournamentID int, since *int64, limit int) ([]models.Update, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	poolRepo       repositories.PoolRepository
	updateRepo     repositories.UpdateRepository
	uploader       storage.FileUploader
	hub            *brackets.Hub
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	poolRepo repositories.PoolRepository,
	updateRepo repositories.UpdateRepository,
	uploader storage.FileUploader,
	hub *brackets.Hub,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		poolRepo:       poolRepo,
		updateRepo:     updateRepo,
		uploader:       uploader,
		hub:            hub,
	}
}

// validStatusTransitions lists the allowed forward moves. A tournament never
// returns to an earlier phase.
var validStatusTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.TournamentStatusUpcoming:    {models.TournamentStatusPoolPlay, models.TournamentStatusBracketPlay, models.TournamentStatusInProgress},
	models.TournamentStatusPoolPlay:    {models.TournamentStatusBracketPlay, models.TournamentStatusCompleted},
	models.TournamentStatusBracketPlay: {models.TournamentStatusCompleted},
	models.TournamentStatusInProgress:  {models.TournamentStatusCompleted},
	models.TournamentStatusCompleted:   {},
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.EndDate != nil && *input.EndDate < input.StartDate {
		return nil, ErrTournamentInvalidDates
	}

	t := &models.Tournament{
		Name:         strings.TrimSpace(input.Name),
		Location:     input.Location,
		LocationID:   input.LocationID,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Status:       models.TournamentStatusUpcoming,
		Type:         input.Type,
		HasPoolPlay:  input.HasPoolPlay,
		MinTeams:     input.MinTeams,
		MaxTeams:     input.MaxTeams,
		TeamsPerPool: input.TeamsPerPool,
		PoolSets:     input.PoolSets,
		BracketSets:  input.BracketSets,
	}
	applyTournamentDefaults(t)

	if t.MinTeams > t.MaxTeams {
		return nil, ErrTournamentInvalidCapacity
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return t, nil
}

func applyTournamentDefaults(t *models.Tournament) {
	if t.Type == "" {
		t.Type = models.TypeSingleElimination
	}
	if t.MinTeams <= 0 {
		t.MinTeams = 4
	}
	if t.MaxTeams <= 0 {
		t.MaxTeams = 16
	}
	if t.TeamsPerPool <= 0 {
		t.TeamsPerPool = 4
	}
	if t.PoolSets <= 0 {
		t.PoolSets = 2
	}
	if t.BracketSets <= 0 {
		t.BracketSets = 1
	}
}

// GetByID returns the tournament with its teams and pools attached.
func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, teamsErr := s.teamRepo.ListByTournament(gctx, id)
		if teamsErr != nil {
			return fmt.Errorf("failed to load teams for tournament %d: %w", id, teamsErr)
		}
		t.Teams = teams
		return nil
	})
	g.Go(func() error {
		pools, poolsErr := s.poolRepo.ListByTournament(gctx, id)
		if poolsErr != nil {
			return fmt.Errorf("failed to load pools for tournament %d: %w", id, poolsErr)
		}
		t.Pools = pools
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.fillLogoURL(t)
	return t, nil
}

func (s *tournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for i := range tournaments {
		s.fillLogoURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrTournamentNameRequired
		}
		t.Name = strings.TrimSpace(*input.Name)
	}
	if input.Location != nil {
		t.Location = input.Location
	}
	if input.LocationID != nil {
		t.LocationID = input.LocationID
	}
	if input.StartDate != nil {
		t.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		t.EndDate = input.EndDate
	}
	if input.HasPoolPlay != nil {
		t.HasPoolPlay = *input.HasPoolPlay
	}
	if input.MinTeams != nil {
		t.MinTeams = *input.MinTeams
	}
	if input.MaxTeams != nil {
		t.MaxTeams = *input.MaxTeams
	}
	if input.TeamsPerPool != nil {
		t.TeamsPerPool = *input.TeamsPerPool
	}
	if input.PoolSets != nil {
		t.PoolSets = *input.PoolSets
	}
	if input.BracketSets != nil {
		t.BracketSets = *input.BracketSets
	}

	if t.EndDate != nil && *t.EndDate < t.StartDate {
		return nil, ErrTournamentInvalidDates
	}
	if t.MinTeams > t.MaxTeams {
		return nil, ErrTournamentInvalidCapacity
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	s.fillLogoURL(t)
	return t, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if _, known := validStatusTransitions[status]; !known {
		return nil, ErrTournamentInvalidStatus
	}

	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	if t.Status != status && !transitionAllowed(t.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, status)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	t.Status = status

	update := &models.Update{
		TournamentID: id,
		Type:         models.UpdateTypeTournamentUpdate,
		Timestamp:    time.Now().Unix(),
	}
	if err := s.updateRepo.Create(ctx, nil, update); err != nil {
		return nil, fmt.Errorf("failed to record tournament update: %w", err)
	}
	broadcastToRoom(s.hub, id, "TOURNAMENT_UPDATED", t)

	s.fillLogoURL(t)
	return t, nil
}

func transitionAllowed(from, to models.TournamentStatus) bool {
	for _, next := range validStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return mapTournamentRepoError(err)
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return mapTournamentRepoError(err)
	}

	if t.LogoKey != nil && s.uploader != nil {
		// The logo object is best-effort cleanup, the row is already gone.
		_ = s.uploader.Delete(ctx, *t.LogoKey)
	}
	return nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, errors.New("logo storage is not configured")
	}

	ext, err := logoExtension(contentType)
	if err != nil {
		return nil, err
	}

	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	key := fmt.Sprintf("tournaments/%d/logo-%d%s", id, time.Now().Unix(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	oldKey := t.LogoKey
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		_ = s.uploader.Delete(ctx, result.Key)
		return nil, mapTournamentRepoError(err)
	}

	if oldKey != nil && *oldKey != result.Key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	t.LogoKey = &result.Key
	s.fillLogoURL(t)
	return t, nil
}

func (s *tournamentService) ListUpdates(ctx context.Context, tournamentID int, since *int64, limit int) ([]models.Update, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}

	updates, err := s.updateRepo.ListByTournament(ctx, repositories.ListUpdatesFilter{
		TournamentID: tournamentID,
		Since:        since,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list updates for tournament %d: %w", tournamentID, err)
	}
	return updates, nil
}

func (s *tournamentService) fillLogoURL(t *models.Tournament) {
	if t.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*t.LogoKey)
		t.LogoURL = &url
	}
}

func logoExtension(contentType string) (string, error) {
	switch contentType {
	case "image/png":
		return ".png", nil
	case "image/jpeg":
		return ".jpg", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("%w: unsupported logo content type %q", ErrValidationFailed, contentType)
	}
}

func mapTournamentRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentInvalidLocation):
		return fmt.Errorf("%w: location does not exist", ErrValidationFailed)
	default:
		return err
	}
}
