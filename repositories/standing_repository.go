package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/beachrally/tournament-server/models"
)

var ErrStandingNotFound = errors.New("pool standing not found")

type StandingRepository interface {
	Create(ctx context.Context, exec SQLExecutor, standing *models.PoolStanding) error
	GetByTeamAndPool(ctx context.Context, teamID, poolID int) (*models.PoolStanding, error)
	ListByPool(ctx context.Context, poolID int) ([]models.PoolStanding, error)
	Update(ctx context.Context, exec SQLExecutor, standing *models.PoolStanding) error
	AssignRank(ctx context.Context, exec SQLExecutor, id int, rank int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `
	id, pool_id, tournament_id, team_id, wins, losses, ties, sets_won,
	sets_lost, points_scored, points_allowed, rank, created_at`

func scanStanding(row interface{ Scan(...interface{}) error }, s *models.PoolStanding) error {
	return row.Scan(
		&s.ID, &s.PoolID, &s.TournamentID, &s.TeamID, &s.Wins, &s.Losses,
		&s.Ties, &s.SetsWon, &s.SetsLost, &s.PointsScored, &s.PointsAllowed,
		&s.Rank, &s.CreatedAt,
	)
}

func (r *postgresStandingRepository) Create(ctx context.Context, exec SQLExecutor, s *models.PoolStanding) error {
	executor := r.getExecutor(exec)
	// ON CONFLICT keeps standings initialization idempotent.
	query := `
		INSERT INTO pool_standings (pool_id, tournament_id, team_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (pool_id, team_id) DO UPDATE SET pool_id = EXCLUDED.pool_id
		RETURNING id, wins, losses, ties, sets_won, sets_lost, points_scored, points_allowed, rank, created_at`

	return executor.QueryRowContext(ctx, query, s.PoolID, s.TournamentID, s.TeamID).Scan(
		&s.ID, &s.Wins, &s.Losses, &s.Ties, &s.SetsWon, &s.SetsLost,
		&s.PointsScored, &s.PointsAllowed, &s.Rank, &s.CreatedAt,
	)
}

func (r *postgresStandingRepository) GetByTeamAndPool(ctx context.Context, teamID, poolID int) (*models.PoolStanding, error) {
	query := `SELECT` + standingColumns + ` FROM pool_standings WHERE team_id = $1 AND pool_id = $2`

	s := &models.PoolStanding{}
	err := scanStanding(r.db.QueryRowContext(ctx, query, teamID, poolID), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresStandingRepository) ListByPool(ctx context.Context, poolID int) ([]models.PoolStanding, error) {
	// Ranked standings first in rank order, unranked after.
	query := `SELECT` + standingColumns + ` FROM pool_standings WHERE pool_id = $1 ORDER BY rank NULLS LAST, id`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.PoolStanding, 0)
	for rows.Next() {
		var s models.PoolStanding
		if scanErr := scanStanding(rows, &s); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}

func (r *postgresStandingRepository) Update(ctx context.Context, exec SQLExecutor, s *models.PoolStanding) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE pool_standings SET
			wins = $1, losses = $2, ties = $3, sets_won = $4, sets_lost = $5,
			points_scored = $6, points_allowed = $7, rank = $8
		WHERE id = $9`

	result, err := executor.ExecContext(ctx, query,
		s.Wins, s.Losses, s.Ties, s.SetsWon, s.SetsLost,
		s.PointsScored, s.PointsAllowed, s.Rank,
		s.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

func (r *postgresStandingRepository) AssignRank(ctx context.Context, exec SQLExecutor, id int, rank int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE pool_standings SET rank = $1 WHERE id = $2`, rank, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}
