package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beachrally/tournament-server/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrTournamentNameConflict    = errors.New("tournament name already exists")
	ErrTournamentInvalidLocation = errors.New("invalid location reference")
)

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetPoolPlayComplete(ctx context.Context, exec SQLExecutor, id int, complete bool) error
	SetBracketSize(ctx context.Context, exec SQLExecutor, id int, size int) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, location, location_id, start_date, end_date, status, type,
	has_pool_play, pool_play_complete, min_teams, max_teams, teams_per_pool,
	pool_sets, bracket_sets, bracket_size, logo_key, created_at`

func scanTournament(row interface{ Scan(...interface{}) error }, t *models.Tournament) error {
	return row.Scan(
		&t.ID, &t.Name, &t.Location, &t.LocationID, &t.StartDate, &t.EndDate,
		&t.Status, &t.Type, &t.HasPoolPlay, &t.PoolPlayComplete,
		&t.MinTeams, &t.MaxTeams, &t.TeamsPerPool,
		&t.PoolSets, &t.BracketSets, &t.BracketSize, &t.LogoKey, &t.CreatedAt,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, location, location_id, start_date, end_date, status, type,
			has_pool_play, min_teams, max_teams, teams_per_pool, pool_sets, bracket_sets
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Location, t.LocationID, t.StartDate, t.EndDate, t.Status, t.Type,
		t.HasPoolPlay, t.MinTeams, t.MaxTeams, t.TeamsPerPool, t.PoolSets, t.BracketSets,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := scanTournament(r.db.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments ORDER BY start_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1, location = $2, location_id = $3, start_date = $4,
			end_date = $5, status = $6, type = $7, has_pool_play = $8,
			min_teams = $9, max_teams = $10, teams_per_pool = $11,
			pool_sets = $12, bracket_sets = $13
		WHERE id = $14`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Location, t.LocationID, t.StartDate,
		t.EndDate, t.Status, t.Type, t.HasPoolPlay,
		t.MinTeams, t.MaxTeams, t.TeamsPerPool,
		t.PoolSets, t.BracketSets,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetPoolPlayComplete(ctx context.Context, exec SQLExecutor, id int, complete bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET pool_play_complete = $1 WHERE id = $2`, complete, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetBracketSize(ctx context.Context, exec SQLExecutor, id int, size int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET bracket_size = $1 WHERE id = $2`, size, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrTournamentNameConflict
		case "23503":
			if pqErr.Constraint == "tournaments_location_id_fkey" {
				return ErrTournamentInvalidLocation
			}
		}
	}
	return err
}
