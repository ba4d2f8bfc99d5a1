package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/beachrally/tournament-server/models"
)

var ErrPoolNotFound = errors.New("pool not found")

type PoolRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error
	GetByID(ctx context.Context, id int) (*models.Pool, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Pool, error)
	ReplaceTeams(ctx context.Context, exec SQLExecutor, poolID int, teamIDs []int) error
	Delete(ctx context.Context, id int) error
}

type postgresPoolRepository struct {
	db *sql.DB
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

func (r *postgresPoolRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPoolRepository) Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO pools (tournament_id, name, location_id, court_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		pool.TournamentID, pool.Name, pool.LocationID, pool.CourtNumber,
	).Scan(&pool.ID, &pool.CreatedAt)
	if err != nil {
		return err
	}

	if len(pool.TeamIDs) > 0 {
		return r.ReplaceTeams(ctx, exec, pool.ID, pool.TeamIDs)
	}
	return nil
}

func (r *postgresPoolRepository) GetByID(ctx context.Context, id int) (*models.Pool, error) {
	query := `
		SELECT id, tournament_id, name, location_id, court_number, created_at
		FROM pools WHERE id = $1`

	pool := &models.Pool{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pool.ID, &pool.TournamentID, &pool.Name, &pool.LocationID, &pool.CourtNumber, &pool.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}

	pool.TeamIDs, err = r.teamIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (r *postgresPoolRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Pool, error) {
	query := `
		SELECT id, tournament_id, name, location_id, court_number, created_at
		FROM pools WHERE tournament_id = $1 ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pools := make([]models.Pool, 0)
	for rows.Next() {
		var p models.Pool
		if scanErr := rows.Scan(&p.ID, &p.TournamentID, &p.Name, &p.LocationID, &p.CourtNumber, &p.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		pools = append(pools, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range pools {
		if pools[i].TeamIDs, err = r.teamIDs(ctx, pools[i].ID); err != nil {
			return nil, err
		}
	}
	return pools, nil
}

func (r *postgresPoolRepository) ReplaceTeams(ctx context.Context, exec SQLExecutor, poolID int, teamIDs []int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM pool_teams WHERE pool_id = $1`, poolID); err != nil {
		return err
	}
	for pos, teamID := range teamIDs {
		_, err := executor.ExecContext(ctx,
			`INSERT INTO pool_teams (pool_id, team_id, position) VALUES ($1, $2, $3)`,
			poolID, teamID, pos,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresPoolRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pools WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) teamIDs(ctx context.Context, poolID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id FROM pool_teams WHERE pool_id = $1 ORDER BY position`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
