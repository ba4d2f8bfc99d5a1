package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/beachrally/tournament-server/models"
	"github.com/lib/pq"
)

var ErrPoolMatchNotFound = errors.New("pool match not found")

type PoolMatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.PoolMatch) error
	GetByID(ctx context.Context, id int) (*models.PoolMatch, error)
	ListByPool(ctx context.Context, poolID int) ([]models.PoolMatch, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.PoolMatch, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.PoolMatch) error
	Delete(ctx context.Context, id int) error
}

type postgresPoolMatchRepository struct {
	db *sql.DB
}

func NewPostgresPoolMatchRepository(db *sql.DB) PoolMatchRepository {
	return &postgresPoolMatchRepository{db: db}
}

func (r *postgresPoolMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const poolMatchColumns = `
	id, pool_id, tournament_id, team1_id, team2_id, scores_team1,
	scores_team2, num_sets, status, location_id, court_number, scheduled_time`

func scanPoolMatch(row interface{ Scan(...interface{}) error }, m *models.PoolMatch) error {
	return row.Scan(
		&m.ID, &m.PoolID, &m.TournamentID, &m.Team1ID, &m.Team2ID,
		pq.Array(&m.ScoresTeam1), pq.Array(&m.ScoresTeam2),
		&m.NumSets, &m.Status, &m.LocationID, &m.CourtNumber, &m.ScheduledTime,
	)
}

func (r *postgresPoolMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.PoolMatch) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO pool_matches (
			pool_id, tournament_id, team1_id, team2_id, scores_team1,
			scores_team2, num_sets, status, location_id, court_number, scheduled_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		m.PoolID, m.TournamentID, m.Team1ID, m.Team2ID,
		pq.Array(m.ScoresTeam1), pq.Array(m.ScoresTeam2),
		m.NumSets, m.Status, m.LocationID, m.CourtNumber, m.ScheduledTime,
	).Scan(&m.ID)
}

func (r *postgresPoolMatchRepository) GetByID(ctx context.Context, id int) (*models.PoolMatch, error) {
	query := `SELECT` + poolMatchColumns + ` FROM pool_matches WHERE id = $1`

	m := &models.PoolMatch{}
	err := scanPoolMatch(r.db.QueryRowContext(ctx, query, id), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresPoolMatchRepository) ListByPool(ctx context.Context, poolID int) ([]models.PoolMatch, error) {
	query := `SELECT` + poolMatchColumns + ` FROM pool_matches WHERE pool_id = $1 ORDER BY scheduled_time, id`
	return r.list(ctx, query, poolID)
}

func (r *postgresPoolMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.PoolMatch, error) {
	query := `SELECT` + poolMatchColumns + ` FROM pool_matches WHERE tournament_id = $1 ORDER BY scheduled_time, id`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresPoolMatchRepository) list(ctx context.Context, query string, arg interface{}) ([]models.PoolMatch, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.PoolMatch, 0)
	for rows.Next() {
		var m models.PoolMatch
		if scanErr := scanPoolMatch(rows, &m); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresPoolMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.PoolMatch) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE pool_matches SET
			scores_team1 = $1, scores_team2 = $2, status = $3,
			location_id = $4, court_number = $5, scheduled_time = $6
		WHERE id = $7`

	result, err := executor.ExecContext(ctx, query,
		pq.Array(m.ScoresTeam1), pq.Array(m.ScoresTeam2), m.Status,
		m.LocationID, m.CourtNumber, m.ScheduledTime,
		m.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPoolMatchNotFound)
}

func (r *postgresPoolMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pool_matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPoolMatchNotFound)
}
