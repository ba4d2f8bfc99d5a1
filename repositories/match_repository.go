package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beachrally/tournament-server/models"
)

var ErrMatchNotFound = errors.New("match not found")

type ListMatchesFilter struct {
	TournamentID int
	Status       *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateNextMatchID(ctx context.Context, exec SQLExecutor, id int, nextMatchID *int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round_number, team1_id, team2_id, score_team1,
	score_team2, status, court, scheduled_time, next_match_id, winner_id`

func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	return row.Scan(
		&m.ID, &m.TournamentID, &m.RoundNumber, &m.Team1ID, &m.Team2ID,
		&m.ScoreTeam1, &m.ScoreTeam2, &m.Status, &m.Court,
		&m.ScheduledTime, &m.NextMatchID, &m.WinnerID,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			tournament_id, round_number, team1_id, team2_id, score_team1,
			score_team2, status, court, scheduled_time, next_match_id, winner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		m.TournamentID, m.RoundNumber, m.Team1ID, m.Team2ID, m.ScoreTeam1,
		m.ScoreTeam2, m.Status, m.Court, m.ScheduledTime, m.NextMatchID, m.WinnerID,
	).Scan(&m.ID)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`

	m := &models.Match{}
	err := scanMatch(r.db.QueryRowContext(ctx, query, id), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	args := []interface{}{filter.TournamentID}

	if filter.Status != nil {
		query += ` AND status = $2`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY round_number, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := scanMatch(rows, &m); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches SET
			team1_id = $1, team2_id = $2, score_team1 = $3, score_team2 = $4,
			status = $5, court = $6, scheduled_time = $7, winner_id = $8
		WHERE id = $9`

	result, err := executor.ExecContext(ctx, query,
		m.Team1ID, m.Team2ID, m.ScoreTeam1, m.ScoreTeam2,
		m.Status, m.Court, m.ScheduledTime, m.WinnerID,
		m.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateNextMatchID(ctx context.Context, exec SQLExecutor, id int, nextMatchID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE matches SET next_match_id = $1 WHERE id = $2`, nextMatchID, id)
	if err != nil {
		return fmt.Errorf("failed to link match %d to its next match: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}
