package repositories

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/beachrally/tournament-server/models"
)

type ListUpdatesFilter struct {
	TournamentID int
	Since        *int64
	Limit        int
}

type UpdateRepository interface {
	Create(ctx context.Context, exec SQLExecutor, update *models.Update) error
	ListByTournament(ctx context.Context, filter ListUpdatesFilter) ([]models.Update, error)
}

type postgresUpdateRepository struct {
	db *sql.DB
}

func NewPostgresUpdateRepository(db *sql.DB) UpdateRepository {
	return &postgresUpdateRepository{db: db}
}

func (r *postgresUpdateRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUpdateRepository) Create(ctx context.Context, exec SQLExecutor, u *models.Update) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO updates (
			tournament_id, match_id, type, team1_id, team2_id,
			team1_name, team2_name, score_team1, score_team2, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	return executor.QueryRowContext(ctx, query,
		u.TournamentID, u.MatchID, u.Type, u.Team1ID, u.Team2ID,
		u.Team1Name, u.Team2Name, u.ScoreTeam1, u.ScoreTeam2, u.Timestamp,
	).Scan(&u.ID)
}

func (r *postgresUpdateRepository) ListByTournament(ctx context.Context, filter ListUpdatesFilter) ([]models.Update, error) {
	query := `
		SELECT id, tournament_id, match_id, type, team1_id, team2_id,
		       team1_name, team2_name, score_team1, score_team2, timestamp
		FROM updates
		WHERE tournament_id = $1`
	args := []interface{}{filter.TournamentID}

	if filter.Since != nil {
		query += ` AND timestamp > $2`
		args = append(args, *filter.Since)
	}

	// Newest first so feed consumers can prepend directly.
	query += ` ORDER BY timestamp DESC, id DESC`

	limit := filter.Limit
	if limit < 1 || limit > 50 {
		limit = 20
	}
	query += ` LIMIT ` + strconv.Itoa(limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updates := make([]models.Update, 0)
	for rows.Next() {
		var u models.Update
		if scanErr := rows.Scan(
			&u.ID, &u.TournamentID, &u.MatchID, &u.Type, &u.Team1ID, &u.Team2ID,
			&u.Team1Name, &u.Team2Name, &u.ScoreTeam1, &u.ScoreTeam2, &u.Timestamp,
		); scanErr != nil {
			return nil, scanErr
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
