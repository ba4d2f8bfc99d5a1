package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/beachrally/tournament-server/models"
	"github.com/lib/pq"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrLocationInUse    = errors.New("location is referenced by a tournament or pool")
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id int) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id int) error
}

type postgresLocationRepository struct {
	db *sql.DB
}

func NewPostgresLocationRepository(db *sql.DB) LocationRepository {
	return &postgresLocationRepository{db: db}
}

func (r *postgresLocationRepository) Create(ctx context.Context, l *models.Location) error {
	query := `
		INSERT INTO locations (name, address, courts, capacity, features)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		l.Name, l.Address, l.Courts, l.Capacity, pq.Array(l.Features),
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *postgresLocationRepository) GetByID(ctx context.Context, id int) (*models.Location, error) {
	query := `SELECT id, name, address, courts, capacity, features, created_at FROM locations WHERE id = $1`

	l := &models.Location{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.Address, &l.Courts, &l.Capacity, pq.Array(&l.Features), &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *postgresLocationRepository) List(ctx context.Context) ([]models.Location, error) {
	query := `SELECT id, name, address, courts, capacity, features, created_at FROM locations ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]models.Location, 0)
	for rows.Next() {
		var l models.Location
		if scanErr := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Courts, &l.Capacity, pq.Array(&l.Features), &l.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (r *postgresLocationRepository) Update(ctx context.Context, l *models.Location) error {
	query := `
		UPDATE locations SET name = $1, address = $2, courts = $3, capacity = $4, features = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		l.Name, l.Address, l.Courts, l.Capacity, pq.Array(l.Features), l.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLocationNotFound)
}

func (r *postgresLocationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrLocationInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrLocationNotFound)
}
