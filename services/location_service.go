package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beachrally/tournament-server/models"
	"github.com/beachrally/tournament-server/repositories"
)

type CreateLocationInput struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Courts   int      `json:"courts"`
	Capacity string   `json:"capacity"`
	Features []string `json:"features"`
}

type UpdateLocationInput struct {
	Name     *string   `json:"name,omitempty"`
	Address  *string   `json:"address,omitempty"`
	Courts   *int      `json:"courts,omitempty"`
	Capacity *string   `json:"capacity,omitempty"`
	Features *[]string `json:"features,omitempty"`
}

type LocationService interface {
	Create(ctx context.Context, input CreateLocationInput) (*models.Location, error)
	GetByID(ctx context.Context, id int) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	Update(ctx context.Context, id int, input UpdateLocationInput) (*models.Location, error)
	Delete(ctx context.Context, id int) error
}

type locationService struct {
	locationRepo repositories.LocationRepository
}

func NewLocationService(locationRepo repositories.LocationRepository) LocationService {
	return &locationService{locationRepo: locationRepo}
}

func (s *locationService) Create(ctx context.Context, input CreateLocationInput) (*models.Location, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrLocationRequired
	}

	features := input.Features
	if features == nil {
		features = []string{}
	}
	courts := input.Courts
	if courts <= 0 {
		courts = 1
	}

	location := &models.Location{
		Name:     strings.TrimSpace(input.Name),
		Address:  input.Address,
		Courts:   courts,
		Capacity: input.Capacity,
		Features: features,
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return location, nil
}

func (s *locationService) GetByID(ctx context.Context, id int) (*models.Location, error) {
	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapLocationRepoError(err)
	}
	return location, nil
}

func (s *locationService) List(ctx context.Context) ([]models.Location, error) {
	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *locationService) Update(ctx context.Context, id int, input UpdateLocationInput) (*models.Location, error) {
	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapLocationRepoError(err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrLocationRequired
		}
		location.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		location.Address = *input.Address
	}
	if input.Courts != nil && *input.Courts > 0 {
		location.Courts = *input.Courts
	}
	if input.Capacity != nil {
		location.Capacity = *input.Capacity
	}
	if input.Features != nil {
		location.Features = *input.Features
	}

	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, mapLocationRepoError(err)
	}
	return location, nil
}

func (s *locationService) Delete(ctx context.Context, id int) error {
	if err := s.locationRepo.Delete(ctx, id); err != nil {
		return mapLocationRepoError(err)
	}
	return nil
}

func mapLocationRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrLocationNotFound):
		return ErrLocationNotFound
	case errors.Is(err, repositories.ErrLocationInUse):
		return ErrLocationInUse
	default:
		return err
	}
}
