package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/repository"
)

// DirectoryService reads the reference data maintained outside this system:
// properties, units and users
type DirectoryService struct {
	properties repository.PropertyRepository
	units      repository.UnitRepository
	users      repository.UserRepository
}

func NewDirectoryService(properties repository.PropertyRepository, units repository.UnitRepository, users repository.UserRepository) *DirectoryService {
	return &DirectoryService{properties: properties, units: units, users: users}
}

func notFound(kind string, id uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", kind, err)
}

func (s *DirectoryService) ListProperties(ctx context.Context) ([]domain.Property, error) {
	items, err := s.properties.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return items, nil
}

func (s *DirectoryService) GetProperty(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("property", id, err)
	}
	return p, nil
}

// ListUnits returns every unit, or those of one property when propertyID is set
func (s *DirectoryService) ListUnits(ctx context.Context, propertyID *uuid.UUID) ([]domain.Unit, error) {
	if propertyID == nil {
		items, err := s.units.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list units: %w", err)
		}
		return items, nil
	}
	if _, err := s.properties.GetByID(ctx, *propertyID); err != nil {
		return nil, notFound("property", *propertyID, err)
	}
	items, err := s.units.ListByProperty(ctx, *propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return items, nil
}

func (s *DirectoryService) ListUsers(ctx context.Context) ([]domain.User, error) {
	items, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return items, nil
}
