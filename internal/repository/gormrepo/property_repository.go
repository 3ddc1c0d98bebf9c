package gormrepo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftportal/facility-api/internal/domain"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) List(ctx context.Context) ([]domain.Property, error) {
	var properties []domain.Property
	err := r.db.WithContext(ctx).Order("name ASC").Find(&properties).Error
	return properties, err
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	var property domain.Property
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&property).Error; err != nil {
		return nil, translate(err)
	}
	return &property, nil
}

func (r *PropertyRepository) Search(ctx context.Context, query string, limit int) ([]domain.Property, error) {
	return search(ctx, r.db, query, limit, "", func(p *domain.Property) []string {
		return []string{p.Name, p.Address}
	}, "name", "address")
}

type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) List(ctx context.Context) ([]domain.Unit, error) {
	var units []domain.Unit
	err := r.db.WithContext(ctx).Order("unit_number ASC").Find(&units).Error
	return units, err
}

func (r *UnitRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Unit, error) {
	var units []domain.Unit
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("unit_number ASC").
		Find(&units).Error
	return units, err
}

func (r *UnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Unit, error) {
	var unit domain.Unit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&unit).Error; err != nil {
		return nil, translate(err)
	}
	return &unit, nil
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
