package gormrepo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftportal/facility-api/internal/domain"
)

type MaintenancePlanRepository struct {
	db *gorm.DB
}

func NewMaintenancePlanRepository(db *gorm.DB) *MaintenancePlanRepository {
	return &MaintenancePlanRepository{db: db}
}

// List orders by next_due_date. The IS NULL term keeps undated plans last on
// both PostgreSQL and SQLite.
func (r *MaintenancePlanRepository) List(ctx context.Context) ([]domain.MaintenancePlan, error) {
	var plans []domain.MaintenancePlan
	err := r.db.WithContext(ctx).
		Order("next_due_date IS NULL, next_due_date ASC").
		Find(&plans).Error
	return plans, err
}

func (r *MaintenancePlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenancePlan, error) {
	var plan domain.MaintenancePlan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

func (r *MaintenancePlanRepository) Create(ctx context.Context, p *domain.MaintenancePlan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *MaintenancePlanRepository) Update(ctx context.Context, p *domain.MaintenancePlan) error {
	return affected(r.db.WithContext(ctx).Model(p).Select("*").Omit("id", "created_at").Updates(p))
}

func (r *MaintenancePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.MaintenancePlan{}, "id = ?", id))
}

func (r *MaintenancePlanRepository) Search(ctx context.Context, query string, limit int) ([]domain.MaintenancePlan, error) {
	return search(ctx, r.db, query, limit, "", func(p *domain.MaintenancePlan) []string {
		return []string{p.Title, p.DescriptionText()}
	}, "title", "description")
}
