package gormrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftportal/facility-api/internal/domain"
)

type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

func (r *CaseRepository) List(ctx context.Context) ([]domain.Case, error) {
	var cases []domain.Case
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&cases).Error
	return cases, err
}

func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	var c domain.Case
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CaseRepository) Update(ctx context.Context, c *domain.Case) error {
	return affected(r.db.WithContext(ctx).Model(c).Select("*").Omit("id", "created_at").Updates(c))
}

func (r *CaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CaseStatus, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Case{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": updatedAt,
		})
	return affected(result)
}

func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Case{}, "id = ?", id))
}

func (r *CaseRepository) Search(ctx context.Context, query string, limit int) ([]domain.Case, error) {
	return search(ctx, r.db, query, limit, "created_at DESC", func(c *domain.Case) []string {
		return []string{c.Title, c.DescriptionText()}
	}, "title", "description")
}
