package gormrepo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driftportal/facility-api/internal/domain"
)

type CaseCommentRepository struct {
	db *gorm.DB
}

func NewCaseCommentRepository(db *gorm.DB) *CaseCommentRepository {
	return &CaseCommentRepository{db: db}
}

func (r *CaseCommentRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.CaseComment, error) {
	var comments []domain.CaseComment
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *CaseCommentRepository) Create(ctx context.Context, c *domain.CaseComment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Probe checks the schema for the comment table without touching rows
func (r *CaseCommentRepository) Probe(ctx context.Context) (bool, error) {
	return r.db.WithContext(ctx).Migrator().HasTable(&domain.CaseComment{}), nil
}
