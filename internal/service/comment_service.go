package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/auth"
	"github.com/driftportal/facility-api/internal/capability"
	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/repository"
)

// CommentService reads and writes case comments when the backend has the
// optional comment table
type CommentService struct {
	comments repository.CaseCommentRepository
	caps     *capability.Set
	logger   *zap.Logger
}

func NewCommentService(comments repository.CaseCommentRepository, caps *capability.Set, logger *zap.Logger) *CommentService {
	return &CommentService{comments: comments, caps: caps, logger: logger}
}

// List returns Supported=false with no comments when the feature is missing
func (s *CommentService) List(ctx context.Context, caseID uuid.UUID) (*domain.CommentsResponse, error) {
	resp := &domain.CommentsResponse{Supported: s.caps.CaseComments(), Comments: []domain.CaseComment{}}
	if !resp.Supported {
		return resp, nil
	}

	comments, err := s.comments.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	resp.Comments = comments
	return resp, nil
}

func (s *CommentService) Create(ctx context.Context, caseID uuid.UUID, req *domain.CreateCaseCommentRequest) (*domain.CaseComment, error) {
	if !s.caps.CaseComments() {
		return nil, fmt.Errorf("case comments: %w", ErrUnsupported)
	}

	comment := &domain.CaseComment{CaseID: caseID, Content: req.Content}
	if session, ok := auth.FromContext(ctx); ok {
		author := session.UserID
		comment.AuthorID = &author
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
		}
		s.logger.Error("failed to create comment", zap.String("case_id", caseID.String()), zap.Error(err))
		return nil, writeFailed("create comment")
	}
	return comment, nil
}
