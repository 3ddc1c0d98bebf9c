package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/auth"
	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/kanban"
	"github.com/driftportal/facility-api/internal/repository"
	"github.com/driftportal/facility-api/internal/store"
	"github.com/driftportal/facility-api/internal/views"
)

// CaseQuery combines the list filter with an optional sort
type CaseQuery struct {
	Filter views.CaseFilter
	Sort   views.SortField
	Dir    views.SortDirection
}

// BoardView is the case board grouped into status columns
type BoardView struct {
	Columns []views.StatusColumn `json:"columns"`
	Loading bool                 `json:"loading"`
}

type CaseService struct {
	cases      *store.CaseStore
	tasks      *store.TaskStore
	properties repository.PropertyRepository
	units      repository.UnitRepository
	board      *kanban.Board
	logger     *zap.Logger
}

func NewCaseService(
	cases *store.CaseStore,
	tasks *store.TaskStore,
	properties repository.PropertyRepository,
	units repository.UnitRepository,
	policy kanban.TransitionPolicy,
	logger *zap.Logger,
) *CaseService {
	current := func(id uuid.UUID) (domain.CaseStatus, bool) {
		c, ok := cases.Get(id)
		return c.Status, ok
	}
	return &CaseService{
		cases:      cases,
		tasks:      tasks,
		properties: properties,
		units:      units,
		board:      kanban.NewBoard(cases, policy, current),
		logger:     logger,
	}
}

// List filters and sorts the case snapshot
func (s *CaseService) List(q CaseQuery) domain.ListResponse[domain.Case] {
	items := views.FilterCases(s.cases.Snapshot(), q.Filter)
	if q.Sort != "" {
		items = views.SortCases(items, q.Sort, q.Dir)
	}
	return domain.ListResponse[domain.Case]{
		Items:   items,
		Total:   len(items),
		Loading: s.cases.Loading(),
	}
}

// Board groups the case snapshot by status
func (s *CaseService) Board() BoardView {
	return BoardView{
		Columns: views.GroupByStatus(s.cases.Snapshot()),
		Loading: s.cases.Loading(),
	}
}

func (s *CaseService) GetByID(id uuid.UUID) (*domain.Case, error) {
	c, ok := s.cases.Get(id)
	if !ok {
		return nil, fmt.Errorf("case %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

// Create validates the property and unit references and inserts a reported case
func (s *CaseService) Create(ctx context.Context, req *domain.CreateCaseRequest) (*domain.Case, error) {
	if err := s.checkLocation(ctx, req.PropertyID, req.UnitID); err != nil {
		return nil, err
	}

	c := &domain.Case{
		PropertyID:  req.PropertyID,
		UnitID:      req.UnitID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      domain.CaseStatusReported,
		AssignedTo:  req.AssignedTo,
	}
	if session, ok := auth.FromContext(ctx); ok {
		createdBy := session.UserID
		c.CreatedBy = &createdBy
	}

	created, ok := s.cases.Create(ctx, c)
	if !ok {
		return nil, writeFailed("create case")
	}

	s.logger.Info("case created",
		zap.String("case_id", created.ID.String()),
		zap.String("category", string(created.Category)),
	)
	return created, nil
}

func (s *CaseService) checkLocation(ctx context.Context, propertyID uuid.UUID, unitID *uuid.UUID) error {
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("property %s does not exist", propertyID)
		}
		return fmt.Errorf("failed to look up property: %w", err)
	}
	if unitID == nil {
		return nil
	}
	unit, err := s.units.GetByID(ctx, *unitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("unit %s does not exist", *unitID)
		}
		return fmt.Errorf("failed to look up unit: %w", err)
	}
	if unit.PropertyID != propertyID {
		return invalid("unit %s does not belong to property %s", *unitID, propertyID)
	}
	return nil
}

// UpdateStatus moves a case to status. Any status may follow any other.
func (s *CaseService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CaseStatus) (*domain.Case, error) {
	if !status.IsValid() {
		return nil, invalid("unknown case status %q", status)
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if !s.cases.UpdateStatus(ctx, id, status) {
		return nil, writeFailed("update case status")
	}
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CaseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if !s.cases.Delete(ctx, id) {
		return writeFailed("delete case")
	}
	s.logger.Info("case deleted", zap.String("case_id", id.String()))
	return nil
}

// Drop completes a drag on the board. Releasing outside a column is not an
// error and reports OutcomeIgnored.
func (s *CaseService) Drop(ctx context.Context, req *domain.BoardDropRequest) (kanban.DropResult, error) {
	if _, err := s.find(ctx, req.CaseID); err != nil {
		return kanban.DropResult{CaseID: req.CaseID, Outcome: kanban.OutcomeIgnored}, err
	}

	s.board.DragStart(req.CaseID)
	result := s.board.DragEnd(ctx, req.CaseID, req.OverID)

	switch result.Outcome {
	case kanban.OutcomeFailed:
		return result, writeFailed("move case")
	case kanban.OutcomeForbidden:
		return result, fmt.Errorf("%w: %s", ErrTransitionNotAllowed, result.Status)
	}
	return result, nil
}

// find looks a case up for a mutation, asking the backend while the
// snapshot is still loading
func (s *CaseService) find(ctx context.Context, id uuid.UUID) (domain.Case, error) {
	c, err := s.cases.Find(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c, fmt.Errorf("case %s: %w", id, ErrNotFound)
	case err != nil:
		return c, fmt.Errorf("failed to look up case: %w", err)
	}
	return c, nil
}

// Tasks lists the work orders linked to a case, oldest first
func (s *CaseService) Tasks(caseID uuid.UUID) ([]domain.Task, error) {
	if _, ok := s.cases.Get(caseID); !ok {
		return nil, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}
	out := []domain.Task{}
	for _, t := range s.tasks.Snapshot() {
		if t.CaseID != nil && *t.CaseID == caseID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
