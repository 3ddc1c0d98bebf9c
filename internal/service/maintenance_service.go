package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/repository"
	"github.com/driftportal/facility-api/internal/store"
	"github.com/driftportal/facility-api/internal/views"
)

// DefaultEstimatedHours is used when a plan is created without an estimate
const DefaultEstimatedHours = 2

type MaintenanceService struct {
	plans      *store.PlanStore
	properties repository.PropertyRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewMaintenanceService(plans *store.PlanStore, properties repository.PropertyRepository, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{plans: plans, properties: properties, logger: logger, now: time.Now}
}

// List returns the plans soonest due first
func (s *MaintenanceService) List() domain.ListResponse[domain.MaintenancePlan] {
	items := s.plans.Snapshot()
	return domain.ListResponse[domain.MaintenancePlan]{
		Items:   items,
		Total:   len(items),
		Loading: s.plans.Loading(),
	}
}

func (s *MaintenanceService) Create(ctx context.Context, req *domain.CreateMaintenancePlanRequest) (*domain.MaintenancePlan, error) {
	if _, err := s.properties.GetByID(ctx, req.PropertyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("property %s does not exist", req.PropertyID)
		}
		return nil, fmt.Errorf("failed to look up property: %w", err)
	}
	if !req.Frequency.IsValid() {
		return nil, invalid("unknown frequency %q", req.Frequency)
	}
	if req.Priority != "" && !req.Priority.IsValidForPlan() {
		return nil, invalid("priority %q is not allowed for maintenance plans", req.Priority)
	}

	hours := req.EstimatedDurationHours
	if hours == 0 {
		hours = DefaultEstimatedHours
	}

	created, ok := s.plans.Create(ctx, &domain.MaintenancePlan{
		PropertyID:             req.PropertyID,
		Title:                  req.Title,
		Description:            req.Description,
		Frequency:              req.Frequency,
		NextDueDate:            req.NextDueDate,
		EstimatedDurationHours: hours,
		AssignedTo:             req.AssignedTo,
		Priority:               req.Priority,
	})
	if !ok {
		return nil, writeFailed("create maintenance plan")
	}
	s.logger.Info("maintenance plan created",
		zap.String("plan_id", created.ID.String()),
		zap.String("frequency", string(created.Frequency)),
	)
	return created, nil
}

func (s *MaintenanceService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.plans.Get(id); !ok {
		return fmt.Errorf("maintenance plan %s: %w", id, ErrNotFound)
	}
	if !s.plans.Delete(ctx, id) {
		return writeFailed("delete maintenance plan")
	}
	return nil
}

// Calendar expands every plan into its upcoming occurrences, optionally for
// one property only
func (s *MaintenanceService) Calendar(ctx context.Context, propertyID *uuid.UUID) ([]views.CalendarEvent, error) {
	properties, err := s.properties.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return views.ExpandCalendar(s.plans.Snapshot(), properties, propertyID, s.now()), nil
}
