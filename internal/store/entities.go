package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/repository"
)

// CaseStore caches cases newest first
type CaseStore struct {
	*Store[domain.Case]
	repo  repository.CaseRepository
	clock func() time.Time
}

// NewCaseStore creates a case store. A nil clock uses time.Now.
func NewCaseStore(repo repository.CaseRepository, logger *zap.Logger, clock func() time.Time) *CaseStore {
	if clock == nil {
		clock = time.Now
	}
	return &CaseStore{
		Store: New[domain.Case](domain.TableCases, repo.List, logger),
		repo:  repo,
		clock: clock,
	}
}

func caseID(id uuid.UUID) func(*domain.Case) bool {
	return func(c *domain.Case) bool { return c.ID == id }
}

// Get returns a case from the snapshot
func (s *CaseStore) Get(id uuid.UUID) (domain.Case, bool) {
	return s.find(caseID(id))
}

// Find returns a case from the snapshot. Before the first fetch has been
// applied a miss is answered by the backend instead, since an empty snapshot
// says nothing yet. Absent cases report repository.ErrNotFound.
func (s *CaseStore) Find(ctx context.Context, id uuid.UUID) (domain.Case, error) {
	if c, ok := s.Get(id); ok {
		return c, nil
	}
	if s.Loaded() {
		return domain.Case{}, repository.ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Case{}, err
	}
	return *c, nil
}

// UpdateStatus writes the new status to the backend and, on success, patches
// status and updated_at in the snapshot without waiting for a refetch.
func (s *CaseStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CaseStatus) bool {
	now := s.clock()
	if err := s.repo.UpdateStatus(ctx, id, status, now); err != nil {
		s.logger.Error("failed to update case status",
			zap.String("case_id", id.String()),
			zap.String("status", string(status)),
			zap.Error(err))
		return false
	}
	s.patch(func(items []domain.Case) []domain.Case {
		return replaceWhere(items, caseID(id), func(c *domain.Case) {
			c.Status = status
			c.UpdatedAt = now
		})
	})
	return true
}

// Delete removes the case from the backend and then from the snapshot
func (s *CaseStore) Delete(ctx context.Context, id uuid.UUID) bool {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete case", zap.String("case_id", id.String()), zap.Error(err))
		return false
	}
	s.patch(func(items []domain.Case) []domain.Case {
		return removeWhere(items, caseID(id))
	})
	return true
}

// Create inserts the case and prepends it to the snapshot
func (s *CaseStore) Create(ctx context.Context, c *domain.Case) (*domain.Case, bool) {
	now := s.clock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
	if c.Status == "" {
		c.Status = domain.CaseStatusReported
	}
	if c.Priority == "" {
		c.Priority = domain.PriorityNormal
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create case", zap.String("title", c.Title), zap.Error(err))
		return nil, false
	}
	created := *c
	s.patch(func(items []domain.Case) []domain.Case {
		return prepend(items, created)
	})
	return &created, true
}

// TaskStore caches tasks newest first
type TaskStore struct {
	*Store[domain.Task]
	repo  repository.TaskRepository
	clock func() time.Time
}

// NewTaskStore creates a task store. A nil clock uses time.Now.
func NewTaskStore(repo repository.TaskRepository, logger *zap.Logger, clock func() time.Time) *TaskStore {
	if clock == nil {
		clock = time.Now
	}
	return &TaskStore{
		Store: New[domain.Task](domain.TableTasks, repo.List, logger),
		repo:  repo,
		clock: clock,
	}
}

func taskID(id uuid.UUID) func(*domain.Task) bool {
	return func(t *domain.Task) bool { return t.ID == id }
}

// Get returns a task from the snapshot
func (s *TaskStore) Get(id uuid.UUID) (domain.Task, bool) {
	return s.find(taskID(id))
}

// UpdateStatus sets completed_at when a task moves to completed and clears it otherwise
func (s *TaskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) bool {
	now := s.clock()
	var completedAt *time.Time
	if status == domain.TaskStatusCompleted {
		completedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, status, completedAt, now); err != nil {
		s.logger.Error("failed to update task status",
			zap.String("task_id", id.String()),
			zap.String("status", string(status)),
			zap.Error(err))
		return false
	}
	s.patch(func(items []domain.Task) []domain.Task {
		return replaceWhere(items, taskID(id), func(t *domain.Task) {
			t.Status = status
			t.CompletedAt = completedAt
			t.UpdatedAt = now
		})
	})
	return true
}

// Create inserts the task and prepends it to the snapshot
func (s *TaskStore) Create(ctx context.Context, t *domain.Task) (*domain.Task, bool) {
	now := s.clock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = t.CreatedAt
	if t.Status == "" {
		t.Status = domain.TaskStatusPending
	}
	if t.Status == domain.TaskStatusCompleted && t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create task", zap.Error(err))
		return nil, false
	}
	created := *t
	s.patch(func(items []domain.Task) []domain.Task {
		return prepend(items, created)
	})
	return &created, true
}

// PlanStore caches maintenance plans soonest due first
type PlanStore struct {
	*Store[domain.MaintenancePlan]
	repo  repository.MaintenancePlanRepository
	clock func() time.Time
}

// NewPlanStore creates a maintenance plan store. A nil clock uses time.Now.
func NewPlanStore(repo repository.MaintenancePlanRepository, logger *zap.Logger, clock func() time.Time) *PlanStore {
	if clock == nil {
		clock = time.Now
	}
	return &PlanStore{
		Store: New[domain.MaintenancePlan](domain.TableMaintenancePlans, repo.List, logger),
		repo:  repo,
		clock: clock,
	}
}

func planID(id uuid.UUID) func(*domain.MaintenancePlan) bool {
	return func(p *domain.MaintenancePlan) bool { return p.ID == id }
}

// Get returns a plan from the snapshot
func (s *PlanStore) Get(id uuid.UUID) (domain.MaintenancePlan, bool) {
	return s.find(planID(id))
}

// Create inserts the plan and places it by next_due_date in the snapshot
func (s *PlanStore) Create(ctx context.Context, p *domain.MaintenancePlan) (*domain.MaintenancePlan, bool) {
	now := s.clock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	if p.Priority == "" {
		p.Priority = domain.PriorityNormal
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create maintenance plan", zap.String("title", p.Title), zap.Error(err))
		return nil, false
	}
	created := *p
	s.patch(func(items []domain.MaintenancePlan) []domain.MaintenancePlan {
		out := append(make([]domain.MaintenancePlan, 0, len(items)+1), items...)
		out = append(out, created)
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].NextDueDate, out[j].NextDueDate
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			}
			return a.Before(*b)
		})
		return out
	})
	return &created, true
}

// Delete removes the plan from the backend and then from the snapshot
func (s *PlanStore) Delete(ctx context.Context, id uuid.UUID) bool {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete maintenance plan", zap.String("plan_id", id.String()), zap.Error(err))
		return false
	}
	s.patch(func(items []domain.MaintenancePlan) []domain.MaintenancePlan {
		return removeWhere(items, planID(id))
	})
	return true
}

// Stores groups the three live entity stores
type Stores struct {
	Cases *CaseStore
	Tasks *TaskStore
	Plans *PlanStore
}

// NewStores builds stores over src
func NewStores(src *repository.Source, logger *zap.Logger) *Stores {
	return &Stores{
		Cases: NewCaseStore(src.Cases, logger, nil),
		Tasks: NewTaskStore(src.Tasks, logger, nil),
		Plans: NewPlanStore(src.Plans, logger, nil),
	}
}

// RefreshAll refetches every collection and reports whether all succeeded
func (s *Stores) RefreshAll(ctx context.Context) bool {
	ok := s.Cases.Refresh(ctx)
	ok = s.Tasks.Refresh(ctx) && ok
	ok = s.Plans.Refresh(ctx) && ok
	return ok
}
