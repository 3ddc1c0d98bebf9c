package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/store"
)

// TaskQuery narrows the task list. Zero fields do not constrain.
type TaskQuery struct {
	Status      domain.TaskStatus
	CaseID      *uuid.UUID
	OverdueOnly bool
}

type TaskService struct {
	tasks  *store.TaskStore
	cases  *store.CaseStore
	logger *zap.Logger
	now    func() time.Time
}

func NewTaskService(tasks *store.TaskStore, cases *store.CaseStore, logger *zap.Logger) *TaskService {
	return &TaskService{tasks: tasks, cases: cases, logger: logger, now: time.Now}
}

func (s *TaskService) List(q TaskQuery) domain.ListResponse[domain.Task] {
	now := s.now()
	items := []domain.Task{}
	for _, t := range s.tasks.Snapshot() {
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.CaseID != nil && (t.CaseID == nil || *t.CaseID != *q.CaseID) {
			continue
		}
		if q.OverdueOnly && !t.IsOverdue(now) {
			continue
		}
		items = append(items, t)
	}
	return domain.ListResponse[domain.Task]{
		Items:   items,
		Total:   len(items),
		Loading: s.tasks.Loading(),
	}
}

func (s *TaskService) GetByID(id uuid.UUID) (*domain.Task, error) {
	t, ok := s.tasks.Get(id)
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return &t, nil
}

// Create inserts a work order. A linked case must be present in the snapshot.
func (s *TaskService) Create(ctx context.Context, req *domain.CreateTaskRequest) (*domain.Task, error) {
	if req.CaseID != nil {
		if _, ok := s.cases.Get(*req.CaseID); !ok {
			return nil, invalid("case %s does not exist", *req.CaseID)
		}
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, invalid("unknown task status %q", req.Status)
	}

	created, ok := s.tasks.Create(ctx, &domain.Task{
		CaseID:      req.CaseID,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
	})
	if !ok {
		return nil, writeFailed("create task")
	}
	s.logger.Info("task created", zap.String("task_id", created.ID.String()))
	return created, nil
}

// UpdateStatus changes a task status and maintains completed_at
func (s *TaskService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) (*domain.Task, error) {
	if !status.IsValid() {
		return nil, invalid("unknown task status %q", status)
	}
	if _, ok := s.tasks.Get(id); !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if !s.tasks.UpdateStatus(ctx, id, status) {
		return nil, writeFailed("update task status")
	}
	return s.GetByID(id)
}
