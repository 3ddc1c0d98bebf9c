// Package repository declares the data-access abstraction shared by the live
// database backend and the in-memory fixture dataset. Implementations live in
// the gormrepo and memory subpackages and are selected at the composition root.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// PropertyRepository reads properties. Properties are maintained outside this system.
type PropertyRepository interface {
	List(ctx context.Context) ([]domain.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Property, error)
}

// UnitRepository reads units
type UnitRepository interface {
	List(ctx context.Context) ([]domain.Unit, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Unit, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Unit, error)
}

// UserRepository reads user profiles
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// CaseRepository provides access to cases. List orders by created_at descending.
type CaseRepository interface {
	List(ctx context.Context) ([]domain.Case, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error)
	Create(ctx context.Context, c *domain.Case) error
	Update(ctx context.Context, c *domain.Case) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CaseStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]domain.Case, error)
}

// TaskRepository provides access to tasks. List orders by created_at descending.
type TaskRepository interface {
	List(ctx context.Context) ([]domain.Task, error)
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus, completedAt *time.Time, updatedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]domain.Task, error)
}

// MaintenancePlanRepository provides access to maintenance plans.
// List orders by next_due_date ascending with undated plans last.
type MaintenancePlanRepository interface {
	List(ctx context.Context) ([]domain.MaintenancePlan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenancePlan, error)
	Create(ctx context.Context, p *domain.MaintenancePlan) error
	Update(ctx context.Context, p *domain.MaintenancePlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]domain.MaintenancePlan, error)
}

// CaseCommentRepository provides access to the optional comment table
type CaseCommentRepository interface {
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.CaseComment, error)
	Create(ctx context.Context, c *domain.CaseComment) error
	// Probe reports whether the backing table exists
	Probe(ctx context.Context) (bool, error)
}

// Source bundles one implementation of every repository
type Source struct {
	// Name identifies the backend, e.g. "postgres", "sqlite" or "fixtures"
	Name       string
	Properties PropertyRepository
	Units      UnitRepository
	Users      UserRepository
	Cases      CaseRepository
	Tasks      TaskRepository
	Plans      MaintenancePlanRepository
	Comments   CaseCommentRepository
	// Ping checks backend reachability. Nil for sources that cannot fail.
	Ping func(ctx context.Context) error
}
