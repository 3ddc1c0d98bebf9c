package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/repository"
)

type PropertyRepository struct {
	rows *table[domain.Property]
}

func byPropertyName(a, b *domain.Property) bool { return a.Name < b.Name }

func (r *PropertyRepository) List(ctx context.Context) ([]domain.Property, error) {
	return r.rows.all(byPropertyName), nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	return r.rows.get(id)
}

func (r *PropertyRepository) Search(ctx context.Context, query string, limit int) ([]domain.Property, error) {
	return r.rows.filter(func(p *domain.Property) bool {
		return containsFold(p.Name, query) || containsFold(p.Address, query)
	}, byPropertyName, limit), nil
}

type UnitRepository struct {
	rows *table[domain.Unit]
}

func byUnitNumber(a, b *domain.Unit) bool { return a.UnitNumber < b.UnitNumber }

func (r *UnitRepository) List(ctx context.Context) ([]domain.Unit, error) {
	return r.rows.all(byUnitNumber), nil
}

func (r *UnitRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Unit, error) {
	return r.rows.filter(func(u *domain.Unit) bool { return u.PropertyID == propertyID }, byUnitNumber, 0), nil
}

func (r *UnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Unit, error) {
	return r.rows.get(id)
}

type UserRepository struct {
	rows *table[domain.User]
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.rows.all(func(a, b *domain.User) bool { return a.Name < b.Name }), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.rows.get(id)
}

type CaseRepository struct {
	rows  *table[domain.Case]
	clock func() time.Time
}

func newestCaseFirst(a, b *domain.Case) bool { return a.CreatedAt.After(b.CreatedAt) }

func (r *CaseRepository) List(ctx context.Context) ([]domain.Case, error) {
	return r.rows.all(newestCaseFirst), nil
}

func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	return r.rows.get(id)
}

func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := r.clock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	r.rows.insert(*c)
	return nil
}

func (r *CaseRepository) Update(ctx context.Context, c *domain.Case) error {
	updated := *c
	return r.rows.modify(c.ID, func(row *domain.Case) {
		updated.CreatedAt = row.CreatedAt
		*row = updated
	})
}

func (r *CaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CaseStatus, updatedAt time.Time) error {
	return r.rows.modify(id, func(row *domain.Case) {
		row.Status = status
		row.UpdatedAt = updatedAt
	})
}

func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rows.remove(id)
}

func (r *CaseRepository) Search(ctx context.Context, query string, limit int) ([]domain.Case, error) {
	return r.rows.filter(func(c *domain.Case) bool {
		return containsFold(c.Title, query) || containsFold(deref(c.Description), query)
	}, newestCaseFirst, limit), nil
}

type TaskRepository struct {
	rows  *table[domain.Task]
	clock func() time.Time
}

func newestTaskFirst(a, b *domain.Task) bool { return a.CreatedAt.After(b.CreatedAt) }

func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	return r.rows.all(newestTaskFirst), nil
}

func (r *TaskRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Task, error) {
	return r.rows.filter(func(t *domain.Task) bool {
		return t.CaseID != nil && *t.CaseID == caseID
	}, newestTaskFirst, 0), nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return r.rows.get(id)
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := r.clock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	r.rows.insert(*t)
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	updated := *t
	return r.rows.modify(t.ID, func(row *domain.Task) {
		updated.CreatedAt = row.CreatedAt
		*row = updated
	})
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus, completedAt *time.Time, updatedAt time.Time) error {
	return r.rows.modify(id, func(row *domain.Task) {
		row.Status = status
		row.CompletedAt = completedAt
		row.UpdatedAt = updatedAt
	})
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rows.remove(id)
}

func (r *TaskRepository) Search(ctx context.Context, query string, limit int) ([]domain.Task, error) {
	return r.rows.filter(func(t *domain.Task) bool {
		return containsFold(t.Description, query)
	}, newestTaskFirst, limit), nil
}

type MaintenancePlanRepository struct {
	rows  *table[domain.MaintenancePlan]
	clock func() time.Time
}

// soonestDueFirst orders undated plans last
func soonestDueFirst(a, b *domain.MaintenancePlan) bool {
	switch {
	case a.NextDueDate == nil:
		return false
	case b.NextDueDate == nil:
		return true
	}
	return a.NextDueDate.Before(*b.NextDueDate)
}

func (r *MaintenancePlanRepository) List(ctx context.Context) ([]domain.MaintenancePlan, error) {
	return r.rows.all(soonestDueFirst), nil
}

func (r *MaintenancePlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenancePlan, error) {
	return r.rows.get(id)
}

func (r *MaintenancePlanRepository) Create(ctx context.Context, p *domain.MaintenancePlan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := r.clock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	r.rows.insert(*p)
	return nil
}

func (r *MaintenancePlanRepository) Update(ctx context.Context, p *domain.MaintenancePlan) error {
	updated := *p
	return r.rows.modify(p.ID, func(row *domain.MaintenancePlan) {
		updated.CreatedAt = row.CreatedAt
		*row = updated
	})
}

func (r *MaintenancePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rows.remove(id)
}

func (r *MaintenancePlanRepository) Search(ctx context.Context, query string, limit int) ([]domain.MaintenancePlan, error) {
	return r.rows.filter(func(p *domain.MaintenancePlan) bool {
		return containsFold(p.Title, query) || containsFold(deref(p.Description), query)
	}, soonestDueFirst, limit), nil
}

type CaseCommentRepository struct {
	rows  *table[domain.CaseComment]
	cases *table[domain.Case]
	clock func() time.Time
}

func (r *CaseCommentRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.CaseComment, error) {
	return r.rows.filter(func(c *domain.CaseComment) bool {
		return c.CaseID == caseID
	}, func(a, b *domain.CaseComment) bool { return a.CreatedAt.Before(b.CreatedAt) }, 0), nil
}

func (r *CaseCommentRepository) Create(ctx context.Context, c *domain.CaseComment) error {
	if _, err := r.cases.get(c.CaseID); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.clock()
	}
	r.rows.insert(*c)
	return nil
}

// Probe always succeeds: the in-memory dataset carries the comment table
func (r *CaseCommentRepository) Probe(ctx context.Context) (bool, error) {
	return true, nil
}

var (
	_ repository.CaseRepository            = (*CaseRepository)(nil)
	_ repository.TaskRepository            = (*TaskRepository)(nil)
	_ repository.MaintenancePlanRepository = (*MaintenancePlanRepository)(nil)
	_ repository.CaseCommentRepository     = (*CaseCommentRepository)(nil)
	_ repository.PropertyRepository        = (*PropertyRepository)(nil)
	_ repository.UnitRepository            = (*UnitRepository)(nil)
	_ repository.UserRepository            = (*UserRepository)(nil)
)
