package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/fixture"
	"github.com/driftportal/facility-api/internal/realtime"
	"github.com/driftportal/facility-api/internal/repository"
)

// NewSource loads ds into memory. pub may be nil when no live consumers exist.
func NewSource(ds fixture.Dataset, pub realtime.Publisher) *repository.Source {
	clock := time.Now
	cases := newTable(domain.TableCases, ds.Cases, func(c *domain.Case) uuid.UUID { return c.ID }, pub, clock)
	return &repository.Source{
		Name:       "fixtures",
		Properties: &PropertyRepository{rows: newTable(domain.TableProperties, ds.Properties, func(p *domain.Property) uuid.UUID { return p.ID }, pub, clock)},
		Units:      &UnitRepository{rows: newTable(domain.TableUnits, ds.Units, func(u *domain.Unit) uuid.UUID { return u.ID }, pub, clock)},
		Users:      &UserRepository{rows: newTable(domain.TableUsers, ds.Users, func(u *domain.User) uuid.UUID { return u.ID }, pub, clock)},
		Cases:      &CaseRepository{rows: cases, clock: clock},
		Tasks:      &TaskRepository{rows: newTable(domain.TableTasks, ds.Tasks, func(t *domain.Task) uuid.UUID { return t.ID }, pub, clock), clock: clock},
		Plans:      &MaintenancePlanRepository{rows: newTable(domain.TableMaintenancePlans, ds.Plans, func(p *domain.MaintenancePlan) uuid.UUID { return p.ID }, pub, clock), clock: clock},
		Comments: &CaseCommentRepository{
			rows:  newTable(domain.TableCaseComments, ds.Comments, func(c *domain.CaseComment) uuid.UUID { return c.ID }, pub, clock),
			cases: cases,
			clock: clock,
		},
		Ping: func(context.Context) error { return nil },
	}
}
