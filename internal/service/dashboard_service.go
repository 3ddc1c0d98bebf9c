package service

import (
	"time"

	"github.com/driftportal/facility-api/internal/store"
	"github.com/driftportal/facility-api/internal/views"
)

// DashboardService derives KPIs and charts from the live snapshots
type DashboardService struct {
	stores *store.Stores
	now    func() time.Time
}

func NewDashboardService(stores *store.Stores) *DashboardService {
	return &DashboardService{stores: stores, now: time.Now}
}

func (s *DashboardService) KPIs() views.KPIs {
	return views.ComputeKPIs(
		s.stores.Cases.Snapshot(),
		s.stores.Tasks.Snapshot(),
		s.stores.Plans.Snapshot(),
		s.now(),
	)
}

// KPIDetail lists the rows counted by one KPI
func (s *DashboardService) KPIDetail(kind views.KPIKind) (views.KPIRows, error) {
	if !kind.IsValid() {
		return views.KPIRows{}, invalid("unknown KPI %q", kind)
	}
	return views.KPIDetail(kind, s.stores.Cases.Snapshot(), s.stores.Tasks.Snapshot(), s.now()), nil
}

func (s *DashboardService) Charts() views.Charts {
	return views.BuildCharts(s.stores.Cases.Snapshot())
}
