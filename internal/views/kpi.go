package views

import (
	"encoding/json"
	"time"

	"github.com/driftportal/facility-api/internal/domain"
)

// KPIKind names one dashboard KPI tile
type KPIKind string

const (
	KPIOpenCases         KPIKind = "openCases"
	KPIOverdueTasks      KPIKind = "overdueTasks"
	KPICompletedThisWeek KPIKind = "completedThisWeek"
)

// IsValid checks if the KPIKind is a valid enum value
func (k KPIKind) IsValid() bool {
	switch k {
	case KPIOpenCases, KPIOverdueTasks, KPICompletedThisWeek:
		return true
	}
	return false
}

// Title returns the tile heading
func (k KPIKind) Title() string {
	switch k {
	case KPIOpenCases:
		return "Öppna Ärenden"
	case KPIOverdueTasks:
		return "Försenade Uppgifter"
	case KPICompletedThisWeek:
		return "Slutförda Denna Vecka"
	}
	return string(k)
}

// KPIs are the dashboard counters
type KPIs struct {
	OpenCases         int `json:"open_cases"`
	OverdueTasks      int `json:"overdue_tasks"`
	CompletedThisWeek int `json:"completed_this_week"`
	TotalCases        int `json:"total_cases"`
	TotalTasks        int `json:"total_tasks"`
	TotalPlans        int `json:"total_maintenance_plans"`
}

// WeekBounds returns Monday 00:00:00.000 and Sunday 23:59:59.999 of the week
// containing now, in now's location.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	monday := time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
	sunday := time.Date(y, m, d-offset+6, 23, 59, 59, int(999*time.Millisecond), now.Location())
	return monday, sunday
}

// InWeek reports whether t lies within the week containing now, bounds inclusive
func InWeek(t, now time.Time) bool {
	monday, sunday := WeekBounds(now)
	return !t.Before(monday) && !t.After(sunday)
}

func completedThisWeek(t *domain.Task, now time.Time) bool {
	return t.CompletedAt != nil && InWeek(*t.CompletedAt, now)
}

// ComputeKPIs derives the counters from the current snapshots
func ComputeKPIs(cases []domain.Case, tasks []domain.Task, plans []domain.MaintenancePlan, now time.Time) KPIs {
	k := KPIs{TotalCases: len(cases), TotalTasks: len(tasks), TotalPlans: len(plans)}
	for i := range cases {
		if cases[i].Status.IsOpen() {
			k.OpenCases++
		}
	}
	for i := range tasks {
		if tasks[i].IsOverdue(now) {
			k.OverdueTasks++
		}
		if completedThisWeek(&tasks[i], now) {
			k.CompletedThisWeek++
		}
	}
	return k
}

// KPIRows are the records behind one KPI. Exactly one of Cases or Tasks is set.
type KPIRows struct {
	Kind  KPIKind       `json:"kind"`
	Title string        `json:"title"`
	Cases []domain.Case `json:"cases,omitempty"`
	Tasks []domain.Task `json:"tasks,omitempty"`
}

// MarshalJSON always writes the list that belongs to the kind, empty or not,
// and leaves out the other one
func (r KPIRows) MarshalJSON() ([]byte, error) {
	type header struct {
		Kind  KPIKind `json:"kind"`
		Title string  `json:"title"`
	}
	h := header{Kind: r.Kind, Title: r.Title}
	switch r.Kind {
	case KPIOpenCases:
		if r.Cases == nil {
			r.Cases = []domain.Case{}
		}
		return json.Marshal(struct {
			header
			Cases []domain.Case `json:"cases"`
		}{h, r.Cases})
	case KPIOverdueTasks, KPICompletedThisWeek:
		if r.Tasks == nil {
			r.Tasks = []domain.Task{}
		}
		return json.Marshal(struct {
			header
			Tasks []domain.Task `json:"tasks"`
		}{h, r.Tasks})
	}
	return json.Marshal(h)
}

// KPIDetail lists the records counted by kind
func KPIDetail(kind KPIKind, cases []domain.Case, tasks []domain.Task, now time.Time) KPIRows {
	rows := KPIRows{Kind: kind, Title: kind.Title()}
	switch kind {
	case KPIOpenCases:
		rows.Cases = []domain.Case{}
		for _, c := range cases {
			if c.Status.IsOpen() {
				rows.Cases = append(rows.Cases, c)
			}
		}
	case KPIOverdueTasks, KPICompletedThisWeek:
		rows.Tasks = []domain.Task{}
		for i := range tasks {
			if (kind == KPIOverdueTasks && tasks[i].IsOverdue(now)) ||
				(kind == KPICompletedThisWeek && completedThisWeek(&tasks[i], now)) {
				rows.Tasks = append(rows.Tasks, tasks[i])
			}
		}
	}
	return rows
}
