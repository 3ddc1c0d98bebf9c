// Package views computes the dashboard projections from entity snapshots.
// Every function is pure: inputs are never modified and time-dependent
// results take the reference time as a parameter.
package views

import (
	"sort"
	"strings"
	"time"

	"github.com/driftportal/facility-api/internal/domain"
)

// StatusColumn is one board column
type StatusColumn struct {
	ID    domain.CaseStatus `json:"id"`
	Title string            `json:"title"`
	Cases []domain.Case     `json:"cases"`
}

var columnTitles = map[domain.CaseStatus]string{
	domain.CaseStatusReported:   "Rapporterade",
	domain.CaseStatusInProgress: "Pågående",
	domain.CaseStatusDone:       "Klar",
	domain.CaseStatusClosed:     "Stängda",
}

// GroupByStatus partitions cases into the four status columns. Cases keep
// their snapshot order inside a column. Unknown statuses are left out.
func GroupByStatus(cases []domain.Case) []StatusColumn {
	columns := make([]StatusColumn, len(domain.CaseStatuses))
	index := make(map[domain.CaseStatus]int, len(domain.CaseStatuses))
	for i, status := range domain.CaseStatuses {
		columns[i] = StatusColumn{ID: status, Title: columnTitles[status], Cases: []domain.Case{}}
		index[status] = i
	}
	for _, c := range cases {
		if i, ok := index[c.Status]; ok {
			columns[i].Cases = append(columns[i].Cases, c)
		}
	}
	return columns
}

// CaseFilter holds the optional list criteria. Zero fields do not constrain.
type CaseFilter struct {
	Status   domain.CaseStatus
	Priority domain.Priority
	Category domain.CaseCategory
	DateFrom *time.Time
	DateTo   *time.Time
	// Query is matched case-insensitively against title, description and category
	Query string
}

// IsEmpty reports whether no criterion is set
func (f CaseFilter) IsEmpty() bool {
	return f.Status == "" && f.Priority == "" && f.Category == "" &&
		f.DateFrom == nil && f.DateTo == nil && strings.TrimSpace(f.Query) == ""
}

// Matches reports whether c satisfies every set criterion
func (f CaseFilter) Matches(c *domain.Case) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Priority != "" && c.Priority != f.Priority {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	if f.DateFrom != nil && c.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && c.CreatedAt.After(*f.DateTo) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.DescriptionText()), q) ||
			strings.Contains(strings.ToLower(string(c.Category)), q)
	}
	return true
}

// FilterCases returns the cases that match f, in input order
func FilterCases(cases []domain.Case, f CaseFilter) []domain.Case {
	out := make([]domain.Case, 0, len(cases))
	for i := range cases {
		if f.Matches(&cases[i]) {
			out = append(out, cases[i])
		}
	}
	return out
}

// SortField names a sortable case column
type SortField string

const (
	SortByTitle     SortField = "title"
	SortByCreatedAt SortField = "created_at"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
	SortByCategory  SortField = "category"
)

// IsValid checks if the SortField is a valid enum value
func (f SortField) IsValid() bool {
	switch f {
	case SortByTitle, SortByCreatedAt, SortByPriority, SortByStatus, SortByCategory:
		return true
	}
	return false
}

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValid checks if the SortDirection is a valid enum value
func (d SortDirection) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

func sortKey(c *domain.Case, field SortField) string {
	switch field {
	case SortByTitle:
		return c.Title
	case SortByPriority:
		return string(c.Priority)
	case SortByStatus:
		return string(c.Status)
	case SortByCategory:
		return string(c.Category)
	}
	return ""
}

// SortCases returns a stably sorted copy. created_at compares as time, the
// other fields by plain string comparison. Ties keep their input order.
func SortCases(cases []domain.Case, field SortField, dir SortDirection) []domain.Case {
	out := make([]domain.Case, len(cases))
	copy(out, cases)

	cmp := func(a, b *domain.Case) int {
		if field == SortByCreatedAt {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
		return strings.Compare(sortKey(a, field), sortKey(b, field))
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(&out[i], &out[j])
		if dir == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return out
}
