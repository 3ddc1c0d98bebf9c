package views

import (
	"strings"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
)

// MinQueryLength is the shortest query that produces results
const MinQueryLength = 2

// ResultType tags a search hit with its source collection
type ResultType string

const (
	ResultCase        ResultType = "case"
	ResultTask        ResultType = "task"
	ResultMaintenance ResultType = "maintenance"
)

// AllResultTypes is the default type selection
var AllResultTypes = []ResultType{ResultCase, ResultTask, ResultMaintenance}

// IsValid checks if the ResultType is a valid enum value
func (t ResultType) IsValid() bool {
	switch t {
	case ResultCase, ResultTask, ResultMaintenance:
		return true
	}
	return false
}

// SearchResult is one hit
type SearchResult struct {
	ID          uuid.UUID       `json:"id"`
	Type        ResultType      `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	Priority    domain.Priority `json:"priority,omitempty"`
	Href        string          `json:"href"`
}

// SearchSnapshots scans the loaded snapshots for query. Each selected type is
// scanned independently and hits are appended case, task, maintenance.
func SearchSnapshots(query string, types []ResultType, cases []domain.Case, tasks []domain.Task, plans []domain.MaintenancePlan) []SearchResult {
	results := []SearchResult{}
	if len([]rune(query)) < MinQueryLength {
		return results
	}
	if len(types) == 0 {
		types = AllResultTypes
	}
	want := make(map[ResultType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	q := strings.ToLower(query)
	has := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	if want[ResultCase] {
		for _, c := range cases {
			if has(c.Title) || has(c.DescriptionText()) || has(string(c.Category)) {
				results = append(results, SearchResult{
					ID:          c.ID,
					Type:        ResultCase,
					Title:       c.Title,
					Description: c.DescriptionText(),
					Status:      string(c.Status),
					Priority:    c.Priority,
					Href:        "/cases/" + c.ID.String(),
				})
			}
		}
	}
	if want[ResultTask] {
		for _, t := range tasks {
			if has(t.Description) {
				results = append(results, SearchResult{
					ID:     t.ID,
					Type:   ResultTask,
					Title:  t.Description,
					Status: string(t.Status),
					Href:   "/tasks/" + t.ID.String(),
				})
			}
		}
	}
	if want[ResultMaintenance] {
		for _, p := range plans {
			if has(p.Title) || has(p.DescriptionText()) {
				results = append(results, SearchResult{
					ID:          p.ID,
					Type:        ResultMaintenance,
					Title:       p.Title,
					Description: p.DescriptionText(),
					Status:      "active",
					Href:        "/maintenance/" + p.ID.String(),
				})
			}
		}
	}
	return results
}
