package views

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/driftportal/facility-api/internal/domain"
)

const dayMillis = 86400000.0

// WeekKey returns the Jan-1-anchored week bucket of t as YYYY-W##, in UTC:
// week = ceil((days since Jan 1 + weekday of Jan 1 + 1) / 7), with fractional days.
func WeekKey(t time.Time) string {
	t = t.UTC()
	year := t.Year()
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := float64(t.Sub(jan1).Milliseconds()) / dayMillis
	week := int(math.Ceil((days + float64(jan1.Weekday()) + 1) / 7))
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekCount is one bucket of the cases-per-week chart
type WeekCount struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// CasesPerWeek buckets cases by the week of created_at, sorted by key
func CasesPerWeek(cases []domain.Case) []WeekCount {
	counts := make(map[string]int)
	for _, c := range cases {
		counts[WeekKey(c.CreatedAt)]++
	}
	out := make([]WeekCount, 0, len(counts))
	for week, n := range counts {
		out = append(out, WeekCount{Week: week, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// StatusCount is one slice of the status distribution
type StatusCount struct {
	Key   domain.CaseStatus `json:"key"`
	Name  string            `json:"name"`
	Value int               `json:"value"`
}

var statusLabels = map[domain.CaseStatus]string{
	domain.CaseStatusReported:   "Rapporterad",
	domain.CaseStatusInProgress: "Pågår",
	domain.CaseStatusDone:       "Klar",
	domain.CaseStatusClosed:     "Stängd",
}

// StatusDistribution counts cases per status in display order, zero-filled
func StatusDistribution(cases []domain.Case) []StatusCount {
	counts := make(map[domain.CaseStatus]int, len(domain.CaseStatuses))
	for _, c := range cases {
		counts[c.Status]++
	}
	out := make([]StatusCount, len(domain.CaseStatuses))
	for i, status := range domain.CaseStatuses {
		out[i] = StatusCount{Key: status, Name: statusLabels[status], Value: counts[status]}
	}
	return out
}

// AverageHandlingDays is the mean of max(0, updated_at - created_at) in days
// over done and closed cases, rounded to one decimal. Zero when there are none.
func AverageHandlingDays(cases []domain.Case) float64 {
	var sum float64
	n := 0
	for _, c := range cases {
		if c.Status != domain.CaseStatusDone && c.Status != domain.CaseStatusClosed {
			continue
		}
		end := c.UpdatedAt
		if end.IsZero() {
			end = c.CreatedAt
		}
		days := float64(end.Sub(c.CreatedAt).Milliseconds()) / dayMillis
		sum += math.Max(0, days)
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*10) / 10
}

// Charts is the dashboard chart payload
type Charts struct {
	CasesPerWeek        []WeekCount   `json:"cases_per_week"`
	StatusDistribution  []StatusCount `json:"status_distribution"`
	AverageHandlingDays float64       `json:"average_handling_days"`
}

// BuildCharts computes all chart series from a case snapshot
func BuildCharts(cases []domain.Case) Charts {
	return Charts{
		CasesPerWeek:        CasesPerWeek(cases),
		StatusDistribution:  StatusDistribution(cases),
		AverageHandlingDays: AverageHandlingDays(cases),
	}
}
