package views

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftportal/facility-api/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func newCase(title string, status domain.CaseStatus, created time.Time) domain.Case {
	return domain.Case{
		ID:         uuid.New(),
		PropertyID: uuid.New(),
		Title:      title,
		Category:   domain.CaseCategoryOther,
		Priority:   domain.PriorityNormal,
		Status:     status,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func sampleCases() []domain.Case {
	a := newCase("Läcka i tvättstuga", domain.CaseStatusReported, day(2024, 1, 3))
	a.Category = domain.CaseCategoryPlumbing
	a.Priority = domain.PriorityHigh
	a.Description = ptr("Vatten på golvet")

	b := newCase("Dörr går inte att låsa", domain.CaseStatusInProgress, day(2024, 1, 10))
	b.Category = domain.CaseCategoryLocks
	b.Priority = domain.PriorityUrgent

	c := newCase("Kallt i lägenhet", domain.CaseStatusDone, day(2024, 2, 1))
	c.Category = domain.CaseCategoryHeating
	c.UpdatedAt = day(2024, 2, 4)

	d := newCase("Fläkt bullrar", domain.CaseStatusClosed, day(2024, 2, 15))
	d.Category = domain.CaseCategoryVentilation
	d.Priority = domain.PriorityLow
	d.UpdatedAt = day(2024, 2, 16)

	e := newCase("Belysning trasig", domain.CaseStatusReported, day(2024, 3, 1))
	e.Category = domain.CaseCategoryElectrical
	e.Description = ptr("VVS-schakt saknar ljus")

	return []domain.Case{e, d, c, b, a}
}

func ids(cases []domain.Case) []uuid.UUID {
	out := make([]uuid.UUID, len(cases))
	for i := range cases {
		out[i] = cases[i].ID
	}
	return out
}

func TestGroupByStatus(t *testing.T) {
	cases := sampleCases()
	columns := GroupByStatus(cases)

	require.Len(t, columns, 4)
	assert.Equal(t, domain.CaseStatusReported, columns[0].ID)
	assert.Equal(t, domain.CaseStatusInProgress, columns[1].ID)
	assert.Equal(t, domain.CaseStatusDone, columns[2].ID)
	assert.Equal(t, domain.CaseStatusClosed, columns[3].ID)

	// snapshot order is kept inside a bucket
	assert.Equal(t, []uuid.UUID{cases[0].ID, cases[4].ID}, ids(columns[0].Cases))
	assert.Len(t, columns[1].Cases, 1)

	empty := GroupByStatus(nil)
	for _, col := range empty {
		assert.NotNil(t, col.Cases)
		assert.Empty(t, col.Cases)
	}
}

func TestFilterCases_EmptyFilterReturnsInput(t *testing.T) {
	cases := sampleCases()
	assert.True(t, CaseFilter{}.IsEmpty())
	assert.Equal(t, cases, FilterCases(cases, CaseFilter{}))
}

func TestFilterCases_SubsetSatisfyingAllPredicates(t *testing.T) {
	cases := sampleCases()
	from := day(2024, 1, 5)
	to := day(2024, 2, 20)

	filters := []CaseFilter{
		{Status: domain.CaseStatusReported},
		{Priority: domain.PriorityUrgent},
		{Category: domain.CaseCategoryHeating},
		{DateFrom: &from},
		{DateTo: &to},
		{DateFrom: &from, DateTo: &to, Status: domain.CaseStatusDone},
		{Query: "vvs"},
		{Query: "GOLVET"},
		{Query: "ventilation", Priority: domain.PriorityLow},
		{Status: domain.CaseStatusClosed, Category: domain.CaseCategoryLocks},
	}

	for _, f := range filters {
		out := FilterCases(cases, f)
		inputIDs := ids(cases)
		for _, c := range out {
			assert.Contains(t, inputIDs, c.ID)
			assert.True(t, f.Matches(&c), "filter %+v let %q through", f, c.Title)
		}
		// everything left out fails at least one predicate
		kept := map[uuid.UUID]bool{}
		for _, c := range out {
			kept[c.ID] = true
		}
		for _, c := range cases {
			if !kept[c.ID] {
				assert.False(t, f.Matches(&c))
			}
		}
	}
}

func TestFilterCases_QueryFields(t *testing.T) {
	cases := sampleCases()

	byDescription := FilterCases(cases, CaseFilter{Query: "vvs-schakt"})
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Belysning trasig", byDescription[0].Title)

	byCategory := FilterCases(cases, CaseFilter{Query: "vvs"})
	assert.Len(t, byCategory, 2)

	none := FilterCases(cases, CaseFilter{Status: domain.CaseStatusClosed, Category: domain.CaseCategoryLocks})
	assert.Empty(t, none)
}

func TestFilterCases_DateBoundsInclusive(t *testing.T) {
	cases := sampleCases()
	at := day(2024, 1, 10)
	out := FilterCases(cases, CaseFilter{DateFrom: &at, DateTo: &at})
	require.Len(t, out, 1)
	assert.Equal(t, "Dörr går inte att låsa", out[0].Title)
}

func TestSortCases_Idempotent(t *testing.T) {
	cases := sampleCases()
	for _, field := range []SortField{SortByTitle, SortByCreatedAt, SortByPriority, SortByStatus, SortByCategory} {
		for _, dir := range []SortDirection{SortAsc, SortDesc} {
			once := SortCases(cases, field, dir)
			twice := SortCases(once, field, dir)
			assert.Equal(t, ids(once), ids(twice), "field %s dir %s", field, dir)
		}
	}
}

func TestSortCases_CreatedAt(t *testing.T) {
	cases := sampleCases()
	asc := SortCases(cases, SortByCreatedAt, SortAsc)
	for i := 1; i < len(asc); i++ {
		assert.False(t, asc[i].CreatedAt.Before(asc[i-1].CreatedAt))
	}
	desc := SortCases(cases, SortByCreatedAt, SortDesc)
	assert.Equal(t, "Belysning trasig", desc[0].Title)
}

func TestSortCases_StableTies(t *testing.T) {
	cases := sampleCases()
	// priorities: normal, låg, normal, akut, hög
	out := SortCases(cases, SortByPriority, SortAsc)
	var normals []uuid.UUID
	for _, c := range out {
		if c.Priority == domain.PriorityNormal {
			normals = append(normals, c.ID)
		}
	}
	assert.Equal(t, []uuid.UUID{cases[0].ID, cases[2].ID}, normals)

	desc := SortCases(cases, SortByPriority, SortDesc)
	normals = normals[:0]
	for _, c := range desc {
		if c.Priority == domain.PriorityNormal {
			normals = append(normals, c.ID)
		}
	}
	assert.Equal(t, []uuid.UUID{cases[0].ID, cases[2].ID}, normals)
}

func TestSortCases_DoesNotModifyInput(t *testing.T) {
	cases := sampleCases()
	before := ids(cases)
	SortCases(cases, SortByTitle, SortAsc)
	assert.Equal(t, before, ids(cases))
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{day(2024, 1, 1), "2024-W01"},
		{time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), "2024-W01"},
		{day(2024, 1, 6), "2024-W01"},
		{time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC), "2024-W02"},
		{day(2024, 1, 8), "2024-W02"},
		{day(2023, 1, 1), "2023-W01"},
		{day(2023, 1, 7), "2023-W01"},
		{time.Date(2023, 1, 7, 0, 0, 1, 0, time.UTC), "2023-W02"},
		{day(2024, 12, 31), "2024-W53"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WeekKey(tt.at), tt.at.String())
	}

	// evaluated in UTC regardless of the input location
	stockholm := time.FixedZone("CET", 3600)
	assert.Equal(t, "2023-W53", WeekKey(time.Date(2024, 1, 1, 0, 30, 0, 0, stockholm)))
}

func TestCasesPerWeek(t *testing.T) {
	cases := sampleCases()
	cases = append(cases, newCase("Samma vecka", domain.CaseStatusReported, day(2024, 1, 3)))

	weeks := CasesPerWeek(cases)
	total := 0
	for i, w := range weeks {
		total += w.Count
		if i > 0 {
			assert.Less(t, weeks[i-1].Week, w.Week)
		}
	}
	assert.Equal(t, len(cases), total)
	assert.Equal(t, WeekCount{Week: "2024-W01", Count: 2}, weeks[0])

	assert.Empty(t, CasesPerWeek(nil))
}

func TestStatusDistribution(t *testing.T) {
	cases := []domain.Case{
		newCase("a", domain.CaseStatusReported, day(2024, 1, 1)),
		newCase("b", domain.CaseStatusInProgress, day(2024, 1, 1)),
		newCase("c", domain.CaseStatusDone, day(2024, 1, 1)),
	}
	dist := StatusDistribution(cases)
	require.Len(t, dist, 4)

	got := map[domain.CaseStatus]int{}
	order := []domain.CaseStatus{}
	for _, s := range dist {
		got[s.Key] = s.Value
		order = append(order, s.Key)
	}
	assert.Equal(t, map[domain.CaseStatus]int{
		domain.CaseStatusReported:   1,
		domain.CaseStatusInProgress: 1,
		domain.CaseStatusDone:       1,
		domain.CaseStatusClosed:     0,
	}, got)
	assert.Equal(t, domain.CaseStatuses, order)
	assert.Equal(t, "Rapporterad", dist[0].Name)
}

func TestAverageHandlingDays(t *testing.T) {
	assert.Equal(t, 0.0, AverageHandlingDays(nil))
	assert.Equal(t, 0.0, AverageHandlingDays([]domain.Case{
		newCase("open", domain.CaseStatusReported, day(2024, 1, 1)),
	}))

	// done: 3 days, closed: 1 day
	assert.Equal(t, 2.0, AverageHandlingDays(sampleCases()))

	c := newCase("clock skew", domain.CaseStatusDone, day(2024, 1, 2))
	c.UpdatedAt = day(2024, 1, 1)
	d := newCase("quick", domain.CaseStatusClosed, day(2024, 1, 1))
	d.UpdatedAt = d.CreatedAt.Add(8 * time.Hour)
	// (0 + 1/3) / 2 = 0.1666 -> 0.2
	assert.Equal(t, 0.2, AverageHandlingDays([]domain.Case{c, d}))
}

func TestComputeKPIs(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC) // Wednesday
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	lastSunday := monday.Add(-time.Millisecond)

	tasks := []domain.Task{
		{ID: uuid.New(), Status: domain.TaskStatusPending, DueDate: &yesterday},
		{ID: uuid.New(), Status: domain.TaskStatusCompleted, DueDate: &yesterday, CompletedAt: &monday},
		{ID: uuid.New(), Status: domain.TaskStatusInProgress, DueDate: &tomorrow},
		{ID: uuid.New(), Status: domain.TaskStatusCompleted, CompletedAt: &lastSunday},
		{ID: uuid.New(), Status: domain.TaskStatusPending},
	}
	cases := sampleCases()
	k := ComputeKPIs(cases, tasks, []domain.MaintenancePlan{{}}, now)

	assert.Equal(t, 3, k.OpenCases)
	assert.Equal(t, 1, k.OverdueTasks)
	assert.Equal(t, 1, k.CompletedThisWeek)
	assert.Equal(t, 5, k.TotalCases)
	assert.Equal(t, 5, k.TotalTasks)
	assert.Equal(t, 1, k.TotalPlans)

	closed := 0
	for _, c := range cases {
		if c.Status == domain.CaseStatusDone || c.Status == domain.CaseStatusClosed {
			closed++
		}
	}
	assert.Equal(t, k.TotalCases, k.OpenCases+closed)
}

func TestTaskOverdue(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	task := domain.Task{Status: domain.TaskStatusPending, DueDate: &yesterday}
	assert.True(t, task.IsOverdue(now))

	task.Status = domain.TaskStatusCompleted
	assert.False(t, task.IsOverdue(now))
}

func TestWeekBounds(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	sunday := time.Date(2024, 3, 10, 22, 0, 0, 0, loc)
	mon, sun := WeekBounds(sunday)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, loc), mon)
	assert.Equal(t, time.Date(2024, 3, 10, 23, 59, 59, 999000000, loc), sun)

	assert.True(t, InWeek(mon, sunday))
	assert.True(t, InWeek(sun, sunday))
	assert.False(t, InWeek(sun.Add(time.Millisecond), sunday))
	assert.False(t, InWeek(mon.Add(-time.Millisecond), sunday))
}

func TestKPIDetail(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tasks := []domain.Task{
		{ID: uuid.New(), Status: domain.TaskStatusPending, DueDate: &yesterday},
		{ID: uuid.New(), Status: domain.TaskStatusCompleted, CompletedAt: &now},
	}

	open := KPIDetail(KPIOpenCases, sampleCases(), tasks, now)
	assert.Len(t, open.Cases, 3)
	assert.Nil(t, open.Tasks)
	assert.Equal(t, "Öppna Ärenden", open.Title)

	overdue := KPIDetail(KPIOverdueTasks, sampleCases(), tasks, now)
	require.Len(t, overdue.Tasks, 1)
	assert.Equal(t, tasks[0].ID, overdue.Tasks[0].ID)

	done := KPIDetail(KPICompletedThisWeek, nil, tasks, now)
	require.Len(t, done.Tasks, 1)
	assert.Equal(t, tasks[1].ID, done.Tasks[0].ID)
}

func TestKPIDetail_EmptyListIsEncoded(t *testing.T) {
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	body, err := json.Marshal(KPIDetail(KPIOverdueTasks, nil, nil, now))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"overdueTasks","title":"`+KPIOverdueTasks.Title()+`","tasks":[]}`, string(body))

	body, err = json.Marshal(KPIRows{Kind: KPIOpenCases, Title: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"openCases","title":"x","cases":[]}`, string(body))
}

func TestExpandCalendar_Quarterly(t *testing.T) {
	property := domain.Property{ID: uuid.New(), Name: "Solrosen", Address: "Solvägen 1"}
	plan := domain.MaintenancePlan{
		ID:          uuid.New(),
		PropertyID:  property.ID,
		Title:       "Filterbyte",
		Frequency:   domain.FrequencyQuarterly,
		NextDueDate: ptr(day(2024, 1, 1)),
	}
	now := day(2024, 5, 1)

	events := ExpandCalendar([]domain.MaintenancePlan{plan}, []domain.Property{property}, nil, now)
	require.Len(t, events, 6)

	want := []time.Time{
		day(2024, 1, 1), day(2024, 4, 1), day(2024, 7, 1),
		day(2024, 10, 1), day(2025, 1, 1), day(2025, 4, 1),
	}
	for i, ev := range events {
		assert.Equal(t, want[i], ev.Start)
		assert.Equal(t, 24*time.Hour, ev.End.Sub(ev.Start))
		assert.Equal(t, plan.ID.String()+"-"+string(rune('0'+i)), ev.ID)
		assert.Equal(t, "Solrosen", ev.PropertyName)
	}
	assert.True(t, events[0].Overdue)
	assert.True(t, events[1].Overdue)
	assert.False(t, events[2].Overdue)
}

func TestExpandCalendar_AnchorsAndFilters(t *testing.T) {
	a := domain.Property{ID: uuid.New(), Name: "A"}
	b := domain.Property{ID: uuid.New(), Name: "B"}
	created := day(2024, 2, 1)

	plans := []domain.MaintenancePlan{
		{ID: uuid.New(), PropertyID: a.ID, Title: "undated", Frequency: "weekly", CreatedAt: created},
		{ID: uuid.New(), PropertyID: b.ID, Title: "monthly", Frequency: domain.FrequencyMonthly, NextDueDate: ptr(day(2024, 1, 15))},
		{ID: uuid.New(), PropertyID: uuid.New(), Title: "orphan", Frequency: domain.FrequencyMonthly, NextDueDate: ptr(day(2024, 1, 1))},
	}
	props := []domain.Property{a, b}

	all := ExpandCalendar(plans, props, nil, day(2024, 1, 1))
	assert.Len(t, all, 12)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Start.Before(all[i-1].Start))
	}

	onlyA := ExpandCalendar(plans, props, &a.ID, day(2024, 1, 1))
	require.Len(t, onlyA, 6)
	assert.Equal(t, created, onlyA[0].Start)
	// unrecognised frequency recurs yearly
	assert.Equal(t, day(2025, 2, 1), onlyA[1].Start)
	assert.Equal(t, created, onlyA[0].NextDueDate)
}

func TestSearchSnapshots(t *testing.T) {
	cases := sampleCases()
	tasks := []domain.Task{{ID: uuid.New(), Description: "Byt packning i kran", Status: domain.TaskStatusPending}}
	plans := []domain.MaintenancePlan{{ID: uuid.New(), Title: "Rensa golvbrunnar", Description: ptr("Kvartalsvis")}}

	assert.Empty(t, SearchSnapshots("g", nil, cases, tasks, plans))

	hits := SearchSnapshots("GOLV", nil, cases, tasks, plans)
	require.Len(t, hits, 2)
	assert.Equal(t, ResultCase, hits[0].Type)
	assert.Equal(t, ResultMaintenance, hits[1].Type)
	assert.Equal(t, "active", hits[1].Status)
	assert.Equal(t, "/maintenance/"+plans[0].ID.String(), hits[1].Href)

	onlyTasks := SearchSnapshots("kran", []ResultType{ResultTask}, cases, tasks, plans)
	require.Len(t, onlyTasks, 1)
	assert.Equal(t, "Byt packning i kran", onlyTasks[0].Title)

	byCategory := SearchSnapshots("värme", []ResultType{ResultCase}, cases, tasks, plans)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Kallt i lägenhet", byCategory[0].Title)
}
