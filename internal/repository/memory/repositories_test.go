package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/fixture"
	"github.com/driftportal/facility-api/internal/realtime"
	"github.com/driftportal/facility-api/internal/repository"
)

func newDemoSource(t *testing.T) (*repository.Source, *realtime.Hub) {
	t.Helper()
	hub := realtime.NewHub(zap.NewNop())
	t.Cleanup(hub.Close)
	return NewSource(fixture.Demo(time.Now()), hub), hub
}

func TestCaseRepository_ListNewestFirst(t *testing.T) {
	src, _ := newDemoSource(t)
	ctx := context.Background()

	older := &domain.Case{
		PropertyID: fixture.PropertyID,
		Title:      "Gammalt ärende",
		Category:   domain.CaseCategoryOther,
		Priority:   domain.PriorityLow,
		Status:     domain.CaseStatusClosed,
		CreatedAt:  time.Now().Add(-72 * time.Hour),
	}
	require.NoError(t, src.Cases.Create(ctx, older))

	cases, err := src.Cases.List(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 4)
	assert.Equal(t, older.ID, cases[len(cases)-1].ID)
}

func TestCaseRepository_WritesPublishChanges(t *testing.T) {
	src, hub := newDemoSource(t)
	ctx := context.Background()
	sub := hub.Subscribe(domain.TableCases)
	defer sub.Close()

	require.NoError(t, src.Cases.UpdateStatus(ctx, fixture.Case1ID, domain.CaseStatusDone, time.Now()))
	ev := <-sub.Events()
	assert.Equal(t, realtime.OpUpdate, ev.Op)

	require.NoError(t, src.Cases.Delete(ctx, fixture.Case3ID))
	ev = <-sub.Events()
	assert.Equal(t, realtime.OpDelete, ev.Op)

	c, err := src.Cases.GetByID(ctx, fixture.Case1ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseStatusDone, c.Status)

	_, err = src.Cases.GetByID(ctx, fixture.Case3ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCaseRepository_MissingRows(t *testing.T) {
	src, _ := newDemoSource(t)
	ctx := context.Background()
	missing := uuid.New()

	assert.ErrorIs(t, src.Cases.UpdateStatus(ctx, missing, domain.CaseStatusDone, time.Now()), repository.ErrNotFound)
	assert.ErrorIs(t, src.Cases.Delete(ctx, missing), repository.ErrNotFound)
}

func TestCaseRepository_SearchIsCaseInsensitiveAndCapped(t *testing.T) {
	src, _ := newDemoSource(t)
	ctx := context.Background()

	found, err := src.Cases.Search(ctx, "GARAGE", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, fixture.Case2ID, found[0].ID)

	capped, err := src.Cases.Search(ctx, "a", 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestTaskRepository_ListByCase(t *testing.T) {
	src, _ := newDemoSource(t)

	tasks, err := src.Tasks.ListByCase(context.Background(), fixture.Case2ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, fixture.Task1ID, tasks[0].ID)
}

func TestMaintenancePlanRepository_UndatedPlansLast(t *testing.T) {
	src, _ := newDemoSource(t)
	ctx := context.Background()

	require.NoError(t, src.Plans.Create(ctx, &domain.MaintenancePlan{
		PropertyID: fixture.PropertyID,
		Title:      "Hissbesiktning",
		Frequency:  domain.FrequencyAnnual,
		Priority:   domain.PriorityNormal,
	}))
	soon := time.Now().Add(24 * time.Hour)
	require.NoError(t, src.Plans.Create(ctx, &domain.MaintenancePlan{
		PropertyID:  fixture.PropertyID,
		Title:       "Filterbyte",
		Frequency:   domain.FrequencyQuarterly,
		NextDueDate: &soon,
		Priority:    domain.PriorityLow,
	}))

	plans, err := src.Plans.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "Filterbyte", plans[0].Title)
	assert.Equal(t, "OVK kontroll", plans[1].Title)
	assert.Equal(t, "Hissbesiktning", plans[2].Title)
}

func TestCaseCommentRepository(t *testing.T) {
	src, _ := newDemoSource(t)
	ctx := context.Background()

	ok, err := src.Comments.Probe(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, src.Comments.Create(ctx, &domain.CaseComment{CaseID: fixture.Case1ID, Content: "Tekniker bokad"}))
	assert.ErrorIs(t, src.Comments.Create(ctx, &domain.CaseComment{CaseID: uuid.New(), Content: "x"}), repository.ErrNotFound)

	comments, err := src.Comments.ListByCase(ctx, fixture.Case1ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Tekniker bokad", comments[0].Content)
}

func TestPropertyRepository_SearchMatchesAddress(t *testing.T) {
	src, _ := newDemoSource(t)

	found, err := src.Properties.Search(context.Background(), "exempelgatan", 5)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, fixture.PropertyID, found[0].ID)
}
