package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/fixture"
	"github.com/driftportal/facility-api/internal/repository"
	"github.com/driftportal/facility-api/internal/repository/memory"
)

var errBackend = errors.New("backend unavailable")

// flakyCases wraps a case repository and fails writes or reads on demand
type flakyCases struct {
	repository.CaseRepository
	mu        sync.Mutex
	failWrite bool
	failList  bool
	updates   int
}

func (f *flakyCases) List(ctx context.Context) ([]domain.Case, error) {
	f.mu.Lock()
	fail := f.failList
	f.mu.Unlock()
	if fail {
		return nil, errBackend
	}
	return f.CaseRepository.List(ctx)
}

func (f *flakyCases) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CaseStatus, at time.Time) error {
	f.mu.Lock()
	f.updates++
	fail := f.failWrite
	f.mu.Unlock()
	if fail {
		return errBackend
	}
	return f.CaseRepository.UpdateStatus(ctx, id, status, at)
}

func (f *flakyCases) Delete(ctx context.Context, id uuid.UUID) error {
	if f.failWrite {
		return errBackend
	}
	return f.CaseRepository.Delete(ctx, id)
}

func newCaseStore(t *testing.T, clock func() time.Time) (*CaseStore, *flakyCases) {
	t.Helper()
	src := memory.NewSource(fixture.Demo(time.Now()), nil)
	repo := &flakyCases{CaseRepository: src.Cases}
	s := NewCaseStore(repo, zap.NewNop(), clock)
	require.True(t, s.Refresh(context.Background()))
	return s, repo
}

func statusOf(t *testing.T, s *CaseStore, id uuid.UUID) domain.CaseStatus {
	t.Helper()
	c, ok := s.Get(id)
	require.True(t, ok)
	return c.Status
}

func TestStore_RefreshReplacesSnapshot(t *testing.T) {
	s, _ := newCaseStore(t, nil)
	assert.Len(t, s.Snapshot(), 3)
	assert.True(t, s.Loaded())
	assert.False(t, s.Loading())
}

func TestStore_ReadFailureKeepsSnapshot(t *testing.T) {
	s, repo := newCaseStore(t, nil)
	before := s.Snapshot()

	repo.failList = true
	assert.False(t, s.Refresh(context.Background()))

	assert.Equal(t, before, s.Snapshot())
	assert.False(t, s.Loading())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s, _ := newCaseStore(t, nil)
	snap := s.Snapshot()
	snap[0].Title = "changed"
	assert.NotEqual(t, "changed", s.Snapshot()[0].Title)
}

func TestCaseStore_UpdateStatusPatchesLocally(t *testing.T) {
	fixed := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	s, _ := newCaseStore(t, func() time.Time { return fixed })

	ok := s.UpdateStatus(context.Background(), fixture.Case1ID, domain.CaseStatusInProgress)
	require.True(t, ok)

	c, found := s.Get(fixture.Case1ID)
	require.True(t, found)
	assert.Equal(t, domain.CaseStatusInProgress, c.Status)
	assert.Equal(t, fixed, c.UpdatedAt)
}

func TestCaseStore_WriteFailureLeavesSnapshot(t *testing.T) {
	s, repo := newCaseStore(t, nil)
	repo.failWrite = true
	before := s.Snapshot()

	assert.False(t, s.UpdateStatus(context.Background(), fixture.Case1ID, domain.CaseStatusClosed))
	assert.False(t, s.Delete(context.Background(), fixture.Case1ID))
	assert.Equal(t, before, s.Snapshot())
}

func TestCaseStore_DeleteRemovesLocally(t *testing.T) {
	s, _ := newCaseStore(t, nil)

	require.True(t, s.Delete(context.Background(), fixture.Case2ID))
	_, found := s.Get(fixture.Case2ID)
	assert.False(t, found)
	assert.Len(t, s.Snapshot(), 2)
}

func TestCaseStore_CreatePrepends(t *testing.T) {
	s, _ := newCaseStore(t, nil)

	created, ok := s.Create(context.Background(), &domain.Case{
		PropertyID: fixture.PropertyID,
		Title:      "Stopp i avlopp",
		Category:   domain.CaseCategoryPlumbing,
	})
	require.True(t, ok)
	assert.Equal(t, domain.CaseStatusReported, created.Status)
	assert.Equal(t, domain.PriorityNormal, created.Priority)
	assert.Equal(t, created.ID, s.Snapshot()[0].ID)
}

func TestCaseStore_OptimisticUpdateSurvivesEchoRefetch(t *testing.T) {
	s, _ := newCaseStore(t, nil)
	ctx := context.Background()

	require.True(t, s.UpdateStatus(ctx, fixture.Case1ID, domain.CaseStatusDone))
	assert.Equal(t, domain.CaseStatusDone, statusOf(t, s, fixture.Case1ID))

	// the live change for our own write arrives and triggers a refetch
	require.True(t, s.Refresh(ctx))
	assert.Equal(t, domain.CaseStatusDone, statusOf(t, s, fixture.Case1ID))
}

func TestStore_LastStartedFetchWins(t *testing.T) {
	release := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	var mu sync.Mutex
	calls := 0

	s := New[string]("letters", func(ctx context.Context) ([]string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		<-release[n]
		if n == 1 {
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	}, zap.NewNop())

	results := make(chan bool, 2)
	fetchCalls := func(n int) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			return calls == n
		}
	}

	go func() { results <- s.Refresh(context.Background()) }()
	require.Eventually(t, fetchCalls(1), time.Second, time.Millisecond)

	go func() { results <- s.Refresh(context.Background()) }()
	require.Eventually(t, fetchCalls(2), time.Second, time.Millisecond)

	close(release[2])
	assert.True(t, <-results)
	close(release[1])
	assert.False(t, <-results)

	assert.Equal(t, []string{"fresh"}, s.Snapshot())
	assert.False(t, s.Loading())
}

func TestStore_LocalPatchTriggersFollowUpFetch(t *testing.T) {
	ctx := context.Background()
	src := memory.NewSource(fixture.Demo(time.Now()), nil)
	gate := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	var fetches int

	s := NewCaseStore(src.Cases, zap.NewNop(), nil)
	require.True(t, s.Refresh(ctx))
	require.Equal(t, domain.CaseStatusInProgress, statusOf(t, s, fixture.Case2ID))

	// another writer closes Case2; its change notification starts this fetch
	require.NoError(t, src.Cases.UpdateStatus(ctx, fixture.Case2ID, domain.CaseStatusClosed, time.Now()))

	// the first fetch reads the backend before our write but returns after it
	s.fetch = func(ctx context.Context) ([]domain.Case, error) {
		fetches++
		items, err := src.Cases.List(ctx)
		once.Do(func() {
			close(entered)
			<-gate
		})
		return items, err
	}

	done := make(chan bool)
	go func() { done <- s.Refresh(ctx) }()
	<-entered

	require.True(t, s.UpdateStatus(ctx, fixture.Case1ID, domain.CaseStatusDone))
	close(gate)

	assert.True(t, <-done)
	assert.Equal(t, 2, fetches)
	assert.Equal(t, domain.CaseStatusClosed, statusOf(t, s, fixture.Case2ID), "remote change kept")
	assert.Equal(t, domain.CaseStatusDone, statusOf(t, s, fixture.Case1ID), "local write kept")
	assert.False(t, s.Loading())
}

func TestStore_ResultAfterCloseIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	s := New[int]("numbers", func(ctx context.Context) ([]int, error) {
		<-gate
		return []int{1, 2, 3}, nil
	}, zap.NewNop())

	done := make(chan bool)
	go func() { done <- s.Refresh(context.Background()) }()
	require.Eventually(t, s.Loading, time.Second, time.Millisecond)

	s.Close()
	close(gate)

	assert.False(t, <-done)
	assert.Empty(t, s.Snapshot())
	assert.False(t, s.Refresh(context.Background()))
}

func TestTaskStore_CompletionTimestamp(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	src := memory.NewSource(fixture.Demo(time.Now()), nil)
	s := NewTaskStore(src.Tasks, zap.NewNop(), func() time.Time { return fixed })
	ctx := context.Background()
	require.True(t, s.Refresh(ctx))

	require.True(t, s.UpdateStatus(ctx, fixture.Task2ID, domain.TaskStatusCompleted))
	task, ok := s.Get(fixture.Task2ID)
	require.True(t, ok)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, fixed, *task.CompletedAt)

	require.True(t, s.UpdateStatus(ctx, fixture.Task2ID, domain.TaskStatusInProgress))
	task, _ = s.Get(fixture.Task2ID)
	assert.Nil(t, task.CompletedAt)

	assert.False(t, s.UpdateStatus(ctx, uuid.New(), domain.TaskStatusCompleted))
}

func TestPlanStore_CreateKeepsDueOrder(t *testing.T) {
	src := memory.NewSource(fixture.Demo(time.Now()), nil)
	s := NewPlanStore(src.Plans, zap.NewNop(), nil)
	ctx := context.Background()
	require.True(t, s.Refresh(ctx))

	soon := time.Now().Add(time.Hour)
	created, ok := s.Create(ctx, &domain.MaintenancePlan{
		PropertyID:             fixture.PropertyID,
		Title:                  "Rensa takbrunnar",
		Frequency:              domain.FrequencyBiannual,
		NextDueDate:            &soon,
		EstimatedDurationHours: 2,
	})
	require.True(t, ok)
	assert.Equal(t, domain.PriorityNormal, created.Priority)

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, created.ID, snap[0].ID)

	require.True(t, s.Delete(ctx, created.ID))
	assert.Len(t, s.Snapshot(), 1)
	assert.False(t, s.Delete(ctx, created.ID))
}

func TestStores_RefreshAll(t *testing.T) {
	src := memory.NewSource(fixture.Demo(time.Now()), nil)
	stores := NewStores(src, zap.NewNop())

	assert.True(t, stores.RefreshAll(context.Background()))
	assert.Len(t, stores.Cases.Snapshot(), 3)
	assert.Len(t, stores.Tasks.Snapshot(), 2)
	assert.Len(t, stores.Plans.Snapshot(), 1)
}
