package kanban

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
	"github.com/driftportal/facility-api/internal/repository/memory"
	"github.com/driftportal/facility-api/internal/store"
)

type recordingUpdater struct {
	calls []domain.CaseStatus
	fail  bool
}

func (r *recordingUpdater) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CaseStatus) bool {
	r.calls = append(r.calls, status)
	return !r.fail
}

func TestBoard_DropOnColumnIssuesOneUpdate(t *testing.T) {
	updater := &recordingUpdater{}
	board := NewBoard(updater, nil, nil)
	id := uuid.New()

	board.DragStart(id)
	active, ok := board.Active()
	require.True(t, ok)
	assert.Equal(t, id, active)

	res := board.DragEnd(context.Background(), id, "done")
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, []domain.CaseStatus{domain.CaseStatusDone}, updater.calls)

	_, ok = board.Active()
	assert.False(t, ok)
}

func TestBoard_DropOnUnknownTargetIsNoop(t *testing.T) {
	updater := &recordingUpdater{}
	board := NewBoard(updater, nil, nil)
	id := uuid.New()

	for _, over := range []string{"", "archived", "Done", uuid.NewString()} {
		board.DragStart(id)
		res := board.DragEnd(context.Background(), id, over)
		assert.Equal(t, OutcomeIgnored, res.Outcome, over)
		_, ok := board.Active()
		assert.False(t, ok)
	}
	assert.Empty(t, updater.calls)
}

func TestBoard_FailedUpdateStillClearsActive(t *testing.T) {
	updater := &recordingUpdater{fail: true}
	board := NewBoard(updater, nil, nil)
	id := uuid.New()

	board.DragStart(id)
	res := board.DragEnd(context.Background(), id, "closed")
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Len(t, updater.calls, 1)
	_, ok := board.Active()
	assert.False(t, ok)
}

func TestBoard_AnyToAnyByDefault(t *testing.T) {
	updater := &recordingUpdater{}
	board := NewBoard(updater, nil, func(uuid.UUID) (domain.CaseStatus, bool) {
		return domain.CaseStatusClosed, true
	})
	res := board.DragEnd(context.Background(), uuid.New(), "reported")
	assert.Equal(t, OutcomeUpdated, res.Outcome)
}

func TestBoard_TransitionTableRefusesMove(t *testing.T) {
	updater := &recordingUpdater{}
	board := NewBoard(updater, ForwardOnly, func(uuid.UUID) (domain.CaseStatus, bool) {
		return domain.CaseStatusClosed, true
	})

	res := board.DragEnd(context.Background(), uuid.New(), "reported")
	assert.Equal(t, OutcomeForbidden, res.Outcome)
	assert.Empty(t, updater.calls)

	res = board.DragEnd(context.Background(), uuid.New(), "closed")
	assert.Equal(t, OutcomeUpdated, res.Outcome)
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, ForwardOnly.Allowed(domain.CaseStatusReported, domain.CaseStatusDone))
	assert.False(t, ForwardOnly.Allowed(domain.CaseStatusInProgress, domain.CaseStatusReported))
	assert.True(t, ForwardOnly.Allowed(domain.CaseStatusClosed, domain.CaseStatusClosed))

	assert.Equal(t, ForwardOnly, PolicyByName("forward_only"))
	assert.Equal(t, AllowAll{}, PolicyByName(""))
}

func TestBoard_WithCaseStore(t *testing.T) {
	src := memory.NewSource(fixture.Demo(time.Now()), nil)
	cases := store.NewCaseStore(src.Cases, zap.NewNop(), nil)
	require.True(t, cases.Refresh(context.Background()))

	board := NewBoard(cases, nil, nil)
	board.DragStart(fixture.Case1ID)
	res := board.DragEnd(context.Background(), fixture.Case1ID, string(domain.CaseStatusDone))
	require.Equal(t, OutcomeUpdated, res.Outcome)

	c, ok := cases.Get(fixture.Case1ID)
	require.True(t, ok)
	assert.Equal(t, domain.CaseStatusDone, c.Status)
}
