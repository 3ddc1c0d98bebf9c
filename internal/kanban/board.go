// Package kanban implements the drag-and-drop status board for cases.
package kanban

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
)

// StatusUpdater applies a status change. CaseStore satisfies it.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CaseStatus) bool
}

// Outcome describes what a drop did
type Outcome string

const (
	// OutcomeUpdated means exactly one status update was issued and succeeded
	OutcomeUpdated Outcome = "updated"
	// OutcomeFailed means the update was issued and the backend rejected it
	OutcomeFailed Outcome = "failed"
	// OutcomeIgnored means the target was not a status column
	OutcomeIgnored Outcome = "ignored"
	// OutcomeForbidden means the transition policy refused the move
	OutcomeForbidden Outcome = "forbidden"
)

// DropResult reports the effect of DragEnd
type DropResult struct {
	CaseID  uuid.UUID         `json:"case_id"`
	Status  domain.CaseStatus `json:"status,omitempty"`
	Outcome Outcome           `json:"outcome"`
}

// Board tracks the active drag and turns drops into status updates
type Board struct {
	updater StatusUpdater
	policy  TransitionPolicy
	current func(id uuid.UUID) (domain.CaseStatus, bool)

	mu     sync.Mutex
	active *uuid.UUID
}

// NewBoard creates a board. current looks up a case's present status for the
// policy check; with AllowAll it may be nil.
func NewBoard(updater StatusUpdater, policy TransitionPolicy, current func(uuid.UUID) (domain.CaseStatus, bool)) *Board {
	if policy == nil {
		policy = AllowAll{}
	}
	return &Board{updater: updater, policy: policy, current: current}
}

// DragStart records the card being dragged
func (b *Board) DragStart(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = &id
}

// Active returns the card being dragged, if any
func (b *Board) Active() (uuid.UUID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return uuid.Nil, false
	}
	return *b.active, true
}

// DragEnd finishes a drag of caseID over overID. A recognised status column
// issues one status update; anything else is a no-op. The active card is
// cleared in every case.
func (b *Board) DragEnd(ctx context.Context, caseID uuid.UUID, overID string) DropResult {
	defer b.clear()

	result := DropResult{CaseID: caseID, Outcome: OutcomeIgnored}
	target := domain.CaseStatus(overID)
	if overID == "" || !target.IsValid() {
		return result
	}
	result.Status = target

	if _, ok := b.policy.(AllowAll); !ok && b.current != nil {
		if from, found := b.current(caseID); found && !b.policy.Allowed(from, target) {
			result.Outcome = OutcomeForbidden
			return result
		}
	}

	if b.updater.UpdateStatus(ctx, caseID, target) {
		result.Outcome = OutcomeUpdated
	} else {
		result.Outcome = OutcomeFailed
	}
	return result
}

func (b *Board) clear() {
	b.mu.Lock()
	b.active = nil
	b.mu.Unlock()
}
