package kanban

import "github.com/driftportal/facility-api/internal/domain"

// TransitionPolicy decides whether a case may move between two statuses
type TransitionPolicy interface {
	Allowed(from, to domain.CaseStatus) bool
}

// AllowAll permits every transition, including to the same status
type AllowAll struct{}

func (AllowAll) Allowed(from, to domain.CaseStatus) bool { return true }

// TransitionTable permits only the listed moves. Staying in place is always allowed.
type TransitionTable map[domain.CaseStatus][]domain.CaseStatus

func (t TransitionTable) Allowed(from, to domain.CaseStatus) bool {
	if from == to {
		return true
	}
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ForwardOnly is a stricter table where cases only progress towards closed
var ForwardOnly = TransitionTable{
	domain.CaseStatusReported:   {domain.CaseStatusInProgress, domain.CaseStatusDone, domain.CaseStatusClosed},
	domain.CaseStatusInProgress: {domain.CaseStatusDone, domain.CaseStatusClosed},
	domain.CaseStatusDone:       {domain.CaseStatusClosed, domain.CaseStatusInProgress},
}

// PolicyByName resolves a configured policy name. Unknown names allow all.
func PolicyByName(name string) TransitionPolicy {
	if name == "forward_only" {
		return ForwardOnly
	}
	return AllowAll{}
}
