package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPriority_CaseAndPlanSets(t *testing.T) {
	assert.True(t, PriorityUrgent.IsValidForCase())
	assert.False(t, PriorityUrgent.IsValidForPlan())

	for _, p := range []Priority{PriorityLow, PriorityNormal, PriorityHigh} {
		assert.True(t, p.IsValidForCase(), p)
		assert.True(t, p.IsValidForPlan(), p)
	}
	assert.False(t, Priority("high").IsValidForCase())
}

func TestCaseStatus_IsOpen(t *testing.T) {
	assert.True(t, CaseStatusReported.IsOpen())
	assert.True(t, CaseStatusInProgress.IsOpen())
	assert.False(t, CaseStatusDone.IsOpen())
	assert.False(t, CaseStatusClosed.IsOpen())
	assert.False(t, CaseStatus("archived").IsValid())
	assert.Len(t, CaseStatuses, 4)
}

func TestFrequency_MonthsAndLabel(t *testing.T) {
	tests := []struct {
		freq   Frequency
		months int
		label  string
	}{
		{FrequencyMonthly, 1, "Månadsvis"},
		{FrequencyQuarterly, 3, "Kvartalsvis"},
		{FrequencyBiannual, 6, "Halvårsvis"},
		{FrequencyAnnual, 12, "Årligen"},
		{Frequency("weekly"), 12, "weekly"},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			assert.Equal(t, tt.months, tt.freq.Months())
			assert.Equal(t, tt.label, tt.freq.Label())
		})
	}
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Task{Status: TaskStatusPending, DueDate: &past}).IsOverdue(now))
	assert.True(t, (&Task{Status: TaskStatusInProgress, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusCompleted, DueDate: &past}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusPending, DueDate: &future}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskStatusPending}).IsOverdue(now))
}

func TestBeforeCreate_AssignsID(t *testing.T) {
	c := &Case{}
	assert.NoError(t, c.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, c.ID)

	fixed := uuid.New()
	p := &MaintenancePlan{ID: fixed}
	assert.NoError(t, p.BeforeCreate(nil))
	assert.Equal(t, fixed, p.ID)
}

func TestDescriptionText(t *testing.T) {
	assert.Equal(t, "", (&Case{}).DescriptionText())
	d := "Läcker under diskbänken"
	assert.Equal(t, d, (&Case{Description: &d}).DescriptionText())
	assert.Equal(t, "", (&MaintenancePlan{}).DescriptionText())
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleManager.IsValid())
	assert.False(t, Role("Förvaltare").IsValid())
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "missing id", NewAPIError(400, "bad_request", "Bad Request", "missing id").Error())
	assert.Equal(t, "Not Found", NewAPIError(404, "not_found", "Not Found", "").Error())
	assert.Equal(t, "Validation failed: email", GetValidationMessage("email"))
}
