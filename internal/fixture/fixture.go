// Package fixture holds the demo dataset served when the service runs
// without a database.
package fixture

import (
	"time"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
)

// Stable identifiers so links into the demo data survive restarts
var (
	PropertyID = uuid.MustParse("6f1c1a52-0d7e-4a55-9b0e-1f3c6f0a0001")
	UnitID     = uuid.MustParse("6f1c1a52-0d7e-4a55-9b0e-1f3c6f0a0101")
	UserID     = uuid.MustParse("6f1c1a52-0d7e-4a55-9b0e-1f3c6f0a0201")
	Case1ID    = uuid.MustParse("6f1c1a52-0d7e-4a55-9b0e-1f3c6f0a0301")
	Case2ID    = uuid.MustParse("6f1c1a52-0d7e-4a55-9b0e-1f3c6f0a0302")
	Case3ID    = uuid.MustParse("6f1c1a52-0d7e-4a55-9b0e-1f3c6f0a0303")
	Task1ID    = uuid.MustParse("6f1c1a52-0d7e-4a55-9b0e-1f3c6f0a0401")
	Task2ID    = uuid.MustParse("6f1c1a52-0d7e-4a55-9b0e-1f3c6f0a0402")
	PlanID     = uuid.MustParse("6f1c1a52-0d7e-4a55-9b0e-1f3c6f0a0501")
)

// Dataset is a complete set of records for every table
type Dataset struct {
	Properties []domain.Property
	Units      []domain.Unit
	Users      []domain.User
	Cases      []domain.Case
	Tasks      []domain.Task
	Plans      []domain.MaintenancePlan
	Comments   []domain.CaseComment
}

// Demo builds the demo dataset with timestamps relative to now
func Demo(now time.Time) Dataset {
	user := UserID
	unit := UnitID
	case2 := Case2ID
	unitType := "lägenhet"
	unitSize := 72.0

	str := func(s string) *string { return &s }
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}

	return Dataset{
		Properties: []domain.Property{
			{ID: PropertyID, Name: "Newsec Demo Fastighet", Address: "Exempelgatan 1, 111 11 Stockholm", CreatedAt: now},
		},
		Units: []domain.Unit{
			{ID: UnitID, PropertyID: PropertyID, UnitNumber: "A12", Type: &unitType, Size: &unitSize, CreatedAt: now},
		},
		Users: []domain.User{
			{ID: UserID, Name: "Demo Användare", Email: "demo@newsec.se", Role: domain.RoleManager, CreatedAt: now},
		},
		Cases: []domain.Case{
			{
				ID: Case1ID, PropertyID: PropertyID, UnitID: &unit,
				Title: "Värmeproblem i trapphuset", Description: str("Kallt på plan 3"),
				Category: domain.CaseCategoryHeating, Priority: domain.PriorityNormal, Status: domain.CaseStatusReported,
				CreatedAt: now, UpdatedAt: now, CreatedBy: &user,
			},
			{
				ID: Case2ID, PropertyID: PropertyID, UnitID: &unit,
				Title: "Trasig belysning garage", Description: str("Lampor slocknar intermittent"),
				Category: domain.CaseCategoryElectrical, Priority: domain.PriorityHigh, Status: domain.CaseStatusInProgress,
				CreatedAt: now, UpdatedAt: now, AssignedTo: &user, CreatedBy: &user,
			},
			{
				ID: Case3ID, PropertyID: PropertyID, UnitID: &unit,
				Title: "Läckande kran i lokal", Description: str("Droppar under disk"),
				Category: domain.CaseCategoryPlumbing, Priority: domain.PriorityLow, Status: domain.CaseStatusDone,
				CreatedAt: now, UpdatedAt: now, AssignedTo: &user, CreatedBy: &user,
			},
		},
		Tasks: []domain.Task{
			{
				ID: Task1ID, CaseID: &case2, AssignedTo: &user,
				Description: "Byt drivdon i armatur", Status: domain.TaskStatusInProgress,
				DueDate: at(48 * time.Hour), CreatedAt: now, UpdatedAt: now,
			},
			{
				ID: Task2ID, AssignedTo: &user,
				Description: "Rondera allmänutrymmen", Status: domain.TaskStatusPending,
				DueDate: at(24 * time.Hour), CreatedAt: now, UpdatedAt: now,
			},
		},
		Plans: []domain.MaintenancePlan{
			{
				ID: PlanID, PropertyID: PropertyID,
				Title: "OVK kontroll", Description: str("Årlig ventilationskontroll"),
				Frequency: domain.FrequencyAnnual, NextDueDate: at(180 * 24 * time.Hour),
				EstimatedDurationHours: 4, AssignedTo: &user, Priority: domain.PriorityNormal,
				CreatedAt: now, UpdatedAt: now,
			},
		},
	}
}
