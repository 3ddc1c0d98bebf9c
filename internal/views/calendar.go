package views

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/driftportal/facility-api/internal/domain"
)

// OccurrencesPerPlan is how many upcoming events each plan expands into
const OccurrencesPerPlan = 6

// CalendarEvent is one occurrence of a maintenance plan
type CalendarEvent struct {
	ID              string           `json:"id"`
	PlanID          uuid.UUID        `json:"plan_id"`
	Title           string           `json:"title"`
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	PropertyID      uuid.UUID        `json:"property_id"`
	PropertyName    string           `json:"property_name"`
	PropertyAddress string           `json:"property_address"`
	Frequency       domain.Frequency `json:"frequency"`
	Description     string           `json:"description"`
	NextDueDate     time.Time        `json:"next_due_date"`
	Overdue         bool             `json:"overdue"`
}

// ExpandCalendar turns plans into dated occurrences. When propertyID is set
// only that property's plans are expanded. Plans whose property is not in
// properties are skipped. Events are ordered by start.
func ExpandCalendar(plans []domain.MaintenancePlan, properties []domain.Property, propertyID *uuid.UUID, now time.Time) []CalendarEvent {
	byID := make(map[uuid.UUID]*domain.Property, len(properties))
	for i := range properties {
		byID[properties[i].ID] = &properties[i]
	}

	events := make([]CalendarEvent, 0, len(plans)*OccurrencesPerPlan)
	for _, plan := range plans {
		if propertyID != nil && plan.PropertyID != *propertyID {
			continue
		}
		property, ok := byID[plan.PropertyID]
		if !ok {
			continue
		}

		anchor := plan.CreatedAt
		if plan.NextDueDate != nil {
			anchor = *plan.NextDueDate
		}
		step := plan.Frequency.Months()
		for i := 0; i < OccurrencesPerPlan; i++ {
			start := anchor.AddDate(0, step*i, 0)
			events = append(events, CalendarEvent{
				ID:              fmt.Sprintf("%s-%d", plan.ID, i),
				PlanID:          plan.ID,
				Title:           plan.Title,
				Start:           start,
				End:             start.Add(24 * time.Hour),
				PropertyID:      property.ID,
				PropertyName:    property.Name,
				PropertyAddress: property.Address,
				Frequency:       plan.Frequency,
				Description:     plan.DescriptionText(),
				NextDueDate:     anchor,
				Overdue:         start.Before(now),
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events
}
