package domain

import (
	"time"

	"github.com/google/uuid"
)

// Request bodies. Field names follow the backend record shapes (snake_case).

// CreateCaseRequest is the body of a case report form submission
type CreateCaseRequest struct {
	PropertyID  uuid.UUID    `json:"property_id" validate:"required"`
	UnitID      *uuid.UUID   `json:"unit_id,omitempty"`
	Title       string       `json:"title" validate:"required,max=200"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    CaseCategory `json:"category" validate:"required,oneof=VVS El Lås Värme Ventilation Övrigt"`
	Priority    Priority     `json:"priority" validate:"omitempty,oneof=låg normal hög akut"`
	AssignedTo  *uuid.UUID   `json:"assigned_to,omitempty"`
}

// UpdateCaseStatusRequest changes the status of a single case
type UpdateCaseStatusRequest struct {
	Status CaseStatus `json:"status" validate:"required,oneof=reported in_progress done closed"`
}

// BoardDropRequest is a completed drag gesture on the case board.
// OverID is empty when the card was released outside any column.
type BoardDropRequest struct {
	CaseID uuid.UUID `json:"case_id" validate:"required"`
	OverID string    `json:"over_id"`
}

// CreateTaskRequest creates a work order
type CreateTaskRequest struct {
	CaseID      *uuid.UUID `json:"case_id,omitempty"`
	Description string     `json:"description" validate:"required,max=5000"`
	Status      TaskStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
}

// UpdateTaskStatusRequest changes the status of a task
type UpdateTaskStatusRequest struct {
	Status TaskStatus `json:"status" validate:"required,oneof=pending in_progress completed"`
}

// CreateMaintenancePlanRequest creates a recurring maintenance activity
type CreateMaintenancePlanRequest struct {
	PropertyID             uuid.UUID  `json:"property_id" validate:"required"`
	Title                  string     `json:"title" validate:"required,max=200"`
	Description            *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Frequency              Frequency  `json:"frequency" validate:"required,oneof=monthly quarterly biannual annual"`
	NextDueDate            *time.Time `json:"next_due_date" validate:"required"`
	EstimatedDurationHours float64    `json:"estimated_duration_hours" validate:"omitempty,gte=0.5"`
	AssignedTo             *uuid.UUID `json:"assigned_to,omitempty"`
	Priority               Priority   `json:"priority" validate:"omitempty,oneof=låg normal hög"`
}

// CreateCaseCommentRequest adds a comment to a case
type CreateCaseCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// Response bodies

// ListResponse wraps a snapshot read with the store's loading flag
type ListResponse[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Loading bool `json:"loading"`
}

// CommentsResponse is returned by the comment endpoints. Supported is false
// when the backend has no comment table.
type CommentsResponse struct {
	Supported bool          `json:"supported"`
	Comments  []CaseComment `json:"comments"`
}

// CapabilitiesResponse lists optional backend features detected at startup
type CapabilitiesResponse struct {
	CaseComments bool `json:"case_comments"`
}

// SessionResponse describes the authenticated user
type SessionResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Provider  string    `json:"provider"`
	DevBypass bool      `json:"dev_bypass"`
}

// ServerSearchResponse is the capped server-side lookup result
type ServerSearchResponse struct {
	Cases       []Case            `json:"cases"`
	Tasks       []Task            `json:"tasks"`
	Maintenance []MaintenancePlan `json:"maintenance"`
	Properties  []Property        `json:"properties"`
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status     string            `json:"status"`
	DataSource string            `json:"data_source"`
	Checks     map[string]string `json:"checks,omitempty"`
}
