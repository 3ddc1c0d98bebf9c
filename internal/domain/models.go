package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the access role of a dashboard user
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "förvaltare"
	RoleCaretaker Role = "skötare"
)

// IsValid checks if the Role is a valid enum value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCaretaker:
		return true
	}
	return false
}

// CaseCategory is the trade a reported problem belongs to
type CaseCategory string

const (
	CaseCategoryPlumbing    CaseCategory = "VVS"
	CaseCategoryElectrical  CaseCategory = "El"
	CaseCategoryLocks       CaseCategory = "Lås"
	CaseCategoryHeating     CaseCategory = "Värme"
	CaseCategoryVentilation CaseCategory = "Ventilation"
	CaseCategoryOther       CaseCategory = "Övrigt"
)

// IsValid checks if the CaseCategory is a valid enum value
func (c CaseCategory) IsValid() bool {
	switch c {
	case CaseCategoryPlumbing, CaseCategoryElectrical, CaseCategoryLocks,
		CaseCategoryHeating, CaseCategoryVentilation, CaseCategoryOther:
		return true
	}
	return false
}

// Priority is shared by cases and maintenance plans. Plans never use PriorityUrgent.
type Priority string

const (
	PriorityLow    Priority = "låg"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "hög"
	PriorityUrgent Priority = "akut"
)

// IsValidForCase checks the four case priorities
func (p Priority) IsValidForCase() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// IsValidForPlan checks the three maintenance plan priorities
func (p Priority) IsValidForPlan() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// CaseStatus represents the lifecycle state of a case
type CaseStatus string

const (
	CaseStatusReported   CaseStatus = "reported"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusDone       CaseStatus = "done"
	CaseStatusClosed     CaseStatus = "closed"
)

// CaseStatuses lists every case status in board and chart display order
var CaseStatuses = []CaseStatus{
	CaseStatusReported,
	CaseStatusInProgress,
	CaseStatusDone,
	CaseStatusClosed,
}

// IsValid checks if the CaseStatus is a valid enum value
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusReported, CaseStatusInProgress, CaseStatusDone, CaseStatusClosed:
		return true
	}
	return false
}

// IsOpen reports whether the case still needs handling
func (s CaseStatus) IsOpen() bool {
	return s == CaseStatusReported || s == CaseStatusInProgress
}

// TaskStatus represents the state of a work order
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid checks if the TaskStatus is a valid enum value
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Frequency is how often a maintenance plan recurs
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyBiannual  Frequency = "biannual"
	FrequencyAnnual    Frequency = "annual"
)

// IsValid checks if the Frequency is a valid enum value
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyBiannual, FrequencyAnnual:
		return true
	}
	return false
}

// Months returns the recurrence interval in months. Unknown values recur yearly.
func (f Frequency) Months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencyBiannual:
		return 6
	default:
		return 12
	}
}

// Label returns the Swedish display label used by the dashboard
func (f Frequency) Label() string {
	switch f {
	case FrequencyMonthly:
		return "Månadsvis"
	case FrequencyQuarterly:
		return "Kvartalsvis"
	case FrequencyBiannual:
		return "Halvårsvis"
	case FrequencyAnnual:
		return "Årligen"
	}
	return string(f)
}

// Table names of the backing collections. Change notifications carry these.
const (
	TableProperties       = "properties"
	TableUnits            = "units"
	TableCases            = "cases"
	TableTasks            = "tasks"
	TableMaintenancePlans = "maintenance_plans"
	TableUsers            = "users"
	TableCaseComments     = "case_comments"
)

// Tables lists every table that emits change notifications
var Tables = []string{
	TableProperties,
	TableUnits,
	TableCases,
	TableTasks,
	TableMaintenancePlans,
	TableUsers,
	TableCaseComments,
}

// Property is a managed building. Read-only in this system.
type Property struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Address   string    `gorm:"type:varchar(500)" json:"address"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Property) TableName() string { return TableProperties }

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Unit is an apartment or premises inside a property
type Unit struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index;column:property_id" json:"property_id"`
	UnitNumber string    `gorm:"type:varchar(50);not null;column:unit_number" json:"unit_number"`
	Type       *string   `gorm:"type:varchar(100)" json:"type,omitempty"`
	Size       *float64  `json:"size,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (Unit) TableName() string { return TableUnits }

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// User is a dashboard user profile
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Role      Role      `gorm:"type:varchar(50);not null" json:"role"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return TableUsers }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Case is a reported facility problem tied to a property and optionally a unit
type Case struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID  uuid.UUID    `gorm:"type:uuid;not null;index;column:property_id" json:"property_id"`
	UnitID      *uuid.UUID   `gorm:"type:uuid;column:unit_id" json:"unit_id"`
	Title       string       `gorm:"type:varchar(200);not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Category    CaseCategory `gorm:"type:varchar(50);not null" json:"category"`
	Priority    Priority     `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	Status      CaseStatus   `gorm:"type:varchar(20);not null;default:'reported';index" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
	AssignedTo  *uuid.UUID   `gorm:"type:uuid;column:assigned_to" json:"assigned_to"`
	CreatedBy   *uuid.UUID   `gorm:"type:uuid;column:created_by" json:"created_by"`
}

func (Case) TableName() string { return TableCases }

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DescriptionText returns the description or an empty string
func (c *Case) DescriptionText() string {
	if c.Description == nil {
		return ""
	}
	return *c.Description
}

// Task is a work order, optionally linked to a case
type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID      *uuid.UUID `gorm:"type:uuid;index;column:case_id" json:"case_id"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DueDate     *time.Time `gorm:"column:due_date" json:"due_date"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid;column:assigned_to" json:"assigned_to"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return TableTasks }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether the task is past due and not completed
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusCompleted
}

// MaintenancePlan is a recurring maintenance activity for a property
type MaintenancePlan struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID             uuid.UUID  `gorm:"type:uuid;not null;index;column:property_id" json:"property_id"`
	Title                  string     `gorm:"type:varchar(200);not null" json:"title"`
	Description            *string    `gorm:"type:text" json:"description"`
	Frequency              Frequency  `gorm:"type:varchar(20);not null" json:"frequency"`
	NextDueDate            *time.Time `gorm:"column:next_due_date;index" json:"next_due_date"`
	EstimatedDurationHours float64    `gorm:"column:estimated_duration_hours;not null;default:1" json:"estimated_duration_hours"`
	AssignedTo             *uuid.UUID `gorm:"type:uuid;column:assigned_to" json:"assigned_to"`
	Priority               Priority   `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	CreatedAt              time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"not null" json:"updated_at"`
}

func (MaintenancePlan) TableName() string { return TableMaintenancePlans }

func (m *MaintenancePlan) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DescriptionText returns the description or an empty string
func (m *MaintenancePlan) DescriptionText() string {
	if m.Description == nil {
		return ""
	}
	return *m.Description
}

// CaseComment is a note on a case. Stored in an optional table.
type CaseComment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID    uuid.UUID  `gorm:"type:uuid;not null;index;column:case_id" json:"case_id"`
	AuthorID  *uuid.UUID `gorm:"type:uuid;column:author_id" json:"author_id"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func (CaseComment) TableName() string { return TableCaseComments }

func (c *CaseComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
