package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Task represents a unit of work within a project. ActualHours is a live
// aggregate of the active time entries recorded against the task.
type Task struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProjectID string  `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	// Optional parent for subtasks
	ParentTaskID *string `gorm:"type:uuid;index" json:"parent_task_id,omitempty"`
	ParentTask   *Task   `gorm:"foreignKey:ParentTaskID" json:"parent_task,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// Status and priority (reference LookupValue)
	StatusID   string      `gorm:"type:uuid;not null;index" json:"status_id"`
	Status     LookupValue `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	PriorityID string      `gorm:"type:uuid;not null" json:"priority_id"`
	Priority   LookupValue `gorm:"foreignKey:PriorityID" json:"priority,omitempty"`

	AssignedToID *string `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	DueDate *time.Time `json:"due_date,omitempty"`

	EstimatedHours *decimal.Decimal `gorm:"type:decimal(8,2)" json:"estimated_hours,omitempty"`
	ActualHours    decimal.Decimal  `gorm:"type:decimal(8,2);not null;default:0" json:"actual_hours"`

	// No column default: a false value must survive the insert
	Billable bool `gorm:"not null" json:"billable"`
	// Hourly rate overriding member/project rates for this task
	BillingRate *decimal.Decimal `gorm:"type:decimal(10,2)" json:"billing_rate,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Audit columns
	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	UpdatedByID *string `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	Notes       string  `gorm:"type:text" json:"notes"`
	Metadata    string  `gorm:"type:text;default:'{}'" json:"metadata"` // JSON encoded

	// Relationships
	Subtasks    []Task      `gorm:"foreignKey:ParentTaskID" json:"subtasks,omitempty"`
	TimeEntries []TimeEntry `gorm:"foreignKey:TaskID" json:"time_entries,omitempty"`
}

// BeforeCreate hook to generate UUID
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave hook ensures metadata defaults
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.Metadata == "" {
		t.Metadata = "{}"
	}
	return nil
}

// TableName specifies the table name for Task model
func (Task) TableName() string {
	return "tasks"
}
