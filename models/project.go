package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Project represents a client project that tasks and time entries hang off
type Project struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Code        string `gorm:"not null;uniqueIndex" json:"code"`
	Description string `gorm:"type:text" json:"description"`

	// Client relationship
	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// Status and priority (reference LookupValue)
	StatusID   string      `gorm:"type:uuid;not null;index" json:"status_id"`
	Status     LookupValue `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	PriorityID string      `gorm:"type:uuid;not null" json:"priority_id"`
	Priority   LookupValue `gorm:"foreignKey:PriorityID" json:"priority,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	// Manager
	ManagerID string `gorm:"type:uuid;not null" json:"manager_id"`
	Manager   User   `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`

	BudgetAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"budget_amount,omitempty"`
	// Hourly rate overriding the client default for this project
	BillingRate    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"billing_rate,omitempty"`
	EstimatedHours *decimal.Decimal `gorm:"type:decimal(10,2)" json:"estimated_hours,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Audit columns
	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	UpdatedByID *string `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	Notes       string  `gorm:"type:text" json:"notes"`
	Metadata    string  `gorm:"type:text;default:'{}'" json:"metadata"` // JSON encoded

	// Relationships
	Memberships []ProjectMember `gorm:"foreignKey:ProjectID" json:"memberships,omitempty"`
	Tasks       []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave hook normalizes the project code
func (p *Project) BeforeSave(tx *gorm.DB) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if p.Metadata == "" {
		p.Metadata = "{}"
	}
	return nil
}

// TableName specifies the table name for Project model
func (Project) TableName() string {
	return "projects"
}
