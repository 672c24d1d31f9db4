package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TimeEntry records time spent by a user on a project task
type TimeEntry struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TaskID string `gorm:"type:uuid;not null;index" json:"task_id"`
	Task   Task   `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Date        time.Time       `gorm:"not null;index" json:"date"`
	Hours       decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"hours"` // In (0, 24]
	Description string          `gorm:"type:text;not null" json:"description"`

	// No column default: a false value must survive the insert
	Billable bool `gorm:"not null" json:"billable"`
	// Rate at which this time was billed; overrides the whole resolution chain
	BillingRate *decimal.Decimal `gorm:"type:decimal(10,2)" json:"billing_rate,omitempty"`

	// Billing status (references LookupValue in the BILLING_STATUS category)
	BillingStatusID string      `gorm:"type:uuid;not null;index" json:"billing_status_id"`
	BillingStatus   LookupValue `gorm:"foreignKey:BillingStatusID" json:"billing_status,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Audit columns
	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	UpdatedByID *string `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	Notes       string  `gorm:"type:text" json:"notes"`
	Metadata    string  `gorm:"type:text;default:'{}'" json:"metadata"` // JSON encoded
}

// BeforeCreate hook to generate UUID
func (te *TimeEntry) BeforeCreate(tx *gorm.DB) error {
	if te.ID == "" {
		te.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave hook ensures metadata defaults
func (te *TimeEntry) BeforeSave(tx *gorm.DB) error {
	if te.Metadata == "" {
		te.Metadata = "{}"
	}
	return nil
}

// TableName specifies the table name for TimeEntry model
func (TimeEntry) TableName() string {
	return "time_entries"
}
