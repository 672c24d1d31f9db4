package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// System category codes seeded at startup (used to identify categories in the database)
const (
	LookupCategoryCodeProjectStatus = "PROJECT_STATUS"
	LookupCategoryCodeTaskStatus    = "TASK_STATUS"
	LookupCategoryCodePriority      = "PRIORITY"
	LookupCategoryCodeProjectRole   = "PROJECT_ROLE"
	LookupCategoryCodeBillingStatus = "BILLING_STATUS"
	LookupCategoryCodeIndustry      = "INDUSTRY"
)

// LookupCategory groups runtime-configurable enumeration values
// (e.g., PROJECT_STATUS, PRIORITY) so they replace hard-coded constants.
type LookupCategory struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Code        string `gorm:"not null;uniqueIndex" json:"code"` // Upper-cased, e.g. "PROJECT_STATUS"
	Description string `gorm:"type:text" json:"description"`
	IsSystem    bool   `gorm:"not null;default:false" json:"is_system"` // Platform-owned, blocked from ordinary edits
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`

	// Audit columns
	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	UpdatedByID *string `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	Notes       string  `gorm:"type:text" json:"notes"`
	Metadata    string  `gorm:"type:text;default:'{}'" json:"metadata"` // JSON encoded

	// Relationships
	Values []LookupValue `gorm:"foreignKey:CategoryID" json:"values,omitempty"`
}

// BeforeCreate hook to generate UUID
func (lc *LookupCategory) BeforeCreate(tx *gorm.DB) error {
	if lc.ID == "" {
		lc.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave hook normalizes the code to upper case (idempotent)
func (lc *LookupCategory) BeforeSave(tx *gorm.DB) error {
	lc.Code = strings.ToUpper(strings.TrimSpace(lc.Code))
	if lc.Metadata == "" {
		lc.Metadata = "{}"
	}
	return nil
}

// TableName specifies the table name for LookupCategory model
func (LookupCategory) TableName() string {
	return "lookup_categories"
}
