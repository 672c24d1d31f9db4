package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectMember links a user to a project with a role and an optional
// member-specific billing rate that overrides the project rate.
type ProjectMember struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProjectID string  `gorm:"type:uuid;not null;index:idx_member_project_user,unique" json:"project_id"`
	Project   Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    string  `gorm:"type:uuid;not null;index:idx_member_project_user,unique" json:"user_id"`
	User      User    `gorm:"foreignKey:UserID" json:"user,omitempty"`

	// Role (references LookupValue in the PROJECT_ROLE category)
	RoleID string      `gorm:"type:uuid;not null" json:"role_id"`
	Role   LookupValue `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	JoinDate time.Time  `gorm:"not null" json:"join_date"`
	EndDate  *time.Time `json:"end_date,omitempty"` // Date when the member left or will leave

	BillingRate *decimal.Decimal `gorm:"type:decimal(10,2)" json:"billing_rate,omitempty"`

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Audit columns
	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	UpdatedByID *string `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	Notes       string  `gorm:"type:text" json:"notes"`
	Metadata    string  `gorm:"type:text;default:'{}'" json:"metadata"` // JSON encoded
}

// BeforeCreate hook to generate UUID and default join date
func (pm *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	if pm.ID == "" {
		pm.ID = uuid.New().String()
	}
	if pm.JoinDate.IsZero() {
		pm.JoinDate = time.Now().UTC()
	}
	return nil
}

// BeforeSave hook ensures metadata defaults
func (pm *ProjectMember) BeforeSave(tx *gorm.DB) error {
	if pm.Metadata == "" {
		pm.Metadata = "{}"
	}
	return nil
}

// IsActiveMember checks if the membership is currently in effect
func (pm *ProjectMember) IsActiveMember() bool {
	return pm.IsActive && (pm.EndDate == nil || pm.EndDate.After(time.Now()))
}

// TableName specifies the table name for ProjectMember model
func (ProjectMember) TableName() string {
	return "project_members"
}
