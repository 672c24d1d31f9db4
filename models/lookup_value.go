package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LookupValue is one enumerated entry within a LookupCategory. Values may be
// hierarchical (parent within the same category) and at most one value per
// category carries IsDefault.
type LookupValue struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Category relationship (required)
	CategoryID string         `gorm:"type:uuid;not null;index:idx_lookup_value_cat_code,unique;index:idx_lookup_value_cat_default" json:"category_id"`
	Category   LookupCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Name        string `gorm:"not null" json:"name"`                                      // Display label
	Code        string `gorm:"not null;index:idx_lookup_value_cat_code,unique" json:"code"` // Upper-cased, unique within category
	Description string `gorm:"type:text" json:"description"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
	Color       string `gorm:"type:varchar(7)" json:"color"` // Optional hex color, e.g. #FF0000
	Icon        string `gorm:"type:varchar(50)" json:"icon"`
	IsDefault   bool   `gorm:"not null;default:false;index:idx_lookup_value_cat_default" json:"is_default"`
	IsSystem    bool   `gorm:"not null;default:false" json:"is_system"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`

	// Optional parent for hierarchical lookups, constrained to the same category
	ParentID *string      `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *LookupValue `gorm:"foreignKey:ParentID" json:"parent,omitempty"`

	// Audit columns
	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	UpdatedByID *string `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	Notes       string  `gorm:"type:text" json:"notes"`
	Metadata    string  `gorm:"type:text;default:'{}'" json:"metadata"` // JSON encoded

	Children []LookupValue `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// BeforeCreate hook to generate UUID
func (lv *LookupValue) BeforeCreate(tx *gorm.DB) error {
	if lv.ID == "" {
		lv.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave hook normalizes the code to upper case (idempotent)
func (lv *LookupValue) BeforeSave(tx *gorm.DB) error {
	lv.Code = strings.ToUpper(strings.TrimSpace(lv.Code))
	if lv.Metadata == "" {
		lv.Metadata = "{}"
	}
	return nil
}

// TableName specifies the table name for LookupValue model
func (LookupValue) TableName() string {
	return "lookup_values"
}
