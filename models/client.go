package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client represents a client organization that projects are done for
type Client struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"not null" json:"name"`
	Code string `gorm:"not null;uniqueIndex" json:"code"`

	// Industry (references LookupValue in the INDUSTRY category)
	IndustryID *string      `gorm:"type:uuid;index" json:"industry_id,omitempty"`
	Industry   *LookupValue `gorm:"foreignKey:IndustryID" json:"industry,omitempty"`

	PrimaryContactName  string `json:"primary_contact_name"`
	PrimaryContactEmail string `json:"primary_contact_email"`
	PrimaryContactPhone string `gorm:"type:varchar(50)" json:"primary_contact_phone"`
	BillingAddress      string `gorm:"type:text" json:"billing_address"`
	BillingEmail        string `json:"billing_email"`

	// Default hourly billing rate, the last fallback of the rate chain
	DefaultBillingRate *decimal.Decimal `gorm:"type:decimal(10,2)" json:"default_billing_rate,omitempty"`
	PaymentTerms       string           `gorm:"type:varchar(100)" json:"payment_terms"` // e.g. "Net 30"

	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Audit columns
	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	UpdatedByID *string `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	Notes       string  `gorm:"type:text" json:"notes"`
	Metadata    string  `gorm:"type:text;default:'{}'" json:"metadata"` // JSON encoded

	// Relationships
	Projects []Project `gorm:"foreignKey:ClientID" json:"projects,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave hook normalizes the client code
func (c *Client) BeforeSave(tx *gorm.DB) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Metadata == "" {
		c.Metadata = "{}"
	}
	return nil
}

// TableName specifies the table name for Client model
func (Client) TableName() string {
	return "clients"
}
