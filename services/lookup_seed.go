package services

import (
	"fmt"
	"log"

	"project_flow_app_go/models"

	"gorm.io/gorm"
)

// seedValue describes one value of a seeded system category
type seedValue struct {
	Code      string
	Name      string
	SortOrder int
	IsDefault bool
	Color     string
}

// seedCategory describes a system category and its values
type seedCategory struct {
	Code        string
	Name        string
	Description string
	Values      []seedValue
}

// systemTaxonomy is the baseline lookup taxonomy seeded at startup. All
// entries are system-flagged, so only admins can modify them afterwards.
var systemTaxonomy = []seedCategory{
	{
		Code:        models.LookupCategoryCodeProjectStatus,
		Name:        "Project Status",
		Description: "Lifecycle states of a project",
		Values: []seedValue{
			{Code: "PLANNING", Name: "Planning", SortOrder: 1, IsDefault: true, Color: "#6B7280"},
			{Code: "ACTIVE", Name: "Active", SortOrder: 2, Color: "#10B981"},
			{Code: "ON_HOLD", Name: "On Hold", SortOrder: 3, Color: "#F59E0B"},
			{Code: "COMPLETED", Name: "Completed", SortOrder: 4, Color: "#3B82F6"},
			{Code: "CANCELLED", Name: "Cancelled", SortOrder: 5, Color: "#EF4444"},
		},
	},
	{
		Code:        models.LookupCategoryCodeTaskStatus,
		Name:        "Task Status",
		Description: "Workflow states of a task",
		Values: []seedValue{
			{Code: "TODO", Name: "To Do", SortOrder: 1, IsDefault: true},
			{Code: "IN_PROGRESS", Name: "In Progress", SortOrder: 2},
			{Code: "IN_REVIEW", Name: "In Review", SortOrder: 3},
			{Code: "BLOCKED", Name: "Blocked", SortOrder: 4},
			{Code: "COMPLETED", Name: "Completed", SortOrder: 5},
		},
	},
	{
		Code:        models.LookupCategoryCodePriority,
		Name:        "Priority",
		Description: "Priority levels shared by projects and tasks",
		Values: []seedValue{
			{Code: "LOW", Name: "Low", SortOrder: 1},
			{Code: "MEDIUM", Name: "Medium", SortOrder: 2, IsDefault: true},
			{Code: "HIGH", Name: "High", SortOrder: 3},
			{Code: "URGENT", Name: "Urgent", SortOrder: 4},
		},
	},
	{
		Code:        models.LookupCategoryCodeProjectRole,
		Name:        "Project Role",
		Description: "Roles a team member can hold on a project",
		Values: []seedValue{
			{Code: "MANAGER", Name: "Project Manager", SortOrder: 1},
			{Code: "DEVELOPER", Name: "Developer", SortOrder: 2, IsDefault: true},
			{Code: "DESIGNER", Name: "Designer", SortOrder: 3},
			{Code: "QA", Name: "Quality Assurance", SortOrder: 4},
			{Code: "CONSULTANT", Name: "Consultant", SortOrder: 5},
		},
	},
	{
		Code:        models.LookupCategoryCodeBillingStatus,
		Name:        "Billing Status",
		Description: "Billing states of a time entry",
		Values: []seedValue{
			{Code: "UNBILLED", Name: "Unbilled", SortOrder: 1, IsDefault: true},
			{Code: "BILLED", Name: "Billed", SortOrder: 2},
			{Code: "PAID", Name: "Paid", SortOrder: 3},
			{Code: "WRITTEN_OFF", Name: "Written Off", SortOrder: 4},
		},
	},
	{
		Code:        models.LookupCategoryCodeIndustry,
		Name:        "Industry",
		Description: "Client industry classification",
		Values: []seedValue{
			{Code: "TECHNOLOGY", Name: "Technology", SortOrder: 1},
			{Code: "FINANCE", Name: "Finance", SortOrder: 2},
			{Code: "HEALTHCARE", Name: "Healthcare", SortOrder: 3},
			{Code: "RETAIL", Name: "Retail", SortOrder: 4},
			{Code: "MANUFACTURING", Name: "Manufacturing", SortOrder: 5},
			{Code: "OTHER", Name: "Other", SortOrder: 99},
		},
	},
}

// SeedSystemLookups seeds the baseline taxonomy. Idempotent: categories that
// already exist are left untouched so admin customizations survive restarts.
func SeedSystemLookups(db *gorm.DB) error {
	for _, sc := range systemTaxonomy {
		if err := seedLookupCategory(db, sc); err != nil {
			log.Printf("Error seeding lookup category %s: %v", sc.Code, err)
			return err
		}
	}
	return nil
}

func seedLookupCategory(db *gorm.DB, sc seedCategory) error {
	var existing models.LookupCategory
	if err := db.Where("code = ?", sc.Code).First(&existing).Error; err == nil {
		return nil // Already seeded
	}

	category := models.LookupCategory{
		Name:        sc.Name,
		Code:        sc.Code,
		Description: sc.Description,
		IsSystem:    true,
		IsActive:    true,
	}
	if err := SaveLookupCategory(db, &category); err != nil {
		return fmt.Errorf("failed to seed category %s: %w", sc.Code, err)
	}

	for _, sv := range sc.Values {
		value := models.LookupValue{
			CategoryID: category.ID,
			Name:       sv.Name,
			Code:       sv.Code,
			SortOrder:  sv.SortOrder,
			Color:      sv.Color,
			IsDefault:  sv.IsDefault,
			IsSystem:   true,
			IsActive:   true,
		}
		if err := SaveLookupValue(db, &value); err != nil {
			return fmt.Errorf("failed to seed value %s/%s: %w", sc.Code, sv.Code, err)
		}
	}

	return nil
}
