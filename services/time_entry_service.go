package services

import (
	"fmt"
	"strings"

	"project_flow_app_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	maxEntryHours = decimal.NewFromInt(24)
)

// CreateTimeEntry validates and persists a time entry, then brings the parent
// task's actual_hours aggregate up to date inside the same transaction.
func CreateTimeEntry(db *gorm.DB, entry *models.TimeEntry) error {
	if err := validateTimeEntry(entry); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := checkEntryReferences(tx, entry); err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create time entry: %w", err)
		}
		return recomputeTaskHours(tx, entry.TaskID)
	})
}

// UpdateTimeEntry persists changes to an entry and refreshes the actual_hours
// aggregate of every task involved (the entry may have moved between tasks).
func UpdateTimeEntry(db *gorm.DB, entry *models.TimeEntry) error {
	if err := validateTimeEntry(entry); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var previous models.TimeEntry
		if err := tx.First(&previous, "id = ?", entry.ID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: time entry %s", ErrReferenceNotFound, entry.ID)
			}
			return fmt.Errorf("failed to fetch time entry: %w", err)
		}
		if err := checkEntryReferences(tx, entry); err != nil {
			return err
		}
		if err := tx.Save(entry).Error; err != nil {
			return fmt.Errorf("failed to update time entry: %w", err)
		}
		if err := recomputeTaskHours(tx, entry.TaskID); err != nil {
			return err
		}
		if previous.TaskID != entry.TaskID {
			return recomputeTaskHours(tx, previous.TaskID)
		}
		return nil
	})
}

// SoftDeleteTimeEntry marks the entry inactive and removes its hours from the
// task aggregate
func SoftDeleteTimeEntry(db *gorm.DB, entry *models.TimeEntry) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := SoftDelete(tx, entry); err != nil {
			return err
		}
		return recomputeTaskHours(tx, entry.TaskID)
	})
}

// RestoreTimeEntry re-activates the entry and adds its hours back to the task
// aggregate
func RestoreTimeEntry(db *gorm.DB, entry *models.TimeEntry) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := Restore(tx, entry); err != nil {
			return err
		}
		return recomputeTaskHours(tx, entry.TaskID)
	})
}

// ForceDeleteTimeEntry purges the entry row and refreshes the task aggregate
func ForceDeleteTimeEntry(db *gorm.DB, entry *models.TimeEntry) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := ForceDelete(tx, entry); err != nil {
			return err
		}
		return recomputeTaskHours(tx, entry.TaskID)
	})
}

// TimeEntryFilters holds filter options for querying time entries
type TimeEntryFilters struct {
	TaskID          string
	ProjectID       string
	UserID          string
	ClientID        string
	BillingStatusID string
	DateFrom        string // YYYY-MM-DD
	DateTo          string
	IncludeInactive bool
}

// ListTimeEntries returns entries matching the filters, newest first.
// Inactive entries are excluded unless explicitly requested.
func ListTimeEntries(db *gorm.DB, filters TimeEntryFilters) ([]models.TimeEntry, error) {
	query := db.Model(&models.TimeEntry{}).
		Preload("Task").
		Preload("User").
		Preload("BillingStatus")

	if !filters.IncludeInactive {
		query = query.Where("time_entries.is_active = ?", true)
	}
	if filters.TaskID != "" {
		query = query.Where("time_entries.task_id = ?", filters.TaskID)
	}
	if filters.UserID != "" {
		query = query.Where("time_entries.user_id = ?", filters.UserID)
	}
	if filters.BillingStatusID != "" {
		query = query.Where("time_entries.billing_status_id = ?", filters.BillingStatusID)
	}
	if filters.ProjectID != "" || filters.ClientID != "" {
		query = query.Joins("JOIN tasks ON tasks.id = time_entries.task_id")
		if filters.ProjectID != "" {
			query = query.Where("tasks.project_id = ?", filters.ProjectID)
		}
		if filters.ClientID != "" {
			query = query.Joins("JOIN projects ON projects.id = tasks.project_id").
				Where("projects.client_id = ?", filters.ClientID)
		}
	}
	if filters.DateFrom != "" {
		query = query.Where("time_entries.date >= ?", filters.DateFrom)
	}
	if filters.DateTo != "" {
		query = query.Where("time_entries.date <= ?", filters.DateTo)
	}

	var entries []models.TimeEntry
	if err := query.Order("time_entries.date DESC").Order("time_entries.created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return entries, nil
}

// validateTimeEntry enforces the field constraints: hours in (0, 24],
// non-negative rate, required description
func validateTimeEntry(entry *models.TimeEntry) error {
	if entry.Hours.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: hours must be greater than zero", ErrValidation)
	}
	if entry.Hours.GreaterThan(maxEntryHours) {
		return fmt.Errorf("%w: hours cannot exceed 24", ErrValidation)
	}
	if strings.TrimSpace(entry.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if entry.BillingRate != nil && entry.BillingRate.IsNegative() {
		return fmt.Errorf("%w: billing rate cannot be negative", ErrValidation)
	}
	if entry.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	return nil
}

// checkEntryReferences verifies the task, user and billing status exist
func checkEntryReferences(tx *gorm.DB, entry *models.TimeEntry) error {
	var count int64
	if err := tx.Model(&models.Task{}).Where("id = ?", entry.TaskID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check task reference: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: task %s", ErrReferenceNotFound, entry.TaskID)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", entry.UserID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check user reference: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: user %s", ErrReferenceNotFound, entry.UserID)
	}

	if err := tx.Model(&models.LookupValue{}).
		Joins("JOIN lookup_categories ON lookup_categories.id = lookup_values.category_id").
		Where("lookup_values.id = ?", entry.BillingStatusID).
		Where("lookup_categories.code = ?", models.LookupCategoryCodeBillingStatus).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check billing status reference: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: billing status %s", ErrReferenceNotFound, entry.BillingStatusID)
	}
	return nil
}

// recomputeTaskHours maintains Task.ActualHours as a live aggregate of the
// task's active time entries. Recomputing inside the mutating transaction
// keeps create, update, delete and restore symmetric.
func recomputeTaskHours(tx *gorm.DB, taskID string) error {
	var total *float64
	err := tx.Model(&models.TimeEntry{}).
		Where("task_id = ? AND is_active = ?", taskID, true).
		Select("SUM(hours)").
		Scan(&total).Error
	if err != nil {
		return fmt.Errorf("failed to sum task hours: %w", err)
	}

	hours := decimal.Zero
	if total != nil {
		hours = decimal.NewFromFloat(*total).Round(2)
	}

	if err := tx.Model(&models.Task{}).
		Where("id = ?", taskID).
		Update("actual_hours", hours).Error; err != nil {
		return fmt.Errorf("failed to update task actual hours: %w", err)
	}
	return nil
}
