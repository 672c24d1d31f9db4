package services

import (
	"fmt"

	"project_flow_app_go/models"

	"gorm.io/gorm"
)

// The soft-delete lifecycle has two states, ACTIVE and INACTIVE, toggled by
// SoftDelete and Restore. ForceDelete is a separate irreversible purge that
// removes the row entirely and is blocked while protected inbound references
// exist, so historical records never point at vanished rows.

// protectedRef describes an inbound foreign key that blocks a force delete
type protectedRef struct {
	model  interface{}
	column string
	label  string
}

// SoftDelete transitions a record to INACTIVE. Dependents are not cascaded.
func SoftDelete(db *gorm.DB, record interface{}) error {
	result := db.Model(record).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to soft delete record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: record to delete", ErrReferenceNotFound)
	}
	return nil
}

// Restore transitions a record back to ACTIVE
func Restore(db *gorm.DB, record interface{}) error {
	result := db.Model(record).Update("is_active", true)
	if result.Error != nil {
		return fmt.Errorf("failed to restore record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: record to restore", ErrReferenceNotFound)
	}
	return nil
}

// ForceDelete permanently removes a record, bypassing the lifecycle. It fails
// with ErrReferenceInUse when protected inbound references exist. Subtask
// parent links are detached rather than protected, matching their nullable
// assignment semantics.
func ForceDelete(db *gorm.DB, record interface{}) error {
	id, err := recordID(record)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, ref := range protectedRefsFor(record) {
			var count int64
			if err := tx.Unscoped().Model(ref.model).
				Where(ref.column+" = ?", id).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check %s references: %w", ref.label, err)
			}
			if count > 0 {
				return fmt.Errorf("%w: %d %s still reference this record", ErrReferenceInUse, count, ref.label)
			}
		}

		// Detach nullable references before removal
		switch record.(type) {
		case *models.Task:
			if err := tx.Model(&models.Task{}).
				Where("parent_task_id = ?", id).
				Update("parent_task_id", nil).Error; err != nil {
				return fmt.Errorf("failed to detach subtasks: %w", err)
			}
		case *models.User:
			if err := tx.Model(&models.Task{}).
				Where("assigned_to_id = ?", id).
				Update("assigned_to_id", nil).Error; err != nil {
				return fmt.Errorf("failed to detach task assignments: %w", err)
			}
		}

		if err := tx.Unscoped().Delete(record).Error; err != nil {
			return fmt.Errorf("failed to force delete record: %w", err)
		}
		return nil
	})
}

// protectedRefsFor lists the inbound references that must be empty before a
// record of the given type may be purged
func protectedRefsFor(record interface{}) []protectedRef {
	switch record.(type) {
	case *models.LookupCategory:
		return []protectedRef{
			{&models.LookupValue{}, "category_id", "lookup values"},
		}
	case *models.LookupValue:
		return []protectedRef{
			{&models.LookupValue{}, "parent_id", "child lookup values"},
			{&models.Client{}, "industry_id", "clients"},
			{&models.Project{}, "status_id", "projects (status)"},
			{&models.Project{}, "priority_id", "projects (priority)"},
			{&models.ProjectMember{}, "role_id", "project members"},
			{&models.Task{}, "status_id", "tasks (status)"},
			{&models.Task{}, "priority_id", "tasks (priority)"},
			{&models.TimeEntry{}, "billing_status_id", "time entries"},
		}
	case *models.Client:
		return []protectedRef{
			{&models.Project{}, "client_id", "projects"},
		}
	case *models.Project:
		return []protectedRef{
			{&models.Task{}, "project_id", "tasks"},
			{&models.ProjectMember{}, "project_id", "project members"},
		}
	case *models.Task:
		return []protectedRef{
			{&models.TimeEntry{}, "task_id", "time entries"},
		}
	case *models.User:
		return []protectedRef{
			{&models.ProjectMember{}, "user_id", "project memberships"},
			{&models.TimeEntry{}, "user_id", "time entries"},
			{&models.Project{}, "manager_id", "managed projects"},
		}
	case *models.ProjectMember, *models.TimeEntry:
		return nil
	default:
		return nil
	}
}

// recordID extracts the primary key from a supported record type
func recordID(record interface{}) (string, error) {
	switch r := record.(type) {
	case *models.LookupCategory:
		return r.ID, nil
	case *models.LookupValue:
		return r.ID, nil
	case *models.Client:
		return r.ID, nil
	case *models.Project:
		return r.ID, nil
	case *models.ProjectMember:
		return r.ID, nil
	case *models.Task:
		return r.ID, nil
	case *models.TimeEntry:
		return r.ID, nil
	case *models.User:
		return r.ID, nil
	default:
		return "", fmt.Errorf("%w: unsupported record type %T", ErrValidation, record)
	}
}
