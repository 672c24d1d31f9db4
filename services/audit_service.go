package services

import (
	"encoding/json"
	"log"
	"time"

	"project_flow_app_go/models"

	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging. It doubles
// as the actor identity used to stamp created_by/updated_by on records.
type AuditContext struct {
	UserID    string
	UserName  string
	UserRole  string
	IPAddress string
	UserAgent string
}

// ActorID returns the acting user id as a nullable reference
func (ctx AuditContext) ActorID() *string {
	return ptrIfNotEmpty(ctx.UserID)
}

// LogAuditEvent creates a new audit log entry asynchronously
func LogAuditEvent(
	db *gorm.DB,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	resourceName string,
	description string,
	oldValues interface{},
	newValues interface{},
) {
	// Run in goroutine to avoid blocking the request
	go func() {
		var oldJSON, newJSON string

		if oldValues != nil {
			if bytes, err := json.Marshal(oldValues); err == nil {
				oldJSON = string(bytes)
			}
		}

		if newValues != nil {
			if bytes, err := json.Marshal(newValues); err == nil {
				newJSON = string(bytes)
			}
		}

		auditLog := models.AuditLog{
			UserID:       ptrIfNotEmpty(ctx.UserID),
			UserName:     ctx.UserName,
			UserRole:     ctx.UserRole,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			ResourceName: resourceName,
			Action:       action,
			Description:  description,
			OldValues:    oldJSON,
			NewValues:    newJSON,
			IPAddress:    ctx.IPAddress,
			UserAgent:    ctx.UserAgent,
		}

		if err := db.Create(&auditLog).Error; err != nil {
			log.Printf("[AUDIT] Failed to create audit log: %v", err)
		}
	}()
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// AuditLogFilters holds filter options for querying audit logs
type AuditLogFilters struct {
	UserID       string
	ResourceType string
	Action       string
	DateFrom     time.Time
	DateTo       time.Time
}

// GetResourceAuditHistory retrieves the audit history for a specific resource
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// GetAuditLogs retrieves paginated audit logs
func GetAuditLogs(db *gorm.DB, filters AuditLogFilters, page, pageSize int) ([]models.AuditLog, int64, error) {
	query := db.Model(&models.AuditLog{})

	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("created_at <= ?", filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}
