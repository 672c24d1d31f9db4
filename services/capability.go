package services

import (
	"project_flow_app_go/models"
)

// CanModifyRecord is the single capability check consulted by every mutating
// entry point: system-flagged records may only be modified by admins.
// Non-system records are open to admins and managers.
func CanModifyRecord(user *models.User, isSystem bool) bool {
	if user == nil {
		return false
	}
	if isSystem {
		return user.Role == models.RoleAdmin
	}
	return user.Role == models.RoleAdmin || user.Role == models.RoleManager
}

// CanForceDelete gates the irreversible purge operation behind a distinct
// permission so it cannot be confused with soft delete at call sites.
func CanForceDelete(user *models.User) bool {
	return user != nil && user.Role == models.RoleAdmin
}
