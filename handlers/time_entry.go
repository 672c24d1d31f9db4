package handlers

import (
	"net/http"

	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type timeEntryRequest struct {
	TaskID          string          `json:"task_id"`
	UserID          string          `json:"user_id"`
	Date            string          `json:"date"`
	Hours           decimal.Decimal `json:"hours"`
	Description     string          `json:"description"`
	Billable        *bool           `json:"billable"`
	BillingRate     string          `json:"billing_rate"`
	BillingStatusID string          `json:"billing_status_id"`
	Notes           string          `json:"notes"`
}

func (req *timeEntryRequest) apply(entry *models.TimeEntry) error {
	entry.TaskID = req.TaskID
	entry.Hours = req.Hours
	entry.Description = services.SanitizeUserText(req.Description)
	entry.Notes = services.SanitizeUserText(req.Notes)
	if req.Billable != nil {
		entry.Billable = *req.Billable
	}

	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		entry.Date = date
	}

	rate, err := parseOptionalDecimal(req.BillingRate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry.BillingRate = rate

	if req.BillingStatusID != "" {
		entry.BillingStatusID = req.BillingStatusID
	}
	return nil
}

// resolveBillingStatusDefault fills a missing billing status from the
// BILLING_STATUS category default (UNBILLED in the seeded taxonomy)
func resolveBillingStatusDefault(entry *models.TimeEntry) error {
	if entry.BillingStatusID != "" {
		return nil
	}
	def, err := services.GetDefaultLookupValue(db.DB, models.LookupCategoryCodeBillingStatus)
	if err != nil || def == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No default billing status configured")
	}
	entry.BillingStatusID = def.ID
	return nil
}

// ListTimeEntriesHandler returns entries matching the query filters.
// Non-admin members only see their own entries.
func ListTimeEntriesHandler(c echo.Context) error {
	filters := services.TimeEntryFilters{
		TaskID:          c.QueryParam("task_id"),
		ProjectID:       c.QueryParam("project_id"),
		UserID:          c.QueryParam("user_id"),
		ClientID:        c.QueryParam("client_id"),
		BillingStatusID: c.QueryParam("billing_status_id"),
		DateFrom:        c.QueryParam("date_from"),
		DateTo:          c.QueryParam("date_to"),
		IncludeInactive: c.QueryParam("include_inactive") == "true",
	}

	user := middleware.GetCurrentUser(c)
	if user != nil && user.Role == models.RoleMember {
		filters.UserID = user.ID
	}

	entries, err := services.ListTimeEntries(db.DB, filters)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// GetTimeEntryHandler returns one time entry with its relations
func GetTimeEntryHandler(c echo.Context) error {
	var entry models.TimeEntry
	err := db.DB.Preload("Task").Preload("User").Preload("BillingStatus").
		First(&entry, "id = ?", c.Param("id")).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Time entry not found")
	}

	user := middleware.GetCurrentUser(c)
	if user != nil && user.Role == models.RoleMember && entry.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}
	return c.JSON(http.StatusOK, entry)
}

// CreateTimeEntryHandler records time against a task. Members always log
// time as themselves.
func CreateTimeEntryHandler(c echo.Context) error {
	var req timeEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user := middleware.GetCurrentUser(c)
	auditCtx := middleware.GetAuditContext(c)

	entry := models.TimeEntry{Billable: true, IsActive: true, CreatedByID: auditCtx.ActorID(), UpdatedByID: auditCtx.ActorID()}
	if err := req.apply(&entry); err != nil {
		return err
	}

	entry.UserID = req.UserID
	if user != nil && (entry.UserID == "" || user.Role == models.RoleMember) {
		entry.UserID = user.ID
	}

	if err := resolveBillingStatusDefault(&entry); err != nil {
		return err
	}

	if err := services.CreateTimeEntry(db.DB, &entry); err != nil {
		return serviceError(err)
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "TimeEntry", entry.ID, entry.Description, "Created time entry", nil, entry)

	return c.JSON(http.StatusCreated, entry)
}

// UpdateTimeEntryHandler updates a time entry and keeps the task hours
// aggregate in sync
func UpdateTimeEntryHandler(c echo.Context) error {
	var entry models.TimeEntry
	if err := db.DB.First(&entry, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Time entry not found")
	}
	old := entry

	user := middleware.GetCurrentUser(c)
	if user != nil && user.Role == models.RoleMember && entry.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var req timeEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.TaskID == "" {
		req.TaskID = entry.TaskID
	}
	if err := req.apply(&entry); err != nil {
		return err
	}
	if err := resolveBillingStatusDefault(&entry); err != nil {
		return err
	}

	auditCtx := middleware.GetAuditContext(c)
	entry.UpdatedByID = auditCtx.ActorID()

	if err := services.UpdateTimeEntry(db.DB, &entry); err != nil {
		return serviceError(err)
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "TimeEntry", entry.ID, entry.Description, "Updated time entry", old, entry)

	return c.JSON(http.StatusOK, entry)
}

// DeleteTimeEntryHandler soft deletes a time entry, removing its hours from
// the task aggregate
func DeleteTimeEntryHandler(c echo.Context) error {
	var entry models.TimeEntry
	if err := db.DB.First(&entry, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Time entry not found")
	}

	user := middleware.GetCurrentUser(c)
	if user != nil && user.Role == models.RoleMember && entry.UserID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	if err := services.SoftDeleteTimeEntry(db.DB, &entry); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionSoftDelete, "TimeEntry", entry.ID, entry.Description, "Deactivated time entry", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// RestoreTimeEntryHandler re-activates a time entry, adding its hours back
// to the task aggregate
func RestoreTimeEntryHandler(c echo.Context) error {
	var entry models.TimeEntry
	if err := db.DB.First(&entry, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Time entry not found")
	}

	if err := services.RestoreTimeEntry(db.DB, &entry); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionRestore, "TimeEntry", entry.ID, entry.Description, "Restored time entry", nil, nil)

	return c.JSON(http.StatusOK, entry)
}

// PurgeTimeEntryHandler permanently removes a time entry
func PurgeTimeEntryHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if !services.CanForceDelete(user) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var entry models.TimeEntry
	if err := db.DB.First(&entry, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Time entry not found")
	}

	if err := services.ForceDeleteTimeEntry(db.DB, &entry); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionForceDelete, "TimeEntry", entry.ID, entry.Description, "Permanently deleted time entry", entry, nil)

	return c.NoContent(http.StatusNoContent)
}
