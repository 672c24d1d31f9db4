package handlers

import (
	"net/http"
	"strconv"

	"project_flow_app_go/db"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListAuditLogsHandler returns paginated audit logs with optional filters
func ListAuditLogsHandler(c echo.Context) error {
	filters := services.AuditLogFilters{
		UserID:       c.QueryParam("user_id"),
		ResourceType: c.QueryParam("resource_type"),
		Action:       c.QueryParam("action"),
	}
	if from := c.QueryParam("date_from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filters.DateFrom = t
	}
	if to := c.QueryParam("date_to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filters.DateTo = t
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	logs, total, err := services.GetAuditLogs(db.DB, filters, page, pageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load audit logs")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
	})
}

// ResourceAuditHistoryHandler returns the audit trail of one resource
func ResourceAuditHistoryHandler(c echo.Context) error {
	logs, err := services.GetResourceAuditHistory(db.DB, c.Param("resourceType"), c.Param("resourceId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load audit history")
	}
	return c.JSON(http.StatusOK, logs)
}
