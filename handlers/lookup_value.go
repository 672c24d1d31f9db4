package handlers

import (
	"net/http"

	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type lookupValueRequest struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IsDefault   bool   `json:"is_default"`
	ParentID    string `json:"parent_id"`
	Notes       string `json:"notes"`
}

// ListLookupValuesHandler returns the values of a category identified by its
// code, ordered by (sort_order, name)
func ListLookupValuesHandler(c echo.Context) error {
	categoryCode := c.QueryParam("category")
	if categoryCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category query parameter is required")
	}

	includeInactive := c.QueryParam("include_inactive") == "true"
	values, err := services.GetLookupValues(db.DB, categoryCode, !includeInactive)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, values)
}

// LookupChoicesHandler returns the (id, name) choice list for a category,
// suitable for populating form selects
func LookupChoicesHandler(c echo.Context) error {
	categoryCode := c.QueryParam("category")
	if categoryCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category query parameter is required")
	}

	includeBlank := c.QueryParam("include_blank") == "true"
	choices, err := services.GetLookupChoices(db.DB, categoryCode, includeBlank)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, choices)
}

// GetLookupValueHandler returns one value with its category and children
func GetLookupValueHandler(c echo.Context) error {
	var value models.LookupValue
	err := db.DB.Preload("Category").Preload("Children").
		First(&value, "id = ?", c.Param("id")).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lookup value not found")
	}
	return c.JSON(http.StatusOK, value)
}

// CreateLookupValueHandler creates a value inside a category
func CreateLookupValueHandler(c echo.Context) error {
	var req lookupValueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user := middleware.GetCurrentUser(c)
	if !services.CanModifyRecord(user, false) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	auditCtx := middleware.GetAuditContext(c)
	value := models.LookupValue{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Code:        req.Code,
		Description: services.SanitizeUserText(req.Description),
		SortOrder:   req.SortOrder,
		Color:       req.Color,
		Icon:        req.Icon,
		IsDefault:   req.IsDefault,
		ParentID:    optionalID(req.ParentID),
		Notes:       services.SanitizeUserText(req.Notes),
		IsActive:    true,
		CreatedByID: auditCtx.ActorID(),
		UpdatedByID: auditCtx.ActorID(),
	}
	if err := services.SaveLookupValue(db.DB, &value); err != nil {
		return serviceError(err)
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "LookupValue", value.ID, value.Name, "Created lookup value", nil, value)

	return c.JSON(http.StatusCreated, value)
}

// UpdateLookupValueHandler updates a value. System values are restricted to
// admins. Setting is_default hands the default flag over from the previous
// holder atomically.
func UpdateLookupValueHandler(c echo.Context) error {
	var value models.LookupValue
	if err := db.DB.First(&value, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lookup value not found")
	}
	old := value

	user := middleware.GetCurrentUser(c)
	if !services.CanModifyRecord(user, value.IsSystem) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var req lookupValueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	auditCtx := middleware.GetAuditContext(c)
	value.Name = req.Name
	value.Code = req.Code
	value.Description = services.SanitizeUserText(req.Description)
	value.SortOrder = req.SortOrder
	value.Color = req.Color
	value.Icon = req.Icon
	value.IsDefault = req.IsDefault
	value.ParentID = optionalID(req.ParentID)
	value.Notes = services.SanitizeUserText(req.Notes)
	value.UpdatedByID = auditCtx.ActorID()

	if err := services.SaveLookupValue(db.DB, &value); err != nil {
		return serviceError(err)
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "LookupValue", value.ID, value.Name, "Updated lookup value", old, value)

	return c.JSON(http.StatusOK, value)
}

// DeleteLookupValueHandler soft deletes a value. The default flag is kept so
// restoring brings the value back exactly as it was.
func DeleteLookupValueHandler(c echo.Context) error {
	var value models.LookupValue
	if err := db.DB.First(&value, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lookup value not found")
	}

	user := middleware.GetCurrentUser(c)
	if !services.CanModifyRecord(user, value.IsSystem) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	if err := services.SoftDelete(db.DB, &value); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionSoftDelete, "LookupValue", value.ID, value.Name, "Deactivated lookup value", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// RestoreLookupValueHandler re-activates a soft deleted value
func RestoreLookupValueHandler(c echo.Context) error {
	var value models.LookupValue
	if err := db.DB.First(&value, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lookup value not found")
	}

	user := middleware.GetCurrentUser(c)
	if !services.CanModifyRecord(user, value.IsSystem) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	if err := services.Restore(db.DB, &value); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionRestore, "LookupValue", value.ID, value.Name, "Restored lookup value", nil, nil)

	return c.JSON(http.StatusOK, value)
}

// PurgeLookupValueHandler permanently removes a value. Blocked while any
// record still references it.
func PurgeLookupValueHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if !services.CanForceDelete(user) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var value models.LookupValue
	if err := db.DB.First(&value, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lookup value not found")
	}

	if err := services.ForceDelete(db.DB, &value); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionForceDelete, "LookupValue", value.ID, value.Name, "Permanently deleted lookup value", value, nil)

	return c.NoContent(http.StatusNoContent)
}

// ParentCandidatesHandler lists the values eligible to become the given
// value's parent (same category, excluding itself and its descendants)
func ParentCandidatesHandler(c echo.Context) error {
	var value models.LookupValue
	if err := db.DB.First(&value, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Lookup value not found")
	}

	candidates, err := services.ParentCandidates(db.DB, &value)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, candidates)
}
