package handlers

import (
	"net/http"

	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type lookupCategoryRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

// ListLookupCategoriesHandler returns all categories ordered by name
func ListLookupCategoriesHandler(c echo.Context) error {
	query := db.DB.Order("name ASC")
	if c.QueryParam("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var categories []models.LookupCategory
	if err := query.Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load categories")
	}
	return c.JSON(http.StatusOK, categories)
}

// GetLookupCategoryHandler returns one category with its values
func GetLookupCategoryHandler(c echo.Context) error {
	var category models.LookupCategory
	err := db.DB.
		Preload("Values", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC").Order("name ASC")
		}).
		First(&category, "id = ?", c.Param("id")).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}
	return c.JSON(http.StatusOK, category)
}

// CreateLookupCategoryHandler creates a new category
func CreateLookupCategoryHandler(c echo.Context) error {
	var req lookupCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user := middleware.GetCurrentUser(c)
	if !services.CanModifyRecord(user, false) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	auditCtx := middleware.GetAuditContext(c)
	category := models.LookupCategory{
		Name:        req.Name,
		Code:        req.Code,
		Description: services.SanitizeUserText(req.Description),
		Notes:       services.SanitizeUserText(req.Notes),
		IsActive:    true,
		CreatedByID: auditCtx.ActorID(),
		UpdatedByID: auditCtx.ActorID(),
	}
	if err := services.SaveLookupCategory(db.DB, &category); err != nil {
		return serviceError(err)
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "LookupCategory", category.ID, category.Name, "Created lookup category", nil, category)

	return c.JSON(http.StatusCreated, category)
}

// UpdateLookupCategoryHandler updates an existing category. System categories
// are restricted to admins.
func UpdateLookupCategoryHandler(c echo.Context) error {
	var category models.LookupCategory
	if err := db.DB.First(&category, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}
	old := category

	user := middleware.GetCurrentUser(c)
	if !services.CanModifyRecord(user, category.IsSystem) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var req lookupCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	auditCtx := middleware.GetAuditContext(c)
	category.Name = req.Name
	category.Code = req.Code
	category.Description = services.SanitizeUserText(req.Description)
	category.Notes = services.SanitizeUserText(req.Notes)
	category.UpdatedByID = auditCtx.ActorID()

	if err := services.SaveLookupCategory(db.DB, &category); err != nil {
		return serviceError(err)
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "LookupCategory", category.ID, category.Name, "Updated lookup category", old, category)

	return c.JSON(http.StatusOK, category)
}

// DeleteLookupCategoryHandler soft deletes a category
func DeleteLookupCategoryHandler(c echo.Context) error {
	var category models.LookupCategory
	if err := db.DB.First(&category, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}

	user := middleware.GetCurrentUser(c)
	if !services.CanModifyRecord(user, category.IsSystem) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	if err := services.SoftDelete(db.DB, &category); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionSoftDelete, "LookupCategory", category.ID, category.Name, "Deactivated lookup category", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// RestoreLookupCategoryHandler re-activates a soft deleted category
func RestoreLookupCategoryHandler(c echo.Context) error {
	var category models.LookupCategory
	if err := db.DB.First(&category, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}

	user := middleware.GetCurrentUser(c)
	if !services.CanModifyRecord(user, category.IsSystem) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	if err := services.Restore(db.DB, &category); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionRestore, "LookupCategory", category.ID, category.Name, "Restored lookup category", nil, nil)

	return c.JSON(http.StatusOK, category)
}

// PurgeLookupCategoryHandler permanently removes a category. Blocked while
// any lookup values still belong to it.
func PurgeLookupCategoryHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if !services.CanForceDelete(user) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var category models.LookupCategory
	if err := db.DB.First(&category, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}

	if err := services.ForceDelete(db.DB, &category); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionForceDelete, "LookupCategory", category.ID, category.Name, "Permanently deleted lookup category", category, nil)

	return c.NoContent(http.StatusNoContent)
}
