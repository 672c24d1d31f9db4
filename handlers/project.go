package handlers

import (
	"net/http"
	"strings"

	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type projectRequest struct {
	Name           string `json:"name"`
	Code           string `json:"code"`
	Description    string `json:"description"`
	ClientID       string `json:"client_id"`
	StatusID       string `json:"status_id"`
	PriorityID     string `json:"priority_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	ManagerID      string `json:"manager_id"`
	BudgetAmount   string `json:"budget_amount"`
	BillingRate    string `json:"billing_rate"`
	EstimatedHours string `json:"estimated_hours"`
	Notes          string `json:"notes"`
}

// checkLookupRef validates that a lookup value id belongs to the given
// category
func checkLookupRef(id, categoryCode, label string) error {
	var count int64
	db.DB.Model(&models.LookupValue{}).
		Joins("JOIN lookup_categories ON lookup_categories.id = lookup_values.category_id").
		Where("lookup_values.id = ?", id).
		Where("lookup_categories.code = ?", categoryCode).
		Count(&count)
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, label+" lookup value not found")
	}
	return nil
}

func (req *projectRequest) apply(project *models.Project) error {
	project.Name = strings.TrimSpace(req.Name)
	project.Code = req.Code
	project.Description = services.SanitizeUserText(req.Description)
	project.ClientID = req.ClientID
	project.StatusID = req.StatusID
	project.PriorityID = req.PriorityID
	project.ManagerID = req.ManagerID
	project.Notes = services.SanitizeUserText(req.Notes)

	if project.Name == "" || project.Code == "" || project.ClientID == "" || project.ManagerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, code, client and manager are required")
	}

	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if start != nil && end != nil && end.Before(*start) {
		return echo.NewHTTPError(http.StatusBadRequest, "End date cannot be before start date")
	}
	project.StartDate = start
	project.EndDate = end

	for _, field := range []struct {
		raw  string
		dest **decimal.Decimal
	}{
		{req.BudgetAmount, &project.BudgetAmount},
		{req.BillingRate, &project.BillingRate},
		{req.EstimatedHours, &project.EstimatedHours},
	} {
		d, err := parseOptionalDecimal(field.raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if d != nil && d.IsNegative() {
			return echo.NewHTTPError(http.StatusBadRequest, "Amounts cannot be negative")
		}
		*field.dest = d
	}
	return nil
}

// resolveProjectDefaults fills missing status and priority from the category
// defaults
func resolveProjectDefaults(project *models.Project) error {
	if project.StatusID == "" {
		def, err := services.GetDefaultLookupValue(db.DB, models.LookupCategoryCodeProjectStatus)
		if err != nil || def == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "No default project status configured")
		}
		project.StatusID = def.ID
	}
	if project.PriorityID == "" {
		def, err := services.GetDefaultLookupValue(db.DB, models.LookupCategoryCodePriority)
		if err != nil || def == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "No default priority configured")
		}
		project.PriorityID = def.ID
	}
	return nil
}

func checkProjectRefs(project *models.Project) error {
	var count int64
	db.DB.Model(&models.Client{}).Where("id = ?", project.ClientID).Count(&count)
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}
	db.DB.Model(&models.User{}).Where("id = ?", project.ManagerID).Count(&count)
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Manager not found")
	}
	if err := checkLookupRef(project.StatusID, models.LookupCategoryCodeProjectStatus, "Status"); err != nil {
		return err
	}
	return checkLookupRef(project.PriorityID, models.LookupCategoryCodePriority, "Priority")
}

// ListProjectsHandler returns projects with client, status and priority
func ListProjectsHandler(c echo.Context) error {
	query := db.DB.Preload("Client").Preload("Status").Preload("Priority").Preload("Manager").
		Order("name ASC")
	if c.QueryParam("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load projects")
	}
	return c.JSON(http.StatusOK, projects)
}

// GetProjectHandler returns one project with its relations
func GetProjectHandler(c echo.Context) error {
	var project models.Project
	err := db.DB.Preload("Client").Preload("Status").Preload("Priority").Preload("Manager").
		Preload("Memberships.User").Preload("Memberships.Role").
		First(&project, "id = ?", c.Param("id")).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}
	return c.JSON(http.StatusOK, project)
}

// CreateProjectHandler creates a project. Missing status and priority fall
// back to the category defaults.
func CreateProjectHandler(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	auditCtx := middleware.GetAuditContext(c)
	project := models.Project{IsActive: true, CreatedByID: auditCtx.ActorID(), UpdatedByID: auditCtx.ActorID()}
	if err := req.apply(&project); err != nil {
		return err
	}
	if err := resolveProjectDefaults(&project); err != nil {
		return err
	}
	if err := checkProjectRefs(&project); err != nil {
		return err
	}

	if err := db.DB.Create(&project).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "A project with this code already exists")
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "Project", project.ID, project.Name, "Created project", nil, project)

	return c.JSON(http.StatusCreated, project)
}

// UpdateProjectHandler updates a project
func UpdateProjectHandler(c echo.Context) error {
	var project models.Project
	if err := db.DB.First(&project, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}
	old := project

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := req.apply(&project); err != nil {
		return err
	}
	if err := resolveProjectDefaults(&project); err != nil {
		return err
	}
	if err := checkProjectRefs(&project); err != nil {
		return err
	}

	auditCtx := middleware.GetAuditContext(c)
	project.UpdatedByID = auditCtx.ActorID()

	if err := db.DB.Save(&project).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "A project with this code already exists")
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Project", project.ID, project.Name, "Updated project", old, project)

	return c.JSON(http.StatusOK, project)
}

// DeleteProjectHandler soft deletes a project
func DeleteProjectHandler(c echo.Context) error {
	var project models.Project
	if err := db.DB.First(&project, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}

	if err := services.SoftDelete(db.DB, &project); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionSoftDelete, "Project", project.ID, project.Name, "Deactivated project", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// RestoreProjectHandler re-activates a soft deleted project
func RestoreProjectHandler(c echo.Context) error {
	var project models.Project
	if err := db.DB.First(&project, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}

	if err := services.Restore(db.DB, &project); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionRestore, "Project", project.ID, project.Name, "Restored project", nil, nil)

	return c.JSON(http.StatusOK, project)
}

// PurgeProjectHandler permanently removes a project. Blocked while tasks or
// memberships still reference it.
func PurgeProjectHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if !services.CanForceDelete(user) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var project models.Project
	if err := db.DB.First(&project, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}

	if err := services.ForceDelete(db.DB, &project); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionForceDelete, "Project", project.ID, project.Name, "Permanently deleted project", project, nil)

	return c.NoContent(http.StatusNoContent)
}
