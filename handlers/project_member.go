package handlers

import (
	"net/http"

	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type projectMemberRequest struct {
	UserID      string `json:"user_id"`
	RoleID      string `json:"role_id"`
	JoinDate    string `json:"join_date"`
	EndDate     string `json:"end_date"`
	BillingRate string `json:"billing_rate"`
	Notes       string `json:"notes"`
}

// ListProjectMembersHandler returns the memberships of a project
func ListProjectMembersHandler(c echo.Context) error {
	query := db.DB.Preload("User").Preload("Role").
		Where("project_id = ?", c.Param("id"))
	if c.QueryParam("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var members []models.ProjectMember
	if err := query.Order("created_at ASC").Find(&members).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load project members")
	}
	return c.JSON(http.StatusOK, members)
}

// AddProjectMemberHandler adds a user to a project. Role defaults to the
// PROJECT_ROLE category default. A user can only be added once per project.
func AddProjectMemberHandler(c echo.Context) error {
	var project models.Project
	if err := db.DB.First(&project, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}

	var req projectMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var count int64
	db.DB.Model(&models.User{}).Where("id = ?", req.UserID).Count(&count)
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if req.RoleID == "" {
		def, err := services.GetDefaultLookupValue(db.DB, models.LookupCategoryCodeProjectRole)
		if err != nil || def == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "No default project role configured")
		}
		req.RoleID = def.ID
	}
	if err := checkLookupRef(req.RoleID, models.LookupCategoryCodeProjectRole, "Role"); err != nil {
		return err
	}

	rate, err := parseOptionalDecimal(req.BillingRate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if rate != nil && rate.IsNegative() {
		return echo.NewHTTPError(http.StatusBadRequest, "Billing rate cannot be negative")
	}

	joinDate, err := parseOptionalDate(req.JoinDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	auditCtx := middleware.GetAuditContext(c)
	member := models.ProjectMember{
		ProjectID:   project.ID,
		UserID:      req.UserID,
		RoleID:      req.RoleID,
		EndDate:     endDate,
		BillingRate: rate,
		Notes:       services.SanitizeUserText(req.Notes),
		IsActive:    true,
		CreatedByID: auditCtx.ActorID(),
		UpdatedByID: auditCtx.ActorID(),
	}
	if joinDate != nil {
		member.JoinDate = *joinDate
	}

	if err := db.DB.Create(&member).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "User is already a member of this project")
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "ProjectMember", member.ID, "", "Added project member", nil, member)

	return c.JSON(http.StatusCreated, member)
}

// UpdateProjectMemberHandler updates a membership's role, dates and rate
func UpdateProjectMemberHandler(c echo.Context) error {
	var member models.ProjectMember
	if err := db.DB.First(&member, "id = ?", c.Param("memberId")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project member not found")
	}
	old := member

	var req projectMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.RoleID != "" {
		if err := checkLookupRef(req.RoleID, models.LookupCategoryCodeProjectRole, "Role"); err != nil {
			return err
		}
		member.RoleID = req.RoleID
	}

	rate, err := parseOptionalDecimal(req.BillingRate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if rate != nil && rate.IsNegative() {
		return echo.NewHTTPError(http.StatusBadRequest, "Billing rate cannot be negative")
	}
	member.BillingRate = rate

	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	member.EndDate = endDate
	member.Notes = services.SanitizeUserText(req.Notes)

	auditCtx := middleware.GetAuditContext(c)
	member.UpdatedByID = auditCtx.ActorID()

	if err := db.DB.Save(&member).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update project member")
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "ProjectMember", member.ID, "", "Updated project member", old, member)

	return c.JSON(http.StatusOK, member)
}

// RemoveProjectMemberHandler soft deletes a membership
func RemoveProjectMemberHandler(c echo.Context) error {
	var member models.ProjectMember
	if err := db.DB.First(&member, "id = ?", c.Param("memberId")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project member not found")
	}

	if err := services.SoftDelete(db.DB, &member); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionSoftDelete, "ProjectMember", member.ID, "", "Removed project member", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// RestoreProjectMemberHandler re-activates a membership
func RestoreProjectMemberHandler(c echo.Context) error {
	var member models.ProjectMember
	if err := db.DB.First(&member, "id = ?", c.Param("memberId")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project member not found")
	}

	if err := services.Restore(db.DB, &member); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionRestore, "ProjectMember", member.ID, "", "Restored project member", nil, nil)

	return c.JSON(http.StatusOK, member)
}
