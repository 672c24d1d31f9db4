package handlers

import (
	"net/http"
	"strings"

	"project_flow_app_go/config"
	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Notes    string `json:"notes"`
}

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleManager || role == models.RoleMember
}

// ListUsersHandler returns all users, optionally including inactive ones
func ListUsersHandler(c echo.Context) error {
	query := db.DB.Order("name ASC")
	if c.QueryParam("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load users")
	}
	return c.JSON(http.StatusOK, users)
}

// GetUserHandler returns a single user by id
func GetUserHandler(c echo.Context) error {
	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUserHandler creates a user account and sends the welcome email
func CreateUserHandler(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, email and password are required")
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}
	if !validRole(req.Role) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
	}

	hash, err := services.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     req.Role,
		IsActive: true,
		Notes:    services.SanitizeUserText(req.Notes),
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "A user with this email already exists")
	}

	if cfg, ok := c.Get("config").(*config.Config); ok {
		services.SendEmailAsync(cfg, services.BuildWelcomeEmail(cfg, user.Email, user.Name))
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "User", user.ID, user.Name, "Created user", nil, user)

	return c.JSON(http.StatusCreated, user)
}

// UpdateUserHandler updates a user's profile and role
func UpdateUserHandler(c echo.Context) error {
	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	old := user

	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if req.Name != "" {
		user.Name = strings.TrimSpace(req.Name)
	}
	if req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Role != "" {
		if !validRole(req.Role) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
		}
		user.Role = req.Role
	}
	if req.Password != "" {
		hash, err := services.HashPassword(req.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
		}
		user.Password = hash
	}
	user.Notes = services.SanitizeUserText(req.Notes)

	if err := db.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "A user with this email already exists")
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "User", user.ID, user.Name, "Updated user", old, user)

	return c.JSON(http.StatusOK, user)
}

// DeleteUserHandler deactivates a user account
func DeleteUserHandler(c echo.Context) error {
	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	current := middleware.GetCurrentUser(c)
	if current != nil && current.ID == user.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot deactivate your own account")
	}

	if err := services.SoftDelete(db.DB, &user); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionSoftDelete, "User", user.ID, user.Name, "Deactivated user", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// RestoreUserHandler re-activates a user account
func RestoreUserHandler(c echo.Context) error {
	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if err := services.Restore(db.DB, &user); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionRestore, "User", user.ID, user.Name, "Restored user", nil, nil)

	return c.JSON(http.StatusOK, user)
}

// PurgeUserHandler permanently removes a user account
func PurgeUserHandler(c echo.Context) error {
	current := middleware.GetCurrentUser(c)
	if !services.CanForceDelete(current) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if current.ID == user.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot delete your own account")
	}

	if err := services.ForceDelete(db.DB, &user); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionForceDelete, "User", user.ID, user.Name, "Permanently deleted user", user, nil)

	return c.NoContent(http.StatusNoContent)
}
