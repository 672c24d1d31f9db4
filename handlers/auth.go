package handlers

import (
	"net/http"
	"strings"
	"time"

	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// Package level variable holding a real hash for timing mitigation
var globalDummyHash = "$2a$10$X7.G.t8./.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t" // Fallback

func init() {
	// Generate a real dummy hash at startup to ensure consistent timing
	hash, _ := services.HashPassword("dummy_password_for_timing_mitigation")
	if hash != "" {
		globalDummyHash = hash
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler authenticates a user and sets the session cookie
func LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	var user models.User
	err := db.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		// Timing attack mitigation: always run a bcrypt comparison
		services.CheckPassword(req.Password, globalDummyHash)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if !services.CheckPassword(req.Password, user.Password) {
		services.LogSecurityEvent("LOGIN_FAILED", user.ID, "invalid password")
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if !user.IsActive {
		return echo.NewHTTPError(http.StatusUnauthorized, "Your account has been deactivated")
	}

	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	now := time.Now().UTC()
	db.DB.Model(&user).Update("last_login_at", now)

	middleware.SetSessionCookie(c, session.Token, int(services.DefaultSessionDuration.Seconds()))

	auditCtx := services.AuditContext{
		UserID:    user.ID,
		UserName:  user.Name,
		UserRole:  user.Role,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionLogin, "User", user.ID, user.Name, "User logged in", nil, nil)

	return c.JSON(http.StatusOK, user)
}

// LogoutHandler destroys the session and clears the cookie
func LogoutHandler(c echo.Context) error {
	session := middleware.GetCurrentSession(c)
	if session != nil {
		if err := services.DeleteSession(db.DB, session.Token); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete session")
		}

		user := middleware.GetCurrentUser(c)
		if user != nil {
			auditCtx := middleware.GetAuditContext(c)
			services.LogAuditEvent(db.DB, auditCtx, models.AuditActionLogout, "User", user.ID, user.Name, "User logged out", nil, nil)
		}
	}

	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// MeHandler returns the authenticated user
func MeHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}
