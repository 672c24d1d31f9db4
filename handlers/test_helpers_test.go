package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"project_flow_app_go/config"
	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.LookupCategory{},
		&models.LookupValue{},
		&models.Client{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TimeEntry{},
		&models.AuditLog{},
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	err = services.SeedSystemLookups(testDB)
	assert.NoError(t, err)

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
	})

	return e, c, rec
}

func createTestUser(t *testing.T, role string) *models.User {
	hash, err := services.HashPassword("password123")
	assert.NoError(t, err)

	user := &models.User{
		Name:     "Test " + role,
		Email:    role + "+" + uuid.New().String()[:8] + "@example.com",
		Password: hash,
		Role:     role,
		IsActive: true,
	}
	assert.NoError(t, db.DB.Create(user).Error)
	return user
}

// actAs stores the user and audit context on the echo context the way the
// auth middleware chain would
func actAs(c echo.Context, user *models.User) {
	c.Set(middleware.ContextKeyUser, user)
	c.Set(middleware.ContextKeyAuditContext, services.AuditContext{
		UserID:   user.ID,
		UserName: user.Name,
		UserRole: user.Role,
	})
}
