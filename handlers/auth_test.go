package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"project_flow_app_go/db"
	"project_flow_app_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestLoginHandler(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, models.RoleMember)

	t.Run("ValidCredentials", func(t *testing.T) {
		body := `{"email":"` + user.Email + `","password":"password123"}`
		_, c, rec := setupEcho(http.MethodPost, "/login", strings.NewReader(body))

		assert.NoError(t, LoginHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		// Session cookie is set
		cookies := rec.Result().Cookies()
		var found bool
		for _, cookie := range cookies {
			if cookie.Name == "project_flow_session" && cookie.Value != "" {
				found = true
				assert.True(t, cookie.HttpOnly)
			}
		}
		assert.True(t, found)

		// Session row exists
		var count int64
		db.DB.Model(&models.Session{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Equal(t, int64(1), count)

		// Password never leaks in the response
		var payload map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		_, hasPassword := payload["password"]
		assert.False(t, hasPassword)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		body := `{"email":"` + user.Email + `","password":"wrong"}`
		_, c, _ := setupEcho(http.MethodPost, "/login", strings.NewReader(body))

		err := LoginHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		body := `{"email":"nobody@example.com","password":"password123"}`
		_, c, _ := setupEcho(http.MethodPost, "/login", strings.NewReader(body))

		err := LoginHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("DeactivatedAccount", func(t *testing.T) {
		db.DB.Model(user).Update("is_active", false)
		defer db.DB.Model(user).Update("is_active", true)

		body := `{"email":"` + user.Email + `","password":"password123"}`
		_, c, _ := setupEcho(http.MethodPost, "/login", strings.NewReader(body))

		err := LoginHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPost, "/login", strings.NewReader(`{}`))

		err := LoginHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}

func TestMeHandler(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, models.RoleManager)

	t.Run("Authenticated", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/me", nil)
		actAs(c, user)

		assert.NoError(t, MeHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var payload models.User
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, user.ID, payload.ID)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/me", nil)

		err := MeHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}
