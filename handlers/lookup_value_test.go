package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"project_flow_app_go/db"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCreateLookupValueHandler(t *testing.T) {
	setupTestDB(t)
	manager := createTestUser(t, models.RoleManager)

	category := models.LookupCategory{Name: "Expense Type", Code: "EXPENSE_TYPE", IsActive: true}
	assert.NoError(t, services.SaveLookupCategory(db.DB, &category))

	t.Run("CreatesAndNormalizes", func(t *testing.T) {
		body := `{"category_id":"` + category.ID + `","name":"Travel","code":"travel","is_default":true}`
		_, c, rec := setupEcho(http.MethodPost, "/api/lookup-values", strings.NewReader(body))
		actAs(c, manager)

		err := CreateLookupValueHandler(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created models.LookupValue
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "TRAVEL", created.Code)
		assert.True(t, created.IsDefault)
	})

	t.Run("DuplicateCodeConflicts", func(t *testing.T) {
		body := `{"category_id":"` + category.ID + `","name":"Travel 2","code":"TRAVEL"}`
		_, c, _ := setupEcho(http.MethodPost, "/api/lookup-values", strings.NewReader(body))
		actAs(c, manager)

		err := CreateLookupValueHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, httpErr.Code)
	})

	t.Run("UnknownCategoryIs404", func(t *testing.T) {
		body := `{"category_id":"missing","name":"X","code":"X"}`
		_, c, _ := setupEcho(http.MethodPost, "/api/lookup-values", strings.NewReader(body))
		actAs(c, manager)

		err := CreateLookupValueHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})

	t.Run("DefaultHandsOver", func(t *testing.T) {
		body := `{"category_id":"` + category.ID + `","name":"Meals","code":"MEALS","is_default":true}`
		_, c, rec := setupEcho(http.MethodPost, "/api/lookup-values", strings.NewReader(body))
		actAs(c, manager)

		assert.NoError(t, CreateLookupValueHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var defaults []models.LookupValue
		db.DB.Where("category_id = ? AND is_default = ?", category.ID, true).Find(&defaults)
		assert.Len(t, defaults, 1)
		assert.Equal(t, "MEALS", defaults[0].Code)
	})
}

func TestSystemLookupValuePermissions(t *testing.T) {
	setupTestDB(t)
	manager := createTestUser(t, models.RoleManager)
	admin := createTestUser(t, models.RoleAdmin)

	value, err := services.GetLookupValue(db.DB, models.LookupCategoryCodePriority, "LOW")
	assert.NoError(t, err)

	body := `{"category_id":"` + value.CategoryID + `","name":"Lowest","code":"LOW"}`

	t.Run("ManagerCannotEditSystemValue", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPut, "/api/lookup-values/"+value.ID, strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(value.ID)
		actAs(c, manager)

		err := UpdateLookupValueHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("AdminCanEditSystemValue", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPut, "/api/lookup-values/"+value.ID, strings.NewReader(body))
		c.SetParamNames("id")
		c.SetParamValues(value.ID)
		actAs(c, admin)

		assert.NoError(t, UpdateLookupValueHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ManagerCannotPurge", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodDelete, "/api/lookup-values/"+value.ID+"/purge", nil)
		c.SetParamNames("id")
		c.SetParamValues(value.ID)
		actAs(c, manager)

		err := PurgeLookupValueHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})
}

func TestLookupValueLifecycleHandlers(t *testing.T) {
	setupTestDB(t)
	admin := createTestUser(t, models.RoleAdmin)

	category := models.LookupCategory{Name: "Office", Code: "OFFICE", IsActive: true}
	assert.NoError(t, services.SaveLookupCategory(db.DB, &category))
	value := models.LookupValue{CategoryID: category.ID, Name: "Berlin", Code: "BER", IsActive: true}
	assert.NoError(t, services.SaveLookupValue(db.DB, &value))

	t.Run("SoftDelete", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodDelete, "/api/lookup-values/"+value.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(value.ID)
		actAs(c, admin)

		assert.NoError(t, DeleteLookupValueHandler(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		var reloaded models.LookupValue
		db.DB.First(&reloaded, "id = ?", value.ID)
		assert.False(t, reloaded.IsActive)
	})

	t.Run("Restore", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/lookup-values/"+value.ID+"/restore", nil)
		c.SetParamNames("id")
		c.SetParamValues(value.ID)
		actAs(c, admin)

		assert.NoError(t, RestoreLookupValueHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var reloaded models.LookupValue
		db.DB.First(&reloaded, "id = ?", value.ID)
		assert.True(t, reloaded.IsActive)
	})

	t.Run("Purge", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodDelete, "/api/lookup-values/"+value.ID+"/purge", nil)
		c.SetParamNames("id")
		c.SetParamValues(value.ID)
		actAs(c, admin)

		assert.NoError(t, PurgeLookupValueHandler(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		var count int64
		db.DB.Unscoped().Model(&models.LookupValue{}).Where("id = ?", value.ID).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}

func TestListLookupValuesHandler(t *testing.T) {
	setupTestDB(t)
	admin := createTestUser(t, models.RoleAdmin)

	t.Run("RequiresCategoryParam", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/lookup-values", nil)
		actAs(c, admin)

		err := ListLookupValuesHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("ReturnsSeededValuesInOrder", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/lookup-values?category=PRIORITY", nil)
		actAs(c, admin)

		assert.NoError(t, ListLookupValuesHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var values []models.LookupValue
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &values))
		assert.Len(t, values, 4)
		assert.Equal(t, "LOW", values[0].Code)
	})
}
