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

// buildTaskChain creates a client/project/task chain for time entry tests
func buildTaskChain(t *testing.T, manager *models.User) *models.Task {
	client := models.Client{Name: "Globex", Code: "GLOBEX", IsActive: true}
	assert.NoError(t, db.DB.Create(&client).Error)

	status, err := services.GetDefaultLookupValue(db.DB, models.LookupCategoryCodeProjectStatus)
	assert.NoError(t, err)
	priority, err := services.GetDefaultLookupValue(db.DB, models.LookupCategoryCodePriority)
	assert.NoError(t, err)
	taskStatus, err := services.GetDefaultLookupValue(db.DB, models.LookupCategoryCodeTaskStatus)
	assert.NoError(t, err)

	project := models.Project{
		Name: "Rollout", Code: "ROLL", ClientID: client.ID,
		StatusID: status.ID, PriorityID: priority.ID, ManagerID: manager.ID, IsActive: true,
	}
	assert.NoError(t, db.DB.Create(&project).Error)

	task := models.Task{
		ProjectID: project.ID, Title: "Configure servers",
		StatusID: taskStatus.ID, PriorityID: priority.ID, Billable: true, IsActive: true,
	}
	assert.NoError(t, db.DB.Create(&task).Error)
	return &task
}

func TestCreateTimeEntryHandler(t *testing.T) {
	setupTestDB(t)
	manager := createTestUser(t, models.RoleManager)
	member := createTestUser(t, models.RoleMember)
	task := buildTaskChain(t, manager)

	t.Run("MemberLogsTimeAsThemselves", func(t *testing.T) {
		// user_id in the payload is ignored for members
		body := `{"task_id":"` + task.ID + `","user_id":"` + manager.ID + `","date":"2026-08-14","hours":3,"description":"Setup"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/time-entries", strings.NewReader(body))
		actAs(c, member)

		assert.NoError(t, CreateTimeEntryHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var created models.TimeEntry
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, member.ID, created.UserID)

		// Billing status defaulted to UNBILLED
		var status models.LookupValue
		db.DB.First(&status, "id = ?", created.BillingStatusID)
		assert.Equal(t, "UNBILLED", status.Code)

		// Task aggregate updated
		var reloaded models.Task
		db.DB.First(&reloaded, "id = ?", task.ID)
		assert.Equal(t, "3.00", reloaded.ActualHours.StringFixed(2))
	})

	t.Run("ValidationErrorIs400", func(t *testing.T) {
		body := `{"task_id":"` + task.ID + `","date":"2026-08-14","hours":30,"description":"Too long"}`
		_, c, _ := setupEcho(http.MethodPost, "/api/time-entries", strings.NewReader(body))
		actAs(c, member)

		err := CreateTimeEntryHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("MemberCannotTouchOthersEntries", func(t *testing.T) {
		entry := models.TimeEntry{}
		db.DB.Where("user_id = ?", member.ID).First(&entry)

		other := createTestUser(t, models.RoleMember)
		_, c, _ := setupEcho(http.MethodDelete, "/api/time-entries/"+entry.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(entry.ID)
		actAs(c, other)

		err := DeleteTimeEntryHandler(c)
		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("ManagerSeesAllEntries", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/time-entries", nil)
		actAs(c, manager)

		assert.NoError(t, ListTimeEntriesHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var entries []models.TimeEntry
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		assert.Len(t, entries, 1)
	})
}
