package handlers

import (
	"net/http"
	"strings"

	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type taskRequest struct {
	ProjectID      string `json:"project_id"`
	ParentTaskID   string `json:"parent_task_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	StatusID       string `json:"status_id"`
	PriorityID     string `json:"priority_id"`
	AssignedToID   string `json:"assigned_to_id"`
	DueDate        string `json:"due_date"`
	EstimatedHours string `json:"estimated_hours"`
	Billable       *bool  `json:"billable"`
	BillingRate    string `json:"billing_rate"`
	Notes          string `json:"notes"`
}

func (req *taskRequest) apply(task *models.Task) error {
	task.ProjectID = req.ProjectID
	task.ParentTaskID = optionalID(req.ParentTaskID)
	task.Title = strings.TrimSpace(req.Title)
	task.Description = services.SanitizeUserText(req.Description)
	task.StatusID = req.StatusID
	task.PriorityID = req.PriorityID
	task.AssignedToID = optionalID(req.AssignedToID)
	task.Notes = services.SanitizeUserText(req.Notes)
	if req.Billable != nil {
		task.Billable = *req.Billable
	}

	if task.Title == "" || task.ProjectID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title and project are required")
	}

	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	task.DueDate = due

	estimated, err := parseOptionalDecimal(req.EstimatedHours)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if estimated != nil && estimated.IsNegative() {
		return echo.NewHTTPError(http.StatusBadRequest, "Estimated hours cannot be negative")
	}
	task.EstimatedHours = estimated

	rate, err := parseOptionalDecimal(req.BillingRate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if rate != nil && rate.IsNegative() {
		return echo.NewHTTPError(http.StatusBadRequest, "Billing rate cannot be negative")
	}
	task.BillingRate = rate

	return nil
}

// resolveTaskDefaults fills missing status and priority from the category
// defaults
func resolveTaskDefaults(task *models.Task) error {
	if task.StatusID == "" {
		def, err := services.GetDefaultLookupValue(db.DB, models.LookupCategoryCodeTaskStatus)
		if err != nil || def == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "No default task status configured")
		}
		task.StatusID = def.ID
	}
	if task.PriorityID == "" {
		def, err := services.GetDefaultLookupValue(db.DB, models.LookupCategoryCodePriority)
		if err != nil || def == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "No default priority configured")
		}
		task.PriorityID = def.ID
	}
	return nil
}

func checkTaskRefs(task *models.Task) error {
	var count int64
	db.DB.Model(&models.Project{}).Where("id = ?", task.ProjectID).Count(&count)
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}
	if task.ParentTaskID != nil {
		db.DB.Model(&models.Task{}).
			Where("id = ? AND project_id = ?", *task.ParentTaskID, task.ProjectID).
			Count(&count)
		if count == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent task must belong to the same project")
		}
		if task.ID != "" && *task.ParentTaskID == task.ID {
			return echo.NewHTTPError(http.StatusBadRequest, "A task cannot be its own parent")
		}
	}
	if task.AssignedToID != nil {
		db.DB.Model(&models.User{}).Where("id = ?", *task.AssignedToID).Count(&count)
		if count == 0 {
			return echo.NewHTTPError(http.StatusNotFound, "Assignee not found")
		}
	}
	if err := checkLookupRef(task.StatusID, models.LookupCategoryCodeTaskStatus, "Status"); err != nil {
		return err
	}
	return checkLookupRef(task.PriorityID, models.LookupCategoryCodePriority, "Priority")
}

// ListTasksHandler returns tasks with their relations, filterable by project
// and assignee
func ListTasksHandler(c echo.Context) error {
	query := db.DB.Preload("Status").Preload("Priority").Preload("AssignedTo").
		Order("created_at DESC")
	if c.QueryParam("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if projectID := c.QueryParam("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if assigneeID := c.QueryParam("assigned_to_id"); assigneeID != "" {
		query = query.Where("assigned_to_id = ?", assigneeID)
	}

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load tasks")
	}
	return c.JSON(http.StatusOK, tasks)
}

// GetTaskHandler returns one task with subtasks and relations
func GetTaskHandler(c echo.Context) error {
	var task models.Task
	err := db.DB.Preload("Project").Preload("Status").Preload("Priority").
		Preload("AssignedTo").Preload("Subtasks").
		First(&task, "id = ?", c.Param("id")).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, task)
}

// CreateTaskHandler creates a task. Missing status and priority fall back to
// the category defaults.
func CreateTaskHandler(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	auditCtx := middleware.GetAuditContext(c)
	task := models.Task{Billable: true, IsActive: true, CreatedByID: auditCtx.ActorID(), UpdatedByID: auditCtx.ActorID()}
	if err := req.apply(&task); err != nil {
		return err
	}
	if err := resolveTaskDefaults(&task); err != nil {
		return err
	}
	if err := checkTaskRefs(&task); err != nil {
		return err
	}

	if err := db.DB.Create(&task).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create task")
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "Task", task.ID, task.Title, "Created task", nil, task)

	return c.JSON(http.StatusCreated, task)
}

// UpdateTaskHandler updates a task. ActualHours is not writable here, it is
// maintained from time entries.
func UpdateTaskHandler(c echo.Context) error {
	var task models.Task
	if err := db.DB.First(&task, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	old := task

	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.ProjectID == "" {
		req.ProjectID = task.ProjectID
	}
	if err := req.apply(&task); err != nil {
		return err
	}
	if err := resolveTaskDefaults(&task); err != nil {
		return err
	}
	if err := checkTaskRefs(&task); err != nil {
		return err
	}

	auditCtx := middleware.GetAuditContext(c)
	task.UpdatedByID = auditCtx.ActorID()

	if err := db.DB.Save(&task).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update task")
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Task", task.ID, task.Title, "Updated task", old, task)

	return c.JSON(http.StatusOK, task)
}

// DeleteTaskHandler soft deletes a task
func DeleteTaskHandler(c echo.Context) error {
	var task models.Task
	if err := db.DB.First(&task, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}

	if err := services.SoftDelete(db.DB, &task); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionSoftDelete, "Task", task.ID, task.Title, "Deactivated task", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// RestoreTaskHandler re-activates a soft deleted task
func RestoreTaskHandler(c echo.Context) error {
	var task models.Task
	if err := db.DB.First(&task, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}

	if err := services.Restore(db.DB, &task); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionRestore, "Task", task.ID, task.Title, "Restored task", nil, nil)

	return c.JSON(http.StatusOK, task)
}

// PurgeTaskHandler permanently removes a task. Blocked while time entries
// still reference it, subtask links are detached.
func PurgeTaskHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if !services.CanForceDelete(user) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var task models.Task
	if err := db.DB.First(&task, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}

	if err := services.ForceDelete(db.DB, &task); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionForceDelete, "Task", task.ID, task.Title, "Permanently deleted task", task, nil)

	return c.NoContent(http.StatusNoContent)
}
