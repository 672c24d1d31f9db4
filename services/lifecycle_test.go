package services

import (
	"testing"

	"project_flow_app_go/models"

	"github.com/stretchr/testify/assert"
)

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	db := setupSeededDB()
	f := createFixture(db)

	assert.NoError(t, SoftDelete(db, &f.Client))

	var client models.Client
	db.First(&client, "id = ?", f.Client.ID)
	assert.False(t, client.IsActive)

	assert.NoError(t, Restore(db, &f.Client))
	db.First(&client, "id = ?", f.Client.ID)
	assert.True(t, client.IsActive)
}

func TestSoftDeleteMissingRecord(t *testing.T) {
	db := setupTestDB()

	missing := models.Client{ID: "no-such-id"}
	assert.ErrorIs(t, SoftDelete(db, &missing), ErrReferenceNotFound)
	assert.ErrorIs(t, Restore(db, &missing), ErrReferenceNotFound)
}

func TestForceDeleteBlockedByReferences(t *testing.T) {
	db := setupSeededDB()
	f := createFixture(db)

	t.Run("ClientWithProjects", func(t *testing.T) {
		assert.ErrorIs(t, ForceDelete(db, &f.Client), ErrReferenceInUse)
	})

	t.Run("ProjectWithTasks", func(t *testing.T) {
		assert.ErrorIs(t, ForceDelete(db, &f.Project), ErrReferenceInUse)
	})

	t.Run("LookupValueInUse", func(t *testing.T) {
		var status models.LookupValue
		db.First(&status, "id = ?", f.Project.StatusID)
		assert.ErrorIs(t, ForceDelete(db, &status), ErrReferenceInUse)
	})

	t.Run("CategoryWithValues", func(t *testing.T) {
		category, err := GetLookupCategory(db, models.LookupCategoryCodePriority)
		assert.NoError(t, err)
		assert.ErrorIs(t, ForceDelete(db, category), ErrReferenceInUse)
	})
}

func TestForceDeleteRemovesUnreferencedRecord(t *testing.T) {
	db := setupSeededDB()

	category := createTestCategory(db, "Scratch", "SCRATCH")
	value := models.LookupValue{CategoryID: category.ID, Name: "Temp", Code: "TEMP"}
	assert.NoError(t, SaveLookupValue(db, &value))

	assert.NoError(t, ForceDelete(db, &value))

	var count int64
	db.Unscoped().Model(&models.LookupValue{}).Where("id = ?", value.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// With its values gone the category can be purged too
	assert.NoError(t, ForceDelete(db, &category))
}

func TestForceDeleteDetachesSubtasks(t *testing.T) {
	db := setupSeededDB()
	f := createFixture(db)

	subtask := models.Task{
		ProjectID:    f.Project.ID,
		ParentTaskID: &f.Task.ID,
		Title:        "Subtask",
		StatusID:     f.Task.StatusID,
		PriorityID:   f.Task.PriorityID,
		Billable:     true,
		IsActive:     true,
	}
	db.Create(&subtask)

	assert.NoError(t, ForceDelete(db, &f.Task))

	var reloaded models.Task
	db.First(&reloaded, "id = ?", subtask.ID)
	assert.Nil(t, reloaded.ParentTaskID)
}

func TestForceDeleteTaskBlockedByTimeEntries(t *testing.T) {
	db := setupSeededDB()
	f := createFixture(db)

	entry := f.newEntry("1")
	assert.NoError(t, CreateTimeEntry(db, &entry))

	assert.ErrorIs(t, ForceDelete(db, &f.Task), ErrReferenceInUse)

	// Even a soft deleted entry still protects the task
	assert.NoError(t, SoftDeleteTimeEntry(db, &entry))
	assert.ErrorIs(t, ForceDelete(db, &f.Task), ErrReferenceInUse)

	// Purging the entry unblocks the task
	assert.NoError(t, ForceDeleteTimeEntry(db, &entry))
	assert.NoError(t, ForceDelete(db, &f.Task))
}

func TestCapabilities(t *testing.T) {
	admin := &models.User{Role: models.RoleAdmin}
	manager := &models.User{Role: models.RoleManager}
	member := &models.User{Role: models.RoleMember}

	t.Run("SystemRecords", func(t *testing.T) {
		assert.True(t, CanModifyRecord(admin, true))
		assert.False(t, CanModifyRecord(manager, true))
		assert.False(t, CanModifyRecord(member, true))
	})

	t.Run("OrdinaryRecords", func(t *testing.T) {
		assert.True(t, CanModifyRecord(admin, false))
		assert.True(t, CanModifyRecord(manager, false))
		assert.False(t, CanModifyRecord(member, false))
	})

	t.Run("ForceDelete", func(t *testing.T) {
		assert.True(t, CanForceDelete(admin))
		assert.False(t, CanForceDelete(manager))
		assert.False(t, CanForceDelete(member))
		assert.False(t, CanForceDelete(nil))
	})
}
