package services

import (
	"testing"

	"project_flow_app_go/models"

	"github.com/stretchr/testify/assert"
)

func TestSeedSystemLookups(t *testing.T) {
	db := setupTestDB()

	assert.NoError(t, SeedSystemLookups(db))

	var catCount int64
	db.Model(&models.LookupCategory{}).Count(&catCount)
	assert.Equal(t, int64(6), catCount)

	t.Run("CategoriesAreSystemFlagged", func(t *testing.T) {
		var nonSystem int64
		db.Model(&models.LookupCategory{}).Where("is_system = ?", false).Count(&nonSystem)
		assert.Equal(t, int64(0), nonSystem)
	})

	t.Run("EachCategoryWithDefaultHasExactlyOne", func(t *testing.T) {
		for _, code := range []string{
			models.LookupCategoryCodeProjectStatus,
			models.LookupCategoryCodeTaskStatus,
			models.LookupCategoryCodePriority,
			models.LookupCategoryCodeProjectRole,
			models.LookupCategoryCodeBillingStatus,
		} {
			def, err := GetDefaultLookupValue(db, code)
			assert.NoError(t, err)
			assert.NotNil(t, def, code)
		}
	})

	t.Run("ExpectedDefaults", func(t *testing.T) {
		def, _ := GetDefaultLookupValue(db, models.LookupCategoryCodeProjectStatus)
		assert.Equal(t, "PLANNING", def.Code)
		def, _ = GetDefaultLookupValue(db, models.LookupCategoryCodeTaskStatus)
		assert.Equal(t, "TODO", def.Code)
		def, _ = GetDefaultLookupValue(db, models.LookupCategoryCodeBillingStatus)
		assert.Equal(t, "UNBILLED", def.Code)
	})

	t.Run("SeedIsIdempotent", func(t *testing.T) {
		assert.NoError(t, SeedSystemLookups(db))

		var after int64
		db.Model(&models.LookupCategory{}).Count(&after)
		assert.Equal(t, catCount, after)

		var valueCount int64
		db.Model(&models.LookupValue{}).Count(&valueCount)
		assert.Equal(t, int64(29), valueCount)
	})

	t.Run("SeedPreservesCustomizations", func(t *testing.T) {
		value, err := GetLookupValue(db, models.LookupCategoryCodePriority, "URGENT")
		assert.NoError(t, err)

		value.Name = "Critical"
		assert.NoError(t, SaveLookupValue(db, value))

		assert.NoError(t, SeedSystemLookups(db))
		reloaded, err := GetLookupValue(db, models.LookupCategoryCodePriority, "URGENT")
		assert.NoError(t, err)
		assert.Equal(t, "Critical", reloaded.Name)
	})
}
