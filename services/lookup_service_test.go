package services

import (
	"testing"

	"project_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func createTestCategory(db *gorm.DB, name, code string) models.LookupCategory {
	category := models.LookupCategory{Name: name, Code: code, IsActive: true}
	if err := SaveLookupCategory(db, &category); err != nil {
		panic(err)
	}
	return category
}

func TestSaveLookupCategory(t *testing.T) {
	db := setupTestDB()

	t.Run("NormalizesCode", func(t *testing.T) {
		category := models.LookupCategory{Name: "Deal Stage", Code: "  deal_stage "}
		err := SaveLookupCategory(db, &category)
		assert.NoError(t, err)
		assert.Equal(t, "DEAL_STAGE", category.Code)
	})

	t.Run("RejectsMissingName", func(t *testing.T) {
		category := models.LookupCategory{Code: "NO_NAME"}
		err := SaveLookupCategory(db, &category)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("RejectsDuplicateCode", func(t *testing.T) {
		dup := models.LookupCategory{Name: "Other Name", Code: "deal_stage"}
		err := SaveLookupCategory(db, &dup)
		assert.ErrorIs(t, err, ErrUniquenessViolation)
	})

	t.Run("RejectsDuplicateName", func(t *testing.T) {
		dup := models.LookupCategory{Name: "Deal Stage", Code: "OTHER_CODE"}
		err := SaveLookupCategory(db, &dup)
		assert.ErrorIs(t, err, ErrUniquenessViolation)
	})

	t.Run("DuplicateCheckSurvivesSoftDelete", func(t *testing.T) {
		var category models.LookupCategory
		db.Where("code = ?", "DEAL_STAGE").First(&category)
		assert.NoError(t, SoftDelete(db, &category))

		dup := models.LookupCategory{Name: "Deal Stage", Code: "DEAL_STAGE"}
		err := SaveLookupCategory(db, &dup)
		assert.ErrorIs(t, err, ErrUniquenessViolation)
	})

	t.Run("UpdateKeepsOwnCode", func(t *testing.T) {
		category := createTestCategory(db, "Region", "REGION")
		category.Description = "Sales regions"
		err := SaveLookupCategory(db, &category)
		assert.NoError(t, err)
	})
}

func TestSaveLookupValue(t *testing.T) {
	db := setupTestDB()
	category := createTestCategory(db, "Lead Source", "LEAD_SOURCE")

	t.Run("NormalizesCode", func(t *testing.T) {
		value := models.LookupValue{CategoryID: category.ID, Name: "Referral", Code: " referral "}
		err := SaveLookupValue(db, &value)
		assert.NoError(t, err)
		assert.Equal(t, "REFERRAL", value.Code)
	})

	t.Run("RejectsUnknownCategory", func(t *testing.T) {
		value := models.LookupValue{CategoryID: "missing-category", Name: "X", Code: "X"}
		err := SaveLookupValue(db, &value)
		assert.ErrorIs(t, err, ErrReferenceNotFound)
	})

	t.Run("RejectsDuplicateCodeWithinCategory", func(t *testing.T) {
		dup := models.LookupValue{CategoryID: category.ID, Name: "Referral 2", Code: "REFERRAL"}
		err := SaveLookupValue(db, &dup)
		assert.ErrorIs(t, err, ErrUniquenessViolation)
	})

	t.Run("AllowsSameCodeAcrossCategories", func(t *testing.T) {
		other := createTestCategory(db, "Churn Reason", "CHURN_REASON")
		value := models.LookupValue{CategoryID: other.ID, Name: "Referral", Code: "REFERRAL"}
		err := SaveLookupValue(db, &value)
		assert.NoError(t, err)
	})
}

func TestSingleDefaultPerCategory(t *testing.T) {
	db := setupTestDB()
	category := createTestCategory(db, "Ticket Status", "TICKET_STATUS")

	first := models.LookupValue{CategoryID: category.ID, Name: "Open", Code: "OPEN", IsDefault: true}
	assert.NoError(t, SaveLookupValue(db, &first))

	second := models.LookupValue{CategoryID: category.ID, Name: "Closed", Code: "CLOSED"}
	assert.NoError(t, SaveLookupValue(db, &second))

	t.Run("DefaultIsSet", func(t *testing.T) {
		def, err := GetDefaultLookupValue(db, "TICKET_STATUS")
		assert.NoError(t, err)
		assert.Equal(t, first.ID, def.ID)
	})

	t.Run("DefaultHandsOverAtomically", func(t *testing.T) {
		second.IsDefault = true
		assert.NoError(t, SaveLookupValue(db, &second))

		var defaults []models.LookupValue
		db.Where("category_id = ? AND is_default = ?", category.ID, true).Find(&defaults)
		assert.Len(t, defaults, 1)
		assert.Equal(t, second.ID, defaults[0].ID)
	})

	t.Run("ResavingDefaultKeepsFlag", func(t *testing.T) {
		second.Name = "Closed (final)"
		assert.NoError(t, SaveLookupValue(db, &second))

		def, err := GetDefaultLookupValue(db, "TICKET_STATUS")
		assert.NoError(t, err)
		assert.Equal(t, second.ID, def.ID)
	})

	t.Run("NoDefaultReturnsNil", func(t *testing.T) {
		other := createTestCategory(db, "Tag", "TAG")
		value := models.LookupValue{CategoryID: other.ID, Name: "Red", Code: "RED"}
		assert.NoError(t, SaveLookupValue(db, &value))

		def, err := GetDefaultLookupValue(db, "TAG")
		assert.NoError(t, err)
		assert.Nil(t, def)
	})
}

func TestParentAssignment(t *testing.T) {
	db := setupTestDB()
	category := createTestCategory(db, "Location", "LOCATION")
	other := createTestCategory(db, "Department", "DEPARTMENT")

	root := models.LookupValue{CategoryID: category.ID, Name: "Europe", Code: "EU"}
	assert.NoError(t, SaveLookupValue(db, &root))
	child := models.LookupValue{CategoryID: category.ID, Name: "Germany", Code: "DE", ParentID: &root.ID}
	assert.NoError(t, SaveLookupValue(db, &child))
	grandchild := models.LookupValue{CategoryID: category.ID, Name: "Berlin", Code: "BER", ParentID: &child.ID}
	assert.NoError(t, SaveLookupValue(db, &grandchild))

	t.Run("RejectsSelfParent", func(t *testing.T) {
		root.ParentID = &root.ID
		err := SaveLookupValue(db, &root)
		assert.ErrorIs(t, err, ErrValidation)
		root.ParentID = nil
	})

	t.Run("RejectsCycle", func(t *testing.T) {
		root.ParentID = &grandchild.ID
		err := SaveLookupValue(db, &root)
		assert.ErrorIs(t, err, ErrValidation)
		root.ParentID = nil
	})

	t.Run("RejectsCrossCategoryParent", func(t *testing.T) {
		foreign := models.LookupValue{CategoryID: other.ID, Name: "Sales", Code: "SALES"}
		assert.NoError(t, SaveLookupValue(db, &foreign))

		value := models.LookupValue{CategoryID: category.ID, Name: "Asia", Code: "ASIA", ParentID: &foreign.ID}
		err := SaveLookupValue(db, &value)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("RejectsMissingParent", func(t *testing.T) {
		missing := "no-such-id"
		value := models.LookupValue{CategoryID: category.ID, Name: "Oceania", Code: "OC", ParentID: &missing}
		err := SaveLookupValue(db, &value)
		assert.ErrorIs(t, err, ErrReferenceNotFound)
	})

	t.Run("ParentCandidatesExcludeDescendants", func(t *testing.T) {
		candidates, err := ParentCandidates(db, &root)
		assert.NoError(t, err)
		for _, candidate := range candidates {
			assert.NotEqual(t, root.ID, candidate.ID)
			assert.NotEqual(t, child.ID, candidate.ID)
			assert.NotEqual(t, grandchild.ID, candidate.ID)
		}
	})
}

func TestGetLookupValues(t *testing.T) {
	db := setupTestDB()
	category := createTestCategory(db, "Severity", "SEVERITY")

	high := models.LookupValue{CategoryID: category.ID, Name: "High", Code: "HIGH", SortOrder: 2}
	low := models.LookupValue{CategoryID: category.ID, Name: "Low", Code: "LOW", SortOrder: 1}
	retired := models.LookupValue{CategoryID: category.ID, Name: "Retired", Code: "RETIRED", SortOrder: 3}
	assert.NoError(t, SaveLookupValue(db, &high))
	assert.NoError(t, SaveLookupValue(db, &low))
	assert.NoError(t, SaveLookupValue(db, &retired))
	assert.NoError(t, SoftDelete(db, &retired))

	t.Run("OrderedBySortOrder", func(t *testing.T) {
		values, err := GetLookupValues(db, "SEVERITY", true)
		assert.NoError(t, err)
		assert.Len(t, values, 2)
		assert.Equal(t, "LOW", values[0].Code)
		assert.Equal(t, "HIGH", values[1].Code)
	})

	t.Run("IncludesInactiveWhenAsked", func(t *testing.T) {
		values, err := GetLookupValues(db, "SEVERITY", false)
		assert.NoError(t, err)
		assert.Len(t, values, 3)
	})

	t.Run("LookupByCaseInsensitiveCode", func(t *testing.T) {
		value, err := GetLookupValue(db, "severity", "high")
		assert.NoError(t, err)
		assert.Equal(t, high.ID, value.ID)
	})

	t.Run("MissingValueReturnsNil", func(t *testing.T) {
		value, err := GetLookupValue(db, "SEVERITY", "MISSING")
		assert.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("MissingCategoryReturnsNil", func(t *testing.T) {
		category, err := GetLookupCategory(db, "NO_SUCH_CATEGORY")
		assert.NoError(t, err)
		assert.Nil(t, category)
	})
}

func TestGetLookupChoices(t *testing.T) {
	db := setupTestDB()
	category := createTestCategory(db, "Channel", "CHANNEL")

	email := models.LookupValue{CategoryID: category.ID, Name: "Email", Code: "EMAIL", SortOrder: 1}
	phone := models.LookupValue{CategoryID: category.ID, Name: "Phone", Code: "PHONE", SortOrder: 2}
	assert.NoError(t, SaveLookupValue(db, &email))
	assert.NoError(t, SaveLookupValue(db, &phone))

	t.Run("WithoutBlank", func(t *testing.T) {
		choices, err := GetLookupChoices(db, "CHANNEL", false)
		assert.NoError(t, err)
		assert.Len(t, choices, 2)
		assert.Equal(t, "Email", choices[0].Name)
	})

	t.Run("WithBlank", func(t *testing.T) {
		choices, err := GetLookupChoices(db, "CHANNEL", true)
		assert.NoError(t, err)
		assert.Len(t, choices, 3)
		assert.Equal(t, "", choices[0].ID)
		assert.Equal(t, BlankChoiceLabel, choices[0].Name)
	})

	t.Run("ValidateLookupValue", func(t *testing.T) {
		assert.True(t, ValidateLookupValue(db, "CHANNEL", "EMAIL"))
		assert.False(t, ValidateLookupValue(db, "CHANNEL", "FAX"))

		assert.NoError(t, SoftDelete(db, &phone))
		assert.False(t, ValidateLookupValue(db, "CHANNEL", "PHONE"))
	})
}
