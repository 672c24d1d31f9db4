package services

import (
	"fmt"
	"strings"

	"project_flow_app_go/models"

	"gorm.io/gorm"
)

// Choice is an (id, name) pair suitable for building form select lists
type Choice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BlankChoiceLabel is the sentinel label for the optional blank choice
const BlankChoiceLabel = "---------"

// GetLookupCategory fetches a category by its canonical code.
// Returns nil (no error) when the category does not exist.
func GetLookupCategory(db *gorm.DB, code string) (*models.LookupCategory, error) {
	var category models.LookupCategory
	err := db.Where("code = ?", normalizeCode(code)).First(&category).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lookup category: %w", err)
	}
	return &category, nil
}

// GetLookupValue fetches a specific value by category code and value code.
// Returns nil (no error) when no such value exists.
func GetLookupValue(db *gorm.DB, categoryCode, valueCode string) (*models.LookupValue, error) {
	var value models.LookupValue
	err := db.
		Joins("JOIN lookup_categories ON lookup_categories.id = lookup_values.category_id").
		Where("lookup_categories.code = ?", normalizeCode(categoryCode)).
		Where("lookup_values.code = ?", normalizeCode(valueCode)).
		First(&value).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lookup value: %w", err)
	}
	return &value, nil
}

// GetLookupValues fetches the values of a category ordered by (sort_order, name).
// With activeOnly, soft-deleted values are filtered out.
func GetLookupValues(db *gorm.DB, categoryCode string, activeOnly bool) ([]models.LookupValue, error) {
	query := db.
		Joins("JOIN lookup_categories ON lookup_categories.id = lookup_values.category_id").
		Where("lookup_categories.code = ?", normalizeCode(categoryCode))

	if activeOnly {
		query = query.Where("lookup_values.is_active = ?", true)
	}

	var values []models.LookupValue
	err := query.
		Order("lookup_values.sort_order ASC").
		Order("lookup_values.name ASC").
		Find(&values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lookup values: %w", err)
	}
	return values, nil
}

// GetDefaultLookupValue fetches the unique default value of a category.
// Returns nil (no error) when the category has no default.
func GetDefaultLookupValue(db *gorm.DB, categoryCode string) (*models.LookupValue, error) {
	var value models.LookupValue
	err := db.
		Joins("JOIN lookup_categories ON lookup_categories.id = lookup_values.category_id").
		Where("lookup_categories.code = ?", normalizeCode(categoryCode)).
		Where("lookup_values.is_default = ?", true).
		First(&value).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch default lookup value: %w", err)
	}
	return &value, nil
}

// GetLookupChoices builds an ordered (id, name) choice list for form rendering,
// optionally prefixed with a blank sentinel choice.
func GetLookupChoices(db *gorm.DB, categoryCode string, includeBlank bool) ([]Choice, error) {
	values, err := GetLookupValues(db, categoryCode, true)
	if err != nil {
		return nil, err
	}

	choices := make([]Choice, 0, len(values)+1)
	if includeBlank {
		choices = append(choices, Choice{ID: "", Name: BlankChoiceLabel})
	}
	for _, v := range values {
		choices = append(choices, Choice{ID: v.ID, Name: v.Name})
	}
	return choices, nil
}

// ValidateLookupValue checks that an active value with the given code exists
// in an active category. Used by handlers before wiring references.
func ValidateLookupValue(db *gorm.DB, categoryCode, valueCode string) bool {
	var count int64
	db.Model(&models.LookupValue{}).
		Joins("JOIN lookup_categories ON lookup_categories.id = lookup_values.category_id").
		Where("lookup_categories.code = ?", normalizeCode(categoryCode)).
		Where("lookup_categories.is_active = ?", true).
		Where("lookup_values.code = ?", normalizeCode(valueCode)).
		Where("lookup_values.is_active = ?", true).
		Count(&count)
	return count > 0
}

// SaveLookupCategory creates or updates a category. The code is upper-case
// normalized and name/code uniqueness is checked regardless of active state.
func SaveLookupCategory(db *gorm.DB, category *models.LookupCategory) error {
	category.Code = normalizeCode(category.Code)
	category.Name = strings.TrimSpace(category.Name)

	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if category.Code == "" {
		return fmt.Errorf("%w: category code is required", ErrValidation)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		query := tx.Unscoped().Model(&models.LookupCategory{}).
			Where("name = ? OR code = ?", category.Name, category.Code)
		if category.ID != "" {
			query = query.Where("id <> ?", category.ID)
		}
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check category uniqueness: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: category name or code already exists", ErrUniquenessViolation)
		}

		if err := tx.Save(category).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: category name or code already exists", ErrUniquenessViolation)
			}
			return fmt.Errorf("failed to save lookup category: %w", err)
		}
		return nil
	})
}

// SaveLookupValue creates or updates a value inside a single transaction:
// the code is normalized, (category, code) uniqueness is checked against
// active and inactive records, the parent assignment is validated against
// cross-category edges and cycles, and when the value is flagged default the
// siblings' default flag is cleared before the value itself is persisted so
// the new flag is never clobbered.
func SaveLookupValue(db *gorm.DB, value *models.LookupValue) error {
	value.Code = normalizeCode(value.Code)
	value.Name = strings.TrimSpace(value.Name)

	if value.Name == "" {
		return fmt.Errorf("%w: value name is required", ErrValidation)
	}
	if value.Code == "" {
		return fmt.Errorf("%w: value code is required", ErrValidation)
	}
	if value.CategoryID == "" {
		return fmt.Errorf("%w: value requires a category", ErrValidation)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var category models.LookupCategory
		if err := tx.First(&category, "id = ?", value.CategoryID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: lookup category %s", ErrReferenceNotFound, value.CategoryID)
			}
			return fmt.Errorf("failed to fetch category: %w", err)
		}

		// Composite uniqueness on (category, code), active or inactive
		var count int64
		query := tx.Unscoped().Model(&models.LookupValue{}).
			Where("category_id = ? AND code = ?", value.CategoryID, value.Code)
		if value.ID != "" {
			query = query.Where("id <> ?", value.ID)
		}
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check value uniqueness: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: code %q already exists in category %s", ErrUniquenessViolation, value.Code, category.Code)
		}

		if err := validateParentAssignment(tx, value); err != nil {
			return err
		}

		// Single-default-per-category invariant: clear siblings first, inside
		// the same transaction, excluding the value's own identity
		if value.IsDefault {
			clear := tx.Model(&models.LookupValue{}).
				Where("category_id = ? AND is_default = ?", value.CategoryID, true)
			if value.ID != "" {
				clear = clear.Where("id <> ?", value.ID)
			}
			if err := clear.Update("is_default", false).Error; err != nil {
				return fmt.Errorf("failed to clear sibling defaults: %w", err)
			}
		}

		if err := tx.Save(value).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: code %q already exists in category %s", ErrUniquenessViolation, value.Code, category.Code)
			}
			return fmt.Errorf("failed to save lookup value: %w", err)
		}
		return nil
	})
}

// validateParentAssignment rejects self-parenting, cross-category edges and
// cycles of any length by walking the prospective parent's ancestor chain
// with a visited set.
func validateParentAssignment(tx *gorm.DB, value *models.LookupValue) error {
	if value.ParentID == nil || *value.ParentID == "" {
		value.ParentID = nil
		return nil
	}

	if value.ID != "" && *value.ParentID == value.ID {
		return fmt.Errorf("%w: a lookup value cannot be its own parent", ErrValidation)
	}

	visited := map[string]bool{}
	if value.ID != "" {
		visited[value.ID] = true
	}

	currentID := *value.ParentID
	for currentID != "" {
		if visited[currentID] {
			return fmt.Errorf("%w: parent assignment would create a cycle", ErrValidation)
		}
		visited[currentID] = true

		var parent models.LookupValue
		if err := tx.Select("id", "category_id", "parent_id").First(&parent, "id = ?", currentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: parent lookup value %s", ErrReferenceNotFound, currentID)
			}
			return fmt.Errorf("failed to walk parent chain: %w", err)
		}
		if parent.CategoryID != value.CategoryID {
			return fmt.Errorf("%w: parent must belong to the same category", ErrValidation)
		}

		if parent.ParentID == nil {
			break
		}
		currentID = *parent.ParentID
	}

	return nil
}

// ParentCandidates returns the values eligible to become the given value's
// parent: active values of the same category, excluding the value itself and
// its descendants.
func ParentCandidates(db *gorm.DB, value *models.LookupValue) ([]models.LookupValue, error) {
	query := db.Where("category_id = ? AND is_active = ?", value.CategoryID, true)
	if value.ID != "" {
		query = query.Where("id <> ?", value.ID)
	}

	var candidates []models.LookupValue
	if err := query.Order("sort_order ASC").Order("name ASC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch parent candidates: %w", err)
	}

	if value.ID == "" {
		return candidates, nil
	}

	descendants, err := descendantIDs(db, value.ID)
	if err != nil {
		return nil, err
	}

	filtered := candidates[:0]
	for _, c := range candidates {
		if !descendants[c.ID] {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// descendantIDs collects the ids of every value below the given one
func descendantIDs(db *gorm.DB, rootID string) (map[string]bool, error) {
	result := map[string]bool{}
	frontier := []string{rootID}

	for len(frontier) > 0 {
		var children []models.LookupValue
		if err := db.Select("id").Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch descendants: %w", err)
		}
		frontier = frontier[:0]
		for _, c := range children {
			if !result[c.ID] {
				result[c.ID] = true
				frontier = append(frontier, c.ID)
			}
		}
	}
	return result, nil
}

// normalizeCode canonicalizes lookup codes to trimmed upper case
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
