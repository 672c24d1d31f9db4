package services

import (
	"errors"
	"strings"
)

// Deterministic input-validity failures surfaced to callers. These are never
// retried internally.
var (
	// ErrUniquenessViolation indicates a duplicate name or code
	ErrUniquenessViolation = errors.New("uniqueness violation")
	// ErrReferenceNotFound indicates a dangling reference (e.g. unknown category id)
	ErrReferenceNotFound = errors.New("referenced record not found")
	// ErrReferenceInUse indicates a force delete was blocked by protected inbound references
	ErrReferenceInUse = errors.New("record is referenced by protected records")
	// ErrValidation indicates a field constraint failure
	ErrValidation = errors.New("validation failed")
)

// isUniqueConstraintError detects the sqlite unique-index violation that can
// slip past the pre-checks under concurrent writers.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
