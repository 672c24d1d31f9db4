package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeUserText strips dangerous markup from free-text fields (notes,
// descriptions) at the write boundary
func SanitizeUserText(input string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(input))
}
