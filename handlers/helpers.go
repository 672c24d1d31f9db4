package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// serviceError maps the service error taxonomy onto HTTP status codes
func serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrReferenceNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUniquenessViolation):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrReferenceInUse):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// parseDate parses a YYYY-MM-DD date string
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// parseOptionalDate parses an optional YYYY-MM-DD date string
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseOptionalDecimal parses an optional decimal string (rates, budgets)
func parseOptionalDecimal(value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal %q", value)
	}
	return &d, nil
}

// optionalID converts an empty string to nil for nullable uuid references
func optionalID(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
