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

type clientRequest struct {
	Name                string `json:"name"`
	Code                string `json:"code"`
	IndustryID          string `json:"industry_id"`
	PrimaryContactName  string `json:"primary_contact_name"`
	PrimaryContactEmail string `json:"primary_contact_email"`
	PrimaryContactPhone string `json:"primary_contact_phone"`
	BillingAddress      string `json:"billing_address"`
	BillingEmail        string `json:"billing_email"`
	DefaultBillingRate  string `json:"default_billing_rate"`
	PaymentTerms        string `json:"payment_terms"`
	Notes               string `json:"notes"`
}

func (req *clientRequest) apply(client *models.Client) error {
	client.Name = strings.TrimSpace(req.Name)
	client.Code = req.Code
	client.IndustryID = optionalID(req.IndustryID)
	client.PrimaryContactName = req.PrimaryContactName
	client.PrimaryContactEmail = req.PrimaryContactEmail
	client.PrimaryContactPhone = req.PrimaryContactPhone
	client.BillingAddress = services.SanitizeUserText(req.BillingAddress)
	client.BillingEmail = req.BillingEmail
	client.PaymentTerms = req.PaymentTerms
	client.Notes = services.SanitizeUserText(req.Notes)

	rate, err := parseOptionalDecimal(req.DefaultBillingRate)
	if err != nil {
		return err
	}
	if rate != nil && rate.IsNegative() {
		return echo.NewHTTPError(http.StatusBadRequest, "Billing rate cannot be negative")
	}
	client.DefaultBillingRate = rate

	if client.Name == "" || client.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and code are required")
	}
	return nil
}

// checkIndustryRef validates an optional industry reference against the
// INDUSTRY lookup category
func checkIndustryRef(industryID *string) error {
	if industryID == nil {
		return nil
	}
	var count int64
	db.DB.Model(&models.LookupValue{}).
		Joins("JOIN lookup_categories ON lookup_categories.id = lookup_values.category_id").
		Where("lookup_values.id = ?", *industryID).
		Where("lookup_categories.code = ?", models.LookupCategoryCodeIndustry).
		Count(&count)
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Industry lookup value not found")
	}
	return nil
}

// ListClientsHandler returns clients ordered by name
func ListClientsHandler(c echo.Context) error {
	query := db.DB.Preload("Industry").Order("name ASC")
	if c.QueryParam("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var clients []models.Client
	if err := query.Find(&clients).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load clients")
	}
	return c.JSON(http.StatusOK, clients)
}

// GetClientHandler returns one client with industry and projects
func GetClientHandler(c echo.Context) error {
	var client models.Client
	err := db.DB.Preload("Industry").Preload("Projects").
		First(&client, "id = ?", c.Param("id")).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}
	return c.JSON(http.StatusOK, client)
}

// CreateClientHandler creates a client
func CreateClientHandler(c echo.Context) error {
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	auditCtx := middleware.GetAuditContext(c)
	client := models.Client{IsActive: true, CreatedByID: auditCtx.ActorID(), UpdatedByID: auditCtx.ActorID()}
	if err := req.apply(&client); err != nil {
		return err
	}
	if err := checkIndustryRef(client.IndustryID); err != nil {
		return err
	}

	if err := db.DB.Create(&client).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "A client with this code already exists")
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "Client", client.ID, client.Name, "Created client", nil, client)

	return c.JSON(http.StatusCreated, client)
}

// UpdateClientHandler updates a client
func UpdateClientHandler(c echo.Context) error {
	var client models.Client
	if err := db.DB.First(&client, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}
	old := client

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := req.apply(&client); err != nil {
		return err
	}
	if err := checkIndustryRef(client.IndustryID); err != nil {
		return err
	}

	auditCtx := middleware.GetAuditContext(c)
	client.UpdatedByID = auditCtx.ActorID()

	if err := db.DB.Save(&client).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "A client with this code already exists")
	}

	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "Client", client.ID, client.Name, "Updated client", old, client)

	return c.JSON(http.StatusOK, client)
}

// DeleteClientHandler soft deletes a client
func DeleteClientHandler(c echo.Context) error {
	var client models.Client
	if err := db.DB.First(&client, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}

	if err := services.SoftDelete(db.DB, &client); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionSoftDelete, "Client", client.ID, client.Name, "Deactivated client", nil, nil)

	return c.NoContent(http.StatusNoContent)
}

// RestoreClientHandler re-activates a soft deleted client
func RestoreClientHandler(c echo.Context) error {
	var client models.Client
	if err := db.DB.First(&client, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}

	if err := services.Restore(db.DB, &client); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionRestore, "Client", client.ID, client.Name, "Restored client", nil, nil)

	return c.JSON(http.StatusOK, client)
}

// PurgeClientHandler permanently removes a client. Blocked while projects
// still reference it.
func PurgeClientHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if !services.CanForceDelete(user) {
		return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
	}

	var client models.Client
	if err := db.DB.First(&client, "id = ?", c.Param("id")).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}

	if err := services.ForceDelete(db.DB, &client); err != nil {
		return serviceError(err)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionForceDelete, "Client", client.ID, client.Name, "Permanently deleted client", client, nil)

	return c.NoContent(http.StatusNoContent)
}
