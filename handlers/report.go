package handlers

import (
	"fmt"
	"net/http"
	"time"

	"project_flow_app_go/config"
	"project_flow_app_go/db"
	"project_flow_app_go/middleware"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TimeReportHandler exports the filtered time entries as an XLSX workbook
// with resolved rates and billable totals
func TimeReportHandler(c echo.Context) error {
	filters := services.TimeEntryFilters{
		TaskID:          c.QueryParam("task_id"),
		ProjectID:       c.QueryParam("project_id"),
		UserID:          c.QueryParam("user_id"),
		ClientID:        c.QueryParam("client_id"),
		BillingStatusID: c.QueryParam("billing_status_id"),
		DateFrom:        c.QueryParam("date_from"),
		DateTo:          c.QueryParam("date_to"),
	}

	entries, err := services.ListTimeEntries(db.DB, filters)
	if err != nil {
		return serviceError(err)
	}

	buf, err := services.BuildTimeReport(db.DB, entries)
	if err != nil {
		return serviceError(err)
	}

	fileName := fmt.Sprintf("time-report-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	services.ArchiveReport(c.Request().Context(), buf.Bytes(), fileName, xlsxContentType)

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionExport, "TimeEntry", "", fileName,
		fmt.Sprintf("Exported time report (%d entries)", len(entries)), nil, nil)

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// InvoicePDFHandler renders a billing invoice PDF for a client over a date
// range
func InvoicePDFHandler(c echo.Context) error {
	clientID := c.QueryParam("client_id")
	if clientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "client_id query parameter is required")
	}

	from, err := parseDate(c.QueryParam("date_from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	to, err := parseDate(c.QueryParam("date_to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if to.Before(from) {
		return echo.NewHTTPError(http.StatusBadRequest, "date_to cannot be before date_from")
	}

	var client models.Client
	if err := db.DB.First(&client, "id = ?", clientID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Client not found")
	}

	entries, err := services.ListTimeEntries(db.DB, services.TimeEntryFilters{
		ClientID: clientID,
		DateFrom: from.Format("2006-01-02"),
		DateTo:   to.Format("2006-01-02"),
	})
	if err != nil {
		return serviceError(err)
	}

	lines, summary, err := services.BuildInvoiceLines(db.DB, entries)
	if err != nil {
		return serviceError(err)
	}

	html := services.BuildInvoiceHTML(&client, lines,
		summary.TotalHours.StringFixed(2), summary.TotalAmount.StringFixed(2), from, to)

	cfg, _ := c.Get("config").(*config.Config)
	if cfg == nil {
		cfg = &config.Config{}
	}
	pdf, err := services.GeneratePDF(cfg, html, services.DefaultPDFOptions())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate invoice PDF")
	}

	fileName := fmt.Sprintf("invoice-%s-%s.pdf", client.Code, to.Format("2006-01-02"))
	services.ArchiveReport(c.Request().Context(), pdf, fileName, "application/pdf")

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionExport, "Client", client.ID, client.Name,
		fmt.Sprintf("Exported invoice PDF (%d entries)", len(entries)), nil, nil)

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// BillingSummaryHandler returns billable totals for the filtered entries
func BillingSummaryHandler(c echo.Context) error {
	filters := services.TimeEntryFilters{
		TaskID:    c.QueryParam("task_id"),
		ProjectID: c.QueryParam("project_id"),
		UserID:    c.QueryParam("user_id"),
		ClientID:  c.QueryParam("client_id"),
		DateFrom:  c.QueryParam("date_from"),
		DateTo:    c.QueryParam("date_to"),
	}

	entries, err := services.ListTimeEntries(db.DB, filters)
	if err != nil {
		return serviceError(err)
	}

	summary, err := services.SummarizeEntries(db.DB, entries)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
