package services

import (
	"bytes"
	"fmt"

	"project_flow_app_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const timeReportSheet = "Time Report"

var timeReportHeaders = []string{
	"Date", "User", "Client", "Project", "Task", "Hours", "Billable", "Rate", "Amount", "Billing Status",
}

// BuildTimeReport renders the given time entries into an XLSX workbook with
// per-entry effective rates and a billable total row. Rates are resolved
// eagerly at export time.
func BuildTimeReport(db *gorm.DB, entries []models.TimeEntry) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(timeReportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create report sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, header := range timeReportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(timeReportSheet, cell, header)
		f.SetCellStyle(timeReportSheet, cell, cell, headerStyle)
	}

	summary, err := SummarizeEntries(db, entries)
	if err != nil {
		return nil, err
	}

	for i, entry := range entries {
		row := i + 2

		var task models.Task
		if err := db.Preload("Project.Client").First(&task, "id = ?", entry.TaskID).Error; err != nil {
			return nil, fmt.Errorf("failed to load task for report row: %w", err)
		}
		var user models.User
		if err := db.First(&user, "id = ?", entry.UserID).Error; err != nil {
			return nil, fmt.Errorf("failed to load user for report row: %w", err)
		}
		var status models.LookupValue
		if err := db.First(&status, "id = ?", entry.BillingStatusID).Error; err != nil {
			return nil, fmt.Errorf("failed to load billing status for report row: %w", err)
		}

		rate, err := EffectiveEntryRate(db, &entry)
		if err != nil {
			return nil, err
		}
		amount, err := BillableAmount(db, &entry)
		if err != nil {
			return nil, err
		}

		rateText := ""
		if rate != nil {
			rateText = rate.StringFixed(2)
		}
		billableText := "No"
		if entry.Billable {
			billableText = "Yes"
		}

		values := []interface{}{
			entry.Date.Format("2006-01-02"),
			user.Name,
			task.Project.Client.Name,
			task.Project.Name,
			task.Title,
			entry.Hours.StringFixed(2),
			billableText,
			rateText,
			amount.StringFixed(2),
			status.Name,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(timeReportSheet, cell, v)
		}
	}

	// Totals row
	totalRow := len(entries) + 3
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	labelCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	hoursCell, _ := excelize.CoordinatesToCellName(6, totalRow)
	amountCell, _ := excelize.CoordinatesToCellName(9, totalRow)
	f.SetCellValue(timeReportSheet, labelCell, "TOTAL")
	f.SetCellValue(timeReportSheet, hoursCell, summary.TotalHours.StringFixed(2))
	f.SetCellValue(timeReportSheet, amountCell, summary.TotalAmount.StringFixed(2))
	f.SetCellStyle(timeReportSheet, labelCell, amountCell, totalStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report workbook: %w", err)
	}
	return buf, nil
}
