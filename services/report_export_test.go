package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestBuildTimeReport(t *testing.T) {
	db := setupSeededDB()
	f := createFixture(db)
	db.Model(&f.Client).Update("default_billing_rate", decPtr("100"))

	billable := f.newEntry("2.5")
	assert.NoError(t, CreateTimeEntry(db, &billable))
	nonBillable := f.newEntry("1")
	nonBillable.Billable = false
	assert.NoError(t, CreateTimeEntry(db, &nonBillable))

	entries, err := ListTimeEntries(db, TimeEntryFilters{TaskID: f.Task.ID})
	assert.NoError(t, err)

	buf, err := BuildTimeReport(db, entries)
	assert.NoError(t, err)

	workbook, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows(timeReportSheet)
	assert.NoError(t, err)

	// Header + 2 entries + blank spacer + total
	assert.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, timeReportHeaders, rows[0][:len(timeReportHeaders)])

	var sawBillable, sawNonBillable, sawTotal bool
	for _, row := range rows[1:] {
		if len(row) < 9 {
			continue
		}
		switch {
		case row[5] == "2.50":
			sawBillable = true
			assert.Equal(t, "Yes", row[6])
			assert.Equal(t, "250.00", row[8])
		case row[5] == "1.00":
			sawNonBillable = true
			assert.Equal(t, "No", row[6])
			assert.Equal(t, "0.00", row[8])
		case row[0] == "TOTAL":
			sawTotal = true
			assert.Equal(t, "3.50", row[5])
			assert.Equal(t, "250.00", row[8])
		}
	}
	assert.True(t, sawBillable)
	assert.True(t, sawNonBillable)
	assert.True(t, sawTotal)
}

func TestBuildTimeReportEmpty(t *testing.T) {
	db := setupSeededDB()

	buf, err := BuildTimeReport(db, nil)
	assert.NoError(t, err)

	workbook, err := excelize.OpenReader(buf)
	assert.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows(timeReportSheet)
	assert.NoError(t, err)
	assert.Equal(t, "Date", rows[0][0])
}

func TestBuildInvoiceLines(t *testing.T) {
	db := setupSeededDB()
	f := createFixture(db)
	db.Model(&f.Client).Update("default_billing_rate", decPtr("80"))

	entry := f.newEntry("2")
	assert.NoError(t, CreateTimeEntry(db, &entry))

	entries, err := ListTimeEntries(db, TimeEntryFilters{ClientID: f.Client.ID})
	assert.NoError(t, err)

	lines, summary, err := BuildInvoiceLines(db, entries)
	assert.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Equal(t, "Build landing page", lines[0].Task)
	assert.Equal(t, "2.00", lines[0].Hours)
	assert.Equal(t, "80.00", lines[0].Rate)
	assert.Equal(t, "160.00", lines[0].Amount)
	assert.Equal(t, "160.00", summary.TotalAmount.StringFixed(2))
}

func TestBuildInvoiceHTML(t *testing.T) {
	db := setupSeededDB()
	f := createFixture(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	lines := []InvoiceLine{{Date: "2026-08-14", Task: "Build <landing> page", Description: "Work", Hours: "2.00", Rate: "80.00", Amount: "160.00"}}
	html := BuildInvoiceHTML(&f.Client, lines, "2.00", "160.00", from, to)

	assert.Contains(t, html, "Acme Corp")
	assert.Contains(t, html, "160.00")
	assert.Contains(t, html, "Due on Receipt") // No payment terms set
	// Markup in user content is escaped
	assert.Contains(t, html, "Build &lt;landing&gt; page")
	assert.False(t, strings.Contains(html, "Build <landing> page"))
}
