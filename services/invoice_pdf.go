package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"project_flow_app_go/config"
	"project_flow_app_go/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"gorm.io/gorm"
)

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPDFOptions returns default options for invoices
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "A4",
		MarginTop:       54,
		MarginBottom:    54,
		MarginLeft:      54,
		MarginRight:     54,
	}
}

// InvoiceLine is one row of the rendered invoice
type InvoiceLine struct {
	Date        string
	Task        string
	Description string
	Hours       string
	Rate        string
	Amount      string
}

// BuildInvoiceHTML renders a billing invoice for a client as a standalone
// HTML document ready for PDF printing
func BuildInvoiceHTML(client *models.Client, lines []InvoiceLine, totalHours, totalAmount string, from, to time.Time) string {
	var rows strings.Builder
	for _, line := range lines {
		rows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%s</td><td>%s</td><td class=\"num\">%s</td><td class=\"num\">%s</td><td class=\"num\">%s</td></tr>",
			html.EscapeString(line.Date),
			html.EscapeString(line.Task),
			html.EscapeString(line.Description),
			line.Hours, line.Rate, line.Amount,
		))
	}

	terms := client.PaymentTerms
	if terms == "" {
		terms = "Due on Receipt"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1F2937; }
  h1 { font-size: 20px; margin-bottom: 0; }
  .meta { color: #6B7280; margin-bottom: 24px; }
  table { width: 100%%; border-collapse: collapse; margin-top: 16px; }
  th { text-align: left; border-bottom: 2px solid #1F2937; padding: 6px 4px; }
  td { border-bottom: 1px solid #E5E7EB; padding: 6px 4px; vertical-align: top; }
  .num { text-align: right; white-space: nowrap; }
  .total td { border-bottom: none; border-top: 2px solid #1F2937; font-weight: bold; }
  .terms { margin-top: 24px; color: #6B7280; }
</style>
</head>
<body>
<h1>Invoice</h1>
<div class="meta">
  <div><strong>%s</strong> (%s)</div>
  <div>%s</div>
  <div>Period: %s &ndash; %s</div>
</div>
<table>
  <thead>
    <tr><th>Date</th><th>Task</th><th>Description</th><th class="num">Hours</th><th class="num">Rate</th><th class="num">Amount</th></tr>
  </thead>
  <tbody>
    %s
    <tr class="total"><td colspan="3">Total</td><td class="num">%s</td><td></td><td class="num">%s</td></tr>
  </tbody>
</table>
<div class="terms">Payment terms: %s</div>
</body>
</html>`,
		html.EscapeString(client.Name),
		html.EscapeString(client.Code),
		html.EscapeString(client.BillingAddress),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		rows.String(),
		totalHours,
		totalAmount,
		terms,
	)
}

// BuildInvoiceLines resolves rates for the given entries and produces the
// invoice rows plus billable totals. Non-billable entries are listed with a
// zero amount so the client sees the full time record.
func BuildInvoiceLines(db *gorm.DB, entries []models.TimeEntry) ([]InvoiceLine, *BillingSummary, error) {
	summary, err := SummarizeEntries(db, entries)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]InvoiceLine, 0, len(entries))
	for i := range entries {
		entry := &entries[i]

		var task models.Task
		if err := db.First(&task, "id = ?", entry.TaskID).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to load task for invoice line: %w", err)
		}

		rate, err := EffectiveEntryRate(db, entry)
		if err != nil {
			return nil, nil, err
		}
		amount, err := BillableAmount(db, entry)
		if err != nil {
			return nil, nil, err
		}

		rateText := ""
		if rate != nil && entry.Billable {
			rateText = rate.StringFixed(2)
		}

		lines = append(lines, InvoiceLine{
			Date:        entry.Date.Format("2006-01-02"),
			Task:        task.Title,
			Description: entry.Description,
			Hours:       entry.Hours.StringFixed(2),
			Rate:        rateText,
			Amount:      amount.StringFixed(2),
		})
	}

	return lines, summary, nil
}

// GeneratePDF renders HTML content to PDF using headless Chrome
func GeneratePDF(cfg *config.Config, htmlContent string, options PDFOptions) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)

	// Custom Chrome path (for headless-shell in Docker)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var paperWidth, paperHeight float64
	switch options.PageSize {
	case "legal":
		paperWidth = 8.5
		paperHeight = 14.0
	case "A4":
		paperWidth = 8.27
		paperHeight = 11.69
	default: // letter
		paperWidth = 8.5
		paperHeight = 11.0
	}
	if options.PageOrientation == "landscape" {
		paperWidth, paperHeight = paperHeight, paperWidth
	}

	marginTop := float64(options.MarginTop) / 72.0
	marginBottom := float64(options.MarginBottom) / 72.0
	marginLeft := float64(options.MarginLeft) / 72.0
	marginRight := float64(options.MarginRight) / 72.0

	var pdfBuf []byte

	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.Sleep(100),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(marginTop).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginLeft).
				WithMarginRight(marginRight).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}
