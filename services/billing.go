package services

import (
	"fmt"
	"time"

	"project_flow_app_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rate resolution walks a fixed override chain of depth five:
// entry -> task -> assigned member -> project -> client. The first non-null
// rate wins. Resolution is evaluated eagerly when needed (reports, display,
// billing export) and never cached.

// EffectiveEntryRate resolves the billing rate that applies to a time entry.
// Returns nil when no level of the chain defines a rate; callers must then
// treat the entry as contributing zero currency, not as an error.
func EffectiveEntryRate(db *gorm.DB, entry *models.TimeEntry) (*decimal.Decimal, error) {
	if entry.BillingRate != nil {
		return entry.BillingRate, nil
	}

	var task models.Task
	if err := db.First(&task, "id = ?", entry.TaskID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: task %s", ErrReferenceNotFound, entry.TaskID)
		}
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}

	return EffectiveTaskRate(db, &task)
}

// EffectiveTaskRate resolves a task's rate: its own rate, else the active
// project member rate of its assignee, else the project's effective rate.
func EffectiveTaskRate(db *gorm.DB, task *models.Task) (*decimal.Decimal, error) {
	if task.BillingRate != nil {
		return task.BillingRate, nil
	}

	if task.AssignedToID != nil {
		var member models.ProjectMember
		err := db.Where("project_id = ? AND user_id = ?", task.ProjectID, *task.AssignedToID).
			First(&member).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to fetch project member: %w", err)
		}
		if err == nil && member.IsActiveMember() && member.BillingRate != nil {
			return member.BillingRate, nil
		}
	}

	var project models.Project
	if err := db.First(&project, "id = ?", task.ProjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: project %s", ErrReferenceNotFound, task.ProjectID)
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	return EffectiveProjectRate(db, &project)
}

// EffectiveProjectRate resolves a project's rate: its own rate, else the
// client's default billing rate. The chain terminates here.
func EffectiveProjectRate(db *gorm.DB, project *models.Project) (*decimal.Decimal, error) {
	if project.BillingRate != nil {
		return project.BillingRate, nil
	}

	var client models.Client
	if err := db.First(&client, "id = ?", project.ClientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: client %s", ErrReferenceNotFound, project.ClientID)
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	return client.DefaultBillingRate, nil
}

// BillableAmount computes hours x rate rounded to 2 decimal places for a
// billable entry, and exactly 0.00 for non-billable entries or when no rate
// resolves anywhere in the chain.
func BillableAmount(db *gorm.DB, entry *models.TimeEntry) (decimal.Decimal, error) {
	zero := decimal.NewFromInt(0).Round(2)

	if !entry.Billable {
		return zero, nil
	}

	rate, err := EffectiveEntryRate(db, entry)
	if err != nil {
		return zero, err
	}
	if rate == nil {
		return zero, nil
	}

	return entry.Hours.Mul(*rate).Round(2), nil
}

// BillingSummary aggregates billable totals for a set of time entries
type BillingSummary struct {
	TotalHours    decimal.Decimal `json:"total_hours"`
	BillableHours decimal.Decimal `json:"billable_hours"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	EntryCount    int             `json:"entry_count"`
	From          *time.Time      `json:"from,omitempty"`
	To            *time.Time      `json:"to,omitempty"`
}

// SummarizeEntries resolves rates eagerly for each entry and totals the
// billable amounts
func SummarizeEntries(db *gorm.DB, entries []models.TimeEntry) (*BillingSummary, error) {
	summary := &BillingSummary{
		TotalHours:    decimal.NewFromInt(0),
		BillableHours: decimal.NewFromInt(0),
		TotalAmount:   decimal.NewFromInt(0).Round(2),
		EntryCount:    len(entries),
	}

	for i := range entries {
		entry := &entries[i]
		summary.TotalHours = summary.TotalHours.Add(entry.Hours)
		if entry.Billable {
			summary.BillableHours = summary.BillableHours.Add(entry.Hours)
		}
		amount, err := BillableAmount(db, entry)
		if err != nil {
			return nil, err
		}
		summary.TotalAmount = summary.TotalAmount.Add(amount)
	}

	return summary, nil
}
