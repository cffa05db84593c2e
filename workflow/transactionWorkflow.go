package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinanceMilestoneThreshold is the smallest absolute amount recorded on the timeline.
var FinanceMilestoneThreshold = decimal.NewFromInt(5000)

func applyTransaction(tx *gorm.DB, t *models.LedgerTransaction, today time.Time) ([]Effect, error) {
	var effects []Effect
	// an undated entry is booked today
	date := utils.DateOrToday(&t.TransactionDate, today)
	income := t.Direction == models.TransactionDirectionIncome
	verb := "Paid"
	tag := models.RoleTagSupplier
	if income {
		verb = "Received"
		tag = models.RoleTagClient
	}

	if counterparty := strings.TrimSpace(t.Counterparty); counterparty != "" {
		note := fmt.Sprintf("%s %s on %s", strings.ToLower(verb), utils.FormatMoney(t.Amount), date.Format(utils.DateLayout))
		if t.Description != "" {
			note += ": " + t.Description
		}
		rel, err := ResolveRelationship(tx, t.CompanyId, counterparty, tag, note, today)
		if err != nil {
			return nil, err
		}
		effects = append(effects, rel.Effect())
	}

	if income && t.Amount.IsPositive() {
		invoice, err := models.CreateInvoiceFromTransaction(tx, t, models.DefaultSalesTaxRate, date)
		if err != nil {
			return nil, err
		}
		effects = append(effects, created(ModuleSalesInvoices, invoice.ID,
			fmt.Sprintf("%s (tax %s)", utils.FormatMoney(invoice.TotalAmount), utils.FormatMoney(invoice.TaxAmount))))
	}

	if t.Amount.Abs().GreaterThanOrEqual(FinanceMilestoneThreshold) {
		parts := []string{verb}
		if counterparty := strings.TrimSpace(t.Counterparty); counterparty != "" {
			parts = append(parts, counterparty)
		}
		parts = append(parts, utils.FormatMoney(t.Amount))
		milestone := &models.Milestone{
			CompanyId:     t.CompanyId,
			Title:         strings.Join(parts, " "),
			Category:      models.MilestoneCategoryFinance,
			MilestoneDate: date,
			Description:   t.Description,
			Status:        models.MilestoneStatusCompleted,
			SourceType:    "ledger_transactions",
			SourceId:      t.ID,
		}
		if err := models.CreateMilestone(tx, milestone); err != nil {
			return nil, err
		}
		effects = append(effects, created(ModuleMilestones, milestone.ID, milestone.Title))
	}
	return effects, nil
}
