package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerTransaction is one income or expense entry of a venture.
type LedgerTransaction struct {
	ID              int                  `gorm:"primary_key" json:"id"`
	CompanyId       string               `gorm:"size:36;index;not null" json:"company_id"`
	Description     string               `gorm:"size:255" json:"description"`
	Amount          decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Direction       TransactionDirection `gorm:"size:20;index;not null" json:"direction"`
	Category        string               `gorm:"size:100" json:"category"`
	Counterparty    string               `gorm:"size:255" json:"counterparty"`
	TransactionDate time.Time            `gorm:"index;not null" json:"transaction_date"`
	CreatedAt       time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLedgerTransaction struct {
	Description     string               `json:"description"`
	Amount          decimal.Decimal      `json:"amount"`
	Direction       TransactionDirection `json:"direction" binding:"required"`
	Category        string               `json:"category"`
	Counterparty    string               `json:"counterparty"`
	TransactionDate *time.Time           `json:"transaction_date"`
}

func (t LedgerTransaction) GetCompanyId() string {
	return t.CompanyId
}

// CreateLedgerTransaction persists the entry. A missing date is today.
func CreateLedgerTransaction(ctx context.Context, tx *gorm.DB, companyId string, input *NewLedgerTransaction, today time.Time) (*LedgerTransaction, error) {
	if _, err := ParseTransactionDirection(string(input.Direction)); err != nil {
		return nil, err
	}
	if input.Amount.IsNegative() {
		return nil, utils.InputErrorf("amount must not be negative")
	}
	if err := VentureExists(ctx, tx, companyId); err != nil {
		return nil, err
	}
	record := LedgerTransaction{
		CompanyId:       companyId,
		Description:     input.Description,
		Amount:          input.Amount,
		Direction:       input.Direction,
		Category:        input.Category,
		Counterparty:    strings.TrimSpace(input.Counterparty),
		TransactionDate: utils.DateOrToday(input.TransactionDate, today),
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func ListLedgerTransactions(ctx context.Context, db *gorm.DB, companyId string) ([]*LedgerTransaction, error) {
	return utils.FetchAllModels[LedgerTransaction](ctx, db, companyId, "transaction_date ASC, id ASC")
}
