package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultSalesTaxRate applies to invoices raised from income transactions.
var DefaultSalesTaxRate = decimal.RequireFromString("0.06")

// SalesInvoice amounts are tax inclusive: PretaxAmount + TaxAmount == TotalAmount.
type SalesInvoice struct {
	ID            int                `gorm:"primary_key" json:"id"`
	CompanyId     string             `gorm:"size:36;index;not null" json:"company_id"`
	TransactionId int                `gorm:"index;not null" json:"transaction_id"`
	InvoiceNumber string             `gorm:"size:64;index" json:"invoice_number"`
	Customer      string             `gorm:"size:255" json:"customer"`
	PretaxAmount  decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"pretax_amount"`
	TaxRate       decimal.Decimal    `gorm:"type:decimal(10,4);default:0" json:"tax_rate"`
	TaxAmount     decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	InvoiceDate   time.Time          `gorm:"not null" json:"invoice_date"`
	Status        SalesInvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i SalesInvoice) GetCompanyId() string {
	return i.CompanyId
}

// CreateInvoiceFromTransaction raises a draft invoice for an income entry dated
// invoiceDate. The invoice number carries that date.
func CreateInvoiceFromTransaction(tx *gorm.DB, t *LedgerTransaction, rate decimal.Decimal, invoiceDate time.Time) (*SalesInvoice, error) {
	invoiceDate = utils.ToDate(invoiceDate)
	total := utils.RoundMoney(t.Amount)
	pretax, tax := utils.SplitTaxInclusive(total, rate)
	invoice := SalesInvoice{
		CompanyId:     t.CompanyId,
		TransactionId: t.ID,
		InvoiceNumber: fmt.Sprintf("INV-%s-%d", invoiceDate.Format("20060102"), t.ID),
		Customer:      t.Counterparty,
		PretaxAmount:  pretax,
		TaxRate:       rate,
		TaxAmount:     tax,
		TotalAmount:   total,
		InvoiceDate:   invoiceDate,
		Status:        SalesInvoiceStatusDraft,
	}
	if err := tx.Create(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func ListSalesInvoices(ctx context.Context, db *gorm.DB, companyId string) ([]*SalesInvoice, error) {
	return utils.FetchAllModels[SalesInvoice](ctx, db, companyId, "id ASC")
}
