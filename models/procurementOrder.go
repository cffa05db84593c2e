package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProcurementOrder struct {
	ID           int                    `gorm:"primary_key" json:"id"`
	CompanyId    string                 `gorm:"size:36;index;not null" json:"company_id"`
	ContractId   int                    `gorm:"index;not null" json:"contract_id"`
	Title        string                 `gorm:"size:255;not null" json:"title"`
	Supplier     string                 `gorm:"size:255" json:"supplier"`
	Amount       decimal.Decimal        `gorm:"type:decimal(20,4);default:0" json:"amount"`
	OrderDate    time.Time              `gorm:"not null" json:"order_date"`
	ExpectedDate *time.Time             `json:"expected_date"`
	Status       ProcurementOrderStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt    time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o ProcurementOrder) GetCompanyId() string {
	return o.CompanyId
}

// CreateProcurementOrderFromContract opens a pending order for a procurement contract.
func CreateProcurementOrderFromContract(tx *gorm.DB, c *Contract, today time.Time) (*ProcurementOrder, error) {
	order := ProcurementOrder{
		CompanyId:    c.CompanyId,
		ContractId:   c.ID,
		Title:        c.Title,
		Supplier:     c.Counterparty,
		Amount:       c.Amount,
		OrderDate:    utils.DateOrToday(c.StartDate, today),
		ExpectedDate: c.EndDate,
		Status:       ProcurementOrderStatusPending,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func ListProcurementOrders(ctx context.Context, db *gorm.DB, companyId string) ([]*ProcurementOrder, error) {
	return utils.FetchAllModels[ProcurementOrder](ctx, db, companyId, "id ASC")
}
