package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Contract struct {
	ID           int               `gorm:"primary_key" json:"id"`
	CompanyId    string            `gorm:"size:36;index;not null" json:"company_id"`
	Title        string            `gorm:"size:255;not null" json:"title"`
	Counterparty string            `gorm:"size:255;not null" json:"counterparty"`
	Category     string            `gorm:"size:100" json:"category"`
	Direction    ContractDirection `gorm:"size:20;index;not null" json:"direction"`
	Amount       decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"amount"`
	StartDate    *time.Time        `json:"start_date"`
	EndDate      *time.Time        `json:"end_date"`
	Status       ContractStatus    `gorm:"size:20;not null;default:'active'" json:"status"`
	Terms        string            `gorm:"type:text" json:"terms"`
	RiskNotes    string            `gorm:"type:text" json:"risk_notes"`
	ReminderDate *time.Time        `json:"reminder_date"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewContract struct {
	Title        string            `json:"title" binding:"required"`
	Counterparty string            `json:"counterparty" binding:"required"`
	Category     string            `json:"category"`
	Direction    ContractDirection `json:"direction" binding:"required"`
	Amount       decimal.Decimal   `json:"amount"`
	StartDate    *time.Time        `json:"start_date"`
	EndDate      *time.Time        `json:"end_date"`
	Status       ContractStatus    `json:"status"`
	Terms        string            `json:"terms"`
	RiskNotes    string            `json:"risk_notes"`
	ReminderDate *time.Time        `json:"reminder_date"`
}

func (c Contract) GetCompanyId() string {
	return c.CompanyId
}

func (input *NewContract) validate(ctx context.Context, tx *gorm.DB, companyId string) error {
	if _, err := ParseContractDirection(string(input.Direction)); err != nil {
		return err
	}
	if strings.TrimSpace(input.Title) == "" {
		return utils.InputErrorf("title is required")
	}
	if strings.TrimSpace(input.Counterparty) == "" {
		return utils.InputErrorf("counterparty is required")
	}
	if input.Amount.IsNegative() {
		return utils.InputErrorf("amount must not be negative")
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return utils.InputErrorf("end date is before start date")
	}
	return VentureExists(ctx, tx, companyId)
}

// CreateContract persists a contract. Its cascade is run separately (or by
// workflow.Engine.RecordContract in the same transaction).
func CreateContract(ctx context.Context, tx *gorm.DB, companyId string, input *NewContract) (*Contract, error) {
	if err := input.validate(ctx, tx, companyId); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = ContractStatusActive
	}
	contract := Contract{
		CompanyId:    companyId,
		Title:        strings.TrimSpace(input.Title),
		Counterparty: strings.TrimSpace(input.Counterparty),
		Category:     input.Category,
		Direction:    input.Direction,
		Amount:       input.Amount,
		StartDate:    datePtr(input.StartDate),
		EndDate:      datePtr(input.EndDate),
		Status:       status,
		Terms:        input.Terms,
		RiskNotes:    input.RiskNotes,
		ReminderDate: datePtr(input.ReminderDate),
	}
	if err := tx.WithContext(ctx).Create(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func GetContract(ctx context.Context, db *gorm.DB, companyId string, id int) (*Contract, error) {
	return utils.FetchModel[Contract](ctx, db, companyId, id)
}

func ListContracts(ctx context.Context, db *gorm.DB, companyId string) ([]*Contract, error) {
	return utils.FetchAllModels[Contract](ctx, db, companyId, "id ASC")
}

func datePtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := utils.ToDate(*t)
	return &d
}
