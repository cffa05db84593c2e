package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StaffMember is a person working for a venture. Outsourcing contracts add
// a contractor row linked by ContractId.
type StaffMember struct {
	ID             int             `gorm:"primary_key" json:"id"`
	CompanyId      string          `gorm:"size:36;index;not null" json:"company_id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Position       string          `gorm:"size:255" json:"position"`
	Department     string          `gorm:"size:100" json:"department"`
	EmploymentType EmploymentType  `gorm:"size:20;not null;default:'full_time'" json:"employment_type"`
	Compensation   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"compensation"`
	Status         StaffStatus     `gorm:"size:20;not null;default:'active'" json:"status"`
	JoinDate       *time.Time      `json:"join_date"`
	ContractId     *int            `gorm:"index" json:"contract_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStaffMember struct {
	Name           string          `json:"name" binding:"required"`
	Position       string          `json:"position"`
	Department     string          `json:"department"`
	EmploymentType EmploymentType  `json:"employment_type"`
	Compensation   decimal.Decimal `json:"compensation"`
	JoinDate       *time.Time      `json:"join_date"`
}

func (s StaffMember) GetCompanyId() string {
	return s.CompanyId
}

func CreateStaffMember(ctx context.Context, tx *gorm.DB, companyId string, input *NewStaffMember, today time.Time) (*StaffMember, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, utils.InputErrorf("name is required")
	}
	employment, err := ParseEmploymentType(string(input.EmploymentType))
	if err != nil {
		return nil, err
	}
	if input.Compensation.IsNegative() {
		return nil, utils.InputErrorf("compensation must not be negative")
	}
	if err := VentureExists(ctx, tx, companyId); err != nil {
		return nil, err
	}
	joined := utils.DateOrToday(input.JoinDate, today)
	staff := StaffMember{
		CompanyId:      companyId,
		Name:           strings.TrimSpace(input.Name),
		Position:       strings.TrimSpace(input.Position),
		Department:     input.Department,
		EmploymentType: employment,
		Compensation:   input.Compensation,
		Status:         StaffStatusActive,
		JoinDate:       &joined,
	}
	if err := tx.WithContext(ctx).Create(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

// CreateContractorFromContract records the outsourcing partner of c as a contractor.
func CreateContractorFromContract(tx *gorm.DB, c *Contract, today time.Time) (*StaffMember, error) {
	joined := utils.DateOrToday(c.StartDate, today)
	contractId := c.ID
	staff := StaffMember{
		CompanyId:      c.CompanyId,
		Name:           c.Counterparty,
		Position:       c.Title,
		Department:     "outsourcing",
		EmploymentType: EmploymentTypeContractor,
		Compensation:   c.Amount,
		Status:         StaffStatusActive,
		JoinDate:       &joined,
		ContractId:     &contractId,
	}
	if err := tx.Create(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func ListStaffMembers(ctx context.Context, db *gorm.DB, companyId string) ([]*StaffMember, error) {
	return utils.FetchAllModels[StaffMember](ctx, db, companyId, "id ASC")
}
