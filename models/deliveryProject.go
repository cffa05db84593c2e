package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DeliveryProject is opened for every sales contract.
type DeliveryProject struct {
	ID         int                   `gorm:"primary_key" json:"id"`
	CompanyId  string                `gorm:"size:36;index;not null" json:"company_id"`
	ContractId int                   `gorm:"index;not null" json:"contract_id"`
	Name       string                `gorm:"size:255;not null" json:"name"`
	Client     string                `gorm:"size:255" json:"client"`
	Budget     decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"budget"`
	Spent      decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"spent"`
	StartDate  *time.Time            `json:"start_date"`
	EndDate    *time.Time            `json:"end_date"`
	Status     DeliveryProjectStatus `gorm:"size:20;not null;default:'planning'" json:"status"`
	Tasks      []*DeliveryTask       `gorm:"foreignKey:ProjectId" json:"tasks,omitempty"`
	CreatedAt  time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type DeliveryTask struct {
	ID        int          `gorm:"primary_key" json:"id"`
	CompanyId string       `gorm:"size:36;index;not null" json:"company_id"`
	ProjectId int          `gorm:"index;not null" json:"project_id"`
	Title     string       `gorm:"size:255;not null" json:"title"`
	Priority  TaskPriority `gorm:"size:20;not null;default:'medium'" json:"priority"`
	Status    TaskStatus   `gorm:"size:20;not null;default:'todo'" json:"status"`
	DueDate   *time.Time   `json:"due_date"`
	Position  int          `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p DeliveryProject) GetCompanyId() string {
	return p.CompanyId
}

func (t DeliveryTask) GetCompanyId() string {
	return t.CompanyId
}

// CreateDeliveryProject inserts the project row only. Tasks are written
// afterwards against the new project id.
func CreateDeliveryProject(tx *gorm.DB, project *DeliveryProject) error {
	if project.ContractId == 0 {
		return errors.New("delivery project requires a contract")
	}
	if project.Status == "" {
		project.Status = DeliveryProjectStatusPlanning
	}
	return tx.Omit("Tasks").Create(project).Error
}

func GetDeliveryProjectByContract(ctx context.Context, db *gorm.DB, companyId string, contractId int) (*DeliveryProject, error) {
	var project DeliveryProject
	err := db.WithContext(ctx).
		Where("company_id = ? AND contract_id = ?", companyId, contractId).
		Preload("Tasks", func(q *gorm.DB) *gorm.DB { return q.Order("position ASC") }).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func ListDeliveryProjects(ctx context.Context, db *gorm.DB, companyId string) ([]*DeliveryProject, error) {
	return utils.FetchAllModels[DeliveryProject](ctx, db, companyId, "id ASC", "Tasks")
}
