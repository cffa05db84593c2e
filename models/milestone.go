package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/ventures_backend/utils"
	"gorm.io/gorm"
)

// Milestone is an entry of the venture timeline. SourceType/SourceId point at
// the primary record whose cascade wrote it.
type Milestone struct {
	ID            int               `gorm:"primary_key" json:"id"`
	CompanyId     string            `gorm:"size:36;index;not null" json:"company_id"`
	Title         string            `gorm:"size:255;not null" json:"title"`
	Category      MilestoneCategory `gorm:"size:20;index;not null" json:"category"`
	MilestoneDate time.Time         `gorm:"index;not null" json:"milestone_date"`
	Status        MilestoneStatus   `gorm:"size:20;not null;default:'completed'" json:"status"`
	Description   string            `gorm:"type:text" json:"description"`
	SourceType    string            `gorm:"size:50" json:"source_type"`
	SourceId      int               `json:"source_id"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (m Milestone) GetCompanyId() string {
	return m.CompanyId
}

func CreateMilestone(tx *gorm.DB, m *Milestone) error {
	if m.Status == "" {
		m.Status = MilestoneStatusCompleted
	}
	m.MilestoneDate = utils.ToDate(m.MilestoneDate)
	return tx.Create(m).Error
}

type MilestoneFilter struct {
	Category *MilestoneCategory
	From     *time.Time
	To       *time.Time
}

// ListMilestones returns the timeline in date order.
func ListMilestones(ctx context.Context, db *gorm.DB, companyId string, filter MilestoneFilter) ([]*Milestone, error) {
	q := db.WithContext(ctx).Where("company_id = ?", companyId)
	if filter.Category != nil {
		q = q.Where("category = ?", *filter.Category)
	}
	if filter.From != nil {
		q = q.Where("milestone_date >= ?", utils.ToDate(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("milestone_date <= ?", utils.ToDate(*filter.To))
	}
	var results []*Milestone
	if err := q.Order("milestone_date ASC, id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
