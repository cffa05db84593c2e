package workflow

import (
	"fmt"
	"time"

	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"gorm.io/gorm"
)

func StaffMilestoneTitle(staff *models.StaffMember) string {
	return fmt.Sprintf("Team +1: %s joined as %s (%s)", staff.Name, staff.Position, staff.EmploymentType.Label())
}

func applyStaff(tx *gorm.DB, staff *models.StaffMember, today time.Time) ([]Effect, error) {
	milestone := &models.Milestone{
		CompanyId:     staff.CompanyId,
		Title:         StaffMilestoneTitle(staff),
		Category:      models.MilestoneCategoryTeam,
		MilestoneDate: utils.DateOrToday(staff.JoinDate, today),
		Status:        models.MilestoneStatusCompleted,
		Description:   staff.Department,
		SourceType:    "staff_members",
		SourceId:      staff.ID,
	}
	if err := models.CreateMilestone(tx, milestone); err != nil {
		return nil, err
	}
	return []Effect{created(ModuleMilestones, milestone.ID, milestone.Title)}, nil
}
