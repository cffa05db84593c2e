package workflow

import (
	"time"

	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"gorm.io/gorm"
)

type deliveryTaskTemplate struct {
	title    string
	priority models.TaskPriority
	// due computes the due date; nil result means open-ended
	due      func(start time.Time, end *time.Time) *time.Time
}

var deliveryChecklist = []deliveryTaskTemplate{
	{
		title:    "Requirements & design",
		priority: models.TaskPriorityHigh,
		due: func(start time.Time, _ *time.Time) *time.Time {
			d := utils.AddDays(start, 14)
			return &d
		},
	},
	{
		title:    "Core delivery/build",
		priority: models.TaskPriorityHigh,
		due:      func(time.Time, *time.Time) *time.Time { return nil },
	},
	{
		title:    "Acceptance & handover",
		priority: models.TaskPriorityHigh,
		due:      endOffset(-14),
	},
	{
		title:    "Final payment & closeout",
		priority: models.TaskPriorityMedium,
		due:      endOffset(0),
	},
}

func endOffset(days int) func(time.Time, *time.Time) *time.Time {
	return func(_ time.Time, end *time.Time) *time.Time {
		if end == nil || end.IsZero() {
			return nil
		}
		d := utils.AddDays(*end, days)
		return &d
	}
}

// BuildDeliveryTasks returns the four-step checklist for a project running
// from start (today when nil) to end. Nothing is persisted.
func BuildDeliveryTasks(companyId string, projectId int, start *time.Time, end *time.Time, today time.Time) []*models.DeliveryTask {
	from := utils.DateOrToday(start, today)
	tasks := make([]*models.DeliveryTask, 0, len(deliveryChecklist))
	for i, tpl := range deliveryChecklist {
		tasks = append(tasks, &models.DeliveryTask{
			CompanyId: companyId,
			ProjectId: projectId,
			Title:     tpl.title,
			Priority:  tpl.priority,
			Status:    models.TaskStatusTodo,
			DueDate:   tpl.due(from, end),
			Position:  i,
		})
	}
	return tasks
}

// GenerateDeliveryTasks inserts the checklist for projectId in order.
func GenerateDeliveryTasks(tx *gorm.DB, companyId string, projectId int, start *time.Time, end *time.Time, today time.Time) ([]*models.DeliveryTask, error) {
	tasks := BuildDeliveryTasks(companyId, projectId, start, end, today)
	for _, task := range tasks {
		if err := tx.Create(task).Error; err != nil {
			return nil, err
		}
	}
	return tasks, nil
}
