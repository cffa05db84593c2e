package workflow_test

import (
	"testing"

	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/workflow"
	"github.com/stretchr/testify/require"
)

func dueDates(tasks []*models.DeliveryTask) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		if task.DueDate != nil {
			out[i] = task.DueDate.Format("2006-01-02")
		}
	}
	return out
}

func TestBuildDeliveryTasks(t *testing.T) {
	t.Run("with end date", func(t *testing.T) {
		tasks := workflow.BuildDeliveryTasks("c1", 7, date("2026-01-01"), date("2026-04-30"), fixedToday)
		require.Len(t, tasks, 4)
		require.Equal(t, []string{"2026-01-15", "", "2026-04-16", "2026-04-30"}, dueDates(tasks))
		for i, task := range tasks {
			require.Equal(t, "c1", task.CompanyId)
			require.Equal(t, 7, task.ProjectId)
			require.Equal(t, i, task.Position)
		}
		require.Equal(t, models.TaskPriorityHigh, tasks[0].Priority)
		require.Equal(t, models.TaskPriorityMedium, tasks[3].Priority)
	})

	t.Run("open ended", func(t *testing.T) {
		tasks := workflow.BuildDeliveryTasks("c1", 7, date("2026-01-01"), nil, fixedToday)
		require.Equal(t, []string{"2026-01-15", "", "", ""}, dueDates(tasks))
	})

	t.Run("start defaults to today", func(t *testing.T) {
		tasks := workflow.BuildDeliveryTasks("c1", 7, nil, nil, fixedToday)
		require.Equal(t, "2026-03-15", dueDates(tasks)[0])
	})

	t.Run("month boundary", func(t *testing.T) {
		tasks := workflow.BuildDeliveryTasks("c1", 7, date("2026-02-20"), date("2026-03-10"), fixedToday)
		require.Equal(t, []string{"2026-03-06", "", "2026-02-24", "2026-03-10"}, dueDates(tasks))
	})
}
