package workflow_test

import (
	"testing"

	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/testutil"
	"github.com/mmdatafocus/ventures_backend/workflow"
	"github.com/stretchr/testify/require"
)

func TestStaffMilestoneTitle(t *testing.T) {
	require.Equal(t, "Team +1: Ann joined as Engineer (Full-time)", workflow.StaffMilestoneTitle(&models.StaffMember{
		Name: "Ann", Position: "Engineer", EmploymentType: models.EmploymentTypeFullTime,
	}))
	require.Equal(t, "Team +1: Bo joined as Designer (Intern)", workflow.StaffMilestoneTitle(&models.StaffMember{
		Name: "Bo", Position: "Designer", EmploymentType: models.EmploymentTypeIntern,
	}))
}

func TestRecordStaffAddsTeamMilestone(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, venture := testutil.NewVenture(t, "Hiring")

	staff, effects, err := newEngine(db).RecordStaff(ctx, venture.ID.String(), &models.NewStaffMember{
		Name:       "Ann",
		Position:   "Engineer",
		Department: "Platform",
		JoinDate:   date("2026-02-15"),
	})
	require.NoError(t, err)
	require.Equal(t, models.EmploymentTypeFullTime, staff.EmploymentType)
	require.Len(t, effects, 1)
	require.Equal(t, workflow.ModuleMilestones, effects[0].Module)

	milestones := allRows[models.Milestone](t, db)
	require.Len(t, milestones, 1)
	require.Equal(t, "Team +1: Ann joined as Engineer (Full-time)", milestones[0].Title)
	require.Equal(t, models.MilestoneCategoryTeam, milestones[0].Category)
	require.Equal(t, "2026-02-15", milestones[0].MilestoneDate.Format("2006-01-02"))
	require.Equal(t, staff.ID, milestones[0].SourceId)
	require.Equal(t, "Platform", milestones[0].Description)
}

func TestRecordStaffDefaultsJoinDateToToday(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, venture := testutil.NewVenture(t, "Hiring today")

	staff, _, err := newEngine(db).RecordStaff(ctx, venture.ID.String(), &models.NewStaffMember{
		Name: "Cy", Position: "Support", EmploymentType: models.EmploymentTypePartTime,
	})
	require.NoError(t, err)
	require.Equal(t, "2026-03-01", staff.JoinDate.Format("2006-01-02"))

	milestones := allRows[models.Milestone](t, db)
	require.Len(t, milestones, 1)
	require.Equal(t, "Team +1: Cy joined as Support (Part-time)", milestones[0].Title)
}

func TestRecordStaffRejectsBlankName(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, venture := testutil.NewVenture(t, "Blank")

	_, _, err := newEngine(db).RecordStaff(ctx, venture.ID.String(), &models.NewStaffMember{Name: " "})
	require.Error(t, err)
	require.Zero(t, testutil.Count[models.StaffMember](t, db))
	require.Zero(t, testutil.Count[models.Milestone](t, db))
	require.Zero(t, testutil.Count[models.VentureEventRecord](t, db))
}
