package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/testutil"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/stretchr/testify/require"
)

func TestTenantGuardScopesQueries(t *testing.T) {
	db := testutil.OpenDB(t)
	ctxA, a := testutil.NewVenture(t, "Guard A")
	ctxB, b := testutil.NewVenture(t, "Guard B")
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, models.CreateMilestone(db.WithContext(ctxA), &models.Milestone{CompanyId: a.ID.String(), Title: "a", Category: models.MilestoneCategoryBusiness, MilestoneDate: day}))
	require.NoError(t, models.CreateMilestone(db.WithContext(ctxB), &models.Milestone{CompanyId: b.ID.String(), Title: "b", Category: models.MilestoneCategoryBusiness, MilestoneDate: day}))

	var scoped []models.Milestone
	require.NoError(t, db.WithContext(ctxA).Find(&scoped).Error)
	require.Len(t, scoped, 1)
	require.Equal(t, "a", scoped[0].Title)

	// an explicit filter is left alone
	var explicit []models.Milestone
	require.NoError(t, db.WithContext(ctxA).Where("company_id = ?", b.ID.String()).Find(&explicit).Error)
	require.Len(t, explicit, 1)

	var all []models.Milestone
	skip := utils.SetSkipTenantScopeInContext(context.Background(), true)
	require.NoError(t, db.WithContext(skip).Find(&all).Error)
	require.Len(t, all, 2)

	admin := utils.SetIsAdminInContext(ctxA, true)
	all = nil
	require.NoError(t, db.WithContext(admin).Find(&all).Error)
	require.Len(t, all, 2)
}

func TestTenantGuardScopesUpdates(t *testing.T) {
	db := testutil.OpenDB(t)
	ctxA, _ := testutil.NewVenture(t, "Update A")
	ctxB, b := testutil.NewVenture(t, "Update B")
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	m := &models.Milestone{CompanyId: b.ID.String(), Title: "b", Category: models.MilestoneCategoryTeam, MilestoneDate: day}
	require.NoError(t, models.CreateMilestone(db.WithContext(ctxB), m))

	res := db.WithContext(ctxA).Model(&models.Milestone{}).Where("id = ?", m.ID).Update("title", "hijacked")
	require.NoError(t, res.Error)
	require.Zero(t, res.RowsAffected)
}

func TestTenantGuardRejectsForeignRows(t *testing.T) {
	db := testutil.OpenDB(t)
	ctxA, _ := testutil.NewVenture(t, "Owner A")
	_, b := testutil.NewVenture(t, "Owner B")

	err := db.WithContext(ctxA).Create(&models.Milestone{
		CompanyId:     b.ID.String(),
		Title:         "foreign",
		Category:      models.MilestoneCategoryBusiness,
		MilestoneDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}).Error
	require.Error(t, err)
	require.Contains(t, err.Error(), "tenant guard")
	require.Zero(t, testutil.Count[models.Milestone](t, db))
}
