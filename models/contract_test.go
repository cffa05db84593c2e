package models_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/testutil"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreateContract(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, venture := testutil.NewVenture(t, "Contracts")
	start := time.Date(2026, 1, 1, 15, 30, 0, 0, time.UTC)

	contract, err := models.CreateContract(ctx, db, venture.ID.String(), &models.NewContract{
		Title:        "Website build",
		Counterparty: " Globex ",
		Direction:    models.ContractDirectionSales,
		Amount:       decimal.NewFromInt(80000),
		StartDate:    &start,
	})
	require.NoError(t, err)
	require.Equal(t, "Globex", contract.Counterparty)
	require.Equal(t, models.ContractStatusActive, contract.Status)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *contract.StartDate)

	got, err := models.GetContract(ctx, db, venture.ID.String(), contract.ID)
	require.NoError(t, err)
	require.True(t, got.Amount.Equal(decimal.NewFromInt(80000)))
}

func TestCreateContractValidation(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, venture := testutil.NewVenture(t, "Strict")
	id := venture.ID.String()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := models.CreateContract(ctx, db, id, &models.NewContract{Title: "x", Counterparty: "y", Direction: "lease"})
	require.ErrorIs(t, err, models.ErrInvalidDirection)

	_, err = models.CreateContract(ctx, db, id, &models.NewContract{Title: "x", Counterparty: "y", Direction: models.ContractDirectionSales, StartDate: &start, EndDate: &end})
	require.Error(t, err)

	_, err = models.CreateContract(ctx, db, id, &models.NewContract{Title: "x", Counterparty: "y", Direction: models.ContractDirectionSales, Amount: decimal.NewFromInt(-5)})
	require.Error(t, err)

	_, err = models.CreateContract(ctx, db, uuid.NewString(), &models.NewContract{Title: "x", Counterparty: "y", Direction: models.ContractDirectionSales})
	require.ErrorIs(t, err, utils.ErrorRecordNotFound)

	require.Zero(t, testutil.Count[models.Contract](t, db))
}

func TestInsertRelationshipDuplicate(t *testing.T) {
	db := testutil.OpenDB(t)
	_, venture := testutil.NewVenture(t, "Dedup")
	id := venture.ID.String()

	first := &models.Relationship{CompanyId: id, Name: "Initech", Tags: []models.RoleTag{models.RoleTagClient}}
	created, err := models.InsertRelationship(db, first)
	require.NoError(t, err)
	require.True(t, created)

	second := &models.Relationship{CompanyId: id, Name: "Initech", Tags: []models.RoleTag{models.RoleTagSupplier}}
	created, err = models.InsertRelationship(db, second)
	require.NoError(t, err)
	require.False(t, created)

	require.EqualValues(t, 1, testutil.Count[models.Relationship](t, db))
}

func TestListRelationshipsByTag(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, venture := testutil.NewVenture(t, "Tags")
	id := venture.ID.String()

	for name, tag := range map[string]models.RoleTag{"A Corp": models.RoleTagClient, "B Corp": models.RoleTagSupplier} {
		_, err := models.InsertRelationship(db.WithContext(ctx), &models.Relationship{CompanyId: id, Name: name, Tags: []models.RoleTag{tag}})
		require.NoError(t, err)
	}

	supplier := models.RoleTagSupplier
	rels, err := models.ListRelationships(ctx, db, id, &supplier)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Equal(t, "B Corp", rels[0].Name)
	require.Equal(t, []models.RoleTag{models.RoleTagSupplier}, rels[0].Tags)

	all, err := models.ListRelationships(ctx, db, id, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
