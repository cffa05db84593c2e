package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/testutil"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/mmdatafocus/ventures_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedToday = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newEngine(db *gorm.DB) *workflow.Engine {
	engine := workflow.NewEngine(db, config.GetLogger())
	engine.Now = func() time.Time { return fixedToday }
	return engine
}

func date(s string) *time.Time {
	d, err := utils.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// allRows reads every row of T regardless of venture.
func allRows[T any](t *testing.T, db *gorm.DB) []T {
	t.Helper()
	var rows []T
	ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)
	require.NoError(t, db.WithContext(ctx).Order("id").Find(&rows).Error)
	return rows
}

type rowCounts struct {
	contracts, relationships, notes, projects, tasks, orders, staff, ledger, invoices, milestones, outbox int64
}

func countAll(t *testing.T, db *gorm.DB) rowCounts {
	return rowCounts{
		contracts:     testutil.Count[models.Contract](t, db),
		relationships: testutil.Count[models.Relationship](t, db),
		notes:         testutil.Count[models.RelationshipNote](t, db),
		projects:      testutil.Count[models.DeliveryProject](t, db),
		tasks:         testutil.Count[models.DeliveryTask](t, db),
		orders:        testutil.Count[models.ProcurementOrder](t, db),
		staff:         testutil.Count[models.StaffMember](t, db),
		ledger:        testutil.Count[models.LedgerTransaction](t, db),
		invoices:      testutil.Count[models.SalesInvoice](t, db),
		milestones:    testutil.Count[models.Milestone](t, db),
		outbox:        testutil.Count[models.VentureEventRecord](t, db),
	}
}

func effectsOf(effects []workflow.Effect, module string) []workflow.Effect {
	var out []workflow.Effect
	for _, e := range effects {
		if e.Module == module {
			out = append(out, e)
		}
	}
	return out
}
