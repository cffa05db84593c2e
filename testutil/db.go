// Package testutil opens isolated databases for package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// OpenDB returns a migrated in-memory SQLite handle with the tenant guard
// installed, and makes it the global config.GetDB() for the test's lifetime.
// Redis is disabled.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Use(config.NewTenantGuardPlugin()))
	require.NoError(t, models.MigrateTables(db))

	prev := config.GetDB()
	config.SetDB(db)
	config.SetRedisClient(nil)
	t.Cleanup(func() {
		config.SetDB(prev)
		_ = sqlDB.Close()
	})
	return db
}

// ErrInjected is returned by callbacks installed with FailCreatesOn.
var ErrInjected = errors.New("injected failure")

// FailCreatesOn makes every INSERT into table fail on db.
func FailCreatesOn(t testing.TB, db *gorm.DB, table string) {
	t.Helper()
	err := db.Callback().Create().Before("gorm:create").Register("testutil:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(ErrInjected)
		}
	})
	require.NoError(t, err)
}

// NewVenture registers an active venture and returns a context scoped to it.
func NewVenture(t testing.TB, name string) (context.Context, *models.Venture) {
	t.Helper()
	capital := decimal.NewFromInt(100000)
	venture, err := models.RegisterVenture(context.Background(), &models.NewVenture{
		Name:     name,
		Industry: "software",
		OwnerId:  "owner-1",
		Capital:  &capital,
	})
	require.NoError(t, err)
	ctx := utils.SetCompanyIdInContext(context.Background(), venture.ID.String())
	venture, err = models.ActivateVenture(ctx, venture.ID.String())
	require.NoError(t, err)
	require.NotNil(t, venture)
	return ctx, venture
}

// Count returns the number of rows of T, across all ventures.
func Count[T any](t testing.TB, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)
	require.NoError(t, db.WithContext(ctx).Model(new(T)).Count(&n).Error)
	return n
}
