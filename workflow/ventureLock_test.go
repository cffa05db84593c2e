package workflow_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/testutil"
	"github.com/mmdatafocus/ventures_backend/workflow"
	"github.com/stretchr/testify/require"
)

func TestLockVentureExcludesSameVenture(t *testing.T) {
	testutil.OpenDB(t)
	key := uuid.NewString()

	release, err := workflow.LockVenture(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = workflow.LockVenture(ctx, key)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := workflow.LockVenture(context.Background(), uuid.NewString())
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := workflow.LockVenture(context.Background(), key)
	require.NoError(t, err)
	again()
}

func TestLockVentureWaitsForRelease(t *testing.T) {
	testutil.OpenDB(t)
	key := uuid.NewString()

	release, err := workflow.LockVenture(context.Background(), key)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		next, err := workflow.LockVenture(context.Background(), key)
		if err == nil {
			next()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the lock before release")
	case <-time.After(30 * time.Millisecond):
	}
	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestConcurrentContractsShareOneRelationship(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, venture := testutil.NewVenture(t, "Concurrent")
	engine := newEngine(db)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := engine.RecordContract(ctx, venture.ID.String(), &models.NewContract{
				Title:        fmt.Sprintf("Order %d", i),
				Counterparty: "Globex",
				Direction:    models.ContractDirectionProcurement,
				Amount:       money("100"),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.EqualValues(t, 1, testutil.Count[models.Relationship](t, db))
	require.EqualValues(t, workers, testutil.Count[models.RelationshipNote](t, db))
	require.EqualValues(t, workers, testutil.Count[models.ProcurementOrder](t, db))
	require.EqualValues(t, workers, testutil.Count[models.VentureEventRecord](t, db))
}
