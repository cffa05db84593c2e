package workflow_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/testutil"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/mmdatafocus/ventures_backend/workflow"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func recordOneCascade(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx, venture := testutil.NewVenture(t, "Dispatch")
	_, _, err := newEngine(db).RecordStaff(ctx, venture.ID.String(), &models.NewStaffMember{Name: "Ann", Position: "Engineer"})
	require.NoError(t, err)
}

func TestDispatchOncePublishesPending(t *testing.T) {
	db := testutil.OpenDB(t)
	recordOneCascade(t, db)

	var published []config.VentureEventMessage
	dispatcher := workflow.NewOutboxDispatcher(db, config.GetLogger())
	dispatcher.Publish = func(ctx context.Context, msg config.VentureEventMessage) (string, error) {
		published = append(published, msg)
		return "msg-1", nil
	}

	require.Equal(t, 1, dispatcher.DispatchOnce(context.Background()))
	require.Len(t, published, 1)
	require.Equal(t, models.CascadeStaff, published[0].Cascade)
	require.Contains(t, string(published[0].Effects), `"module":"milestones"`)

	records := allRows[models.VentureEventRecord](t, db)
	require.Len(t, records, 1)
	require.Equal(t, models.OutboxPublishStatusSent, records[0].PublishStatus)
	require.NotNil(t, records[0].PubSubMessageId)
	require.Equal(t, "msg-1", *records[0].PubSubMessageId)
	require.NotNil(t, records[0].PublishedAt)
	require.Equal(t, 1, records[0].PublishAttempts)

	// sent rows are not picked up again
	require.Equal(t, 0, dispatcher.DispatchOnce(context.Background()))
	require.Len(t, published, 1)
}

func TestDispatchOnceSchedulesRetryOnFailure(t *testing.T) {
	db := testutil.OpenDB(t)
	recordOneCascade(t, db)

	dispatcher := workflow.NewOutboxDispatcher(db, config.GetLogger())
	calls := 0
	dispatcher.Publish = func(context.Context, config.VentureEventMessage) (string, error) {
		calls++
		return "", errors.New("broker unavailable")
	}

	require.Equal(t, 0, dispatcher.DispatchOnce(context.Background()))
	records := allRows[models.VentureEventRecord](t, db)
	require.Equal(t, models.OutboxPublishStatusFailed, records[0].PublishStatus)
	require.NotNil(t, records[0].NextAttemptAt)
	require.NotNil(t, records[0].LastPublishError)
	require.Equal(t, "broker unavailable", *records[0].LastPublishError)

	// backoff keeps the row out of the next batch
	require.Equal(t, 0, dispatcher.DispatchOnce(context.Background()))
	require.Equal(t, 1, calls)
}

func TestDispatchOnceMarksDeadAfterMaxAttempts(t *testing.T) {
	db := testutil.OpenDB(t)
	recordOneCascade(t, db)

	dispatcher := workflow.NewOutboxDispatcher(db, config.GetLogger())
	dispatcher.MaxAttempts = 1
	dispatcher.Publish = func(context.Context, config.VentureEventMessage) (string, error) {
		return "", errors.New("rejected")
	}

	dispatcher.DispatchOnce(context.Background())
	records := allRows[models.VentureEventRecord](t, db)
	require.Equal(t, models.OutboxPublishStatusDead, records[0].PublishStatus)
	require.Nil(t, records[0].NextAttemptAt)
}

func TestRequeueDeadEvent(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, venture := testutil.NewVenture(t, "Requeue")
	staff, _, err := newEngine(db).RecordStaff(ctx, venture.ID.String(), &models.NewStaffMember{Name: "Ann"})
	require.NoError(t, err)

	dispatcher := workflow.NewOutboxDispatcher(db, config.GetLogger())
	dispatcher.MaxAttempts = 1
	dispatcher.Publish = func(context.Context, config.VentureEventMessage) (string, error) {
		return "", errors.New("rejected")
	}
	dispatcher.DispatchOnce(context.Background())

	status, err := models.GetVentureEventStatus(ctx, db, venture.ID.String(), models.CascadeStaff, staff.ID)
	require.NoError(t, err)
	require.Equal(t, models.OutboxPublishStatusDead, status.PublishStatus)

	status, err = models.RequeueVentureEvent(ctx, db, venture.ID.String(), models.CascadeStaff, staff.ID)
	require.NoError(t, err)
	require.Equal(t, models.OutboxPublishStatusPending, status.PublishStatus)
	require.Zero(t, status.PublishAttempts)

	dispatcher.Publish = func(context.Context, config.VentureEventMessage) (string, error) { return "msg-2", nil }
	require.Equal(t, 1, dispatcher.DispatchOnce(context.Background()))

	// nothing left to requeue once sent
	_, err = models.RequeueVentureEvent(ctx, db, venture.ID.String(), models.CascadeStaff, staff.ID)
	require.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestDispatchHoldsLaterEventsOfFailedVenture(t *testing.T) {
	db := testutil.OpenDB(t)
	engine := newEngine(db)
	ctxA, a := testutil.NewVenture(t, "Ordered")
	ctxB, b := testutil.NewVenture(t, "Bystander")
	for _, name := range []string{"Ann", "Bo"} {
		_, _, err := engine.RecordStaff(ctxA, a.ID.String(), &models.NewStaffMember{Name: name})
		require.NoError(t, err)
	}
	_, _, err := engine.RecordStaff(ctxB, b.ID.String(), &models.NewStaffMember{Name: "Cy"})
	require.NoError(t, err)

	var published []int
	dispatcher := workflow.NewOutboxDispatcher(db, config.GetLogger())
	dispatcher.Publish = func(_ context.Context, msg config.VentureEventMessage) (string, error) {
		if msg.CompanyId == a.ID.String() && len(published) == 0 {
			published = append(published, -msg.ID)
			return "", errors.New("broker unavailable")
		}
		published = append(published, msg.ID)
		return "ok", nil
	}

	require.Equal(t, 1, dispatcher.DispatchOnce(context.Background()))
	records := allRows[models.VentureEventRecord](t, db)
	require.Len(t, records, 3)
	require.Equal(t, models.OutboxPublishStatusFailed, records[0].PublishStatus)
	require.Equal(t, models.OutboxPublishStatusPending, records[1].PublishStatus)
	require.Zero(t, records[1].PublishAttempts)
	require.Equal(t, models.OutboxPublishStatusSent, records[2].PublishStatus)
	require.Equal(t, []int{-records[0].ID, records[2].ID}, published)

	// the queued event waits behind the failed one
	require.Equal(t, 0, dispatcher.DispatchOnce(context.Background()))

	skip := utils.SetSkipTenantScopeInContext(context.Background(), true)
	require.NoError(t, db.WithContext(skip).Model(&models.VentureEventRecord{}).
		Where("id = ?", records[0].ID).Update("next_attempt_at", time.Now().UTC().Add(-time.Hour)).Error)

	// the retried event goes first, the queued one follows on the next pass
	require.Equal(t, 1, dispatcher.DispatchOnce(context.Background()))
	require.Equal(t, 1, dispatcher.DispatchOnce(context.Background()))
	require.Equal(t, []int{-records[0].ID, records[2].ID, records[0].ID, records[1].ID}, published)
}

func TestBuildEventMessageAttributes(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx, venture := testutil.NewVenture(t, "Attributes")
	contract, _, err := newEngine(db).RecordContract(ctx, venture.ID.String(), &models.NewContract{
		Title: "Supply deal", Counterparty: "Acme Parts", Direction: models.ContractDirectionProcurement, Amount: money("1200"),
	})
	require.NoError(t, err)

	records := allRows[models.VentureEventRecord](t, db)
	require.Len(t, records, 1)
	msg := workflow.BuildEventMessage(records[0])
	require.Equal(t, map[string]string{
		"company_id":     venture.ID.String(),
		"cascade":        models.CascadeContract,
		"trigger_id":     strconv.Itoa(contract.ID),
		"attempt":        "0",
		"correlation_id": records[0].CorrelationId,
		"effect_count":   "3",
		"modules":        "milestones,procurement_orders,relationships",
	}, msg.Attributes)
}

func TestPublishBackoff(t *testing.T) {
	require.Equal(t, 5*time.Second, workflow.PublishBackoff(5*time.Second, 1))
	require.Equal(t, 20*time.Second, workflow.PublishBackoff(5*time.Second, 3))
	require.Equal(t, 10*time.Minute, workflow.PublishBackoff(5*time.Second, 12))
}
