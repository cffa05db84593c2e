package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/models"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxPublishBackoff = 10 * time.Minute

// Publisher sends one committed cascade event and returns the broker's message id.
type Publisher func(ctx context.Context, msg config.VentureEventMessage) (string, error)

// OutboxDispatcher publishes the VentureEventRecord rows written by committed
// cascades. Events of one venture go out in id order: while an earlier event
// of a venture waits for a retry, its later events stay queued.
type OutboxDispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	DispatcherID string
	Publish      Publisher

	BatchSize      int
	PollInterval   time.Duration
	LockTimeout    time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

func NewOutboxDispatcher(db *gorm.DB, logger *logrus.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:             db,
		Logger:         logger,
		DispatcherID:   uuid.NewString(),
		Publish:        config.PublishVentureEvent,
		BatchSize:      50,
		PollInterval:   500 * time.Millisecond,
		LockTimeout:    30 * time.Second,
		MaxAttempts:    20,
		InitialBackoff: 5 * time.Second,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.DispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

// DispatchOnce claims and publishes one batch. Returns the number of events sent.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) int {
	if d.DB == nil || d.Publish == nil {
		return 0
	}
	// the dispatcher works across ventures
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)
	now := time.Now().UTC()

	claimed, err := d.claimBatch(ctx, now)
	if err != nil {
		config.LogError(d.Logger, "outboxDispatcher.go", "DispatchOnce", "claim batch", d.DispatcherID, err)
		return 0
	}

	sent := 0
	held := map[string]bool{}
	for _, rec := range claimed {
		if held[rec.CompanyId] {
			d.unclaim(ctx, rec.ID)
			continue
		}
		msg := BuildEventMessage(rec)
		pubID, pubErr := d.Publish(ctx, msg)
		if pubErr != nil {
			held[rec.CompanyId] = true
			d.markPublishFailed(ctx, rec, pubErr)
			continue
		}
		d.markPublishSent(ctx, rec.ID, pubID, now)
		outboxPublishTotal.WithLabelValues(resultSuccess).Inc()
		sent++
	}
	return sent
}

// claimBatch moves eligible rows to PROCESSING under this dispatcher's lock.
// A row is eligible when it is PENDING, FAILED past its retry time, or
// PROCESSING under a lock older than LockTimeout, and no earlier event of the
// same venture is still FAILED or PROCESSING.
func (d *OutboxDispatcher) claimBatch(ctx context.Context, now time.Time) ([]models.VentureEventRecord, error) {
	staleBefore := now.Add(-d.LockTimeout)
	var claimed []models.VentureEventRecord
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where(`(
				(publish_status IN ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?))
				OR (publish_status = ? AND locked_at IS NOT NULL AND locked_at <= ?)
			)`,
				[]string{models.OutboxPublishStatusPending, models.OutboxPublishStatusFailed}, now,
				models.OutboxPublishStatusProcessing, staleBefore).
			Where(`NOT EXISTS (
				SELECT 1 FROM venture_event_records earlier
				WHERE earlier.company_id = venture_event_records.company_id
					AND earlier.id < venture_event_records.id
					AND earlier.publish_status IN ?
			)`, []string{models.OutboxPublishStatusFailed, models.OutboxPublishStatusProcessing}).
			Order("id ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Find(&claimed).Error
		if err != nil {
			return err
		}

		out := claimed[:0]
		for _, rec := range claimed {
			if d.MaxAttempts > 0 && rec.PublishAttempts >= d.MaxAttempts {
				msg := fmt.Sprintf("max publish attempts exceeded (%d)", d.MaxAttempts)
				if err := releaseRecord(tx, rec.ID, models.OutboxPublishStatusDead, map[string]interface{}{
					"last_publish_error": &msg,
				}); err != nil {
					return err
				}
				outboxPublishTotal.WithLabelValues(resultDead).Inc()
				continue
			}
			if err := tx.Model(&models.VentureEventRecord{}).Where("id = ?", rec.ID).Updates(map[string]interface{}{
				"publish_status":     models.OutboxPublishStatusProcessing,
				"locked_at":          now,
				"locked_by":          d.DispatcherID,
				"publish_attempts":   gorm.Expr("publish_attempts + 1"),
				"last_publish_error": nil,
				"next_attempt_at":    nil,
			}).Error; err != nil {
				return err
			}
			rec.PublishStatus = models.OutboxPublishStatusProcessing
			rec.PublishAttempts++
			out = append(out, rec)
		}
		claimed = out
		return nil
	})
	return claimed, err
}

// releaseRecord writes a terminal or retry status and drops the claim lock.
func releaseRecord(db *gorm.DB, recordID int, status string, fields map[string]interface{}) error {
	updates := map[string]interface{}{
		"publish_status":  status,
		"locked_at":       nil,
		"locked_by":       nil,
		"next_attempt_at": nil,
	}
	for k, v := range fields {
		updates[k] = v
	}
	return db.Model(&models.VentureEventRecord{}).Where("id = ?", recordID).Updates(updates).Error
}

// unclaim hands a held-back row back to the queue without spending an attempt.
func (d *OutboxDispatcher) unclaim(ctx context.Context, recordID int) {
	err := releaseRecord(d.DB.WithContext(ctx), recordID, models.OutboxPublishStatusPending, map[string]interface{}{
		"publish_attempts": gorm.Expr("publish_attempts - 1"),
	})
	if err != nil {
		config.LogError(d.Logger, "outboxDispatcher.go", "unclaim", "release held event", recordID, err)
	}
}

func (d *OutboxDispatcher) markPublishSent(ctx context.Context, recordID int, pubsubMsgID string, now time.Time) {
	err := releaseRecord(d.DB.WithContext(ctx), recordID, models.OutboxPublishStatusSent, map[string]interface{}{
		"published_at":       now,
		"pub_sub_message_id": pubsubMsgID,
	})
	if err != nil {
		config.LogError(d.Logger, "outboxDispatcher.go", "markPublishSent", "mark sent", recordID, err)
	}
}

func (d *OutboxDispatcher) markPublishFailed(ctx context.Context, rec models.VentureEventRecord, pubErr error) {
	db := d.DB.WithContext(ctx)
	msg := pubErr.Error()
	fields := logrus.Fields{
		"field":      "OutboxDispatcher",
		"company_id": rec.CompanyId,
		"cascade":    rec.Cascade,
		"trigger_id": rec.TriggerId,
		"record_id":  rec.ID,
		"attempt":    rec.PublishAttempts,
	}

	if d.MaxAttempts > 0 && rec.PublishAttempts >= d.MaxAttempts {
		outboxPublishTotal.WithLabelValues(resultDead).Inc()
		if err := releaseRecord(db, rec.ID, models.OutboxPublishStatusDead, map[string]interface{}{
			"last_publish_error": &msg,
		}); err != nil {
			config.LogError(d.Logger, "outboxDispatcher.go", "markPublishFailed", "mark dead", rec.ID, err)
		}
		if d.Logger != nil {
			d.Logger.WithFields(fields).Error("venture event moved to DEAD: " + msg)
		}
		return
	}

	outboxPublishTotal.WithLabelValues(resultFailure).Inc()
	next := time.Now().UTC().Add(PublishBackoff(d.InitialBackoff, rec.PublishAttempts))
	if err := releaseRecord(db, rec.ID, models.OutboxPublishStatusFailed, map[string]interface{}{
		"last_publish_error": &msg,
		"next_attempt_at":    next,
	}); err != nil {
		config.LogError(d.Logger, "outboxDispatcher.go", "markPublishFailed", "schedule retry", rec.ID, err)
	}
	if d.Logger != nil {
		fields["next_attempt_at"] = next.Format(time.RFC3339Nano)
		d.Logger.WithFields(fields).Error("venture event publish failed: " + msg)
	}
}

// PublishBackoff is initial doubled per earlier attempt, capped at ten minutes.
func PublishBackoff(initial time.Duration, attempt int) time.Duration {
	backoff := initial
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= maxPublishBackoff {
			return maxPublishBackoff
		}
	}
	return backoff
}

// BuildEventMessage builds the broker payload for rec. Attributes let
// subscribers filter by venture, cascade and touched module without decoding
// the body.
func BuildEventMessage(rec models.VentureEventRecord) config.VentureEventMessage {
	msg := models.ConvertToVentureEventMessage(rec)
	attrs := map[string]string{
		"company_id": rec.CompanyId,
		"cascade":    rec.Cascade,
		"trigger_id": strconv.Itoa(rec.TriggerId),
		"attempt":    strconv.Itoa(rec.PublishAttempts),
	}
	if rec.CorrelationId != "" {
		attrs["correlation_id"] = rec.CorrelationId
	}
	var effects []Effect
	if err := json.Unmarshal(rec.Effects, &effects); err == nil {
		seen := map[string]bool{}
		var modules []string
		for _, e := range effects {
			if !seen[e.Module] {
				seen[e.Module] = true
				modules = append(modules, e.Module)
			}
		}
		sort.Strings(modules)
		attrs["effect_count"] = strconv.Itoa(len(effects))
		attrs["modules"] = strings.Join(modules, ",")
	}
	msg.Attributes = attrs
	return msg
}
