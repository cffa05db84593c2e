package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/ventures_backend/utils"
	"gorm.io/gorm"
)

// VentureEventStatus is the delivery state of the latest event announcing
// one cascade run.
type VentureEventStatus struct {
	RecordId         int        `json:"record_id"`
	Cascade          string     `json:"cascade"`
	TriggerId        int        `json:"trigger_id"`
	PublishStatus    string     `json:"publish_status"`
	PublishAttempts  int        `json:"publish_attempts"`
	NextAttemptAt    *time.Time `json:"next_attempt_at"`
	LastPublishError *string    `json:"last_publish_error"`
	PubSubMessageId  *string    `json:"pubsub_message_id"`
	CorrelationId    string     `json:"correlation_id"`
	CreatedAt        time.Time  `json:"created_at"`
	PublishedAt      *time.Time `json:"published_at"`
}

// GetVentureEventStatus returns the newest event for (cascade, triggerId).
// (may return RecordNotFound error)
func GetVentureEventStatus(ctx context.Context, db *gorm.DB, companyId string, cascade string, triggerId int) (*VentureEventStatus, error) {
	var rec VentureEventRecord
	err := db.WithContext(ctx).
		Where("company_id = ? AND cascade_kind = ? AND trigger_id = ?", companyId, cascade, triggerId).
		Order("id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &VentureEventStatus{
		RecordId:         rec.ID,
		Cascade:          rec.Cascade,
		TriggerId:        rec.TriggerId,
		PublishStatus:    rec.PublishStatus,
		PublishAttempts:  rec.PublishAttempts,
		NextAttemptAt:    rec.NextAttemptAt,
		LastPublishError: rec.LastPublishError,
		PubSubMessageId:  rec.PubSubMessageId,
		CorrelationId:    rec.CorrelationId,
		CreatedAt:        rec.CreatedAt,
		PublishedAt:      rec.PublishedAt,
	}, nil
}
