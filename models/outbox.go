package models

import (
	"encoding/json"
	"time"

	"github.com/mmdatafocus/ventures_backend/config"
)

// Outbox publish statuses for VentureEventRecord.PublishStatus.
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

const (
	CascadeContract    = "contract"
	CascadeTransaction = "transaction"
	CascadeStaff       = "staff"
)

// VentureEventRecord is written in the cascade transaction and published
// after commit by workflow.OutboxDispatcher.
type VentureEventRecord struct {
	ID               int        `gorm:"primary_key;index:idx_venture_outbox_dispatch,priority:3" json:"id"`
	CompanyId        string     `gorm:"size:36;not null;index" json:"company_id"`
	Cascade          string     `gorm:"column:cascade_kind;size:20;not null;index:idx_venture_event_trigger,priority:1" json:"cascade"`
	TriggerId        int        `gorm:"not null;index:idx_venture_event_trigger,priority:2" json:"trigger_id"`
	Effects          []byte     `gorm:"type:blob" json:"effects"`
	CorrelationId    string     `gorm:"size:64;index" json:"correlation_id"`
	PublishStatus    string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_venture_outbox_dispatch,priority:1" json:"publish_status"`
	PublishedAt      *time.Time `json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_venture_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r VentureEventRecord) GetCompanyId() string {
	return r.CompanyId
}

func ConvertToVentureEventMessage(record VentureEventRecord) config.VentureEventMessage {
	return config.VentureEventMessage{
		ID:            record.ID,
		CompanyId:     record.CompanyId,
		Cascade:       record.Cascade,
		TriggerId:     record.TriggerId,
		Effects:       json.RawMessage(record.Effects),
		CorrelationId: record.CorrelationId,
		OccurredAt:    record.CreatedAt,
	}
}
