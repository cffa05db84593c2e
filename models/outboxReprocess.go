package models

import (
	"context"

	"github.com/mmdatafocus/ventures_backend/utils"
	"gorm.io/gorm"
)

// RequeueVentureEvent puts FAILED and DEAD events of one cascade run back in
// the dispatcher's queue with a fresh attempt budget. SENT events are left alone.
func RequeueVentureEvent(ctx context.Context, db *gorm.DB, companyId string, cascade string, triggerId int) (*VentureEventStatus, error) {
	res := db.WithContext(ctx).
		Model(&VentureEventRecord{}).
		Where("company_id = ? AND cascade_kind = ? AND trigger_id = ? AND publish_status IN ?", companyId, cascade, triggerId,
			[]string{OutboxPublishStatusFailed, OutboxPublishStatusDead}).
		Updates(map[string]interface{}{
			"publish_status":     OutboxPublishStatusPending,
			"publish_attempts":   0,
			"next_attempt_at":    nil,
			"locked_at":          nil,
			"locked_by":          nil,
			"last_publish_error": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return GetVentureEventStatus(ctx, db, companyId, cascade, triggerId)
}
