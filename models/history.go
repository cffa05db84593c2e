package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mmdatafocus/ventures_backend/utils"
	"gorm.io/gorm"
)

const (
	HistoryActionCreate = "CREATE"
	HistoryActionUpdate = "UPDATE"
	HistoryActionStatus = "STATUS"
)

// History is the audit trail of writes made through entry points.
type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	CompanyId     string    `gorm:"size:36;index;not null" json:"company_id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   string    `gorm:"size:64;index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index;not null;default:0" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func createHistory(tx *gorm.DB,
	companyId string,
	actionType string,
	referenceId string,
	referenceType string,
	before interface{},
	after interface{},
	description string) error {

	var b, a []byte
	if before != nil {
		b, _ = json.Marshal(before)
	}
	if after != nil {
		a, _ = json.Marshal(after)
	}

	// acting user is optional: internal tools and cascades run without one
	ctx := tx.Statement.Context
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, ok := utils.GetUserNameFromContext(ctx)
	if !ok || userName == "" {
		userName = "system"
	}

	history := History{
		CompanyId:     companyId,
		ActionType:    actionType,
		Before:        string(b),
		After:         string(a),
		Description:   description,
		ReferenceID:   referenceId,
		ReferenceType: referenceType,
		UserId:        userId,
		UserName:      userName,
	}
	return tx.Create(&history).Error
}

// ListHistory returns a venture's audit trail, newest first.
func ListHistory(ctx context.Context, db *gorm.DB, companyId string, referenceType string) ([]*History, error) {
	q := db.WithContext(ctx).Where("company_id = ?", companyId)
	if referenceType != "" {
		q = q.Where("reference_type = ?", referenceType)
	}
	var results []*History
	if err := q.Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
