package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/ventures_backend/config"
	"github.com/mmdatafocus/ventures_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Venture struct {
	ID           uuid.UUID       `gorm:"type:char(36);primary_key" json:"id"`
	Name         string          `gorm:"index;size:100;not null" json:"name"`
	Industry     string          `gorm:"size:100" json:"industry"`
	OwnerId      string          `gorm:"size:64;index" json:"owner_id"`
	OwnerContact string          `gorm:"size:255" json:"owner_contact"`
	Status       VentureStatus   `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	Capital      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"capital"`
	Description  string          `gorm:"type:text" json:"description"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewVenture struct {
	Name         string           `json:"name" binding:"required"`
	Industry     string           `json:"industry"`
	OwnerId      string           `json:"owner_id"`
	OwnerContact string           `json:"owner_contact"`
	Capital      *decimal.Decimal `json:"capital"`
	Description  string           `json:"description"`
}

type VentureFilter struct {
	Status  *VentureStatus
	OwnerId string
	Name    string
	Limit   int
}

// ventureTransitions is the complete lifecycle. A status missing from a row's
// allowed list can never be written over that status.
var ventureTransitions = map[VentureStatus][]VentureStatus{
	VentureStatusPending:    {VentureStatusActive, VentureStatusTerminated},
	VentureStatusActive:     {VentureStatusSuspended, VentureStatusAcquired, VentureStatusPackaged, VentureStatusTerminated},
	VentureStatusSuspended:  {VentureStatusActive, VentureStatusTerminated},
	VentureStatusAcquired:   {VentureStatusTerminated},
	VentureStatusPackaged:   {VentureStatusTerminated},
	VentureStatusTerminated: {},
}

// AllowedTransitions returns a copy of the statuses reachable from from.
func AllowedTransitions(from VentureStatus) []VentureStatus {
	allowed := ventureTransitions[from]
	out := make([]VentureStatus, len(allowed))
	copy(out, allowed)
	return out
}

func CanTransition(from, to VentureStatus) bool {
	for _, s := range ventureTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (v Venture) GetCompanyId() string {
	return v.ID.String()
}

func (input *NewVenture) validate(ctx context.Context, db *gorm.DB, exceptId string) error {
	if strings.TrimSpace(input.Name) == "" {
		return utils.InputErrorf("name is required")
	}
	if err := utils.ValidateUnique[Venture](ctx, db, "", "name", strings.TrimSpace(input.Name), exceptId); err != nil {
		return err
	}
	if input.Capital != nil && input.Capital.IsNegative() {
		return utils.InputErrorf("capital must not be negative")
	}
	if err := utils.ValidateContact(input.OwnerContact, config.PhoneRegion()); err != nil {
		return fmt.Errorf("owner contact: %w", err)
	}
	return nil
}

// RegisterVenture creates a venture in pending status.
func RegisterVenture(ctx context.Context, input *NewVenture) (*Venture, error) {
	db := config.GetDB()
	if err := input.validate(ctx, db, ""); err != nil {
		return nil, err
	}

	capital := decimal.Zero
	if input.Capital != nil {
		capital = *input.Capital
	}
	venture := Venture{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Industry:     input.Industry,
		OwnerId:      input.OwnerId,
		OwnerContact: strings.TrimSpace(input.OwnerContact),
		Status:       VentureStatusPending,
		Capital:      capital,
		Description:  input.Description,
	}

	companyId := venture.ID.String()
	ctx = utils.SetCompanyIdInContext(ctx, companyId)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&venture).Error; err != nil {
			return err
		}
		return createHistory(tx, companyId, HistoryActionCreate, companyId, "ventures", nil, venture,
			fmt.Sprintf("venture %s registered", venture.Name))
	})
	if err != nil {
		config.LogError(config.GetLogger(), "venture.go", "RegisterVenture", "create venture", input, err)
		return nil, err
	}
	return &venture, nil
}

// GetVenture reads through the redis cache.
// (may return RecordNotFound error)
func GetVenture(ctx context.Context, id string) (*Venture, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	cached, err := utils.RetrieveRedis[Venture](id)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}
	venture, err := findVenture(ctx, config.GetDB(), id)
	if err != nil {
		return nil, err
	}
	if venture == nil {
		return nil, utils.ErrorRecordNotFound
	}
	if err := utils.StoreRedis(venture, id); err != nil {
		return nil, err
	}
	return venture, nil
}

// findVenture returns (nil, nil) when no row matches.
func findVenture(ctx context.Context, db *gorm.DB, id string) (*Venture, error) {
	var venture Venture
	err := db.WithContext(ctx).Where("id = ?", id).First(&venture).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &venture, nil
}

// VentureExists is used by primary-record creation to check the owner inside a transaction.
func VentureExists(ctx context.Context, tx *gorm.DB, companyId string) error {
	count, err := utils.ResourceCountWhere[Venture](ctx, tx, "", "id = ?", companyId)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("venture %s: %w", companyId, utils.ErrorRecordNotFound)
	}
	return nil
}

func ListVentures(ctx context.Context, filter VentureFilter) ([]*Venture, error) {
	q := config.GetDB().WithContext(ctx).Model(&Venture{})
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.OwnerId != "" {
		q = q.Where("owner_id = ?", filter.OwnerId)
	}
	if filter.Name != "" {
		q = q.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var results []*Venture
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateVenture changes descriptive attributes. Status is only written by TransitionVenture.
func UpdateVenture(ctx context.Context, id string, input *NewVenture) (*Venture, error) {
	db := config.GetDB()
	if err := input.validate(ctx, db, id); err != nil {
		return nil, err
	}
	oldVenture, err := findVenture(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if oldVenture == nil {
		return nil, utils.ErrorRecordNotFound
	}

	changes := map[string]interface{}{
		"Name":         strings.TrimSpace(input.Name),
		"Industry":     input.Industry,
		"OwnerId":      input.OwnerId,
		"OwnerContact": strings.TrimSpace(input.OwnerContact),
		"Description":  input.Description,
	}
	if input.Capital != nil {
		changes["Capital"] = *input.Capital
	}

	venture := *oldVenture
	venture.Name = changes["Name"].(string)
	venture.Industry = input.Industry
	venture.OwnerId = input.OwnerId
	venture.OwnerContact = changes["OwnerContact"].(string)
	venture.Description = input.Description
	if input.Capital != nil {
		venture.Capital = *input.Capital
	}

	ctx = utils.SetCompanyIdInContext(ctx, id)
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Venture{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}
		return createHistory(tx, id, HistoryActionUpdate, id, "ventures", oldVenture, venture,
			fmt.Sprintf("venture %s updated", venture.Name))
	})
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedis[Venture](id); err != nil {
		return nil, err
	}
	return &venture, nil
}

// TransitionVenture moves a venture through its lifecycle.
// Returns (nil, nil) when the venture does not exist, and a *TransitionError
// when target is not reachable from the current status.
func TransitionVenture(ctx context.Context, id string, target VentureStatus) (*Venture, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w %q", ErrInvalidStatus, target)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	db := config.GetDB()
	ctx = utils.SetCompanyIdInContext(ctx, id)
	var updated *Venture
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		venture, err := findVenture(ctx, tx, id)
		if err != nil || venture == nil {
			return err
		}
		from := venture.Status
		if !CanTransition(from, target) {
			return &TransitionError{From: from, To: target, Allowed: AllowedTransitions(from)}
		}

		now := time.Now().UTC()
		// compare-and-set on the status read above
		res := tx.Model(&Venture{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{"status": target, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("venture %s changed status concurrently, expected %s", id, from)
		}
		before := *venture
		venture.Status = target
		venture.UpdatedAt = now
		if err := createHistory(tx, id, HistoryActionStatus, id, "ventures", before, venture,
			fmt.Sprintf("status: %s -> %s", from, target)); err != nil {
			return err
		}
		updated = venture
		return nil
	})
	if err != nil {
		config.LogError(config.GetLogger(), "venture.go", "TransitionVenture", "transition", map[string]string{"id": id, "target": string(target)}, err)
		return nil, err
	}
	if updated != nil {
		if err := utils.RemoveRedis[Venture](id); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// ActivateVenture is TransitionVenture(id, active).
func ActivateVenture(ctx context.Context, id string) (*Venture, error) {
	return TransitionVenture(ctx, id, VentureStatusActive)
}
