package utils

import (
	"context"
	"reflect"

	"gorm.io/gorm"
)

func ValidateUnique[T any](ctx context.Context, db *gorm.DB, companyId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if exceptId == nil || reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, db, companyId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, db, companyId, column+" = ? AND NOT id = ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return InputErrorf("duplicate %s", column)
	}
	return nil
}

// count records, using WHERE company_id = ? AND $condition
// companyId can be blank for tables without an owner (ventures)
func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, companyId string, condition string, value ...interface{}) (int64, error) {
	var model T
	dbCtx := db.WithContext(ctx).Model(&model)
	if companyId != "" {
		dbCtx = dbCtx.Where("company_id = ?", companyId)
	}
	dbCtx = dbCtx.Where(condition, value...)
	var count int64
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
