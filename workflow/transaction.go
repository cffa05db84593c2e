package workflow

import (
	"context"

	"gorm.io/gorm"
)

// WithTransaction runs body in one database transaction: commit when body
// returns nil, rollback when it returns an error or panics. The error from
// body is returned unchanged.
func WithTransaction(ctx context.Context, db *gorm.DB, body func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(body)
}
