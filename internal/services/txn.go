package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// runVersionWrite executes fn inside one transaction and retries it once
// when a concurrent writer claimed the same version number (surfaced as a
// duplicate-key error on the (owner, version_number) unique index). The
// retry restarts the whole transaction so the max+1 computation re-reads
// the ledger; fn must therefore be safe to run twice.
func runVersionWrite(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = db.WithContext(ctx).Transaction(fn)
	}
	return err
}
