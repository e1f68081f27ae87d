package database

import (
	"context"

	"gorm.io/gorm"
)

// WithinTransaction runs fn inside a unit of work. When tx is nil a new
// transaction is opened on db; when tx is non-nil the call participates in
// that transaction instead of opening a nested one. Every repository method
// in the ingestion pipeline takes the same optional tx parameter, so the
// nesting behavior is visible at each call site.
func WithinTransaction(ctx context.Context, db *gorm.DB, tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Conn resolves the handle a repository method should use: the unit of
// work when one was passed in, the base connection otherwise.
func Conn(ctx context.Context, db *gorm.DB, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
