package service

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate applies a FOR UPDATE row lock where the dialect supports
// it. The sqlite test database has no row locks; its writes serialize on
// the database lock instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// notFoundOr maps gorm's record-not-found to a NotFoundError and wraps
// everything else as a PersistenceError.
func notFoundOr(err error, entity string, id uint, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &PersistenceError{Op: op, Err: err}
}
