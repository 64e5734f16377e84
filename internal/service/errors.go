package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NotFoundError reports a missing entity by kind and id.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidQuantityError reports a zero or malformed quantity.
type InvalidQuantityError struct {
	Detail string
}

func (e *InvalidQuantityError) Error() string {
	return "invalid quantity: " + e.Detail
}

// Shortfall describes one ingredient whose stock cannot cover a requested
// quantity.
type Shortfall struct {
	IngredientID uint            `json:"ingredient_id"`
	Name         string          `json:"name"`
	Have         decimal.Decimal `json:"have"`
	Need         decimal.Decimal `json:"need"`
}

// InsufficientStockError carries the full shortfall list so callers can
// tell staff exactly which ingredients are short, not just the first.
type InsufficientStockError struct {
	MenuItemID uint
	Requested  int64
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for menu item %d (requested %d, %d ingredient(s) short)",
		e.MenuItemID, e.Requested, len(e.Shortfalls))
}

// GameInUseError reports the competing open session blocking an assignment.
type GameInUseError struct {
	GameID    uint
	SessionID uint
	TableID   uint
}

func (e *GameInUseError) Error() string {
	return fmt.Sprintf("game %d is in use by session %d at table %d", e.GameID, e.SessionID, e.TableID)
}

// AlreadyEndedError reports a second release of a game session.
type AlreadyEndedError struct {
	SessionID uint
}

func (e *AlreadyEndedError) Error() string {
	return fmt.Sprintf("game session %d has already ended", e.SessionID)
}

// InvalidTransitionError reports a disallowed seat, table, order or
// purchase-order status move.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Entity, e.From, e.To)
}

// PersistenceError wraps a backing-store failure. It is always surfaced to
// the caller, never swallowed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
