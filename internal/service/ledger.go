package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
	"github.com/mbh206/shoppos-sub002/prometheus"
)

// Ledger is the append-only stock movement log plus the cached per-ingredient
// stock projection. Every stock change in the system goes through
// RecordMovement; the projection is never written directly.
type Ledger struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewLedger creates a stock ledger backed by db.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, log: logger.GetLogger()}
}

// MovementInput describes one movement to append.
type MovementInput struct {
	IngredientID uint
	Type         string
	Quantity     decimal.Decimal
	UnitCost     int64
	Reason       string
	Reference    string
	PerformedBy  uint
}

// RecordMovement appends a movement and updates the ingredient's cached
// stock quantity by the signed amount, inside the caller's transaction.
// The ingredient row is locked for the duration. A movement that leaves
// stock negative is permitted but logged and counted: negative stock
// signals a process-order violation, and the admission controller is the
// guard for the legitimate path.
func (l *Ledger) RecordMovement(tx *gorm.DB, in MovementInput) (*model.StockMovement, error) {
	if in.Quantity.IsZero() {
		return nil, &InvalidQuantityError{Detail: "movement quantity must be non-zero"}
	}

	var ing model.Ingredient
	if err := lockForUpdate(tx).First(&ing, in.IngredientID).Error; err != nil {
		return nil, notFoundOr(err, "ingredient", in.IngredientID, "lock ingredient")
	}

	unitCost := in.UnitCost
	if unitCost == 0 {
		unitCost = ing.CostPerUnit
	}
	totalCost := in.Quantity.Abs().Mul(decimal.NewFromInt(unitCost)).Round(0).IntPart()

	movement := model.StockMovement{
		IngredientID: ing.ID,
		Type:         in.Type,
		Quantity:     in.Quantity,
		UnitCost:     unitCost,
		TotalCost:    totalCost,
		Reason:       in.Reason,
		Reference:    in.Reference,
		PerformedBy:  in.PerformedBy,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, &PersistenceError{Op: "append movement", Err: err}
	}

	newQty := ing.StockQty.Add(in.Quantity)
	if err := tx.Model(&ing).Update("stock_qty", newQty).Error; err != nil {
		return nil, &PersistenceError{Op: "update stock projection", Err: err}
	}

	if newQty.IsNegative() {
		l.log.Warn("Ingredient stock went negative",
			zap.Uint("ingredient_id", ing.ID),
			zap.String("ingredient", ing.Name),
			zap.String("movement_type", in.Type),
			zap.String("stock_qty", newQty.String()))
		prometheus.RecordNegativeStock()
	}

	prometheus.RecordStockMovement(in.Type)
	prometheus.UpdateIngredientStock(ing.ID, ing.Name, newQty.InexactFloat64())

	return &movement, nil
}

// AdjustStock records a manual adjustment movement in its own transaction.
func (l *Ledger) AdjustStock(ctx context.Context, ingredientID uint, qty decimal.Decimal, reason string, actorID uint) (*model.StockMovement, error) {
	var movement *model.StockMovement
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		movement, err = l.RecordMovement(tx, MovementInput{
			IngredientID: ingredientID,
			Type:         model.MovementAdjustment,
			Quantity:     qty,
			Reason:       reason,
			PerformedBy:  actorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	l.log.Info("Stock adjusted",
		zap.Uint("ingredient_id", ingredientID),
		zap.String("quantity", qty.String()),
		zap.String("reason", reason),
		zap.Uint("performed_by", actorID))
	return movement, nil
}

// RecordInitialStock records an ingredient's opening balance in its own
// transaction, so the ledger covers the full history from day one. Opening
// balances must not be negative.
func (l *Ledger) RecordInitialStock(ctx context.Context, ingredientID uint, qty decimal.Decimal, actorID uint) (*model.StockMovement, error) {
	if qty.IsNegative() {
		return nil, &InvalidQuantityError{Detail: "initial stock must not be negative"}
	}
	var movement *model.StockMovement
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		movement, err = l.RecordMovement(tx, MovementInput{
			IngredientID: ingredientID,
			Type:         model.MovementInitial,
			Quantity:     qty,
			Reason:       "opening stock",
			PerformedBy:  actorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// Movements returns the full movement history for an ingredient, oldest
// first.
func (l *Ledger) Movements(ctx context.Context, ingredientID uint) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := l.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("id").
		Find(&movements).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list movements", Err: err}
	}
	return movements, nil
}

// RebuildStock sums all movements for an ingredient. The result must equal
// the cached projection at all times; reconciliation jobs and tests compare
// the two rather than trusting the cache.
func (l *Ledger) RebuildStock(ctx context.Context, ingredientID uint) (decimal.Decimal, error) {
	row := l.db.WithContext(ctx).
		Model(&model.StockMovement{}).
		Where("ingredient_id = ?", ingredientID).
		Select("SUM(quantity)").
		Row()
	var total decimal.NullDecimal
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, &PersistenceError{Op: "rebuild stock", Err: err}
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
