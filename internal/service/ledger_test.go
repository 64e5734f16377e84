package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mbh206/shoppos-sub002/internal/model"
)

func TestRecordMovementUpdatesProjection(t *testing.T) {
	db := testDB(t)
	ing := seedIngredient(t, db, "Espresso Beans", "500", 3)
	ledger := NewLedger(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.RecordMovement(tx, MovementInput{
			IngredientID: ing.ID,
			Type:         model.MovementSaleDeduction,
			Quantity:     dec("-18"),
			Reason:       "sold 1 x espresso",
		})
		return err
	})
	require.NoError(t, err)

	require.True(t, stockOf(t, db, ing.ID).Equal(dec("482")))
	requireLedgerConsistent(t, db, ing.ID)
}

func TestRecordMovementZeroQuantity(t *testing.T) {
	db := testDB(t)
	ing := seedIngredient(t, db, "Milk", "1000", 1)
	ledger := NewLedger(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.RecordMovement(tx, MovementInput{
			IngredientID: ing.ID,
			Type:         model.MovementAdjustment,
			Quantity:     dec("0"),
		})
		return err
	})

	var invalid *InvalidQuantityError
	require.ErrorAs(t, err, &invalid)
	require.True(t, stockOf(t, db, ing.ID).Equal(dec("1000")))
}

func TestRecordInitialStockRejectsNegative(t *testing.T) {
	db := testDB(t)
	ing := seedIngredient(t, db, "Sugar", "0", 1)
	ledger := NewLedger(db)

	_, err := ledger.RecordInitialStock(context.Background(), ing.ID, dec("-5"), 1)

	var invalid *InvalidQuantityError
	require.ErrorAs(t, err, &invalid)
	require.True(t, stockOf(t, db, ing.ID).Equal(dec("0")))

	var count int64
	require.NoError(t, db.Model(&model.StockMovement{}).Where("ingredient_id = ?", ing.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestRecordMovementMissingIngredient(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.RecordMovement(tx, MovementInput{
			IngredientID: 9999,
			Type:         model.MovementPurchase,
			Quantity:     dec("5"),
		})
		return err
	})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "ingredient", notFound.Entity)
}

func TestRecordMovementTotalCostRounds(t *testing.T) {
	db := testDB(t)
	ing := seedIngredient(t, db, "Saffron", "10", 0)
	ledger := NewLedger(db)

	var movement *model.StockMovement
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		movement, err = ledger.RecordMovement(tx, MovementInput{
			IngredientID: ing.ID,
			Type:         model.MovementSaleDeduction,
			Quantity:     dec("-2.5"),
			UnitCost:     33,
		})
		return err
	})
	require.NoError(t, err)

	// round(2.5 * 33) = round(82.5) = 83, whole minor units only
	require.Equal(t, int64(83), movement.TotalCost)
	require.Equal(t, int64(33), movement.UnitCost)
}

func TestRecordMovementDefaultsUnitCost(t *testing.T) {
	db := testDB(t)
	ing := seedIngredient(t, db, "Flour", "100", 7)
	ledger := NewLedger(db)

	var movement *model.StockMovement
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		movement, err = ledger.RecordMovement(tx, MovementInput{
			IngredientID: ing.ID,
			Type:         model.MovementSaleDeduction,
			Quantity:     dec("-4"),
		})
		return err
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), movement.UnitCost)
	require.Equal(t, int64(28), movement.TotalCost)
}

func TestNegativeStockPermitted(t *testing.T) {
	db := testDB(t)
	ing := seedIngredient(t, db, "Sugar", "5", 1)
	ledger := NewLedger(db)

	// The ledger never rejects a movement for sign; callers guard the
	// legitimate path through the admission controller.
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.RecordMovement(tx, MovementInput{
			IngredientID: ing.ID,
			Type:         model.MovementAdjustment,
			Quantity:     dec("-8"),
			Reason:       "spoilage correction",
		})
		return err
	})
	require.NoError(t, err)

	require.True(t, stockOf(t, db, ing.ID).Equal(dec("-3")))
	requireLedgerConsistent(t, db, ing.ID)
}

func TestAdjustStock(t *testing.T) {
	db := testDB(t)
	ing := seedIngredient(t, db, "Butter", "20", 4)
	ledger := NewLedger(db)

	movement, err := ledger.AdjustStock(context.Background(), ing.ID, dec("-2.5"), "weekly count", 7)
	require.NoError(t, err)
	require.Equal(t, model.MovementAdjustment, movement.Type)
	require.Equal(t, uint(7), movement.PerformedBy)

	require.True(t, stockOf(t, db, ing.ID).Equal(dec("17.5")))
	requireLedgerConsistent(t, db, ing.ID)
}

func TestRebuildStockMatchesProjectionAcrossTypes(t *testing.T) {
	db := testDB(t)
	ing := seedIngredient(t, db, "Oat Milk", "0", 2)
	ledger := NewLedger(db)

	steps := []struct {
		movementType string
		qty          string
	}{
		{model.MovementInitial, "50"},
		{model.MovementPurchase, "25"},
		{model.MovementSaleDeduction, "-12"},
		{model.MovementSaleReturn, "12"},
		{model.MovementAdjustment, "-0.5"},
	}
	for _, step := range steps {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := ledger.RecordMovement(tx, MovementInput{
				IngredientID: ing.ID,
				Type:         step.movementType,
				Quantity:     dec(step.qty),
			})
			return err
		})
		require.NoError(t, err)
	}

	rebuilt, err := ledger.RebuildStock(context.Background(), ing.ID)
	require.NoError(t, err)
	require.True(t, rebuilt.Equal(dec("74.5")))
	requireLedgerConsistent(t, db, ing.ID)
}

func TestMovementsAreAppendOnlyHistory(t *testing.T) {
	db := testDB(t)
	ing := seedIngredient(t, db, "Tea", "30", 2)
	ledger := NewLedger(db)

	_, err := ledger.AdjustStock(context.Background(), ing.ID, dec("5"), "found a box", 1)
	require.NoError(t, err)

	movements, err := ledger.Movements(context.Background(), ing.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	require.Equal(t, model.MovementInitial, movements[0].Type)
	require.Equal(t, model.MovementAdjustment, movements[1].Type)
}
