package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mbh206/shoppos-sub002/internal/model"
)

func seedPurchaseOrder(t *testing.T, db *gorm.DB, lines ...model.PurchaseOrderItem) *model.PurchaseOrder {
	t.Helper()
	supplier := model.Supplier{Name: "Metro Foods", IsActive: true}
	require.NoError(t, db.Create(&supplier).Error)

	po := model.PurchaseOrder{SupplierID: supplier.ID, Status: model.PurchaseOrderDraft, Items: lines}
	require.NoError(t, db.Create(&po).Error)

	purchasing := NewPurchasing(db)
	sent, err := purchasing.SendPurchaseOrder(context.Background(), po.ID)
	require.NoError(t, err)
	require.Equal(t, model.PurchaseOrderSent, sent.Status)

	require.NoError(t, db.Preload("Items").First(&po, po.ID).Error)
	return &po
}

func TestReceivePartialThenComplete(t *testing.T) {
	db := testDB(t)
	flour := seedIngredient(t, db, "Flour", "0", 2)
	sugar := seedIngredient(t, db, "Sugar", "0", 1)
	po := seedPurchaseOrder(t, db,
		model.PurchaseOrderItem{IngredientID: flour.ID, OrderedQty: dec("5"), UnitCost: 2},
		model.PurchaseOrderItem{IngredientID: sugar.ID, OrderedQty: dec("10"), UnitCost: 1},
	)

	purchasing := NewPurchasing(db)

	// First delivery covers line one fully, line two partially.
	result, err := purchasing.ReceivePurchaseOrder(context.Background(), po.ID, []ReceiveLine{
		{LineID: po.Items[0].ID, ReceivedQty: dec("5")},
		{LineID: po.Items[1].ID, ReceivedQty: dec("3")},
	}, 4)
	require.NoError(t, err)
	require.Equal(t, model.PurchaseOrderPartial, result.Status)

	require.True(t, stockOf(t, db, flour.ID).Equal(dec("5")))
	require.True(t, stockOf(t, db, sugar.ID).Equal(dec("3")))

	// Second delivery completes line two.
	result, err = purchasing.ReceivePurchaseOrder(context.Background(), po.ID, []ReceiveLine{
		{LineID: po.Items[1].ID, ReceivedQty: dec("7")},
	}, 4)
	require.NoError(t, err)
	require.Equal(t, model.PurchaseOrderReceived, result.Status)
	require.NotNil(t, result.ReceivedAt)

	require.True(t, stockOf(t, db, flour.ID).Equal(dec("5")))
	require.True(t, stockOf(t, db, sugar.ID).Equal(dec("10")))
	requireLedgerConsistent(t, db, flour.ID)
	requireLedgerConsistent(t, db, sugar.ID)

	// Matching purchase movements, one per delivered line.
	var movements []model.StockMovement
	require.NoError(t, db.Where("type = ?", model.MovementPurchase).Order("id").Find(&movements).Error)
	require.Len(t, movements, 3)
	require.True(t, movements[0].Quantity.Equal(dec("5")))
	require.True(t, movements[1].Quantity.Equal(dec("3")))
	require.True(t, movements[2].Quantity.Equal(dec("7")))
	require.Equal(t, uint(4), movements[0].PerformedBy)
}

func TestReceiveCumulativeQuantities(t *testing.T) {
	db := testDB(t)
	flour := seedIngredient(t, db, "Flour", "0", 2)
	po := seedPurchaseOrder(t, db,
		model.PurchaseOrderItem{IngredientID: flour.ID, OrderedQty: dec("10"), UnitCost: 2},
	)

	purchasing := NewPurchasing(db)
	for i := 0; i < 3; i++ {
		_, err := purchasing.ReceivePurchaseOrder(context.Background(), po.ID, []ReceiveLine{
			{LineID: po.Items[0].ID, ReceivedQty: dec("3")},
		}, 1)
		require.NoError(t, err)
	}

	var line model.PurchaseOrderItem
	require.NoError(t, db.First(&line, po.Items[0].ID).Error)
	require.True(t, line.ReceivedQty.Equal(dec("9")))

	var po2 model.PurchaseOrder
	require.NoError(t, db.First(&po2, po.ID).Error)
	require.Equal(t, model.PurchaseOrderPartial, po2.Status)
}

func TestReceiveZeroLinesLeaveStatusUnchanged(t *testing.T) {
	db := testDB(t)
	flour := seedIngredient(t, db, "Flour", "0", 2)
	po := seedPurchaseOrder(t, db,
		model.PurchaseOrderItem{IngredientID: flour.ID, OrderedQty: dec("5"), UnitCost: 2},
	)

	purchasing := NewPurchasing(db)
	result, err := purchasing.ReceivePurchaseOrder(context.Background(), po.ID, []ReceiveLine{
		{LineID: po.Items[0].ID, ReceivedQty: dec("0")},
	}, 1)
	require.NoError(t, err)
	require.Equal(t, model.PurchaseOrderSent, result.Status)

	var count int64
	require.NoError(t, db.Model(&model.StockMovement{}).Where("type = ?", model.MovementPurchase).Count(&count).Error)
	require.Zero(t, count)
}

func TestReceiveNegativeQuantityRejected(t *testing.T) {
	db := testDB(t)
	flour := seedIngredient(t, db, "Flour", "0", 2)
	po := seedPurchaseOrder(t, db,
		model.PurchaseOrderItem{IngredientID: flour.ID, OrderedQty: dec("5"), UnitCost: 2},
	)

	purchasing := NewPurchasing(db)
	_, err := purchasing.ReceivePurchaseOrder(context.Background(), po.ID, []ReceiveLine{
		{LineID: po.Items[0].ID, ReceivedQty: dec("-1")},
	}, 1)

	var invalid *InvalidQuantityError
	require.ErrorAs(t, err, &invalid)
}

func TestReceiveUnknownLineAppliesNothing(t *testing.T) {
	db := testDB(t)
	flour := seedIngredient(t, db, "Flour", "0", 2)
	po := seedPurchaseOrder(t, db,
		model.PurchaseOrderItem{IngredientID: flour.ID, OrderedQty: dec("5"), UnitCost: 2},
	)

	purchasing := NewPurchasing(db)
	_, err := purchasing.ReceivePurchaseOrder(context.Background(), po.ID, []ReceiveLine{
		{LineID: po.Items[0].ID, ReceivedQty: dec("5")},
		{LineID: 9999, ReceivedQty: dec("3")},
	}, 1)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	// The receipt is atomic: the valid line must not have been applied.
	require.True(t, stockOf(t, db, flour.ID).Equal(dec("0")))
	var line model.PurchaseOrderItem
	require.NoError(t, db.First(&line, po.Items[0].ID).Error)
	require.True(t, line.ReceivedQty.IsZero())
	var po2 model.PurchaseOrder
	require.NoError(t, db.First(&po2, po.ID).Error)
	require.Equal(t, model.PurchaseOrderSent, po2.Status)
}

func TestReceiveWrongStatusRejected(t *testing.T) {
	db := testDB(t)
	flour := seedIngredient(t, db, "Flour", "0", 2)
	supplier := model.Supplier{Name: "Metro Foods", IsActive: true}
	require.NoError(t, db.Create(&supplier).Error)
	po := model.PurchaseOrder{
		SupplierID: supplier.ID,
		Status:     model.PurchaseOrderDraft,
		Items: []model.PurchaseOrderItem{
			{IngredientID: flour.ID, OrderedQty: dec("5"), UnitCost: 2},
		},
	}
	require.NoError(t, db.Create(&po).Error)

	purchasing := NewPurchasing(db)
	_, err := purchasing.ReceivePurchaseOrder(context.Background(), po.ID, []ReceiveLine{
		{LineID: po.Items[0].ID, ReceivedQty: dec("5")},
	}, 1)

	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	require.Equal(t, model.PurchaseOrderDraft, transition.From)
}
