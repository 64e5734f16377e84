package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAvailableServingsMinAcrossLines(t *testing.T) {
	db := testDB(t)
	beans := seedIngredient(t, db, "Beans", "100", 3)
	milk := seedIngredient(t, db, "Milk", "90", 1)
	latte := seedMenuItem(t, db, "Latte", 550,
		recipeSpec{beans.ID, "18", false},
		recipeSpec{milk.ID, "30", false},
	)

	availability := NewAvailability(db)
	servings, unconstrained, err := availability.AvailableServings(context.Background(), latte.ID)
	require.NoError(t, err)
	require.False(t, unconstrained)
	// floor(100/18)=5, floor(90/30)=3 -> min is 3
	require.Equal(t, int64(3), servings)
}

func TestAvailableServingsIgnoresOptionalLines(t *testing.T) {
	db := testDB(t)
	beans := seedIngredient(t, db, "Beans", "36", 3)
	cinnamon := seedIngredient(t, db, "Cinnamon", "0", 5)
	item := seedMenuItem(t, db, "Cappuccino", 500,
		recipeSpec{beans.ID, "18", false},
		recipeSpec{cinnamon.ID, "1", true},
	)

	availability := NewAvailability(db)
	servings, unconstrained, err := availability.AvailableServings(context.Background(), item.ID)
	require.NoError(t, err)
	require.False(t, unconstrained)
	require.Equal(t, int64(2), servings)
}

func TestAvailableServingsNoRecipeLines(t *testing.T) {
	db := testDB(t)
	item := seedMenuItem(t, db, "Bottled Water", 200)

	availability := NewAvailability(db)
	_, unconstrained, err := availability.AvailableServings(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, unconstrained)

	result, err := availability.CheckAvailable(context.Background(), item.ID, 50)
	require.NoError(t, err)
	require.True(t, result.Available)
	require.True(t, result.Unconstrained)
	require.Empty(t, result.Shortfalls)
}

func TestAvailableServingsNegativeStockClampsToZero(t *testing.T) {
	db := testDB(t)
	beans := seedIngredient(t, db, "Beans", "0", 3)
	ledger := NewLedger(db)
	_, err := ledger.AdjustStock(context.Background(), beans.ID, dec("-5"), "correction", 1)
	require.NoError(t, err)

	item := seedMenuItem(t, db, "Espresso", 300, recipeSpec{beans.ID, "18", false})

	availability := NewAvailability(db)
	servings, unconstrained, err := availability.AvailableServings(context.Background(), item.ID)
	require.NoError(t, err)
	require.False(t, unconstrained)
	require.Equal(t, int64(0), servings)
}

func TestCheckAvailableReportsEveryShortfall(t *testing.T) {
	db := testDB(t)
	beans := seedIngredient(t, db, "Beans", "10", 3)
	milk := seedIngredient(t, db, "Milk", "20", 1)
	sugar := seedIngredient(t, db, "Sugar", "500", 1)
	item := seedMenuItem(t, db, "Mocha", 600,
		recipeSpec{beans.ID, "18", false},
		recipeSpec{milk.ID, "30", false},
		recipeSpec{sugar.ID, "10", false},
	)

	availability := NewAvailability(db)
	result, err := availability.CheckAvailable(context.Background(), item.ID, 2)
	require.NoError(t, err)
	require.False(t, result.Available)
	// Beans and milk are both short; the caller needs the full list.
	require.Len(t, result.Shortfalls, 2)

	byID := map[uint]Shortfall{}
	for _, shortfall := range result.Shortfalls {
		byID[shortfall.IngredientID] = shortfall
	}
	require.True(t, byID[beans.ID].Need.Equal(dec("36")))
	require.True(t, byID[beans.ID].Have.Equal(dec("10")))
	require.True(t, byID[milk.ID].Need.Equal(dec("60")))
	require.True(t, byID[milk.ID].Have.Equal(dec("20")))
	require.NotContains(t, byID, sugar.ID)
}

func TestCheckAvailableFlourScenario(t *testing.T) {
	db := testDB(t)
	flour := seedIngredient(t, db, "Flour", "10", 2)
	item := seedMenuItem(t, db, "Pancakes", 800, recipeSpec{flour.ID, "4", false})

	availability := NewAvailability(db)

	result, err := availability.CheckAvailable(context.Background(), item.ID, 3)
	require.NoError(t, err)
	require.False(t, result.Available)
	require.Len(t, result.Shortfalls, 1)
	require.True(t, result.Shortfalls[0].Need.Equal(dec("12")))
	require.True(t, result.Shortfalls[0].Have.Equal(dec("10")))

	result, err = availability.CheckAvailable(context.Background(), item.ID, 2)
	require.NoError(t, err)
	require.True(t, result.Available)
}

func TestCheckAvailableInvalidQuantity(t *testing.T) {
	db := testDB(t)
	item := seedMenuItem(t, db, "Toast", 300)

	availability := NewAvailability(db)
	_, err := availability.CheckAvailable(context.Background(), item.ID, 0)

	var invalid *InvalidQuantityError
	require.ErrorAs(t, err, &invalid)
}

func TestCheckAvailableMissingItem(t *testing.T) {
	db := testDB(t)

	availability := NewAvailability(db)
	_, err := availability.CheckAvailable(context.Background(), 404, 1)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "menu item", notFound.Entity)
}
