package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/pkg/database"
)

var testDBSeq int64

// testDB opens a fresh in-memory database with the full schema. Each test
// gets its own named shared-cache database so parallel tests never collide.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedIngredient creates an ingredient with an initial-stock movement, so
// the projection and the ledger agree from the start.
func seedIngredient(t *testing.T, db *gorm.DB, name string, stock string, costPerUnit int64) *model.Ingredient {
	t.Helper()
	ing := model.Ingredient{Name: name, Unit: "g", CostPerUnit: costPerUnit, IsActive: true}
	require.NoError(t, db.Create(&ing).Error)

	qty := dec(stock)
	if !qty.IsZero() {
		ledger := NewLedger(db)
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			_, err := ledger.RecordMovement(tx, MovementInput{
				IngredientID: ing.ID,
				Type:         model.MovementInitial,
				Quantity:     qty,
				Reason:       "opening stock",
			})
			return err
		}))
	}

	require.NoError(t, db.First(&ing, ing.ID).Error)
	return &ing
}

// seedMenuItem creates a menu item with recipe lines. Each line is
// (ingredientID, perServing, optional).
type recipeSpec struct {
	ingredientID uint
	perServing   string
	optional     bool
}

func seedMenuItem(t *testing.T, db *gorm.DB, name string, price int64, lines ...recipeSpec) *model.MenuItem {
	t.Helper()
	item := model.MenuItem{Name: name, Price: price, IsActive: true}
	for _, line := range lines {
		item.RecipeLines = append(item.RecipeLines, model.RecipeLine{
			IngredientID: line.ingredientID,
			PerServing:   dec(line.perServing),
			IsOptional:   line.optional,
		})
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func seedOrder(t *testing.T, db *gorm.DB) *model.Order {
	t.Helper()
	orders := NewOrders(db)
	order, err := orders.OpenOrder(context.Background(), "table")
	require.NoError(t, err)
	return order
}

// seedTable creates a table with the given number of open seats.
func seedTable(t *testing.T, db *gorm.DB, name string, seats int) *model.Table {
	t.Helper()
	table := model.Table{Name: name, Capacity: seats, Status: model.TableAvailable}
	for i := 1; i <= seats; i++ {
		table.Seats = append(table.Seats, model.Seat{Number: i, Status: model.SeatOpen})
	}
	require.NoError(t, db.Create(&table).Error)
	return &table
}

func seedGame(t *testing.T, db *gorm.DB, name string) *model.Game {
	t.Helper()
	game := model.Game{Name: name, MinPlayers: 2, MaxPlayers: 4, IsAvailable: true}
	require.NoError(t, db.Create(&game).Error)
	return &game
}

// requireLedgerConsistent asserts the cached projection equals the movement
// sum, the core ledger invariant.
func requireLedgerConsistent(t *testing.T, db *gorm.DB, ingredientID uint) {
	t.Helper()
	ledger := NewLedger(db)
	rebuilt, err := ledger.RebuildStock(context.Background(), ingredientID)
	require.NoError(t, err)

	var ing model.Ingredient
	require.NoError(t, db.First(&ing, ingredientID).Error)
	require.True(t, ing.StockQty.Equal(rebuilt),
		"projection %s != ledger sum %s for ingredient %d", ing.StockQty, rebuilt, ingredientID)
}

func stockOf(t *testing.T, db *gorm.DB, ingredientID uint) decimal.Decimal {
	t.Helper()
	var ing model.Ingredient
	require.NoError(t, db.First(&ing, ingredientID).Error)
	return ing.StockQty
}
