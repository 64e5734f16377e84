package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbh206/shoppos-sub002/internal/model"
)

func TestAssignGameExclusive(t *testing.T) {
	db := testDB(t)
	tableA := seedTable(t, db, "T1", 1)
	tableB := seedTable(t, db, "T2", 1)
	game := seedGame(t, db, "Catan")
	games := NewGames(db)

	session, err := games.AssignGame(context.Background(), tableA.ID, game.ID, 1)
	require.NoError(t, err)
	require.Nil(t, session.EndedAt)

	var loaded model.Game
	require.NoError(t, db.First(&loaded, game.ID).Error)
	require.False(t, loaded.IsAvailable)

	// Exclusion is global, not per table.
	_, err = games.AssignGame(context.Background(), tableB.ID, game.ID, 1)
	var inUse *GameInUseError
	require.ErrorAs(t, err, &inUse)
	require.Equal(t, game.ID, inUse.GameID)
	require.Equal(t, session.ID, inUse.SessionID)
	require.Equal(t, tableA.ID, inUse.TableID)

	// Release, then the same game assigns again.
	released, err := games.ReleaseGame(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, released.EndedAt)

	require.NoError(t, db.First(&loaded, game.ID).Error)
	require.True(t, loaded.IsAvailable)

	_, err = games.AssignGame(context.Background(), tableB.ID, game.ID, 1)
	require.NoError(t, err)
}

func TestReleaseGameExactlyOnce(t *testing.T) {
	db := testDB(t)
	table := seedTable(t, db, "T1", 1)
	game := seedGame(t, db, "Azul")
	games := NewGames(db)

	session, err := games.AssignGame(context.Background(), table.ID, game.ID, 1)
	require.NoError(t, err)

	_, err = games.ReleaseGame(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = games.ReleaseGame(context.Background(), session.ID)
	var ended *AlreadyEndedError
	require.ErrorAs(t, err, &ended)
	require.Equal(t, session.ID, ended.SessionID)
}

func TestAssignGameMarksEveryOpenOrderAtTable(t *testing.T) {
	db := testDB(t)
	table := seedTable(t, db, "T1", 3)
	game := seedGame(t, db, "Wingspan")
	seating := NewSeating(db)

	orderA := seedOrder(t, db)
	orderB := seedOrder(t, db)
	_, err := seating.StartSeatSession(context.Background(), table.Seats[0].ID, orderA.ID)
	require.NoError(t, err)
	_, err = seating.StartSeatSession(context.Background(), table.Seats[1].ID, orderB.ID)
	require.NoError(t, err)
	// Two seats on the same tab: the order must still get one marker only.
	_, err = seating.StartSeatSession(context.Background(), table.Seats[2].ID, orderA.ID)
	require.NoError(t, err)

	games := NewGames(db)
	session, err := games.AssignGame(context.Background(), table.ID, game.ID, 2)
	require.NoError(t, err)

	for _, orderID := range []uint{orderA.ID, orderB.ID} {
		var items []model.OrderItem
		require.NoError(t, db.Where("order_id = ? AND game_session_id = ?", orderID, session.ID).Find(&items).Error)
		require.Len(t, items, 1)
		require.Equal(t, model.ItemRetail, items[0].Kind)
		require.True(t, items[0].IsGame)
		require.Zero(t, items[0].UnitPrice)
		require.Zero(t, items[0].Total)
		require.Equal(t, game.Name, items[0].Name)
	}
}

func TestAssignGameIgnoresClosedOrdersAndOtherTables(t *testing.T) {
	db := testDB(t)
	table := seedTable(t, db, "T1", 2)
	other := seedTable(t, db, "T2", 1)
	game := seedGame(t, db, "Carcassonne")
	seating := NewSeating(db)
	orders := NewOrders(db)

	closed := seedOrder(t, db)
	_, err := seating.StartSeatSession(context.Background(), table.Seats[0].ID, closed.ID)
	require.NoError(t, err)
	_, err = orders.CloseOutOrder(context.Background(), closed.ID)
	require.NoError(t, err)

	elsewhere := seedOrder(t, db)
	_, err = seating.StartSeatSession(context.Background(), other.Seats[0].ID, elsewhere.ID)
	require.NoError(t, err)

	games := NewGames(db)
	session, err := games.AssignGame(context.Background(), table.ID, game.ID, 1)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.OrderItem{}).Where("game_session_id = ?", session.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestAssignGameMissingEntities(t *testing.T) {
	db := testDB(t)
	table := seedTable(t, db, "T1", 1)
	game := seedGame(t, db, "Root")
	games := NewGames(db)

	var notFound *NotFoundError
	_, err := games.AssignGame(context.Background(), table.ID, 999, 1)
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "game", notFound.Entity)

	_, err = games.AssignGame(context.Background(), 999, game.ID, 1)
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "table", notFound.Entity)

	_, err = games.ReleaseGame(context.Background(), 999)
	require.ErrorAs(t, err, &notFound)
}
