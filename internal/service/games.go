package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
	"github.com/mbh206/shoppos-sub002/prometheus"
)

// Games allocates physical games to tables. A game is a globally exclusive
// resource: at most one unended session may exist for it, across all
// tables. The storage layer backstops this with a partial unique index on
// game_sessions(game_id) where ended_at is null; the locked in-transaction
// check exists to report the competing session.
type Games struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewGames creates the game session allocator backed by db.
func NewGames(db *gorm.DB) *Games {
	return &Games{db: db, log: logger.GetLogger()}
}

// AssignGame starts a session for a game at a table. On success it marks
// the game unavailable and drops a zero-priced marker item into every
// currently-open order seated at the table, so the assignment shows on
// every active tab.
func (g *Games) AssignGame(ctx context.Context, tableID, gameID uint, actorID uint) (*model.GameSession, error) {
	var session model.GameSession
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game model.Game
		if err := lockForUpdate(tx).First(&game, gameID).Error; err != nil {
			return notFoundOr(err, "game", gameID, "lock game")
		}
		var table model.Table
		if err := tx.First(&table, tableID).Error; err != nil {
			return notFoundOr(err, "table", tableID, "load table")
		}

		var open model.GameSession
		err := tx.Where("game_id = ? AND ended_at IS NULL", gameID).First(&open).Error
		if err == nil {
			return &GameInUseError{GameID: gameID, SessionID: open.ID, TableID: open.TableID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return &PersistenceError{Op: "check open game session", Err: err}
		}

		session = model.GameSession{GameID: gameID, TableID: tableID, StartedAt: time.Now()}
		if err := tx.Create(&session).Error; err != nil {
			return &PersistenceError{Op: "create game session", Err: err}
		}
		if err := tx.Model(&game).Update("is_available", false).Error; err != nil {
			return &PersistenceError{Op: "mark game unavailable", Err: err}
		}

		orders, err := openOrdersAtTable(tx, tableID)
		if err != nil {
			return err
		}
		for _, order := range orders {
			item := model.OrderItem{
				OrderID:       order.ID,
				Kind:          model.ItemRetail,
				Name:          game.Name,
				Quantity:      1,
				UnitPrice:     0,
				Total:         0,
				GameSessionID: &session.ID,
				IsGame:        true,
			}
			if err := tx.Create(&item).Error; err != nil {
				return &PersistenceError{Op: "create game marker item", Err: err}
			}
			if err := appendOrderEvent(tx, &order, &item, model.EventItemAdded, actorID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordGameSession("assigned")
	g.log.Info("Game assigned",
		zap.Uint("game_id", gameID),
		zap.Uint("table_id", tableID),
		zap.Uint("session_id", session.ID),
		zap.Uint("performed_by", actorID))
	return &session, nil
}

// ReleaseGame ends a session and makes the game available again. Callable
// exactly once per session.
func (g *Games) ReleaseGame(ctx context.Context, sessionID uint) (*model.GameSession, error) {
	var session model.GameSession
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&session, sessionID).Error; err != nil {
			return notFoundOr(err, "game session", sessionID, "lock game session")
		}
		if session.EndedAt != nil {
			return &AlreadyEndedError{SessionID: sessionID}
		}

		now := time.Now()
		if err := tx.Model(&session).Update("ended_at", &now).Error; err != nil {
			return &PersistenceError{Op: "end game session", Err: err}
		}
		session.EndedAt = &now
		err := tx.Model(&model.Game{}).
			Where("id = ?", session.GameID).
			Update("is_available", true).Error
		if err != nil {
			return &PersistenceError{Op: "mark game available", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordGameSession("released")
	g.log.Info("Game released",
		zap.Uint("game_id", session.GameID),
		zap.Uint("session_id", session.ID))
	return &session, nil
}

// openOrdersAtTable finds the distinct open orders currently seated at a
// table via its seats' open sessions.
func openOrdersAtTable(tx *gorm.DB, tableID uint) ([]model.Order, error) {
	var orders []model.Order
	err := tx.
		Distinct("orders.*").
		Joins("JOIN seat_sessions ON seat_sessions.order_id = orders.id AND seat_sessions.ended_at IS NULL").
		Joins("JOIN seats ON seats.id = seat_sessions.seat_id").
		Where("seats.table_id = ? AND orders.status = ?", tableID, model.OrderOpen).
		Find(&orders).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list open orders at table", Err: err}
	}
	return orders, nil
}
