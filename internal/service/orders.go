package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
)

// Orders owns the order lifecycle: open -> awaiting_payment -> paid | void.
// Paying or voiding an order ends its seat sessions and releases seats no
// other open session still holds; voiding also returns deductible items'
// stock to the ledger.
type Orders struct {
	db     *gorm.DB
	ledger *Ledger
	log    *zap.Logger
}

// NewOrders creates the order lifecycle service backed by db.
func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db, ledger: NewLedger(db), log: logger.GetLogger()}
}

// OpenOrder starts a new open order for a sales channel.
func (o *Orders) OpenOrder(ctx context.Context, channel string) (*model.Order, error) {
	if channel == "" {
		channel = "table"
	}
	order := model.Order{Status: model.OrderOpen, Channel: channel, OpenedAt: time.Now()}
	if err := o.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, &PersistenceError{Op: "create order", Err: err}
	}
	o.log.Info("Order opened", zap.Uint("order_id", order.ID), zap.String("channel", channel))
	return &order, nil
}

// GetOrder loads an order with its items.
func (o *Orders) GetOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := o.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error
	if err != nil {
		return nil, notFoundOr(err, "order", orderID, "load order")
	}
	return &order, nil
}

// ListCheckout returns the orders ready for checkout. Only awaiting_payment
// orders appear here.
func (o *Orders) ListCheckout(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := o.db.WithContext(ctx).
		Preload("Items").
		Where("status = ?", model.OrderAwaitingPayment).
		Order("opened_at").
		Find(&orders).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list checkout orders", Err: err}
	}
	return orders, nil
}

// CloseOutOrder moves an open order to awaiting_payment, stopping it from
// accepting further items.
func (o *Orders) CloseOutOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	return o.transition(ctx, orderID, model.OrderOpen, model.OrderAwaitingPayment, nil)
}

// MarkOrderPaid settles an awaiting_payment order: stamps closure, ends the
// order's seat sessions and releases each seat still free of other open
// sessions, recomputing table statuses as seats change.
func (o *Orders) MarkOrderPaid(ctx context.Context, orderID uint) (*model.Order, error) {
	return o.transition(ctx, orderID, model.OrderAwaitingPayment, model.OrderPaid, nil)
}

// VoidOrder cancels an order before payment, returning every deductible
// item's ingredients to stock and releasing its seats.
func (o *Orders) VoidOrder(ctx context.Context, orderID uint, actorID uint) (*model.Order, error) {
	returnStock := func(tx *gorm.DB, order *model.Order) error {
		var items []model.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return &PersistenceError{Op: "load order items", Err: err}
		}
		for i := range items {
			if err := returnItemStock(tx, o.ledger, &items[i], actorID); err != nil {
				return err
			}
		}
		return nil
	}

	var order *model.Order
	var err error
	order, err = o.transitionFrom(ctx, orderID,
		map[string]bool{model.OrderOpen: true, model.OrderAwaitingPayment: true},
		model.OrderVoid, returnStock)
	if err != nil {
		return nil, err
	}
	o.log.Info("Order voided", zap.Uint("order_id", orderID), zap.Uint("performed_by", actorID))
	return order, nil
}

func (o *Orders) transition(ctx context.Context, orderID uint, from, to string, extra func(*gorm.DB, *model.Order) error) (*model.Order, error) {
	return o.transitionFrom(ctx, orderID, map[string]bool{from: true}, to, extra)
}

func (o *Orders) transitionFrom(ctx context.Context, orderID uint, from map[string]bool, to string, extra func(*gorm.DB, *model.Order) error) (*model.Order, error) {
	var order model.Order
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&order, orderID).Error; err != nil {
			return notFoundOr(err, "order", orderID, "lock order")
		}
		if !from[order.Status] {
			return &InvalidTransitionError{Entity: "order", From: order.Status, To: to}
		}
		if extra != nil {
			if err := extra(tx, &order); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"status": to}
		terminal := to == model.OrderPaid || to == model.OrderVoid
		if terminal {
			now := time.Now()
			updates["closed_at"] = &now
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return &PersistenceError{Op: "update order status", Err: err}
		}
		order.Status = to

		if terminal {
			return releaseOrderSeats(tx, order.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.log.Info("Order transitioned",
		zap.Uint("order_id", order.ID),
		zap.String("status", order.Status))
	return &order, nil
}

// releaseOrderSeats ends an order's open seat sessions and reopens each
// seat that no other open session still references, recomputing the owning
// tables.
func releaseOrderSeats(tx *gorm.DB, orderID uint) error {
	var sessions []model.SeatSession
	err := tx.Where("order_id = ? AND ended_at IS NULL", orderID).Find(&sessions).Error
	if err != nil {
		return &PersistenceError{Op: "load seat sessions", Err: err}
	}

	now := time.Now()
	tables := map[uint]bool{}
	for _, session := range sessions {
		err := tx.Model(&model.SeatSession{}).
			Where("id = ?", session.ID).
			Update("ended_at", &now).Error
		if err != nil {
			return &PersistenceError{Op: "end seat session", Err: err}
		}

		var remaining int64
		err = tx.Model(&model.SeatSession{}).
			Where("seat_id = ? AND ended_at IS NULL", session.SeatID).
			Count(&remaining).Error
		if err != nil {
			return &PersistenceError{Op: "count open seat sessions", Err: err}
		}
		if remaining > 0 {
			continue
		}

		var seat model.Seat
		if err := lockForUpdate(tx).First(&seat, session.SeatID).Error; err != nil {
			return notFoundOr(err, "seat", session.SeatID, "lock seat")
		}
		if seat.Status == model.SeatOccupied {
			if err := tx.Model(&seat).Update("status", model.SeatOpen).Error; err != nil {
				return &PersistenceError{Op: "release seat", Err: err}
			}
			tables[seat.TableID] = true
		}
	}

	for tableID := range tables {
		if _, err := recomputeTable(tx, tableID); err != nil {
			return err
		}
	}
	return nil
}
