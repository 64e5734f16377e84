package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
)

// allowedSeatTransitions is the seat state machine: open and occupied cycle
// between each other, either can be taken offline, and a closed seat can be
// restored to open.
var allowedSeatTransitions = map[string]map[string]bool{
	model.SeatOpen:     {model.SeatOccupied: true, model.SeatClosed: true},
	model.SeatOccupied: {model.SeatOpen: true, model.SeatClosed: true},
	model.SeatClosed:   {model.SeatOpen: true},
}

// Seating owns the seat and table state machines. Table status is a pure
// function of seat statuses and is recomputed after every seat mutation.
type Seating struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSeating creates the seat/table state machine backed by db.
func NewSeating(db *gorm.DB) *Seating {
	return &Seating{db: db, log: logger.GetLogger()}
}

// TransitionSeat moves a seat between statuses and recomputes the owning
// table's status in the same transaction. Disallowed moves fail with
// InvalidTransition.
func (s *Seating) TransitionSeat(ctx context.Context, seatID uint, to string) (*model.Seat, error) {
	var seat model.Seat
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&seat, seatID).Error; err != nil {
			return notFoundOr(err, "seat", seatID, "lock seat")
		}
		if !allowedSeatTransitions[seat.Status][to] {
			return &InvalidTransitionError{Entity: "seat", From: seat.Status, To: to}
		}
		if seat.Status == model.SeatOccupied {
			if err := endOpenSeatSessions(tx, seat.ID); err != nil {
				return err
			}
		}
		if err := tx.Model(&seat).Update("status", to).Error; err != nil {
			return &PersistenceError{Op: "update seat status", Err: err}
		}
		seat.Status = to
		_, err := recomputeTable(tx, seat.TableID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Seat transitioned",
		zap.Uint("seat_id", seat.ID),
		zap.Uint("table_id", seat.TableID),
		zap.String("status", seat.Status))
	return &seat, nil
}

// StartSeatSession occupies an open seat on behalf of an open order. The
// seat is released back to open when the order is paid and no other open
// session references it.
func (s *Seating) StartSeatSession(ctx context.Context, seatID, orderID uint) (*model.SeatSession, error) {
	var session model.SeatSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seat model.Seat
		if err := lockForUpdate(tx).First(&seat, seatID).Error; err != nil {
			return notFoundOr(err, "seat", seatID, "lock seat")
		}
		if seat.Status != model.SeatOpen {
			return &InvalidTransitionError{Entity: "seat", From: seat.Status, To: model.SeatOccupied}
		}
		var order model.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFoundOr(err, "order", orderID, "load order")
		}
		if order.Status != model.OrderOpen {
			return &InvalidTransitionError{Entity: "order", From: order.Status, To: "seat session"}
		}

		session = model.SeatSession{SeatID: seatID, OrderID: orderID, StartedAt: time.Now()}
		if err := tx.Create(&session).Error; err != nil {
			return &PersistenceError{Op: "create seat session", Err: err}
		}
		if err := tx.Model(&seat).Update("status", model.SeatOccupied).Error; err != nil {
			return &PersistenceError{Op: "occupy seat", Err: err}
		}
		_, err := recomputeTable(tx, seat.TableID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Seat session started",
		zap.Uint("seat_id", seatID),
		zap.Uint("order_id", orderID),
		zap.Uint("session_id", session.ID))
	return &session, nil
}

// RecomputeTableStatus re-derives a table's status from its seats in its
// own transaction. Used by staff override and repair flows; normal seat
// mutations recompute inline.
func (s *Seating) RecomputeTableStatus(ctx context.Context, tableID uint) (*model.Table, error) {
	var table *model.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		table, err = recomputeTable(tx, tableID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// endOpenSeatSessions stamps every open session on a seat as ended. Manual
// transitions out of occupied go through here so a cleared seat never leaves
// a live session behind to block its later release.
func endOpenSeatSessions(tx *gorm.DB, seatID uint) error {
	now := time.Now()
	err := tx.Model(&model.SeatSession{}).
		Where("seat_id = ? AND ended_at IS NULL", seatID).
		Update("ended_at", &now).Error
	if err != nil {
		return &PersistenceError{Op: "end seat sessions", Err: err}
	}
	return nil
}

// recomputeTable derives table status from seat statuses: offline if every
// seat is closed, else seated if any seat is occupied, else available. The
// write is elided when nothing changed, so recomputation is idempotent.
func recomputeTable(tx *gorm.DB, tableID uint) (*model.Table, error) {
	var table model.Table
	if err := lockForUpdate(tx).Preload("Seats").First(&table, tableID).Error; err != nil {
		return nil, notFoundOr(err, "table", tableID, "lock table")
	}

	status := deriveTableStatus(table.Seats)
	if status == table.Status {
		return &table, nil
	}
	if err := tx.Model(&table).Update("status", status).Error; err != nil {
		return nil, &PersistenceError{Op: "update table status", Err: err}
	}
	table.Status = status
	return &table, nil
}

func deriveTableStatus(seats []model.Seat) string {
	if len(seats) == 0 {
		return model.TableAvailable
	}
	allClosed := true
	anyOccupied := false
	for _, seat := range seats {
		if seat.Status != model.SeatClosed {
			allClosed = false
		}
		if seat.Status == model.SeatOccupied {
			anyOccupied = true
		}
	}
	switch {
	case allClosed:
		return model.TableOffline
	case anyOccupied:
		return model.TableSeated
	default:
		return model.TableAvailable
	}
}
