package model

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses.
const (
	OrderOpen            = "open"
	OrderAwaitingPayment = "awaiting_payment"
	OrderPaid            = "paid"
	OrderVoid            = "void"
)

// Order item kinds.
const (
	ItemRegular       = "regular"
	ItemRetail        = "retail"
	ItemRental        = "rental"
	ItemRentalDeposit = "rental_deposit"
	ItemRentalFee     = "rental_fee"
	ItemSeatTime      = "seat_time"
	ItemMembership    = "membership"
)

// Order event types recorded on every successful item mutation.
const (
	EventItemAdded   = "item.added"
	EventItemRemoved = "item.removed"
)

// Order is one open tab started by a channel (table seating, kiosk,
// counter). Only open orders accept items; only awaiting_payment orders
// are listed for checkout.
type Order struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Status    string         `json:"status" gorm:"type:varchar(20);index;not null;default:'open'"`
	Channel   string         `json:"channel" gorm:"type:varchar(20);default:'table'"`
	Items     []OrderItem    `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	OpenedAt  time.Time      `json:"opened_at"`
	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// OrderItem is one line on an order. MenuItemID is set for recipe-backed
// items; GameSessionID marks the zero-priced marker line created when a
// game is assigned to the item's table.
type OrderItem struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	OrderID       uint           `json:"order_id" gorm:"index;not null"`
	Kind          string         `json:"kind" gorm:"type:varchar(20);not null;default:'regular'"`
	Name          string         `json:"name" gorm:"type:varchar(255);not null"`
	Quantity      int64          `json:"quantity" gorm:"not null"`
	UnitPrice     int64          `json:"unit_price" gorm:"not null"`
	Tax           int64          `json:"tax" gorm:"default:0"`
	Total         int64          `json:"total" gorm:"not null"`
	MenuItemID    *uint          `json:"menu_item_id,omitempty" gorm:"index"`
	GameSessionID *uint          `json:"game_session_id,omitempty" gorm:"index"`
	IsGame        bool           `json:"is_game" gorm:"default:false"`
	Notes         string         `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// OrderEvent is the audit record appended for every successful item
// mutation, carrying a snapshot of the affecting quantities.
type OrderEvent struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	OrderID     uint      `json:"order_id" gorm:"index;not null"`
	OrderItemID uint      `json:"order_item_id" gorm:"index"`
	Type        string    `json:"type" gorm:"type:varchar(30);not null"`
	Quantity    int64     `json:"quantity"`
	Detail      string    `json:"detail" gorm:"type:text"`
	PerformedBy uint      `json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}
