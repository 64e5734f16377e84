package model

import (
	"time"

	"gorm.io/gorm"
)

// Seat statuses.
const (
	SeatOpen     = "open"
	SeatOccupied = "occupied"
	SeatClosed   = "closed"
)

// Table statuses. Table status is derived from seat statuses and is never
// written except through the recompute rule.
const (
	TableAvailable = "available"
	TableSeated    = "seated"
	TableOffline   = "offline"
)

// Table is a physical table owning one or more seats.
type Table struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Name      string         `json:"name" gorm:"type:varchar(50);not null"`
	Capacity  int            `json:"capacity" gorm:"not null;default:1"`
	Status    string         `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	Seats     []Seat         `json:"seats,omitempty" gorm:"foreignKey:TableID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Seat is one physical seat at a table.
type Seat struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	TableID   uint           `json:"table_id" gorm:"index;not null"`
	Number    int            `json:"number" gorm:"not null"`
	Status    string         `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// SeatSession links an occupied seat to the order paying for it. A seat is
// released back to open when its order is paid and no other open session
// references it.
type SeatSession struct {
	ID        uint       `json:"id" gorm:"primarykey"`
	SeatID    uint       `json:"seat_id" gorm:"index;not null"`
	OrderID   uint       `json:"order_id" gorm:"index;not null"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" gorm:"index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
