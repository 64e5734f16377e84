package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock movement types. Every change to an ingredient's stock is recorded
// as exactly one of these.
const (
	MovementInitial       = "initial"
	MovementPurchase      = "purchase"
	MovementAdjustment    = "adjustment"
	MovementSaleDeduction = "sale_deduction"
	MovementSaleReturn    = "sale_return"
)

// Ingredient represents a consumable ingredient or supply. StockQty is a
// cached projection of the movement log and is only ever written through
// the stock ledger.
type Ingredient struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	Name         string          `json:"name" gorm:"type:varchar(255);not null"`
	Unit         string          `json:"unit" gorm:"type:varchar(20);not null"`
	CostPerUnit  int64           `json:"cost_per_unit" gorm:"not null;comment:'Cost in minor currency units'"`
	StockQty     decimal.Decimal `json:"stock_qty" gorm:"type:decimal(14,3);not null;default:0"`
	ReorderPoint decimal.Decimal `json:"reorder_point" gorm:"type:decimal(14,3);default:0"`
	ReorderQty   decimal.Decimal `json:"reorder_qty" gorm:"type:decimal(14,3);default:0"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// StockMovement is one append-only ledger entry. Movements are never
// updated or deleted; summing them per ingredient must always equal the
// ingredient's cached StockQty.
type StockMovement struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	IngredientID uint            `json:"ingredient_id" gorm:"index;not null"`
	Ingredient   Ingredient      `json:"-" gorm:"foreignKey:IngredientID"`
	Type         string          `json:"type" gorm:"type:varchar(20);index;not null"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:decimal(14,3);not null"`
	UnitCost     int64           `json:"unit_cost" gorm:"not null"`
	TotalCost    int64           `json:"total_cost" gorm:"not null"`
	Reason       string          `json:"reason" gorm:"type:text"`
	Reference    string          `json:"reference,omitempty" gorm:"type:varchar(100);index"`
	PerformedBy  uint            `json:"performed_by" gorm:"index"`
	CreatedAt    time.Time       `json:"created_at"`
}
