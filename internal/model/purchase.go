package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase order statuses.
const (
	PurchaseOrderDraft     = "draft"
	PurchaseOrderSent      = "sent"
	PurchaseOrderPartial   = "partial"
	PurchaseOrderReceived  = "received"
	PurchaseOrderCancelled = "cancelled"
)

// Supplier represents a vendor purchase orders are placed with.
type Supplier struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Name          string         `json:"name" gorm:"type:varchar(100);index;not null"`
	ContactPerson string         `json:"contact_person" gorm:"type:varchar(100)"`
	Email         string         `json:"email" gorm:"type:varchar(100)"`
	Phone         string         `json:"phone" gorm:"type:varchar(20)"`
	Notes         string         `json:"notes" gorm:"type:text"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// PurchaseOrder is one order placed with a supplier. Status moves to
// partial/received only through the receiver, which applies line receipts
// and the status recompute as a single unit.
type PurchaseOrder struct {
	ID         uint                `json:"id" gorm:"primarykey"`
	SupplierID uint                `json:"supplier_id" gorm:"index;not null"`
	Supplier   Supplier            `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Status     string              `json:"status" gorm:"type:varchar(20);index;not null;default:'draft'"`
	Total      int64               `json:"total" gorm:"default:0"`
	Items      []PurchaseOrderItem `json:"items,omitempty" gorm:"foreignKey:PurchaseOrderID"`
	OrderedAt  *time.Time          `json:"ordered_at,omitempty"`
	ReceivedAt *time.Time          `json:"received_at,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	DeletedAt  gorm.DeletedAt      `json:"deleted_at,omitempty" gorm:"index"`
}

// PurchaseOrderItem is one line of a purchase order. ReceivedQty only grows,
// and only through the receiver.
type PurchaseOrderItem struct {
	ID              uint            `json:"id" gorm:"primarykey"`
	PurchaseOrderID uint            `json:"purchase_order_id" gorm:"index;not null"`
	IngredientID    uint            `json:"ingredient_id" gorm:"index;not null"`
	Ingredient      Ingredient      `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
	OrderedQty      decimal.Decimal `json:"ordered_qty" gorm:"type:decimal(14,3);not null"`
	ReceivedQty     decimal.Decimal `json:"received_qty" gorm:"type:decimal(14,3);not null;default:0"`
	UnitCost        int64           `json:"unit_cost" gorm:"not null"`
	Notes           string          `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
