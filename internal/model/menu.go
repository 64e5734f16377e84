package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuItem represents a sellable item (food, drink, retail good). Recipe
// lines link it to the ingredients it consumes per serving; an item with no
// recipe lines is always available and never deducts stock.
type MenuItem struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"type:varchar(100);index"`
	Price       int64          `json:"price" gorm:"not null;comment:'Price in minor currency units'"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	RecipeLines []RecipeLine   `json:"recipe_lines,omitempty" gorm:"foreignKey:MenuItemID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// RecipeLine is one ingredient requirement of a menu item. Optional lines
// never gate availability and are skipped by deduction when stock is short.
type RecipeLine struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	MenuItemID   uint            `json:"menu_item_id" gorm:"index;not null"`
	IngredientID uint            `json:"ingredient_id" gorm:"index;not null"`
	Ingredient   Ingredient      `json:"ingredient" gorm:"foreignKey:IngredientID"`
	PerServing   decimal.Decimal `json:"per_serving" gorm:"type:decimal(14,3);not null"`
	IsOptional   bool            `json:"is_optional" gorm:"default:false"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
