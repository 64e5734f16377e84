package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
)

// Availability derives how many servings of a menu item the current stock
// can cover, from the item's non-optional recipe lines.
type Availability struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAvailability creates an availability calculator backed by db.
func NewAvailability(db *gorm.DB) *Availability {
	return &Availability{db: db, log: logger.GetLogger()}
}

// AvailabilityResult is the answer to "can we sell qty of this item".
// Shortfalls lists every non-optional ingredient that cannot cover the
// requested quantity. Unconstrained is true for items with no non-optional
// recipe lines; Servings is meaningless for those.
type AvailabilityResult struct {
	MenuItemID    uint        `json:"menu_item_id"`
	RequestedQty  int64       `json:"requested_qty"`
	Available     bool        `json:"available"`
	Unconstrained bool        `json:"unconstrained"`
	Servings      int64       `json:"servings"`
	Shortfalls    []Shortfall `json:"shortfalls,omitempty"`
}

// AvailableServings returns the maximum servings current stock covers: the
// minimum over non-optional recipe lines of floor(stock / perServing),
// clamped at zero. The second return is true when the item has no
// non-optional lines and is therefore unconstrained.
func (a *Availability) AvailableServings(ctx context.Context, menuItemID uint) (int64, bool, error) {
	item, err := a.loadItem(a.db.WithContext(ctx), menuItemID)
	if err != nil {
		return 0, false, err
	}
	servings, unconstrained := servingsFor(item)
	return servings, unconstrained, nil
}

// CheckAvailable reports whether requestedQty servings can be made, with
// the full shortfall list when they cannot.
func (a *Availability) CheckAvailable(ctx context.Context, menuItemID uint, requestedQty int64) (*AvailabilityResult, error) {
	if requestedQty <= 0 {
		return nil, &InvalidQuantityError{Detail: "requested quantity must be positive"}
	}
	item, err := a.loadItem(a.db.WithContext(ctx), menuItemID)
	if err != nil {
		return nil, err
	}
	result := checkItem(item, requestedQty)
	a.log.Info("Availability checked",
		zap.Uint("menu_item_id", menuItemID),
		zap.Int64("requested_qty", requestedQty),
		zap.Bool("available", result.Available),
		zap.Int("shortfalls", len(result.Shortfalls)))
	return result, nil
}

func (a *Availability) loadItem(tx *gorm.DB, menuItemID uint) (*model.MenuItem, error) {
	var item model.MenuItem
	err := tx.Preload("RecipeLines.Ingredient").First(&item, menuItemID).Error
	if err != nil {
		return nil, notFoundOr(err, "menu item", menuItemID, "load menu item")
	}
	return &item, nil
}

// servingsFor computes min over non-optional lines of floor(stock/per).
func servingsFor(item *model.MenuItem) (int64, bool) {
	unconstrained := true
	var min int64
	for _, line := range item.RecipeLines {
		if line.IsOptional || line.PerServing.IsZero() {
			continue
		}
		servings := line.Ingredient.StockQty.Div(line.PerServing).Floor().IntPart()
		if servings < 0 {
			servings = 0
		}
		if unconstrained || servings < min {
			min = servings
		}
		unconstrained = false
	}
	if unconstrained {
		return 0, true
	}
	return min, false
}

// checkItem evaluates requestedQty against every non-optional line,
// collecting all shortfalls rather than stopping at the first.
func checkItem(item *model.MenuItem, requestedQty int64) *AvailabilityResult {
	result := &AvailabilityResult{
		MenuItemID:   item.ID,
		RequestedQty: requestedQty,
	}
	qty := decimal.NewFromInt(requestedQty)
	for _, line := range item.RecipeLines {
		if line.IsOptional || line.PerServing.IsZero() {
			continue
		}
		need := line.PerServing.Mul(qty)
		if line.Ingredient.StockQty.LessThan(need) {
			result.Shortfalls = append(result.Shortfalls, Shortfall{
				IngredientID: line.IngredientID,
				Name:         line.Ingredient.Name,
				Have:         line.Ingredient.StockQty,
				Need:         need,
			})
		}
	}
	result.Servings, result.Unconstrained = servingsFor(item)
	result.Available = len(result.Shortfalls) == 0
	return result
}
