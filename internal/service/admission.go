package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
	"github.com/mbh206/shoppos-sub002/prometheus"
)

// deductibleKinds are order item kinds whose menu reference consumes
// ingredient stock on add and returns it on remove.
var deductibleKinds = map[string]bool{
	model.ItemRegular: true,
}

// Admission gatekeeps adding and removing order line items against the
// stock ledger. The whole add operation — availability check, item insert,
// every deduction and the audit event — runs in one transaction with the
// touched ingredient rows locked, so concurrent adds serialize and cannot
// jointly drive stock negative.
type Admission struct {
	db     *gorm.DB
	ledger *Ledger
	log    *zap.Logger
}

// NewAdmission creates an admission controller backed by db.
func NewAdmission(db *gorm.DB) *Admission {
	return &Admission{db: db, ledger: NewLedger(db), log: logger.GetLogger()}
}

// AddItemInput describes one line item to admit onto an order.
type AddItemInput struct {
	Kind       string
	MenuItemID *uint
	Name       string
	Quantity   int64
	UnitPrice  int64
	Tax        int64
	Notes      string
}

// AddOrderItem admits a line item onto an open order. For recipe-backed
// items it verifies availability against locked ingredient rows, then
// records one sale_deduction movement per non-optional recipe line.
// Insufficient stock fails with the full shortfall list and performs no
// writes.
func (s *Admission) AddOrderItem(ctx context.Context, orderID uint, in AddItemInput, actorID uint) (*model.OrderItem, error) {
	if in.Quantity <= 0 {
		return nil, &InvalidQuantityError{Detail: "item quantity must be positive"}
	}
	if in.Kind == "" {
		in.Kind = model.ItemRegular
	}

	var item *model.OrderItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFoundOr(err, "order", orderID, "load order")
		}
		if order.Status != model.OrderOpen {
			return &InvalidTransitionError{Entity: "order", From: order.Status, To: "add item"}
		}

		var menuItem *model.MenuItem
		var lines []model.RecipeLine
		if in.MenuItemID != nil && deductibleKinds[in.Kind] {
			var err error
			menuItem, lines, err = s.lockRecipe(tx, *in.MenuItemID)
			if err != nil {
				return err
			}
			if shortfalls := shortfallsFor(lines, in.Quantity); len(shortfalls) > 0 {
				prometheus.RecordAdmission("rejected")
				return &InsufficientStockError{
					MenuItemID: *in.MenuItemID,
					Requested:  in.Quantity,
					Shortfalls: shortfalls,
				}
			}
			if in.Name == "" {
				in.Name = menuItem.Name
			}
			if in.UnitPrice == 0 {
				in.UnitPrice = menuItem.Price
			}
		}

		created := model.OrderItem{
			OrderID:    order.ID,
			Kind:       in.Kind,
			Name:       in.Name,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			Tax:        in.Tax,
			Total:      in.UnitPrice*in.Quantity + in.Tax,
			MenuItemID: in.MenuItemID,
			Notes:      in.Notes,
		}
		if err := tx.Create(&created).Error; err != nil {
			return &PersistenceError{Op: "create order item", Err: err}
		}

		for _, line := range lines {
			deduction := line.PerServing.Mul(decimal.NewFromInt(in.Quantity)).Neg()
			_, err := s.ledger.RecordMovement(tx, MovementInput{
				IngredientID: line.IngredientID,
				Type:         model.MovementSaleDeduction,
				Quantity:     deduction,
				Reason:       fmt.Sprintf("sold %d x %s", in.Quantity, created.Name),
				Reference:    orderItemRef(created.ID),
				PerformedBy:  actorID,
			})
			if err != nil {
				return err
			}
		}

		if err := appendOrderEvent(tx, &order, &created, model.EventItemAdded, actorID); err != nil {
			return err
		}

		item = &created
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordAdmission("added")
	s.log.Info("Order item added",
		zap.Uint("order_id", orderID),
		zap.Uint("order_item_id", item.ID),
		zap.String("kind", item.Kind),
		zap.String("name", item.Name),
		zap.Int64("quantity", item.Quantity),
		zap.Uint("performed_by", actorID))
	return item, nil
}

// RemoveOrderItem removes a line item from an open order. Deductible items
// get sale_return movements for the same quantities in the same transaction
// as the delete; non-deductible items delete without ledger activity.
func (s *Admission) RemoveOrderItem(ctx context.Context, orderItemID uint, actorID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.OrderItem
		if err := tx.First(&item, orderItemID).Error; err != nil {
			return notFoundOr(err, "order item", orderItemID, "load order item")
		}
		var order model.Order
		if err := tx.First(&order, item.OrderID).Error; err != nil {
			return notFoundOr(err, "order", item.OrderID, "load order")
		}
		if order.Status != model.OrderOpen {
			return &InvalidTransitionError{Entity: "order", From: order.Status, To: "remove item"}
		}

		if err := returnItemStock(tx, s.ledger, &item, actorID); err != nil {
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return &PersistenceError{Op: "delete order item", Err: err}
		}
		return appendOrderEvent(tx, &order, &item, model.EventItemRemoved, actorID)
	})
	if err != nil {
		return err
	}

	prometheus.RecordAdmission("removed")
	s.log.Info("Order item removed",
		zap.Uint("order_item_id", orderItemID),
		zap.Uint("performed_by", actorID))
	return nil
}

// lockRecipe loads a menu item and locks the ingredient rows of its
// non-optional recipe lines in id order, so concurrent admissions touching
// the same ingredients always lock in the same sequence.
func (s *Admission) lockRecipe(tx *gorm.DB, menuItemID uint) (*model.MenuItem, []model.RecipeLine, error) {
	var item model.MenuItem
	if err := tx.Preload("RecipeLines").First(&item, menuItemID).Error; err != nil {
		return nil, nil, notFoundOr(err, "menu item", menuItemID, "load menu item")
	}

	var lines []model.RecipeLine
	for _, line := range item.RecipeLines {
		if !line.IsOptional && !line.PerServing.IsZero() {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].IngredientID < lines[j].IngredientID })

	for i := range lines {
		var ing model.Ingredient
		if err := lockForUpdate(tx).First(&ing, lines[i].IngredientID).Error; err != nil {
			return nil, nil, notFoundOr(err, "ingredient", lines[i].IngredientID, "lock ingredient")
		}
		lines[i].Ingredient = ing
	}
	return &item, lines, nil
}

// shortfallsFor evaluates locked recipe lines against a requested quantity,
// collecting every short ingredient.
func shortfallsFor(lines []model.RecipeLine, quantity int64) []Shortfall {
	qty := decimal.NewFromInt(quantity)
	var shortfalls []Shortfall
	for _, line := range lines {
		need := line.PerServing.Mul(qty)
		if line.Ingredient.StockQty.LessThan(need) {
			shortfalls = append(shortfalls, Shortfall{
				IngredientID: line.IngredientID,
				Name:         line.Ingredient.Name,
				Have:         line.Ingredient.StockQty,
				Need:         need,
			})
		}
	}
	return shortfalls
}

// returnItemStock issues sale_return movements negating the sale_deduction
// movements recorded for the item, so the return matches what was actually
// taken even if the recipe changed since the add. Items that never deducted
// are a no-op. Shared by item removal and order void.
func returnItemStock(tx *gorm.DB, ledger *Ledger, item *model.OrderItem, actorID uint) error {
	var deductions []model.StockMovement
	err := tx.Where("reference = ? AND type = ?", orderItemRef(item.ID), model.MovementSaleDeduction).
		Order("ingredient_id").
		Find(&deductions).Error
	if err != nil {
		return &PersistenceError{Op: "load item deductions", Err: err}
	}
	for _, mv := range deductions {
		_, err := ledger.RecordMovement(tx, MovementInput{
			IngredientID: mv.IngredientID,
			Type:         model.MovementSaleReturn,
			Quantity:     mv.Quantity.Neg(),
			UnitCost:     mv.UnitCost,
			Reason:       fmt.Sprintf("returned %d x %s", item.Quantity, item.Name),
			Reference:    orderItemRef(item.ID),
			PerformedBy:  actorID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// appendOrderEvent records the audit event for a successful item mutation.
func appendOrderEvent(tx *gorm.DB, order *model.Order, item *model.OrderItem, eventType string, actorID uint) error {
	event := model.OrderEvent{
		OrderID:     order.ID,
		OrderItemID: item.ID,
		Type:        eventType,
		Quantity:    item.Quantity,
		Detail:      fmt.Sprintf("%s x%d (%s)", item.Name, item.Quantity, item.Kind),
		PerformedBy: actorID,
	}
	if err := tx.Create(&event).Error; err != nil {
		return &PersistenceError{Op: "append order event", Err: err}
	}
	return nil
}

func orderItemRef(id uint) string {
	return fmt.Sprintf("order_item:%d", id)
}
