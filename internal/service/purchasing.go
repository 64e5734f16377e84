package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
	"github.com/mbh206/shoppos-sub002/prometheus"
)

// Purchasing applies supplier deliveries. A receipt — every line's purchase
// movement, its cumulative received quantity, and the recomputed order
// status — is one atomic unit; a partially-applied receipt would
// under-report received inventory while the order claims an earlier state.
type Purchasing struct {
	db     *gorm.DB
	ledger *Ledger
	log    *zap.Logger
}

// NewPurchasing creates the purchase order receiver backed by db.
func NewPurchasing(db *gorm.DB) *Purchasing {
	return &Purchasing{db: db, ledger: NewLedger(db), log: logger.GetLogger()}
}

// ReceiveLine is one delivered line of a receipt.
type ReceiveLine struct {
	LineID      uint            `json:"line_id"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
	Notes       string          `json:"notes"`
}

// SendPurchaseOrder marks a draft order as sent to the supplier, making it
// receivable.
func (p *Purchasing) SendPurchaseOrder(ctx context.Context, poID uint) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&po, poID).Error; err != nil {
			return notFoundOr(err, "purchase order", poID, "lock purchase order")
		}
		if po.Status != model.PurchaseOrderDraft {
			return &InvalidTransitionError{Entity: "purchase order", From: po.Status, To: model.PurchaseOrderSent}
		}
		now := time.Now()
		err := tx.Model(&po).Updates(map[string]interface{}{
			"status":     model.PurchaseOrderSent,
			"ordered_at": &now,
		}).Error
		if err != nil {
			return &PersistenceError{Op: "send purchase order", Err: err}
		}
		po.Status = model.PurchaseOrderSent
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.log.Info("Purchase order sent", zap.Uint("purchase_order_id", poID))
	return &po, nil
}

// ReceivePurchaseOrder applies a partial or complete delivery. Each line
// with a positive quantity gets a purchase movement at the line's unit cost
// and a monotonic received-quantity increment; afterwards the order status
// is recomputed from its lines. The whole receipt runs in one transaction.
func (p *Purchasing) ReceivePurchaseOrder(ctx context.Context, poID uint, lines []ReceiveLine, actorID uint) (*model.PurchaseOrder, error) {
	for _, line := range lines {
		if line.ReceivedQty.IsNegative() {
			return nil, &InvalidQuantityError{
				Detail: fmt.Sprintf("received quantity for line %d must not be negative", line.LineID),
			}
		}
	}

	var po model.PurchaseOrder
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Items").First(&po, poID).Error; err != nil {
			return notFoundOr(err, "purchase order", poID, "lock purchase order")
		}
		if po.Status != model.PurchaseOrderSent && po.Status != model.PurchaseOrderPartial {
			return &InvalidTransitionError{Entity: "purchase order", From: po.Status, To: "receive"}
		}

		byID := make(map[uint]*model.PurchaseOrderItem, len(po.Items))
		for i := range po.Items {
			byID[po.Items[i].ID] = &po.Items[i]
		}

		for _, line := range lines {
			if line.ReceivedQty.IsZero() {
				continue
			}
			item, ok := byID[line.LineID]
			if !ok {
				return &NotFoundError{Entity: "purchase order line", ID: line.LineID}
			}

			_, err := p.ledger.RecordMovement(tx, MovementInput{
				IngredientID: item.IngredientID,
				Type:         model.MovementPurchase,
				Quantity:     line.ReceivedQty,
				UnitCost:     item.UnitCost,
				Reason:       fmt.Sprintf("received delivery for purchase order %d", po.ID),
				Reference:    fmt.Sprintf("purchase_order:%d", po.ID),
				PerformedBy:  actorID,
			})
			if err != nil {
				return err
			}

			item.ReceivedQty = item.ReceivedQty.Add(line.ReceivedQty)
			updates := map[string]interface{}{"received_qty": item.ReceivedQty}
			if line.Notes != "" {
				updates["notes"] = line.Notes
			}
			err = tx.Model(&model.PurchaseOrderItem{}).
				Where("id = ?", item.ID).
				Updates(updates).Error
			if err != nil {
				return &PersistenceError{Op: "update purchase order line", Err: err}
			}
		}

		status := receiptStatus(po.Items, po.Status)
		if status != po.Status {
			updates := map[string]interface{}{"status": status}
			if status == model.PurchaseOrderReceived {
				now := time.Now()
				updates["received_at"] = &now
			}
			if err := tx.Model(&po).Updates(updates).Error; err != nil {
				return &PersistenceError{Op: "update purchase order status", Err: err}
			}
			po.Status = status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordPurchaseReceipt(po.Status)
	p.log.Info("Purchase order received",
		zap.Uint("purchase_order_id", poID),
		zap.String("status", po.Status),
		zap.Int("lines", len(lines)),
		zap.Uint("performed_by", actorID))
	return &po, nil
}

// receiptStatus derives the order status from its lines: received when
// every line is fully covered, partial when anything has arrived, else the
// current status stands.
func receiptStatus(items []model.PurchaseOrderItem, current string) string {
	if len(items) == 0 {
		return current
	}
	allFull := true
	anyReceived := false
	for _, item := range items {
		if item.ReceivedQty.LessThan(item.OrderedQty) {
			allFull = false
		}
		if item.ReceivedQty.IsPositive() {
			anyReceived = true
		}
	}
	switch {
	case allFull:
		return model.PurchaseOrderReceived
	case anyReceived:
		return model.PurchaseOrderPartial
	default:
		return current
	}
}
