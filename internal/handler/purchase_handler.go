package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/internal/service"
	"github.com/mbh206/shoppos-sub002/pkg/database"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
)

// PurchaseOrderRequest defines the structure for creating a purchase order
type PurchaseOrderRequest struct {
	SupplierID uint                       `json:"supplier_id" validate:"required"`
	Items      []PurchaseOrderItemRequest `json:"items" validate:"required"`
}

// PurchaseOrderItemRequest is one ordered line
type PurchaseOrderItemRequest struct {
	IngredientID uint            `json:"ingredient_id" validate:"required"`
	OrderedQty   decimal.Decimal `json:"ordered_qty" validate:"required"`
	UnitCost     int64           `json:"unit_cost"`
}

// ReceiveRequest defines the structure for applying a delivery
type ReceiveRequest struct {
	Lines []service.ReceiveLine `json:"lines" validate:"required"`
}

// CreatePurchaseOrder creates a draft purchase order with its lines
func CreatePurchaseOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Info("Creating new purchase order")

	var req PurchaseOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "purchase order needs at least one line"})
	}

	var supplier model.Supplier
	if err := database.GetDB().First(&supplier, req.SupplierID).Error; err != nil {
		log.Warn("Supplier not found", zap.Uint("supplier_id", req.SupplierID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Supplier not found"})
	}

	po := model.PurchaseOrder{SupplierID: req.SupplierID, Status: model.PurchaseOrderDraft}
	var total int64
	for _, item := range req.Items {
		lineTotal := item.OrderedQty.Mul(decimal.NewFromInt(item.UnitCost)).Round(0).IntPart()
		total += lineTotal
		po.Items = append(po.Items, model.PurchaseOrderItem{
			IngredientID: item.IngredientID,
			OrderedQty:   item.OrderedQty,
			UnitCost:     item.UnitCost,
		})
	}
	po.Total = total

	if err := database.GetDB().Create(&po).Error; err != nil {
		log.Error("Failed to create purchase order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create purchase order"})
	}

	log.Info("Purchase order created",
		zap.Uint("purchase_order_id", po.ID),
		zap.Uint("supplier_id", po.SupplierID),
		zap.Int("lines", len(po.Items)))
	return c.JSON(http.StatusCreated, po)
}

// GetPurchaseOrder retrieves a purchase order with its lines
func GetPurchaseOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase order id"})
	}

	var po model.PurchaseOrder
	err := database.GetDB().Preload("Items.Ingredient").Preload("Supplier").First(&po, id).Error
	if err != nil {
		log.Warn("Purchase order not found", zap.Uint("purchase_order_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Purchase order not found"})
	}

	return c.JSON(http.StatusOK, po)
}

// SendPurchaseOrder marks a draft order as sent to the supplier
func SendPurchaseOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase order id"})
	}

	purchasing := service.NewPurchasing(database.GetDB())
	po, err := purchasing.SendPurchaseOrder(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, po)
}

// ReceivePurchaseOrder applies a partial or complete delivery
func ReceivePurchaseOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase order id"})
	}

	var req ReceiveRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	purchasing := service.NewPurchasing(database.GetDB())
	po, err := purchasing.ReceivePurchaseOrder(c.Request().Context(), id, req.Lines, actor(c))
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, po)
}
