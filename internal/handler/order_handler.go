package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mbh206/shoppos-sub002/internal/service"
	"github.com/mbh206/shoppos-sub002/pkg/database"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
)

// OpenOrderRequest defines the structure for opening an order
type OpenOrderRequest struct {
	Channel string `json:"channel"`
}

// AddItemRequest defines the structure for admitting a line item
type AddItemRequest struct {
	Kind       string `json:"kind"`
	MenuItemID *uint  `json:"menu_item_id,omitempty"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	Tax        int64  `json:"tax"`
	Notes      string `json:"notes"`
}

// OpenOrder starts a new open order
func OpenOrder(c echo.Context) error {
	log := logger.FromEcho(c)

	var req OpenOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	orders := service.NewOrders(database.GetDB())
	order, err := orders.OpenOrder(c.Request().Context(), req.Channel)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, order)
}

// GetOrder retrieves an order with its items
func GetOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	orders := service.NewOrders(database.GetDB())
	order, err := orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, order)
}

// ListCheckout lists the orders awaiting payment
func ListCheckout(c echo.Context) error {
	log := logger.FromEcho(c)

	orders := service.NewOrders(database.GetDB())
	ready, err := orders.ListCheckout(c.Request().Context())
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, ready)
}

// AddOrderItem admits a line item onto an open order
func AddOrderItem(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var req AddItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	admission := service.NewAdmission(database.GetDB())
	item, err := admission.AddOrderItem(c.Request().Context(), id, service.AddItemInput{
		Kind:       req.Kind,
		MenuItemID: req.MenuItemID,
		Name:       req.Name,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		Tax:        req.Tax,
		Notes:      req.Notes,
	}, actor(c))
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, item)
}

// RemoveOrderItem removes a line item, returning any deducted stock
func RemoveOrderItem(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order item id"})
	}

	admission := service.NewAdmission(database.GetDB())
	if err := admission.RemoveOrderItem(c.Request().Context(), id, actor(c)); err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Order item removed"})
}

// CloseOutOrder moves an open order to awaiting_payment
func CloseOutOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	orders := service.NewOrders(database.GetDB())
	order, err := orders.CloseOutOrder(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, order)
}

// PayOrder settles an awaiting_payment order
func PayOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	orders := service.NewOrders(database.GetDB())
	order, err := orders.MarkOrderPaid(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, order)
}

// VoidOrder cancels an order before payment
func VoidOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	orders := service.NewOrders(database.GetDB())
	order, err := orders.VoidOrder(c.Request().Context(), id, actor(c))
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, order)
}
