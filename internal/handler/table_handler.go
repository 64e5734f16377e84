package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/internal/service"
	"github.com/mbh206/shoppos-sub002/pkg/database"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
)

// TransitionSeatRequest defines the structure for seat status changes
type TransitionSeatRequest struct {
	Status string `json:"status" validate:"required"`
}

// StartSeatSessionRequest links a seat to the order paying for it
type StartSeatSessionRequest struct {
	OrderID uint `json:"order_id" validate:"required"`
}

// ListTables handles retrieving all tables with their seats
func ListTables(c echo.Context) error {
	log := logger.FromEcho(c)

	var tables []model.Table
	result := database.GetDB().Preload("Seats").Order("name").Find(&tables)
	if result.Error != nil {
		log.Error("Failed to list tables", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve tables",
		})
	}

	return c.JSON(http.StatusOK, tables)
}

// TransitionSeat moves a seat between statuses; the owning table's status
// is recomputed in the same operation
func TransitionSeat(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}

	var req TransitionSeatRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	seating := service.NewSeating(database.GetDB())
	seat, err := seating.TransitionSeat(c.Request().Context(), id, req.Status)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, seat)
}

// StartSeatSession occupies a seat on behalf of an order
func StartSeatSession(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}

	var req StartSeatSessionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	seating := service.NewSeating(database.GetDB())
	session, err := seating.StartSeatSession(c.Request().Context(), id, req.OrderID)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, session)
}

// RecomputeTableStatus re-derives a table's status from its seats
func RecomputeTableStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}

	seating := service.NewSeating(database.GetDB())
	table, err := seating.RecomputeTableStatus(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, table)
}
