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

// IngredientRequest defines the structure for ingredient creation requests
type IngredientRequest struct {
	Name         string          `json:"name" validate:"required"`
	Unit         string          `json:"unit" validate:"required"`
	CostPerUnit  int64           `json:"cost_per_unit"`
	InitialStock decimal.Decimal `json:"initial_stock"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	ReorderQty   decimal.Decimal `json:"reorder_qty"`
}

// AdjustStockRequest defines the structure for manual stock adjustments
type AdjustStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// ListIngredients handles retrieving all ingredients
func ListIngredients(c echo.Context) error {
	log := logger.FromEcho(c)

	var ingredients []model.Ingredient
	result := database.GetDB().Order("name").Find(&ingredients)
	if result.Error != nil {
		log.Error("Failed to list ingredients", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve ingredients",
		})
	}

	return c.JSON(http.StatusOK, ingredients)
}

// GetIngredient handles retrieving a single ingredient by ID
func GetIngredient(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ingredient id"})
	}

	var ingredient model.Ingredient
	result := database.GetDB().First(&ingredient, id)
	if result.Error != nil {
		log.Warn("Ingredient not found", zap.Uint("ingredient_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Ingredient not found"})
	}

	return c.JSON(http.StatusOK, ingredient)
}

// CreateIngredient creates an ingredient and records its opening stock as
// an initial movement, so the ledger covers the full history from day one.
func CreateIngredient(c echo.Context) error {
	log := logger.FromEcho(c)
	log.Info("Creating new ingredient")

	var req IngredientRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.InitialStock.IsNegative() {
		log.Warn("Rejected negative opening stock",
			zap.String("name", req.Name),
			zap.String("initial_stock", req.InitialStock.String()))
		return respondError(c, log, &service.InvalidQuantityError{Detail: "initial stock must not be negative"})
	}

	ingredient := model.Ingredient{
		Name:         req.Name,
		Unit:         req.Unit,
		CostPerUnit:  req.CostPerUnit,
		ReorderPoint: req.ReorderPoint,
		ReorderQty:   req.ReorderQty,
		IsActive:     true,
	}
	if err := database.GetDB().Create(&ingredient).Error; err != nil {
		log.Error("Failed to create ingredient", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create ingredient"})
	}

	if req.InitialStock.IsPositive() {
		ledger := service.NewLedger(database.GetDB())
		_, err := ledger.RecordInitialStock(c.Request().Context(), ingredient.ID, req.InitialStock, actor(c))
		if err != nil {
			return respondError(c, log, err)
		}
		database.GetDB().First(&ingredient, ingredient.ID)
	}

	log.Info("Ingredient created",
		zap.Uint("ingredient_id", ingredient.ID),
		zap.String("name", ingredient.Name))
	return c.JSON(http.StatusCreated, ingredient)
}

// AdjustStock records a manual stock adjustment movement
func AdjustStock(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ingredient id"})
	}

	var req AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	ledger := service.NewLedger(database.GetDB())
	movement, err := ledger.AdjustStock(c.Request().Context(), id, req.Quantity, req.Reason, actor(c))
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, movement)
}

// ListMovements returns the movement history for an ingredient
func ListMovements(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ingredient id"})
	}

	ledger := service.NewLedger(database.GetDB())
	movements, err := ledger.Movements(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, movements)
}
