package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/internal/service"
	"github.com/mbh206/shoppos-sub002/pkg/database"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
)

// ListMenuItems handles retrieving the menu with recipe lines
func ListMenuItems(c echo.Context) error {
	log := logger.FromEcho(c)

	query := database.GetDB().Preload("RecipeLines.Ingredient")

	isActive := c.QueryParam("is_active")
	if isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err == nil {
			query = query.Where("is_active = ?", active)
		} else {
			log.Warn("Invalid is_active parameter", zap.String("value", isActive), zap.Error(err))
		}
	}

	var items []model.MenuItem
	if err := query.Order("name").Find(&items).Error; err != nil {
		log.Error("Failed to list menu items", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve menu items",
		})
	}

	return c.JSON(http.StatusOK, items)
}

// CheckAvailability reports whether the requested quantity of a menu item
// can be made from current stock, with the full shortfall list when not.
func CheckAvailability(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}

	qty := int64(1)
	if raw := c.QueryParam("qty"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid qty parameter"})
		}
		qty = parsed
	}

	availability := service.NewAvailability(database.GetDB())
	result, err := availability.CheckAvailable(c.Request().Context(), id, qty)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, result)
}
