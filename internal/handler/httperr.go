package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mbh206/shoppos-sub002/internal/middleware"
	"github.com/mbh206/shoppos-sub002/internal/service"
)

// respondError translates core error kinds into HTTP responses.
// InsufficientStock and GameInUse are expected business errors and carry
// their structured detail; everything else is an operational failure.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var notFound *service.NotFoundError
	var invalidQty *service.InvalidQuantityError
	var insufficient *service.InsufficientStockError
	var gameInUse *service.GameInUseError
	var alreadyEnded *service.AlreadyEndedError
	var invalidTransition *service.InvalidTransitionError

	switch {
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
	case errors.As(err, &invalidQty):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": invalidQty.Error()})
	case errors.As(err, &insufficient):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      insufficient.Error(),
			"shortfalls": insufficient.Shortfalls,
		})
	case errors.As(err, &gameInUse):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      gameInUse.Error(),
			"session_id": gameInUse.SessionID,
			"table_id":   gameInUse.TableID,
		})
	case errors.As(err, &alreadyEnded):
		return c.JSON(http.StatusConflict, echo.Map{"error": alreadyEnded.Error()})
	case errors.As(err, &invalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": invalidTransition.Error()})
	default:
		log.Error("Operation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// actor returns the authenticated staff member's ID, or 0 when the route
// runs without auth (tests, internal tooling).
func actor(c echo.Context) uint {
	userID, _ := middleware.ActorFromContext(c)
	return userID
}
