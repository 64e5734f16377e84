package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mbh206/shoppos-sub002/pkg/database"
)

// Health reports service and database health
func Health(c echo.Context) error {
	sqlDB, err := database.GetDB().DB()
	if err != nil || sqlDB.Ping() != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
