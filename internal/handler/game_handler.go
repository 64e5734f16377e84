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

// AssignGameRequest defines the structure for assigning a game to a table
type AssignGameRequest struct {
	GameID uint `json:"game_id" validate:"required"`
}

// ListGames handles retrieving the game library
func ListGames(c echo.Context) error {
	log := logger.FromEcho(c)

	query := database.GetDB()
	available := c.QueryParam("is_available")
	if available != "" {
		parsed, err := strconv.ParseBool(available)
		if err == nil {
			query = query.Where("is_available = ?", parsed)
		} else {
			log.Warn("Invalid is_available parameter", zap.String("value", available), zap.Error(err))
		}
	}

	var games []model.Game
	if err := query.Order("name").Find(&games).Error; err != nil {
		log.Error("Failed to list games", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve games",
		})
	}

	return c.JSON(http.StatusOK, games)
}

// AssignGame starts an exclusive game session at a table
func AssignGame(c echo.Context) error {
	log := logger.FromEcho(c)
	tableID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}

	var req AssignGameRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	games := service.NewGames(database.GetDB())
	session, err := games.AssignGame(c.Request().Context(), tableID, req.GameID, actor(c))
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, session)
}

// ReleaseGame ends a game session and frees the game
func ReleaseGame(c echo.Context) error {
	log := logger.FromEcho(c)
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}

	games := service.NewGames(database.GetDB())
	session, err := games.ReleaseGame(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, session)
}
