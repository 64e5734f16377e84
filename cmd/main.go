package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mbh206/shoppos-sub002/internal/handler"
	mid "github.com/mbh206/shoppos-sub002/internal/middleware"
	"github.com/mbh206/shoppos-sub002/pkg/config"
	"github.com/mbh206/shoppos-sub002/pkg/database"
	"github.com/mbh206/shoppos-sub002/pkg/jwtutil"
	"github.com/mbh206/shoppos-sub002/pkg/logger"
	"github.com/mbh206/shoppos-sub002/prometheus"
)

func main() {
	// Load configuration (godotenv runs inside Load)
	appConfig, err := config.Load("shoppos")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting shoppos", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics and health endpoints
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.Health)

	// Inventory / stock ledger
	inventoryAPI := e.Group("/api/inventory", mid.AuthMiddleware)
	inventoryAPI.GET("", handler.ListIngredients)
	inventoryAPI.GET("/:id", handler.GetIngredient)
	inventoryAPI.POST("", handler.CreateIngredient)
	inventoryAPI.POST("/:id/adjust", handler.AdjustStock)
	inventoryAPI.GET("/:id/movements", handler.ListMovements)

	// Menu and availability
	menuAPI := e.Group("/api/menu", mid.AuthMiddleware)
	menuAPI.GET("", handler.ListMenuItems)
	menuAPI.GET("/:id/availability", handler.CheckAvailability)

	// Orders and item admission
	orderAPI := e.Group("/api/orders", mid.AuthMiddleware)
	orderAPI.POST("", handler.OpenOrder)
	orderAPI.GET("/checkout", handler.ListCheckout)
	orderAPI.GET("/:id", handler.GetOrder)
	orderAPI.POST("/:id/items", handler.AddOrderItem)
	orderAPI.POST("/:id/close", handler.CloseOutOrder)
	orderAPI.POST("/:id/pay", handler.PayOrder)
	orderAPI.POST("/:id/void", handler.VoidOrder)
	e.DELETE("/api/order-items/:id", handler.RemoveOrderItem, mid.AuthMiddleware)

	// Tables and seats
	tableAPI := e.Group("/api/tables", mid.AuthMiddleware)
	tableAPI.GET("", handler.ListTables)
	tableAPI.POST("/:id/recompute", handler.RecomputeTableStatus)
	tableAPI.POST("/:id/games", handler.AssignGame)
	seatAPI := e.Group("/api/seats", mid.AuthMiddleware)
	seatAPI.POST("/:id/transition", handler.TransitionSeat)
	seatAPI.POST("/:id/sessions", handler.StartSeatSession)

	// Games
	gameAPI := e.Group("/api/games", mid.AuthMiddleware)
	gameAPI.GET("", handler.ListGames)
	e.POST("/api/game-sessions/:id/end", handler.ReleaseGame, mid.AuthMiddleware)

	// Purchasing
	purchaseAPI := e.Group("/api/purchase-orders", mid.AuthMiddleware)
	purchaseAPI.POST("", handler.CreatePurchaseOrder)
	purchaseAPI.GET("/:id", handler.GetPurchaseOrder)
	purchaseAPI.POST("/:id/send", handler.SendPurchaseOrder)
	purchaseAPI.POST("/:id/receive", handler.ReceivePurchaseOrder)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
