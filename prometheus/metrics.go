package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mbh206/shoppos-sub002/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Stock ledger metrics
	StockMovementsCounter *prometheus.CounterVec
	NegativeStockCounter  prometheus.Counter
	IngredientStockGauge  *prometheus.GaugeVec

	// Order item admission metrics
	AdmissionsCounter *prometheus.CounterVec

	// Game session metrics
	GameSessionsCounter *prometheus.CounterVec

	// Purchase order metrics
	PurchaseReceiptsCounter *prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	StockMovementsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Total number of stock ledger movements by type",
		},
		[]string{"type"},
	)

	NegativeStockCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_negative_stock_total",
			Help: "Total number of movements that left an ingredient's stock negative",
		},
	)

	IngredientStockGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_ingredient_stock",
			Help: "Current stock level per ingredient",
		},
		[]string{"ingredient_id", "name"},
	)

	AdmissionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_item_admissions_total",
			Help: "Total number of order item admissions by result",
		},
		[]string{"result"},
	)

	GameSessionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_game_sessions_total",
			Help: "Total number of game session operations",
		},
		[]string{"operation"},
	)

	PurchaseReceiptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_purchase_receipts_total",
			Help: "Total number of purchase order receipts by resulting status",
		},
		[]string{"status"},
	)
}

// RecordStockMovement counts one ledger movement by type
func RecordStockMovement(movementType string) {
	if StockMovementsCounter != nil {
		StockMovementsCounter.WithLabelValues(movementType).Inc()
	}
}

// RecordNegativeStock counts a movement that left stock negative
func RecordNegativeStock() {
	if NegativeStockCounter != nil {
		NegativeStockCounter.Inc()
	}
}

// UpdateIngredientStock updates the stock gauge for an ingredient
func UpdateIngredientStock(ingredientID uint, name string, stock float64) {
	if IngredientStockGauge != nil {
		IngredientStockGauge.WithLabelValues(
			strconv.FormatUint(uint64(ingredientID), 10),
			name,
		).Set(stock)
	}
}

// RecordAdmission counts one order item admission by result
func RecordAdmission(result string) {
	if AdmissionsCounter != nil {
		AdmissionsCounter.WithLabelValues(result).Inc()
	}
}

// RecordGameSession counts one game session operation
func RecordGameSession(operation string) {
	if GameSessionsCounter != nil {
		GameSessionsCounter.WithLabelValues(operation).Inc()
	}
}

// RecordPurchaseReceipt counts one purchase order receipt
func RecordPurchaseReceipt(status string) {
	if PurchaseReceiptsCounter != nil {
		PurchaseReceiptsCounter.WithLabelValues(status).Inc()
	}
}
