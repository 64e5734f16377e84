package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mbh206/shoppos-sub002/internal/model"
	"github.com/mbh206/shoppos-sub002/pkg/config"
)

var db *gorm.DB

// InitDB initializes the database connection with configuration and runs
// migrations.
func InitDB(config *config.Config) error {
	var err error

	dsn := config.DB.GetDSN()

	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err = gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(config.DB.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.DB.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return err
	}

	return nil
}

// Migrate runs schema migrations plus the constraints AutoMigrate cannot
// express.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Ingredient{},
		&model.StockMovement{},
		&model.MenuItem{},
		&model.RecipeLine{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderEvent{},
		&model.Table{},
		&model.Seat{},
		&model.SeatSession{},
		&model.Game{},
		&model.GameSession{},
		&model.Supplier{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// One open session per physical game, enforced at the storage layer so
	// concurrent assignments cannot race past the application check.
	err = db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_game_sessions_open_game " +
			"ON game_sessions (game_id) WHERE ended_at IS NULL",
	).Error
	if err != nil {
		return fmt.Errorf("failed to create open-session index: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}
