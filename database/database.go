package database

import (
	"fmt"
	"log"

	"tpv/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDatabase opens the global connection and migrates the schema.
func InitDatabase(dsn string) {
	db, err := Open(dsn, logger.Warn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	DB = db
	log.Println("Database connected and migrated")
}

// Open connects to PostgreSQL. References between rows are checked by the service
// layer, so no foreign-key constraints are created.
func Open(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Table{},
		&model.Order{},
		&model.OrderItem{},
		&model.Cart{},
		&model.CartItem{},
		&model.Product{},
		&model.Sale{},
		&model.ClosedTable{},
		&model.DailyCash{},
		&model.RemovalAudit{},
		&model.Password{},
	)
}
