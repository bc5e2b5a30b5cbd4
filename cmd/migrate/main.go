package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pharmapos/backend/internal/infrastructure/config"
	"github.com/pharmapos/backend/internal/infrastructure/logger"
	"github.com/pharmapos/backend/internal/infrastructure/persistence"
	"github.com/pharmapos/backend/internal/infrastructure/persistence/models"
)

// The schema is owned by the GORM models; this command reconciles the
// database with them. AutoMigrate only adds missing tables, columns and
// indexes, so running it against a live store is safe.
func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Migrating schema",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	if err := db.DB.AutoMigrate(
		&models.ProductModel{},
		&models.StockBatchModel{},
		&models.SaleModel{},
		&models.SaleItemModel{},
		&models.SalesReturnModel{},
		&models.ReturnItemModel{},
		&models.ReceiptSequenceModel{},
	); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	log.Info("Schema up to date")
}
