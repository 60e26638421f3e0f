package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oarthurdev/vortex-gestao/internal/config"
	"github.com/oarthurdev/vortex-gestao/internal/models"
)

// Open connects to the driver named in cfg. The memory driver has no
// database and is rejected here.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("database: driver %q não usa banco de dados", cfg.StorageDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("database: conexão falhou: %w", err)
	}
	return db, nil
}

// Migrate creates or alters every table. Parents come before children so
// foreign keys resolve.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Property{},
		&models.Client{},
		&models.ClientInteraction{},
		&models.Appointment{},
		&models.Contract{},
		&models.Transaction{},
		&models.Construction{},
		&models.ConstructionTask{},
		&models.ConstructionExpense{},
		&models.Activity{},
	)
	if err != nil {
		return fmt.Errorf("database: AutoMigrate: %w", err)
	}
	log.Info("migração concluída", zap.String("dialect", db.Dialector.Name()))
	return nil
}
