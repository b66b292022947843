package db

import (
	"time"

	"github.com/tirtakarya/waterbill/internal/config"
	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	transactiondomain "github.com/tirtakarya/waterbill/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open connects gorm using the configured dialect and applies pool settings.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConn)
	}
	if cfg.DBMaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConn)
	}
	if cfg.DBConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)
	}
	if cfg.DBConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTime) * time.Second)
	}

	log.Info("database connected", zap.String("type", cfg.DBType), zap.String("name", cfg.DBName))
	return gdb, nil
}

// Migrate applies the schema for all record collections.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&customerdomain.Customer{},
		&billingdomain.Bill{},
		&transactiondomain.Transaction{},
	)
}

// Module wires the database connection and schema migration.
var Module = fx.Module("db",
	fx.Provide(Open),
	fx.Invoke(Migrate),
)
