// Package database provides the GORM/PostgreSQL store shared by every
// component. Models live in the models_pkg package; repositories per table
// group live in the subpackages (bars, signals, trades, snapshots,
// retention) and each receives an explicit *Database handle rather than
// reaching for a package-level connection.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "stock-sentry/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // surface duplicate keys as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, WrapDBError("connect", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates or migrates every managed table, active and archive.
// Uniqueness constraints (signal identity, archive identities, one position
// row per symbol) live in the schema so retried or concurrent writes cannot
// violate them.
func (d *Database) InitSchema() error {
	err := d.db.AutoMigrate(
		&models.PriceBar{},
		&models.Signal{},
		&models.AlertState{},
		&models.TrendObservation{},
		&models.MostActiveSnapshot{},
		&models.Position{},
		&models.TradeRecord{},
		&models.NewsItem{},
		&models.SignalArchive{},
		&models.TrendObservationArchive{},
		&models.TradeRecordArchive{},
		&models.MostActiveSnapshotArchive{},
		&models.PriceBarArchive{},
	)
	if err != nil {
		return WrapDBError("migrate", err)
	}
	return nil
}
