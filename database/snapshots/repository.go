// Package snapshots persists most-active snapshots and trend observations.
package snapshots

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "stock-sentry/database/models_pkg"
)

// Repository handles database operations for most-active snapshots and
// trend observations
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new snapshots repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertSnapshots stores a scraped most-active batch.
func (r *Repository) UpsertSnapshots(rows []models.MostActiveSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "scraped_at"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("UpsertSnapshots: %w", err)
	}
	return nil
}

// LatestSnapshots returns the rows of the most recent scrape, ordered by
// symbol, capped at limit.
func (r *Repository) LatestSnapshots(limit int) ([]models.MostActiveSnapshot, error) {
	var latest *time.Time
	row := r.db.Model(&models.MostActiveSnapshot{}).Select("MAX(scraped_at)").Row()
	if err := row.Scan(&latest); err != nil {
		return nil, fmt.Errorf("LatestSnapshots: %w", err)
	}
	if latest == nil {
		return nil, nil
	}

	var rows []models.MostActiveSnapshot
	query := r.db.Where("scraped_at = ?", *latest).Order("symbol ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("LatestSnapshots: %w", err)
	}
	return rows, nil
}

// UpdateLatestPrice refreshes the current price on a symbol's most recent
// snapshot row. Used by the quote stream ingestor.
func (r *Repository) UpdateLatestPrice(symbol string, price float64) error {
	err := r.db.Exec(`
		UPDATE most_active_snapshots SET price = ?
		WHERE symbol = ? AND scraped_at = (
			SELECT MAX(scraped_at) FROM most_active_snapshots WHERE symbol = ?
		)`, price, symbol, symbol).Error
	if err != nil {
		return fmt.Errorf("UpdateLatestPrice: %w", err)
	}
	return nil
}

// SaveObservation stores a trend observation. Observations are consumed
// once by the trade pipeline; re-running a trend pass for the same instant
// upserts rather than duplicating.
func (r *Repository) SaveObservation(obs *models.TrendObservation) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "computed_at"}},
		UpdateAll: true,
	}).Create(obs).Error
	if err != nil {
		return fmt.Errorf("SaveObservation: %w", err)
	}
	return nil
}

// LatestObservations returns all observations from the most recent trend
// pass (rows sharing the max computed_at), ordered by symbol.
func (r *Repository) LatestObservations() ([]models.TrendObservation, error) {
	var latest *time.Time
	row := r.db.Model(&models.TrendObservation{}).Select("MAX(computed_at)").Row()
	if err := row.Scan(&latest); err != nil {
		return nil, fmt.Errorf("LatestObservations: %w", err)
	}
	if latest == nil {
		return nil, nil
	}

	var rows []models.TrendObservation
	err := r.db.Where("computed_at = ?", *latest).Order("symbol ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("LatestObservations: %w", err)
	}
	return rows, nil
}
