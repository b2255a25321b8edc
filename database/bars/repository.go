// Package bars persists OHLCV price bars.
package bars

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "stock-sentry/database/models_pkg"
)

// Repository handles database operations for price bars
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bars repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertBars stores bars, replacing any existing row with the same
// (symbol, interval, timestamp). Re-ingesting a bar is idempotent.
func (r *Repository) UpsertBars(bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "interval"}, {Name: "timestamp"}},
		UpdateAll: true,
	}).Create(&bars).Error
	if err != nil {
		return fmt.Errorf("UpsertBars: %w", err)
	}
	return nil
}

// DailyBar returns the daily bar for a symbol on the given day, or nil when
// none exists yet.
func (r *Repository) DailyBar(symbol string, day time.Time) (*models.PriceBar, error) {
	var bar models.PriceBar
	err := r.db.
		Where("symbol = ? AND \"interval\" = ? AND DATE(timestamp) = DATE(?)", symbol, models.IntervalDaily, day).
		Order("timestamp DESC").
		First(&bar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("DailyBar: %w", err)
	}
	return &bar, nil
}

// LatestDailyBar returns the most recent daily bar for a symbol, or nil.
func (r *Repository) LatestDailyBar(symbol string) (*models.PriceBar, error) {
	var bar models.PriceBar
	err := r.db.
		Where("symbol = ? AND \"interval\" = ?", symbol, models.IntervalDaily).
		Order("timestamp DESC").
		First(&bar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestDailyBar: %w", err)
	}
	return &bar, nil
}

// IntradayBars returns up to limit intraday bars for a symbol, oldest first.
func (r *Repository) IntradayBars(symbol string, limit int) ([]models.PriceBar, error) {
	var rows []models.PriceBar
	err := r.db.
		Where("symbol = ? AND \"interval\" = ?", symbol, models.IntervalIntraday).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("IntradayBars: %w", err)
	}
	// reverse into chronological order
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
