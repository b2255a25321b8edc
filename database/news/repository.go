// Package news persists headlines fetched for alerted symbols.
package news

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "stock-sentry/database/models_pkg"
)

// Repository handles database operations for news items
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new news repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertItems stores headlines, skipping any whose URL hash is already
// recorded. Returns how many rows were actually inserted.
func (r *Repository) InsertItems(items []models.NewsItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url_hash"}},
		DoNothing: true,
	}).Create(&items)
	if res.Error != nil {
		return 0, fmt.Errorf("InsertItems: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RecentBySymbol returns the latest stored headlines for a symbol.
func (r *Repository) RecentBySymbol(symbol string, limit int) ([]models.NewsItem, error) {
	var rows []models.NewsItem
	query := r.db.Where("symbol = ?", symbol).Order("fetched_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("RecentBySymbol: %w", err)
	}
	return rows, nil
}
