// Package signals persists detected signals and the per-symbol alert
// throttle state.
package signals

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "stock-sentry/database/models_pkg"
)

// Repository handles database operations for signals and alert state
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new signals repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx runs fn against a repository bound to a single transaction. The
// throttle's read-evaluate-write for one symbol happens inside one call so
// an interrupted run can only lose the in-flight symbol's update.
func (r *Repository) WithTx(fn func(r *Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// InsertSignal stores a signal. The (symbol, signal_type, bar_id) unique
// index makes re-detection of the same event a no-op: the return reports
// whether this call actually inserted the row.
func (r *Repository) InsertSignal(sig *models.Signal) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "signal_type"}, {Name: "bar_id"}},
		DoNothing: true,
	}).Create(sig)
	if res.Error != nil {
		return false, fmt.Errorf("InsertSignal: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetAlertState returns the throttle state for a symbol, or nil when the
// symbol has never alerted.
func (r *Repository) GetAlertState(symbol string) (*models.AlertState, error) {
	var state models.AlertState
	err := r.db.Where("symbol = ?", symbol).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetAlertState: %w", err)
	}
	return &state, nil
}

// UpsertAlertState records an approved alert for a symbol.
func (r *Repository) UpsertAlertState(state *models.AlertState) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		UpdateAll: true,
	}).Create(state).Error
	if err != nil {
		return fmt.Errorf("UpsertAlertState: %w", err)
	}
	return nil
}

// RecentSignals returns signals created at or after since, newest first.
func (r *Repository) RecentSignals(since time.Time, limit int) ([]models.Signal, error) {
	var rows []models.Signal
	query := r.db.Order("created_at DESC")
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("RecentSignals: %w", err)
	}
	return rows, nil
}
