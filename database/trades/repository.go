// Package trades persists positions and the append-only trade record log.
package trades

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/trading"
)

// Repository handles database operations for positions and trade records
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new trades repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetPosition returns the current position row for a symbol, or nil when
// the symbol has never traded.
func (r *Repository) GetPosition(symbol string) (*models.Position, error) {
	var pos models.Position
	err := r.db.Where("symbol = ?", symbol).First(&pos).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetPosition: %w", err)
	}
	return &pos, nil
}

// OpenBuyPrice returns the buy price of a symbol's open position, or nil
// when the position is flat or absent.
func (r *Repository) OpenBuyPrice(symbol string) (*float64, error) {
	pos, err := r.GetPosition(symbol)
	if err != nil {
		return nil, err
	}
	if pos == nil || pos.Status != models.PositionOpen {
		return nil, nil
	}
	return pos.BuyPrice, nil
}

// ExecuteDecision runs one symbol's position transition as a single unit of
// work: lock the position row, decide from the trend label, append the
// trade record, and update the derived position — all in one transaction so
// the log and the current view never diverge. Every decision is recorded,
// including HOLD and NO_ACTION.
func (r *Repository) ExecuteDecision(symbol, label string, price float64, at time.Time) (*models.TradeRecord, error) {
	var record models.TradeRecord

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var pos models.Position
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("symbol = ?", symbol).First(&pos).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pos = models.Position{Symbol: symbol, Status: models.PositionFlat}
		} else if err != nil {
			return fmt.Errorf("load position: %w", err)
		}

		action := trading.Decide(pos.Status, label)
		record = models.TradeRecord{
			Symbol:    symbol,
			Action:    action,
			Price:     price,
			DecidedAt: at,
		}

		switch action {
		case models.ActionBuy:
			buyPrice := price
			openedAt := at
			pos.Status = models.PositionOpen
			pos.BuyPrice = &buyPrice
			pos.OpenedAt = &openedAt
			pos.ClosedAt = nil
			pos.RealizedPnl = nil
		case models.ActionSell:
			if pos.BuyPrice == nil {
				return fmt.Errorf("position %s is open without a buy price", symbol)
			}
			pnl := trading.RealizedPnl(*pos.BuyPrice, price)
			closedAt := at
			record.Pnl = &pnl
			pos.Status = models.PositionFlat
			pos.ClosedAt = &closedAt
			pos.RealizedPnl = &pnl
		}

		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("append trade record: %w", err)
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			UpdateAll: true,
		}).Create(&pos).Error
		if err != nil {
			return fmt.Errorf("update position: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ExecuteDecision %s: %w", symbol, err)
	}
	return &record, nil
}

// TradeHistory returns a symbol's decision log, oldest first.
func (r *Repository) TradeHistory(symbol string, limit int) ([]models.TradeRecord, error) {
	var rows []models.TradeRecord
	query := r.db.Where("symbol = ?", symbol).Order("decided_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("TradeHistory: %w", err)
	}
	return rows, nil
}
