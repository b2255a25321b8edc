package models

import "time"

// Archive mirrors of the managed tables. Each carries the source row's
// identity under a unique index so re-archiving the same logical record is
// an ON CONFLICT DO NOTHING no-op, never an integrity error.

// SignalArchive mirrors Signal plus archived_at.
type SignalArchive struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceID    int64     `gorm:"not null" json:"source_id"`
	Symbol      string    `gorm:"size:12;not null;uniqueIndex:idx_signal_archive_identity" json:"symbol"`
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`
	SignalType  string    `gorm:"size:20;not null;uniqueIndex:idx_signal_archive_identity" json:"signal_type"`
	BarID       string    `gorm:"size:40;not null;uniqueIndex:idx_signal_archive_identity" json:"bar_id"`
	MetricsJSON string    `gorm:"type:text;not null" json:"metrics_json"`
	Severity    string    `gorm:"size:10;not null" json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
	ArchivedAt  time.Time `gorm:"not null" json:"archived_at"`
}

// TableName specifies the table name for SignalArchive
func (SignalArchive) TableName() string {
	return "signals_archive"
}

// TrendObservationArchive mirrors TrendObservation plus archived_at.
type TrendObservationArchive struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceID    int64     `gorm:"not null" json:"source_id"`
	Symbol      string    `gorm:"size:12;not null;uniqueIndex:idx_trend_archive_identity" json:"symbol"`
	ComputedAt  time.Time `gorm:"not null;uniqueIndex:idx_trend_archive_identity" json:"computed_at"`
	Slope       *float64  `gorm:"type:decimal(15,8)" json:"slope,omitempty"`
	Label       string    `gorm:"size:5;not null" json:"label"`
	MethodUsed  string    `gorm:"size:20;not null" json:"method_used"`
	StartPrice  *float64  `gorm:"type:decimal(15,4)" json:"start_price,omitempty"`
	LatestPrice *float64  `gorm:"type:decimal(15,4)" json:"latest_price,omitempty"`
	ArchivedAt  time.Time `gorm:"not null" json:"archived_at"`
}

// TableName specifies the table name for TrendObservationArchive
func (TrendObservationArchive) TableName() string {
	return "trend_observations_archive"
}

// TradeRecordArchive mirrors TradeRecord plus archived_at.
type TradeRecordArchive struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceID   int64     `gorm:"not null;uniqueIndex" json:"source_id"`
	Symbol     string    `gorm:"size:12;not null" json:"symbol"`
	Action     string    `gorm:"size:10;not null" json:"action"`
	Price      float64   `gorm:"type:decimal(15,4);not null" json:"price"`
	Pnl        *float64  `gorm:"type:decimal(12,8)" json:"pnl,omitempty"`
	DecidedAt  time.Time `gorm:"not null" json:"decided_at"`
	CreatedAt  time.Time `json:"created_at"`
	ArchivedAt time.Time `gorm:"not null" json:"archived_at"`
}

// TableName specifies the table name for TradeRecordArchive
func (TradeRecordArchive) TableName() string {
	return "trade_records_archive"
}

// MostActiveSnapshotArchive mirrors MostActiveSnapshot plus archived_at.
type MostActiveSnapshotArchive struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol     string    `gorm:"size:12;not null;uniqueIndex:idx_most_active_archive_identity" json:"symbol"`
	ScrapedAt  time.Time `gorm:"not null;uniqueIndex:idx_most_active_archive_identity" json:"scraped_at"`
	Name       string    `gorm:"size:100" json:"name"`
	Price      float64   `gorm:"type:decimal(15,4)" json:"price"`
	ChangePct  float64   `gorm:"type:decimal(10,4)" json:"change_pct"`
	Volume     float64   `gorm:"type:decimal(20,2)" json:"volume"`
	ArchivedAt time.Time `gorm:"not null" json:"archived_at"`
}

// TableName specifies the table name for MostActiveSnapshotArchive
func (MostActiveSnapshotArchive) TableName() string {
	return "most_active_snapshots_archive"
}

// PriceBarArchive mirrors PriceBar plus archived_at. Only intraday bars are
// retention-managed; daily history is kept for the breakout lookback.
type PriceBarArchive struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol     string    `gorm:"size:12;not null;uniqueIndex:idx_price_bar_archive_identity" json:"symbol"`
	Interval   string    `gorm:"size:10;not null;uniqueIndex:idx_price_bar_archive_identity" json:"interval"`
	Timestamp  time.Time `gorm:"not null;uniqueIndex:idx_price_bar_archive_identity" json:"timestamp"`
	Open       float64   `gorm:"type:decimal(15,4);not null" json:"open"`
	High       float64   `gorm:"type:decimal(15,4);not null" json:"high"`
	Low        float64   `gorm:"type:decimal(15,4);not null" json:"low"`
	Close      float64   `gorm:"type:decimal(15,4);not null" json:"close"`
	Volume     float64   `gorm:"type:decimal(20,2);not null" json:"volume"`
	Source     string    `gorm:"size:20" json:"source"`
	IngestedAt time.Time `json:"ingested_at"`
	ArchivedAt time.Time `gorm:"not null" json:"archived_at"`
}

// TableName specifies the table name for PriceBarArchive
func (PriceBarArchive) TableName() string {
	return "price_bars_archive"
}
