package models

import "time"

// Signal types emitted by the detector.
const (
	SignalMoveFromOpen = "move_from_open"
	SignalVolumeSpike  = "volume_spike"
	SignalBreakout     = "breakout"
	SignalBreakdown    = "breakdown"
)

// Severity buckets. Rank ordering matters (see SeverityRank); exact bucket
// edges are a configuration concern, ordering is not.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// SeverityRank maps a severity to its ordering value. Unknown severities
// rank below low so they never count as an escalation.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// Signal directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Trend labels.
const (
	TrendUp   = "Up"
	TrendDown = "Down"
)

// Trend computation methods, recorded so consumers can tell which code path
// produced a label.
const (
	MethodRegression       = "regression"
	MethodSimpleComparison = "simple_comparison"
	MethodFallbackSnapshot = "fallback_snapshot"
)

// Position states.
const (
	PositionFlat = "Flat"
	PositionOpen = "Open"
)

// Trade actions. Every decision is recorded, including the ones that leave
// the position untouched.
const (
	ActionBuy      = "BUY"
	ActionHold     = "HOLD"
	ActionSell     = "SELL"
	ActionNoAction = "NO_ACTION"
)

// Bar intervals.
const (
	IntervalDaily    = "1day"
	IntervalIntraday = "30min"
)

// PriceBar is one OHLCV observation for a symbol over an interval.
// Immutable once ingested; re-ingestion of the same bar upserts in place.
type PriceBar struct {
	Symbol     string    `gorm:"size:12;primaryKey" json:"symbol"`
	Interval   string    `gorm:"size:10;primaryKey" json:"interval"`
	Timestamp  time.Time `gorm:"primaryKey" json:"timestamp"`
	Open       float64   `gorm:"type:decimal(15,4);not null" json:"open"`
	High       float64   `gorm:"type:decimal(15,4);not null" json:"high"`
	Low        float64   `gorm:"type:decimal(15,4);not null" json:"low"`
	Close      float64   `gorm:"type:decimal(15,4);not null" json:"close"`
	Volume     float64   `gorm:"type:decimal(20,2);not null" json:"volume"`
	Source     string    `gorm:"size:20;default:twelve_data" json:"source"`
	IngestedAt time.Time `gorm:"autoCreateTime" json:"ingested_at"`
}

// TableName specifies the table name for PriceBar
func (PriceBar) TableName() string {
	return "price_bars"
}

// Signal is a detected event worth surfacing. The composite unique index on
// (symbol, signal_type, bar_id) makes re-detection of the same event on the
// same bar a storage-level no-op.
type Signal struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol      string    `gorm:"size:12;not null;uniqueIndex:idx_signal_identity;index:idx_signals_symbol_ts" json:"symbol"`
	Timestamp   time.Time `gorm:"not null;index:idx_signals_symbol_ts" json:"timestamp"`
	SignalType  string    `gorm:"size:20;not null;uniqueIndex:idx_signal_identity" json:"signal_type"`
	BarID       string    `gorm:"size:40;not null;uniqueIndex:idx_signal_identity" json:"bar_id"`
	MetricsJSON string    `gorm:"type:text;not null" json:"metrics_json"`
	Severity    string    `gorm:"size:10;not null" json:"severity"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Signal
func (Signal) TableName() string {
	return "signals"
}

// AlertState is the per-symbol throttle state. One row per symbol; absence
// means the symbol has never alerted. Mutated only on throttle approval.
type AlertState struct {
	Symbol             string    `gorm:"size:12;primaryKey" json:"symbol"`
	LastAlertAt        time.Time `gorm:"not null" json:"last_alert_at"`
	LastAlertPrice     float64   `gorm:"type:decimal(15,4)" json:"last_alert_price"`
	LastAlertDirection string    `gorm:"size:5" json:"last_alert_direction"`
	LastAlertSeverity  string    `gorm:"size:10" json:"last_alert_severity"`
}

// TableName specifies the table name for AlertState
func (AlertState) TableName() string {
	return "alert_states"
}

// TrendObservation is a single trend computation for a symbol. Slope is nil
// unless the label came from regression.
type TrendObservation struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol      string    `gorm:"size:12;not null;uniqueIndex:idx_trend_identity" json:"symbol"`
	ComputedAt  time.Time `gorm:"not null;uniqueIndex:idx_trend_identity" json:"computed_at"`
	Slope       *float64  `gorm:"type:decimal(15,8)" json:"slope,omitempty"`
	Label       string    `gorm:"size:5;not null" json:"label"`
	MethodUsed  string    `gorm:"size:20;not null" json:"method_used"`
	StartPrice  *float64  `gorm:"type:decimal(15,4)" json:"start_price,omitempty"`
	LatestPrice *float64  `gorm:"type:decimal(15,4)" json:"latest_price,omitempty"`
}

// TableName specifies the table name for TrendObservation
func (TrendObservation) TableName() string {
	return "trend_observations"
}

// MostActiveSnapshot is one row of the scraped most-active table: the
// fallback input for trend analysis when intraday bars are missing.
type MostActiveSnapshot struct {
	Symbol    string    `gorm:"size:12;primaryKey" json:"symbol"`
	ScrapedAt time.Time `gorm:"primaryKey" json:"scraped_at"`
	Name      string    `gorm:"size:100" json:"name"`
	Price     float64   `gorm:"type:decimal(15,4)" json:"price"`
	ChangePct float64   `gorm:"type:decimal(10,4)" json:"change_pct"`
	Volume    float64   `gorm:"type:decimal(20,2)" json:"volume"`
}

// TableName specifies the table name for MostActiveSnapshot
func (MostActiveSnapshot) TableName() string {
	return "most_active_snapshots"
}

// Position is the derived current view of a symbol's trading state. One row
// per symbol, so at most one open position can exist. The append-only
// TradeRecord log is the audit trail this row is reconstructible from.
type Position struct {
	Symbol      string     `gorm:"size:12;primaryKey" json:"symbol"`
	Status      string     `gorm:"size:5;not null;default:Flat" json:"status"`
	BuyPrice    *float64   `gorm:"type:decimal(15,4)" json:"buy_price,omitempty"`
	OpenedAt    *time.Time `json:"opened_at,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	RealizedPnl *float64   `gorm:"type:decimal(12,8)" json:"realized_pnl,omitempty"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Position
func (Position) TableName() string {
	return "positions"
}

// TradeRecord is the append-only decision log. HOLD and NO_ACTION are
// recorded too; silence would break the audit trail.
type TradeRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol    string    `gorm:"size:12;not null;index:idx_trade_records_symbol_at" json:"symbol"`
	Action    string    `gorm:"size:10;not null" json:"action"`
	Price     float64   `gorm:"type:decimal(15,4);not null" json:"price"`
	Pnl       *float64  `gorm:"type:decimal(12,8)" json:"pnl,omitempty"`
	DecidedAt time.Time `gorm:"not null;index:idx_trade_records_symbol_at" json:"decided_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for TradeRecord
func (TradeRecord) TableName() string {
	return "trade_records"
}

// NewsItem is one headline fetched for a symbol that just alerted. The URL
// hash is the dedup identity across runs; SignalID links the headline to
// the signal whose alert triggered the fetch.
type NewsItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol    string    `gorm:"size:12;not null;index" json:"symbol"`
	Title     string    `gorm:"size:300;not null" json:"title"`
	URL       string    `gorm:"size:500;not null" json:"url"`
	URLHash   string    `gorm:"size:32;not null;uniqueIndex" json:"url_hash"`
	Source    string    `gorm:"size:100" json:"source,omitempty"`
	SignalID  *int64    `gorm:"index" json:"signal_id,omitempty"`
	FetchedAt time.Time `gorm:"not null" json:"fetched_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for NewsItem
func (NewsItem) TableName() string {
	return "news_items"
}
