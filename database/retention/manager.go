// Package retention archives and prunes rows not dated "today". Rows are
// copied into the matching archive table before the active rows are
// deleted; the archive insert is conflict-free on the source identity, so
// a crash between copy and delete (or a back-to-back re-run) re-archives
// nothing and loses nothing.
package retention

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Table describes one managed active/archive table pair.
type Table struct {
	Name        string
	Archive     string
	Columns     []string // source columns copied verbatim into the archive
	DateColumn  string   // column whose DATE() decides "today"
	HasSourceID bool     // source id column copied into archive source_id
	ExtraWhere  string   // optional additional predicate on the source rows
}

// Store is the minimal persistence surface the manager needs. CopyOld must
// be idempotent with respect to already-archived rows.
type Store interface {
	CopyOld(t Table, today time.Time) (int64, error)
	DeleteOld(t Table, today time.Time) (int64, error)
}

// Result reports per-table archival counts for one run.
type Result struct {
	Archived map[string]int64
	Deleted  map[string]int64
}

// Manager runs the daily archival over every managed table.
type Manager struct {
	store  Store
	tables []Table
}

// New creates a manager over the default managed tables.
func New(store Store) *Manager {
	return &Manager{store: store, tables: ManagedTables()}
}

// NewForTables creates a manager over an explicit table set.
func NewForTables(store Store, tables []Table) *Manager {
	return &Manager{store: store, tables: tables}
}

// Run archives then deletes rows older than today, table by table. The
// delete for a table only happens after its copy succeeded; a copy failure
// skips the delete and surfaces in the returned error while the remaining
// tables still run.
func (m *Manager) Run(now time.Time) (Result, error) {
	res := Result{
		Archived: make(map[string]int64),
		Deleted:  make(map[string]int64),
	}

	var errs []string
	for _, t := range m.tables {
		archived, err := m.store.CopyOld(t, now)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: copy: %v", t.Name, err))
			continue // never delete rows that were not copied
		}
		res.Archived[t.Name] = archived

		deleted, err := m.store.DeleteOld(t, now)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: delete: %v", t.Name, err))
			continue
		}
		res.Deleted[t.Name] = deleted
	}

	if len(errs) > 0 {
		return res, fmt.Errorf("retention run: %s", strings.Join(errs, "; "))
	}
	return res, nil
}

// ManagedTables enumerates the active/archive pairs under daily retention.
// Daily price bars are kept (the breakout lookback needs them); intraday
// bars, signals, observations, trade records, and snapshots roll over.
func ManagedTables() []Table {
	return []Table{
		{
			Name:        "signals",
			Archive:     "signals_archive",
			Columns:     []string{"symbol", "timestamp", "signal_type", "bar_id", "metrics_json", "severity", "created_at"},
			DateColumn:  "created_at",
			HasSourceID: true,
		},
		{
			Name:        "trend_observations",
			Archive:     "trend_observations_archive",
			Columns:     []string{"symbol", "computed_at", "slope", "label", "method_used", "start_price", "latest_price"},
			DateColumn:  "computed_at",
			HasSourceID: true,
		},
		{
			Name:        "trade_records",
			Archive:     "trade_records_archive",
			Columns:     []string{"symbol", "action", "price", "pnl", "decided_at", "created_at"},
			DateColumn:  "created_at",
			HasSourceID: true,
		},
		{
			Name:       "most_active_snapshots",
			Archive:    "most_active_snapshots_archive",
			Columns:    []string{"symbol", "scraped_at", "name", "price", "change_pct", "volume"},
			DateColumn: "scraped_at",
		},
		{
			Name:       "price_bars",
			Archive:    "price_bars_archive",
			Columns:    []string{"symbol", `"interval"`, "timestamp", "open", "high", "low", "close", "volume", "source", "ingested_at"},
			DateColumn: "timestamp",
			ExtraWhere: `"interval" = '30min'`,
		},
	}
}

// GormStore implements Store against the shared GORM connection using
// INSERT ... SELECT so the copy happens entirely inside the database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GORM-backed retention store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// CopyOld copies rows not dated today into the archive table with an
// archived_at stamp. ON CONFLICT DO NOTHING against the archive identity
// index makes re-copies no-ops.
func (s *GormStore) CopyOld(t Table, today time.Time) (int64, error) {
	destCols := make([]string, 0, len(t.Columns)+2)
	srcCols := make([]string, 0, len(t.Columns)+2)
	if t.HasSourceID {
		destCols = append(destCols, "source_id")
		srcCols = append(srcCols, "id")
	}
	destCols = append(destCols, t.Columns...)
	srcCols = append(srcCols, t.Columns...)
	destCols = append(destCols, "archived_at")
	srcCols = append(srcCols, "NOW()")

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s WHERE %s ON CONFLICT DO NOTHING",
		t.Archive,
		strings.Join(destCols, ", "),
		strings.Join(srcCols, ", "),
		t.Name,
		oldRowsPredicate(t),
	)
	res := s.db.Exec(sql, today.Format("2006-01-02"))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// DeleteOld removes rows not dated today from the active table.
func (s *GormStore) DeleteOld(t Table, today time.Time) (int64, error) {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", t.Name, oldRowsPredicate(t))
	res := s.db.Exec(sql, today.Format("2006-01-02"))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func oldRowsPredicate(t Table) string {
	pred := fmt.Sprintf("DATE(%s) <> ?::date", t.DateColumn)
	if t.ExtraWhere != "" {
		pred += " AND " + t.ExtraWhere
	}
	return pred
}
