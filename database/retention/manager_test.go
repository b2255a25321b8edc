package retention

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type call struct {
	op    string
	table string
}

// fakeStore records the order of copy/delete calls and simulates a backing
// store where re-archiving already-archived rows affects nothing.
type fakeStore struct {
	calls     []call
	archived  map[string]bool
	failCopy  map[string]bool
	rowCounts map[string]int64
}

func newFakeStore(rows map[string]int64) *fakeStore {
	return &fakeStore{
		archived:  make(map[string]bool),
		failCopy:  make(map[string]bool),
		rowCounts: rows,
	}
}

func (f *fakeStore) CopyOld(t Table, today time.Time) (int64, error) {
	f.calls = append(f.calls, call{"copy", t.Name})
	if f.failCopy[t.Name] {
		return 0, errors.New("copy failed")
	}
	if f.archived[t.Name] {
		return 0, nil // conflict-free re-copy is a no-op
	}
	f.archived[t.Name] = true
	return f.rowCounts[t.Name], nil
}

func (f *fakeStore) DeleteOld(t Table, today time.Time) (int64, error) {
	f.calls = append(f.calls, call{"delete", t.Name})
	n := f.rowCounts[t.Name]
	f.rowCounts[t.Name] = 0
	return n, nil
}

func TestRunCopiesBeforeDeleting(t *testing.T) {
	store := newFakeStore(map[string]int64{"signals": 3, "trade_records": 1})
	mgr := NewForTables(store, []Table{
		{Name: "signals", Archive: "signals_archive", DateColumn: "created_at"},
		{Name: "trade_records", Archive: "trade_records_archive", DateColumn: "created_at"},
	})

	res, err := mgr.Run(time.Now())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []call{
		{"copy", "signals"}, {"delete", "signals"},
		{"copy", "trade_records"}, {"delete", "trade_records"},
	}
	if len(store.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(store.calls))
	}
	for i, c := range store.calls {
		if c != want[i] {
			t.Errorf("call %d = %v, want %v", i, c, want[i])
		}
	}
	if res.Archived["signals"] != 3 || res.Deleted["signals"] != 3 {
		t.Errorf("signals counts = %d archived / %d deleted, want 3/3",
			res.Archived["signals"], res.Deleted["signals"])
	}
}

func TestRunSkipsDeleteWhenCopyFails(t *testing.T) {
	store := newFakeStore(map[string]int64{"signals": 2, "trade_records": 1})
	store.failCopy["signals"] = true
	mgr := NewForTables(store, []Table{
		{Name: "signals", Archive: "signals_archive", DateColumn: "created_at"},
		{Name: "trade_records", Archive: "trade_records_archive", DateColumn: "created_at"},
	})

	_, err := mgr.Run(time.Now())
	if err == nil {
		t.Fatal("expected an error when a copy fails")
	}
	if !strings.Contains(err.Error(), "signals: copy") {
		t.Errorf("error %q does not name the failing table", err)
	}

	for _, c := range store.calls {
		if c.op == "delete" && c.table == "signals" {
			t.Fatal("signals rows were deleted despite a failed copy")
		}
	}
	// the remaining table still ran end to end
	if store.rowCounts["trade_records"] != 0 {
		t.Error("trade_records were not pruned after the signals copy failure")
	}
}

func TestRunIsIdempotent(t *testing.T) {
	store := newFakeStore(map[string]int64{"signals": 5})
	mgr := NewForTables(store, []Table{
		{Name: "signals", Archive: "signals_archive", DateColumn: "created_at"},
	})

	first, err := mgr.Run(time.Now())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := mgr.Run(time.Now())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if first.Archived["signals"] != 5 {
		t.Errorf("first run archived %d, want 5", first.Archived["signals"])
	}
	if second.Archived["signals"] != 0 || second.Deleted["signals"] != 0 {
		t.Errorf("second run archived %d / deleted %d, want 0/0",
			second.Archived["signals"], second.Deleted["signals"])
	}
}

func TestManagedTablesKeepDailyBars(t *testing.T) {
	for _, tbl := range ManagedTables() {
		if tbl.Name == "price_bars" {
			if !strings.Contains(tbl.ExtraWhere, "30min") {
				t.Fatalf("price_bars retention must be restricted to intraday rows, got %q", tbl.ExtraWhere)
			}
			return
		}
	}
	t.Fatal("price_bars missing from managed tables")
}
