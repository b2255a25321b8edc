package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const singleSeriesBody = `{
	"meta": {"symbol": "AAPL", "interval": "30min"},
	"values": [
		{"datetime": "2026-03-02 10:00:00", "open": "151.00", "high": "152.00", "low": "150.50", "close": "151.75", "volume": "120000"},
		{"datetime": "2026-03-02 09:30:00", "open": "150.00", "high": "151.20", "low": "149.80", "close": "151.00", "volume": "100000"}
	],
	"status": "ok"
}`

const batchBody = `{
	"AAPL": {
		"meta": {"symbol": "AAPL"},
		"values": [{"datetime": "2026-03-02", "open": "150.00", "high": "152.00", "low": "149.00", "close": "151.00", "volume": "900000"}],
		"status": "ok"
	},
	"BOGUS": {"status": "error", "code": 400, "message": "symbol not found"}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", srv.URL)
	sleeps := 0
	c.sleep = func(time.Duration) { sleeps++ }
	return c, &sleeps
}

func TestTimeSeriesParsesAndOrders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("interval"); got != "30min" {
			t.Errorf("interval = %q, want 30min", got)
		}
		fmt.Fprint(w, singleSeriesBody)
	})

	bars, err := c.TimeSeries(context.Background(), "AAPL", "30min", 50)
	if err != nil {
		t.Fatalf("TimeSeries() error = %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	// The API returns newest first; the client must hand back chronological.
	if !bars[0].Timestamp.Before(bars[1].Timestamp) {
		t.Errorf("bars not in chronological order: %v then %v", bars[0].Timestamp, bars[1].Timestamp)
	}
	if bars[0].Close != 151.00 || bars[1].Close != 151.75 {
		t.Errorf("unexpected closes: %v, %v", bars[0].Close, bars[1].Close)
	}
	if bars[1].Volume != 120000 {
		t.Errorf("volume = %d, want 120000", bars[1].Volume)
	}
}

func TestTimeSeriesBatchSkipsBadSymbols(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, batchBody)
	})

	series, err := c.TimeSeriesBatch(context.Background(), []string{"AAPL", "BOGUS"}, "1day", 30)
	if err != nil {
		t.Fatalf("TimeSeriesBatch() error = %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("expected 1 symbol in result, got %d", len(series))
	}
	if _, ok := series["AAPL"]; !ok {
		t.Error("AAPL missing from batch result")
	}
}

func TestTimeSeriesRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"status": "error", "code": 429, "message": "You have run out of API credits"}`)
			return
		}
		fmt.Fprint(w, singleSeriesBody)
	})

	bars, err := c.TimeSeries(context.Background(), "AAPL", "30min", 50)
	if err != nil {
		t.Fatalf("TimeSeries() error = %v", err)
	}
	if len(bars) != 2 {
		t.Errorf("expected 2 bars after retry, got %d", len(bars))
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if *sleeps != 1 {
		t.Errorf("expected 1 credit-window wait, got %d", *sleeps)
	}
}

func TestTimeSeriesGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.TimeSeries(context.Background(), "AAPL", "30min", 50)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if attempts != maxAttempts {
		t.Errorf("expected %d attempts, got %d", maxAttempts, attempts)
	}
}

func TestTimeSeriesNonRetryableError(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, `{"status": "error", "code": 401, "message": "invalid api key"}`)
	})

	_, err := c.TimeSeries(context.Background(), "AAPL", "30min", 50)
	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Errorf("auth errors must not retry, got %d attempts", attempts)
	}
	if *sleeps != 0 {
		t.Errorf("auth errors must not wait, got %d sleeps", *sleeps)
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
		size    int
		want    [][]string
	}{
		{"even split", []string{"A", "B", "C", "D"}, 2, [][]string{{"A", "B"}, {"C", "D"}}},
		{"remainder", []string{"A", "B", "C"}, 2, [][]string{{"A", "B"}, {"C"}}},
		{"single chunk", []string{"A", "B"}, 5, [][]string{{"A", "B"}}},
		{"empty", nil, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.symbols, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("Chunk() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if len(got[i]) != len(tt.want[i]) {
					t.Fatalf("chunk %d = %v, want %v", i, got[i], tt.want[i])
				}
				for j := range got[i] {
					if got[i][j] != tt.want[i][j] {
						t.Errorf("chunk %d = %v, want %v", i, got[i], tt.want[i])
					}
				}
			}
		})
	}
}
