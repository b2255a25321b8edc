package news

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const newsPage = `<html><body>
<nav><a href="/quote/AAPL">Quote</a></nav>
<ul>
  <li><a href="/news/apple-beats-123.html"><h3>Apple beats expectations</h3></a></li>
  <li><a href="https://example.com/chips"><h3>Chip demand surges</h3><p>blurb</p></a></li>
  <li><a href="/news/apple-beats-123.html"><h3>Apple beats expectations</h3></a></li>
  <li><a href="/other"><span>no headline here</span></a></li>
</ul>
</body></html>`

func TestFetchParsesHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, newsPage)
	}))
	defer srv.Close()

	fetchedAt := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	items, err := NewForURL(srv.URL+"/quote/%s/news/").Fetch("AAPL", fetchedAt)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// The repeated link and the anchor without a headline must both drop out.
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2: %+v", len(items), items)
	}
	first := items[0]
	if first.Title != "Apple beats expectations" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", first.Symbol)
	}
	if first.URL != srv.URL+"/news/apple-beats-123.html" {
		t.Errorf("url = %q, want absolute link on the fetched host", first.URL)
	}
	if first.URLHash != HashURL(first.URL) {
		t.Errorf("url hash = %q, want the hash of the link", first.URLHash)
	}
	if !first.FetchedAt.Equal(fetchedAt) {
		t.Errorf("fetched at = %v, want %v", first.FetchedAt, fetchedAt)
	}
	if items[1].Title != "Chip demand surges" {
		t.Errorf("second title = %q", items[1].Title)
	}
	if items[1].Source != "example.com" {
		t.Errorf("second source = %q, want example.com", items[1].Source)
	}
}

func TestFetchErrorsOnServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewForURL(srv.URL+"/quote/%s/news/").Fetch("AAPL", time.Now()); err == nil {
		t.Fatal("expected an error from a 503 page")
	}
}

func TestHashURLIsStable(t *testing.T) {
	a := HashURL("https://example.com/story")
	b := HashURL("https://example.com/story")
	if a != b {
		t.Errorf("hash not stable: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("hash length = %d, want 32 hex chars", len(a))
	}
	if a == HashURL("https://example.com/other") {
		t.Error("different links must hash differently")
	}
}
