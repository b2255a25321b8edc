// Package scraper pulls the Yahoo Finance most-active table to seed the
// trend and trade pipelines with a daily candidate universe.
package scraper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/logger"
)

const (
	mostActiveURL = "https://finance.yahoo.com/markets/stocks/most-active/"
	maxRows       = 25
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Scraper fetches the most-active table.
type Scraper struct {
	url string
}

// New creates a scraper against the default Yahoo most-active page.
func New() *Scraper {
	return &Scraper{url: mostActiveURL}
}

// NewForURL creates a scraper against an explicit URL. Used in tests.
func NewForURL(url string) *Scraper {
	return &Scraper{url: url}
}

// Scrape fetches the page and returns up to 25 snapshot rows stamped with
// scrapedAt. Rows with a negative day change are skipped: the downstream
// trade engine only opens long positions, so decliners are dead weight.
func (s *Scraper) Scrape(scrapedAt time.Time) ([]models.MostActiveSnapshot, error) {
	var rows []models.MostActiveSnapshot
	var visitErr error

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(30 * time.Second)

	c.OnHTML("table tbody tr", func(e *colly.HTMLElement) {
		if len(rows) >= maxRows {
			return
		}
		row, ok := parseRow(e.DOM)
		if !ok {
			return
		}
		row.ScrapedAt = scrapedAt
		rows = append(rows, row)
	})
	c.OnError(func(_ *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(s.url); err != nil {
		return nil, fmt.Errorf("scrape most active: %w", err)
	}
	c.Wait()
	if visitErr != nil {
		return nil, fmt.Errorf("scrape most active: %w", visitErr)
	}

	logger.Infow("scraped most-active table", "rows", len(rows))
	return rows, nil
}

// parseRow extracts one snapshot from a table row. The cell layout is
// symbol, name, price, change, change percent, volume.
func parseRow(tr *goquery.Selection) (models.MostActiveSnapshot, bool) {
	cells := tr.Find("td")
	if cells.Length() < 6 {
		return models.MostActiveSnapshot{}, false
	}
	text := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }

	symbol := strings.ToUpper(text(0))
	if symbol == "" {
		return models.MostActiveSnapshot{}, false
	}

	price, err := parseNumber(firstField(text(2)))
	if err != nil {
		logger.Debugw("skipping row with unparseable price", "symbol", symbol, "raw", text(2))
		return models.MostActiveSnapshot{}, false
	}
	changePct, err := parseNumber(text(4))
	if err != nil {
		logger.Debugw("skipping row with unparseable change", "symbol", symbol, "raw", text(4))
		return models.MostActiveSnapshot{}, false
	}
	if changePct < 0 {
		return models.MostActiveSnapshot{}, false
	}
	volume, err := parseVolume(text(5))
	if err != nil {
		volume = 0
	}

	return models.MostActiveSnapshot{
		Symbol:    symbol,
		Name:      text(1),
		Price:     price,
		ChangePct: changePct,
		Volume:    float64(volume),
	}, true
}

// firstField strips trailing sparkline or badge text that Yahoo sometimes
// packs into the price cell, keeping only the leading number.
func firstField(s string) string {
	if i := strings.IndexAny(s, " \n\t"); i > 0 {
		return s[:i]
	}
	return s
}

// parseNumber parses a display number, tolerating +, %, and thousands
// separators.
func parseNumber(s string) (float64, error) {
	cleaned := strings.NewReplacer(",", "", "+", "", "%", "").Replace(strings.TrimSpace(s))
	if cleaned == "" || cleaned == "-" {
		return 0, fmt.Errorf("empty numeric field")
	}
	return strconv.ParseFloat(cleaned, 64)
}

// parseVolume parses a display volume with an optional K/M/B suffix.
func parseVolume(s string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" || cleaned == "-" {
		return 0, fmt.Errorf("empty volume field")
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(cleaned, "B"):
		mult = 1e9
		cleaned = strings.TrimSuffix(cleaned, "B")
	case strings.HasSuffix(cleaned, "M"):
		mult = 1e6
		cleaned = strings.TrimSuffix(cleaned, "M")
	case strings.HasSuffix(cleaned, "K"):
		mult = 1e3
		cleaned = strings.TrimSuffix(cleaned, "K")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	return int64(v * mult), nil
}

// StartPrice derives the session start price implied by a snapshot's
// current price and day change percent.
func StartPrice(row models.MostActiveSnapshot) *float64 {
	denom := 1 + row.ChangePct/100
	if denom <= 0 {
		return nil
	}
	start := row.Price / denom
	return &start
}
