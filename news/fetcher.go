// Package news fetches headlines for symbols that just alerted, giving
// each alert some context a reader can follow up on.
package news

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	models "stock-sentry/database/models_pkg"
	"stock-sentry/logger"
)

const (
	quoteNewsURL = "https://finance.yahoo.com/quote/%s/news/"
	maxItems     = 10
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Fetcher pulls the news stream of a symbol's quote page. Headlines are
// the anchors carrying an h3 title in the stream.
type Fetcher struct {
	base string
}

// New creates a fetcher against the default Yahoo quote news page.
func New() *Fetcher {
	return &Fetcher{base: quoteNewsURL}
}

// NewForURL creates a fetcher against an explicit URL template with a %s
// placeholder for the symbol. Used in tests.
func NewForURL(base string) *Fetcher {
	return &Fetcher{base: base}
}

// Fetch returns up to 10 headlines for a symbol, stamped with fetchedAt.
// The same link appearing twice on the page is returned once.
func (f *Fetcher) Fetch(symbol string, fetchedAt time.Time) ([]models.NewsItem, error) {
	var items []models.NewsItem
	seen := map[string]bool{}
	var visitErr error

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(30 * time.Second)

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if len(items) >= maxItems {
			return
		}
		title := strings.TrimSpace(e.DOM.Find("h3").Text())
		if title == "" {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		hash := HashURL(link)
		if seen[hash] {
			return
		}
		seen[hash] = true
		items = append(items, models.NewsItem{
			Symbol:    symbol,
			Title:     title,
			URL:       link,
			URLHash:   hash,
			Source:    hostOf(link),
			FetchedAt: fetchedAt,
		})
	})
	c.OnError(func(_ *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(fmt.Sprintf(f.base, symbol)); err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
	}
	c.Wait()
	if visitErr != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, visitErr)
	}

	logger.Debugw("fetched headlines", "symbol", symbol, "count", len(items))
	return items, nil
}

// HashURL is the stable dedup identity of a headline link.
func HashURL(link string) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
