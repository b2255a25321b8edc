package notifications

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"stock-sentry/logger"
)

const (
	webhookRetries    = 3
	webhookRetryDelay = 2 * time.Second
)

// WebhookManager handles webhook notifications
type WebhookManager struct {
	urls   []string
	client *http.Client
}

// WebhookPayload represents the JSON payload sent to webhooks
type WebhookPayload struct {
	SentAt  time.Time `json:"sent_at"`
	Count   int       `json:"count"`
	Alerts  []Alert   `json:"alerts"`
	Summary string    `json:"summary,omitempty"`
	Message string    `json:"message"`
}

// NewWebhookManager creates a new webhook manager
func NewWebhookManager(urls []string) *WebhookManager {
	return &WebhookManager{
		urls: urls,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendAlerts fans the batch out to every configured webhook and waits for
// delivery to finish. Per-endpoint failures are logged, not returned; one
// dead endpoint must not block the others.
func (wm *WebhookManager) SendAlerts(alerts []Alert, summary string) {
	if len(wm.urls) == 0 || len(alerts) == 0 {
		return
	}

	payload := WebhookPayload{
		SentAt:  time.Now().UTC(),
		Count:   len(alerts),
		Alerts:  alerts,
		Summary: summary,
		Message: Digest(alerts, summary),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Errorw("failed to marshal webhook payload", "error", err)
		return
	}

	var wg sync.WaitGroup
	for _, url := range wm.urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			wm.deliver(url, body)
		}(url)
	}
	wg.Wait()
}

func (wm *WebhookManager) deliver(url string, payload []byte) {
	var lastErr error
	var lastStatus int

	for attempt := 1; attempt <= webhookRetries; attempt++ {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			logger.Errorw("invalid webhook request", "url", url, "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "stock-sentry/1.0")

		resp, err := wm.client.Do(req)
		if err == nil {
			lastStatus = resp.StatusCode
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				logger.Debugw("webhook delivered", "url", url, "status", resp.StatusCode, "attempt", attempt)
				return
			}
		} else {
			lastErr = err
		}

		if attempt < webhookRetries {
			time.Sleep(webhookRetryDelay)
		}
	}

	logger.Warnw("webhook delivery failed",
		"url", url, "error", lastErr, "status", lastStatus, "attempts", webhookRetries)
}
