package notifications

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"stock-sentry/config"
	models "stock-sentry/database/models_pkg"
)

func sampleAlert(symbol string) Alert {
	return Alert{
		Symbol:     symbol,
		SignalType: models.SignalMoveFromOpen,
		Severity:   models.SeverityMedium,
		Direction:  models.DirectionUp,
		Price:      151.75,
		BarID:      "2026-03-02 10:00:00",
		Reason:     "first_alert",
		Metrics:    map[string]any{"pct_change": 2.0},
		DetectedAt: time.Date(2026, 3, 2, 10, 0, 5, 0, time.UTC),
	}
}

func TestAlertLine(t *testing.T) {
	line := sampleAlert("AAPL").Line()
	for _, want := range []string{"AAPL", "MEDIUM", "$151.75", "+2.00% from open"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestDigest(t *testing.T) {
	body := Digest([]Alert{sampleAlert("AAPL"), sampleAlert("TSLA")}, "markets are lively")
	if !strings.Contains(body, "2 signal(s)") {
		t.Errorf("digest missing count: %q", body)
	}
	if !strings.Contains(body, "Analysis:\nmarkets are lively") {
		t.Errorf("digest missing summary section: %q", body)
	}

	plain := Digest([]Alert{sampleAlert("AAPL")}, "")
	if strings.Contains(plain, "Analysis:") {
		t.Error("digest without summary must omit the analysis section")
	}
}

func TestWebhookDelivery(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var payload WebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("undecodable payload: %v", err)
		}
		if payload.Count != 1 || len(payload.Alerts) != 1 {
			t.Errorf("unexpected payload: %+v", payload)
		}
	}))
	defer srv.Close()

	wm := NewWebhookManager([]string{srv.URL})
	wm.SendAlerts([]Alert{sampleAlert("AAPL")}, "")

	if hits.Load() != 1 {
		t.Errorf("expected 1 delivery, got %d", hits.Load())
	}
}

func TestWebhookSkipsEmptyBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty batch")
	}))
	defer srv.Close()

	NewWebhookManager([]string{srv.URL}).SendAlerts(nil, "")
}

func TestEmailSendDigest(t *testing.T) {
	var gotTo []string
	var gotMsg string

	s := NewEmailSender(config.EmailConfig{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		SMTPUser: "alerts@example.com",
		AlertTo:  "trader@example.com",
	})
	s.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	if err := s.SendDigest([]Alert{sampleAlert("AAPL")}, "summary text"); err != nil {
		t.Fatalf("SendDigest() error = %v", err)
	}
	if len(gotTo) != 1 || gotTo[0] != "trader@example.com" {
		t.Errorf("recipient = %v", gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: Stock alert: AAPL") {
		t.Errorf("message missing subject: %q", gotMsg)
	}
	if !strings.Contains(gotMsg, "summary text") {
		t.Errorf("message missing summary: %q", gotMsg)
	}
}

func TestEmailDisabledIsNoop(t *testing.T) {
	s := NewEmailSender(config.EmailConfig{})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("must not be called")
	}
	if err := s.SendDigest([]Alert{sampleAlert("AAPL")}, ""); err != nil {
		t.Errorf("disabled sender must be a no-op, got %v", err)
	}
}

func TestSubjectLineHighSeverityAndOverflow(t *testing.T) {
	alerts := []Alert{
		sampleAlert("A"), sampleAlert("B"), sampleAlert("C"), sampleAlert("D"), sampleAlert("E"),
	}
	alerts[2].Severity = models.SeverityHigh

	got := subjectLine(alerts)
	if !strings.Contains(got, "[HIGH]") {
		t.Errorf("subject %q missing severity marker", got)
	}
	if !strings.Contains(got, "+2 more") {
		t.Errorf("subject %q missing overflow marker", got)
	}
}
