package notifications

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"stock-sentry/config"
	models "stock-sentry/database/models_pkg"
	"stock-sentry/logger"
)

// EmailSender delivers alert digests over SMTP.
type EmailSender struct {
	cfg  config.EmailConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSender creates an email sender from SMTP settings.
func NewEmailSender(cfg config.EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg, send: smtp.SendMail}
}

// Enabled reports whether SMTP delivery is configured.
func (s *EmailSender) Enabled() bool {
	return s.cfg.SMTPHost != "" && s.cfg.SMTPUser != "" && s.cfg.AlertTo != ""
}

// SendDigest emails the alert batch with an optional summary section.
func (s *EmailSender) SendDigest(alerts []Alert, summary string) error {
	if !s.Enabled() {
		logger.Debugw("email delivery not configured, skipping")
		return nil
	}
	if len(alerts) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Stock alert: %s", subjectLine(alerts))
	body := Digest(alerts, summary)

	msg := strings.Join([]string{
		"From: " + s.cfg.SMTPUser,
		"To: " + s.cfg.AlertTo,
		"Subject: " + subject,
		"Date: " + time.Now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(addr, auth, s.cfg.SMTPUser, []string{s.cfg.AlertTo}, []byte(msg)); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	logger.Infow("alert email sent", "to", s.cfg.AlertTo, "alerts", len(alerts))
	return nil
}

// subjectLine compacts the batch into a short subject: the symbols, plus
// the highest severity present.
func subjectLine(alerts []Alert) string {
	seen := make(map[string]bool)
	var symbols []string
	severity := ""
	for _, a := range alerts {
		if !seen[a.Symbol] {
			seen[a.Symbol] = true
			symbols = append(symbols, a.Symbol)
		}
		if a.Severity == models.SeverityHigh {
			severity = " [HIGH]"
		}
	}
	if len(symbols) > 3 {
		symbols = append(symbols[:3], fmt.Sprintf("+%d more", len(seen)-3))
	}
	return strings.Join(symbols, ", ") + severity
}
