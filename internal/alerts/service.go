package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/equityscope/newsradar/internal/config"
	"github.com/equityscope/newsradar/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service delivers alert payloads via the configured channels
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Sender
var _ Sender = (*Service)(nil)

// webhookMessage is the JSON body posted to the alert webhook
type webhookMessage struct {
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	Group     string   `json:"group"`
	Count     int      `json:"count"`
	Headlines []string `json:"headlines"`
}

// NewService creates a new alert delivery service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendAlert delivers a payload via every configured channel and reports the
// channels that failed.
func (s *Service) SendAlert(payload *models.AlertPayload) error {
	var errors []string

	if s.config.AlertWebhookURL != "" {
		if err := s.sendToWebhook(payload); err != nil {
			logrus.Errorf("Failed to send webhook alert: %v", err)
			errors = append(errors, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Infof("Sent alert %s to webhook", payload.ID)
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(payload); err != nil {
			logrus.Errorf("Failed to send email alert: %v", err)
			errors = append(errors, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Infof("Sent alert %s via email", payload.ID)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("alert delivery errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToWebhook(payload *models.AlertPayload) error {
	message := &webhookMessage{
		Title:     fmt.Sprintf("News alert: %s", payload.Group),
		Text:      fmt.Sprintf("%d headlines matched for %s", payload.Count, payload.Group),
		Group:     payload.Group,
		Count:     payload.Count,
		Headlines: payload.Headlines,
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.AlertWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) sendEmail(payload *models.AlertPayload) error {
	subject := fmt.Sprintf("News alert: %s (%d headlines)", payload.Group, payload.Count)

	var body strings.Builder
	body.WriteString(fmt.Sprintf("Watchlist group: %s\n", payload.Group))
	body.WriteString(fmt.Sprintf("Matched headlines: %d\n", payload.Count))
	body.WriteString(fmt.Sprintf("Generated: %s\n\n", payload.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))
	for i, line := range payload.Headlines {
		body.WriteString(fmt.Sprintf("%d. %s\n", i+1, line))
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
