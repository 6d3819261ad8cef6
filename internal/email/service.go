package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type Service interface {
	// SendDispatchFailureDigest tells a dealer which scheduled posts failed
	// in the latest dispatch run.
	SendDispatchFailureDigest(ctx context.Context, to, dealerName string, failures []string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendDispatchFailureDigest(ctx context.Context, to, dealerName string, failures []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("MotoYard: %d scheduled posts failed", len(failures)))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nThe following scheduled posts could not be published:\n\n- %s\n\nYou can reschedule them from your content calendar.\n",
		dealerName, strings.Join(failures, "\n- "),
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}
	return nil
}

type noopService struct{}

// NewNoopService is used when SMTP is not configured.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) SendDispatchFailureDigest(ctx context.Context, to, dealerName string, failures []string) error {
	return nil
}
