package utils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Email is a rendered HTML message ready for delivery.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type SMTPConfig struct {
	Address  string
	Host     string
	Username string
	Password string
}

// SMTPMailer delivers mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return errors.New("email has no recipients")
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		email.From,
		strings.Join(email.To, ", "),
		email.Subject,
		email.HTML,
	)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.cfg.Address, auth, m.cfg.Username, email.To, []byte(message))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

// ResendMailer delivers mail through the Resend HTTP API.
type ResendMailer struct {
	client *resty.Client
}

func NewResendMailer(baseURL, apiKey string, timeout time.Duration) *ResendMailer {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &ResendMailer{client: client}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return errors.New("email has no recipients")
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(resendRequest{
			From:    email.From,
			To:      email.To,
			Subject: email.Subject,
			HTML:    email.HTML,
		}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// LogMailer only logs the message. Used in development.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(_ context.Context, email Email) error {
	m.Logger.Info("email not sent, log transport", "to", email.To, "subject", email.Subject)
	return nil
}
