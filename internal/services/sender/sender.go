// Package sender реализует воркер отправки транзакционных писем.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/zenshift/zenshift-backend/internal/config"
	"github.com/zenshift/zenshift-backend/internal/lib/sl"
	"github.com/zenshift/zenshift-backend/internal/lib/smtp"
	"github.com/zenshift/zenshift-backend/internal/models"
)

// SenderService отправляет письма по заданиям из очереди.
type SenderService struct {
	transport   smtp.TransportInterface
	frontendURL string
	log         *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(cfg *config.Config, log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport:   transport,
		frontendURL: ensureAbsoluteURL(cfg.Billing.FrontendURL),
		log:         log,
	}
}

// HandleEmailJob обрабатывает задание на отправку письма из очереди.
// Письмо с неизвестным видом подтверждается без отправки, чтобы не
// зациклить очередь на переотправке.
func (s *SenderService) HandleEmailJob(body []byte) error {
	var job models.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal email job", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	switch job.Kind {
	case models.EmailKindVerifyEmail:
		return s.sendVerifyEmail(job)
	case models.EmailKindResetPassword:
		return s.sendResetPassword(job)
	case models.EmailKindDirect:
		return s.sendDirect(job)
	default:
		s.log.Warn("unknown email kind, dropping job", slog.String("kind", job.Kind))
		return nil
	}
}

func (s *SenderService) sendVerifyEmail(job models.EmailJob) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, url.QueryEscape(job.Token))

	name := job.Name
	if name == "" {
		name = "there"
	}
	subject := "Verify your email address"
	bodyText := fmt.Sprintf("Hi %s!\n\nThanks for signing up. Please confirm your email address by following the link below:\n\n%s\n\nThe link is valid for one hour. If you did not create an account, you can safely ignore this message.",
		name, link)

	return s.sendEmail([]string{job.Email}, subject, bodyText)
}

func (s *SenderService) sendResetPassword(job models.EmailJob) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(job.Token))

	name := job.Name
	if name == "" {
		name = "there"
	}
	subject := "Reset your password"
	bodyText := fmt.Sprintf("Hi %s!\n\nWe received a request to reset the password for your account. Follow the link below to choose a new password:\n\n%s\n\nThe link is valid for one hour. If you did not request a reset, no action is needed.",
		name, link)

	return s.sendEmail([]string{job.Email}, subject, bodyText)
}

func (s *SenderService) sendDirect(job models.EmailJob) error {
	body, contentType := job.Text, "text/plain"
	if job.HTML != "" {
		body, contentType = job.HTML, "text/html"
	}
	return s.sendEmailAs([]string{job.Email}, job.Subject, body, contentType)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	return s.sendEmailAs(to, subject, bodyText, "text/plain")
}

func (s *SenderService) sendEmailAs(to []string, subject, body, contentType string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: " + contentType + "; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}

var schemeRe = regexp.MustCompile(`^https?://`)

func ensureAbsoluteURL(raw string) string {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if raw == "" {
		return raw
	}
	if !schemeRe.MatchString(raw) {
		return "http://" + raw
	}
	return raw
}
