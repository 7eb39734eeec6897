package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
	"quick-quote/metrics"
	"quick-quote/models"
)

const (
	DefaultEmailSubject = "Your Carpet Cleaning Quote"
	DefaultEmailBody    = "Please find your quote attached."
	defaultFromName     = "Clean Carpets Inc."
)

// Attachment is a file sent with an email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// EmailSender defines the interface for sending emails
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SendGridConfig holds configuration for SendGrid
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// Host overrides the API host, e.g. for a local mock
	Host string
}

// SendGridSender sends emails via the SendGrid API
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

var _ EmailSender = (*SendGridSender)(nil)

// NewSendGridSender creates a SendGrid sender, or nil when no API key is configured
func NewSendGridSender(cfg SendGridConfig) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	client := sendgrid.NewSendClient(cfg.APIKey)
	if cfg.Host != "" {
		client = &sendgrid.Client{Request: sendgrid.GetRequest(cfg.APIKey, "/v3/mail/send", cfg.Host)}
	}
	return &SendGridSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email: sendgrid client not configured")
	}

	from := sgmail.NewEmail(s.fromName, s.fromEmail)
	to := sgmail.NewEmail("", msg.To)
	message := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Body, "")
	for _, a := range msg.Attachments {
		att := sgmail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Data))
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("email: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		logger.GetLogger().Errorw("❌ Send: sendgrid returned error status",
			"status", response.StatusCode, "body", response.Body, "to", logger.MaskEmail(msg.To))
		return fmt.Errorf("email: sendgrid returned status %d", response.StatusCode)
	}

	logger.GetLogger().Infow("📧 Send: email sent via sendgrid",
		"to", logger.MaskEmail(msg.To), "subject", msg.Subject, "status", response.StatusCode)
	return nil
}

// StubEmailSender logs emails instead of sending them
type StubEmailSender struct {
	mu   sync.Mutex
	sent []EmailMessage
}

var _ EmailSender = (*StubEmailSender)(nil)

// NewStubEmailSender creates a stub email sender that logs but doesn't send
func NewStubEmailSender() *StubEmailSender {
	return &StubEmailSender{}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	logger.GetLogger().Infow("📧 Send: stub sender, email not delivered",
		"to", logger.MaskEmail(msg.To), "subject", msg.Subject, "attachments", len(msg.Attachments))
	return nil
}

// Sent returns the messages handed to the stub so far
func (s *StubEmailSender) Sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}

// EmailService emails rendered quotes
type EmailService struct {
	sender   EmailSender
	renderer PDFRenderer
	metrics  *metrics.QuoteMetrics
}

// NewEmailService creates an EmailService. m may be nil.
func NewEmailService(sender EmailSender, renderer PDFRenderer, m *metrics.QuoteMetrics) *EmailService {
	return &EmailService{sender: sender, renderer: renderer, metrics: m}
}

// SendQuote renders doc to PDF and emails it to the recipient. Empty subject
// and body fall back to the defaults.
func (s *EmailService) SendQuote(ctx context.Context, to, subject, body string, doc models.QuoteDocument) error {
	to = strings.TrimSpace(to)
	addr, err := mail.ParseAddress(to)
	if to == "" || err != nil {
		s.metrics.ObserveEmail(metrics.OutcomeSkipped)
		return apperrors.ValidationFailed("Invalid recipient email", fmt.Sprintf("%q is not an email address", to))
	}
	if strings.TrimSpace(subject) == "" {
		subject = DefaultEmailSubject
	}
	if strings.TrimSpace(body) == "" {
		body = DefaultEmailBody
	}

	pdf, err := s.renderer.Render(ctx, doc)
	if err != nil {
		s.metrics.ObserveEmail(metrics.OutcomeFailure)
		logger.GetLogger().Errorw("❌ SendQuote: PDF rendering failed", "error", err)
		return apperrors.Wrap(err, apperrors.ServerError, "Failed to render quote PDF")
	}

	msg := EmailMessage{
		To:      addr.Address,
		Subject: subject,
		Body:    body,
		Attachments: []Attachment{{
			Filename:    QuoteFileName,
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.ObserveEmail(metrics.OutcomeFailure)
		logger.GetLogger().Errorw("❌ SendQuote: delivery failed", "to", logger.MaskEmail(addr.Address), "error", err)
		return apperrors.Delivery(err, "Failed to send quote email")
	}

	s.metrics.ObserveEmail(metrics.OutcomeSuccess)
	logger.GetLogger().Infow("✅ SendQuote: quote emailed", "to", logger.MaskEmail(addr.Address), "bytes", len(pdf))
	return nil
}
