// Package email sends the portal's transactional mail through Resend.
package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/booking/internal/config"
	"github.com/Togather-Foundation/booking/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	// ErrInvalidRecipient means the address can never be delivered to.
	ErrInvalidRecipient = errors.New("invalid recipient email")
	// ErrRateLimited means the provider refused the send for now.
	ErrRateLimited = errors.New("email rate limit exceeded")
)

// Service renders and sends emails. When disabled it only logs.
type Service struct {
	config    config.EmailConfig
	templates *template.Template
	transport transport
	now       func() time.Time
	logger    zerolog.Logger
}

type AccessCodeData struct {
	CompanyName string
	AccessCode  string
	PortalURL   string
	CurrentYear int
}

type WelcomeData struct {
	FullName    string
	PortalURL   string
	CurrentYear int
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("email enabled but no resend api key configured")
		}
	}
	if cfg.PortalURL != "" {
		if err := validatePortalURL(cfg.PortalURL); err != nil {
			return nil, fmt.Errorf("invalid portal url: %w", err)
		}
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	s := &Service{
		config:    cfg,
		templates: templates,
		now:       time.Now,
		logger:    logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		s.transport = newResendTransport(cfg.ResendAPIKey)
	}
	return s, nil
}

// SendAccessCode mails a producer the code its staff use to sign up.
func (s *Service) SendAccessCode(ctx context.Context, to, companyName, accessCode string) error {
	if accessCode == "" {
		return fmt.Errorf("access code is empty")
	}
	body, err := s.renderTemplate("access_code.html", AccessCodeData{
		CompanyName: companyName,
		AccessCode:  accessCode,
		PortalURL:   s.config.PortalURL,
		CurrentYear: s.now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, message{kind: "access_code", to: to, subject: "Seu código de acesso", html: body})
}

func (s *Service) SendWelcome(ctx context.Context, to, fullName string) error {
	body, err := s.renderTemplate("welcome.html", WelcomeData{
		FullName:    fullName,
		PortalURL:   s.config.PortalURL,
		CurrentYear: s.now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, message{kind: "welcome", to: to, subject: "Bem-vindo ao portal", html: body})
}

func (s *Service) send(ctx context.Context, m message) error {
	outcome, err := s.deliver(ctx, m)
	metrics.EmailsSent.WithLabelValues(m.kind, outcome).Inc()
	return err
}

// deliver returns the outcome label recorded for the send.
func (s *Service) deliver(ctx context.Context, m message) (string, error) {
	if err := validateEmailAddress(m.to); err != nil {
		return "invalid", fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	log := s.logger.With().Str("kind", m.kind).Str("to", m.to).Logger()
	if !s.config.Enabled {
		log.Info().Str("subject", m.subject).Msg("email disabled, not sending")
		return "skipped", nil
	}
	if s.transport == nil {
		return "error", errors.New("email transport not initialized")
	}

	id, err := s.transport.deliver(ctx, s.config.From, m)
	switch {
	case errors.Is(err, ErrRateLimited):
		log.Warn().Err(err).Msg("email provider rate limit")
		return "rate_limited", err
	case err != nil:
		return "error", err
	}
	log.Info().Str("email_id", id).Msg("email sent")
	return "sent", nil
}

// validateEmailAddress rejects malformed addresses and header injection.
func validateEmailAddress(email string) error {
	if strings.ContainsAny(email, "\r\n") {
		return fmt.Errorf("contains newline characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

func validatePortalURL(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

func (s *Service) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
