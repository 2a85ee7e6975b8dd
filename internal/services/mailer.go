package services

import (
	"context"
	"strings"

	registryrepo "github.com/devlabsgt/backend/internal/data/repos/registry"
	"github.com/devlabsgt/backend/internal/domain/registry"
	"github.com/devlabsgt/backend/internal/observability"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
	"github.com/devlabsgt/backend/internal/platform/sendgrid"
)

// MailerService renders the configured template and dispatches it.
// Delivery failures never propagate into the mutation that triggered
// the mail; callers treat a false return as "reported, non-fatal".
type MailerService interface {
	SendTemplated(ctx context.Context, recipient string, vars map[string]string) bool
	Config(ctx context.Context) (*registry.MailConfig, error)
	UpdateConfig(ctx context.Context, cfg *registry.MailConfig) (*registry.MailConfig, error)
}

type mailerService struct {
	log     *logger.Logger
	client  sendgrid.Client
	configs registryrepo.MailConfigRepo
	metrics *observability.Metrics
}

func NewMailerService(log *logger.Logger, client sendgrid.Client, configs registryrepo.MailConfigRepo, metrics *observability.Metrics) MailerService {
	return &mailerService{
		log:     log.With("service", "MailerService"),
		client:  client,
		configs: configs,
		metrics: metrics,
	}
}

func (s *mailerService) Config(ctx context.Context) (*registry.MailConfig, error) {
	return s.configs.Get(dbctx.New(ctx))
}

func (s *mailerService) UpdateConfig(ctx context.Context, cfg *registry.MailConfig) (*registry.MailConfig, error) {
	return s.configs.Upsert(dbctx.New(ctx), cfg)
}

func (s *mailerService) SendTemplated(ctx context.Context, recipient string, vars map[string]string) bool {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return false
	}
	cfg, err := s.configs.Get(dbctx.New(ctx))
	if err != nil {
		s.log.Warn("mail config unavailable", "error", err)
		s.metrics.IncMailSend("config_error")
		return false
	}
	if !cfg.Enabled || s.client == nil {
		s.metrics.IncMailSend("disabled")
		return false
	}

	body := cfg.BodyHTML
	subject := cfg.Subject
	for key, val := range vars {
		placeholder := "{{" + key + "}}"
		body = strings.ReplaceAll(body, placeholder, val)
		subject = strings.ReplaceAll(subject, placeholder, val)
	}

	req := sendgrid.SendEmailRequest{
		From:    sendgrid.EmailAddress{Email: cfg.FromAddress, Name: cfg.FromName},
		To:      []sendgrid.EmailAddress{{Email: recipient}},
		Subject: subject,
		HTML:    body,
	}
	if rt := strings.TrimSpace(cfg.ReplyTo); rt != "" {
		req.ReplyTo = &sendgrid.EmailAddress{Email: rt}
	}

	if _, err := s.client.Send(ctx, req); err != nil {
		s.log.Warn("mail send failed", "recipient_email", recipient, "error", err)
		s.metrics.IncMailSend("failure")
		return false
	}
	s.metrics.IncMailSend("success")
	return true
}
