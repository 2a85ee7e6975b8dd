package services

import (
	"context"
	"testing"

	"github.com/devlabsgt/backend/internal/domain/registry"
	"github.com/devlabsgt/backend/internal/platform/dbctx"
	"github.com/devlabsgt/backend/internal/platform/logger"
	"github.com/devlabsgt/backend/internal/platform/sendgrid"
)

type fakeMailConfigRepo struct {
	cfg *registry.MailConfig
	err error
}

func (f *fakeMailConfigRepo) Get(dbctx.Context) (*registry.MailConfig, error) {
	return f.cfg, f.err
}

func (f *fakeMailConfigRepo) Upsert(_ dbctx.Context, row *registry.MailConfig) (*registry.MailConfig, error) {
	f.cfg = row
	return row, nil
}

type fakeSendgrid struct {
	sent []sendgrid.SendEmailRequest
	err  error
}

func (f *fakeSendgrid) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &sendgrid.SendEmailResult{StatusCode: 202}, nil
}

func newTestMailer(t *testing.T, cfg *registry.MailConfig, client sendgrid.Client) MailerService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewMailerService(log, client, &fakeMailConfigRepo{cfg: cfg}, nil)
}

func TestSendTemplatedSubstitutesVariables(t *testing.T) {
	client := &fakeSendgrid{}
	mailer := newTestMailer(t, &registry.MailConfig{
		FromName:    "Notificaciones",
		FromAddress: "noreply@example.org",
		Subject:     "Hola {{name}}",
		BodyHTML:    "<p>Su código de recuperación es: {{code}}</p>",
		Enabled:     true,
	}, client)

	ok := mailer.SendTemplated(context.Background(), "dest@example.org", map[string]string{
		"name": "Ana",
		"code": "123456",
	})
	if !ok {
		t.Fatalf("expected send to succeed")
	}
	if len(client.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(client.sent))
	}
	got := client.sent[0]
	if got.Subject != "Hola Ana" {
		t.Fatalf("subject = %q", got.Subject)
	}
	if got.HTML != "<p>Su código de recuperación es: 123456</p>" {
		t.Fatalf("body = %q", got.HTML)
	}
	if got.To[0].Email != "dest@example.org" {
		t.Fatalf("recipient = %q", got.To[0].Email)
	}
}

func TestSendTemplatedDisabledConfig(t *testing.T) {
	client := &fakeSendgrid{}
	mailer := newTestMailer(t, &registry.MailConfig{
		FromAddress: "noreply@example.org",
		Subject:     "s",
		BodyHTML:    "b",
		Enabled:     false,
	}, client)

	if mailer.SendTemplated(context.Background(), "dest@example.org", nil) {
		t.Fatalf("expected send to be skipped")
	}
	if len(client.sent) != 0 {
		t.Fatalf("expected no sends, got %d", len(client.sent))
	}
}

func TestSendTemplatedDeliveryFailureIsNonFatal(t *testing.T) {
	client := &fakeSendgrid{err: context.DeadlineExceeded}
	mailer := newTestMailer(t, &registry.MailConfig{
		FromAddress: "noreply@example.org",
		Subject:     "s",
		BodyHTML:    "b",
		Enabled:     true,
	}, client)

	if mailer.SendTemplated(context.Background(), "dest@example.org", nil) {
		t.Fatalf("expected false on delivery failure")
	}
}

func TestSendTemplatedEmptyRecipient(t *testing.T) {
	client := &fakeSendgrid{}
	mailer := newTestMailer(t, &registry.MailConfig{Enabled: true}, client)
	if mailer.SendTemplated(context.Background(), "  ", nil) {
		t.Fatalf("expected false for empty recipient")
	}
}
