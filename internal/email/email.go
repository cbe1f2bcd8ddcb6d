package email

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"
)

// Template names are logical identifiers resolved here, not by callers.
const (
	TemplateVerification   = "verification"
	TemplateForgotPassword = "forgot_password"
)

var templates = map[string]*template.Template{
	TemplateVerification: template.Must(template.New(TemplateVerification).Parse(
		`<p>Welcome! Please verify your email address by clicking the link below:</p>` +
			`<p><a href="{{.URL}}">Verify email</a></p>` +
			`<p>The link expires in one hour.</p>`)),
	TemplateForgotPassword: template.Must(template.New(TemplateForgotPassword).Parse(
		`<p>We received a request to reset your password. Click the link below to choose a new one:</p>` +
			`<p><a href="{{.URL}}">Reset password</a></p>` +
			`<p>If you did not request this, you can ignore this email.</p>`)),
}

// Context carries the values a template may reference.
type Context struct {
	URL string
}

type Sender interface {
	Send(ctx context.Context, to, subject, templateName string, tctx Context) error
}

func render(templateName string, tctx Context) (string, error) {
	tmpl, ok := templates[templateName]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", templateName)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, tctx); err != nil {
		return "", fmt.Errorf("render template %q: %w", templateName, err)
	}
	return sb.String(), nil
}

// LogSender logs emails instead of sending them — used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, templateName string, tctx Context) error {
	s.logger.Info("email (local dev)", "to", to, "subject", subject, "template", templateName, "url", tctx.URL)
	return nil
}

// ResendSender sends emails via the Resend API — used in staging/production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, templateName string, tctx Context) error {
	body, err := render(templateName, tctx)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
