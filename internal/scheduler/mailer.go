package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/email"
	"github.com/bgskoro21/ecommerce-be/internal/metrics"
	"github.com/bgskoro21/ecommerce-be/internal/repository"
	"github.com/robfig/cron/v3"
)

// purposeTokenIssuer is the slice of the token service the mailer
// needs. Defined here so tests can inject a fake.
type purposeTokenIssuer interface {
	IssuePurposeToken(userID string, ttl time.Duration) (string, error)
}

// Mailer drains Pending email-log entries on a schedule and sends the
// corresponding transactional email. Claiming and marking are two
// separate operations with no lock in between, so overlapping ticks
// (or multiple mailer instances) can deliver the same entry twice:
// delivery is at-least-once, never exactly-once.
type Mailer struct {
	logs     repository.EmailLogRepository
	tokens   purposeTokenIssuer
	sender   email.Sender
	appURL   string
	logger   *slog.Logger
	schedule cron.Schedule
	now      func() time.Time
}

func NewMailer(
	logs repository.EmailLogRepository,
	tokens purposeTokenIssuer,
	sender email.Sender,
	appURL string,
	logger *slog.Logger,
	schedule cron.Schedule,
) *Mailer {
	return &Mailer{
		logs:     logs,
		tokens:   tokens,
		sender:   sender,
		appURL:   appURL,
		logger:   logger.With("component", "mailer"),
		schedule: schedule,
		now:      time.Now,
	}
}

// Start runs ticks on the configured schedule until ctx is cancelled.
// Ticks are serial: a long tick simply delays the next one, it is
// never overlapped from within this process.
func (m *Mailer) Start(ctx context.Context) {
	m.logger.Info("mailer started")

	for {
		next := m.schedule.Next(m.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			m.logger.Info("mailer shut down")
			return
		case <-timer.C:
			m.Tick(ctx)
		}
	}
}

// Tick claims every Pending entry and dispatches each in creation
// order. Each entry's outcome is independent: a failed send marks that
// entry Failed and moves on. Exposed so tests drive single ticks
// synchronously.
func (m *Mailer) Tick(ctx context.Context) {
	start := m.now()
	defer func() {
		metrics.MailerTickDuration.Observe(m.now().Sub(start).Seconds())
	}()

	pending, err := m.logs.ListPending(ctx, "")
	if err != nil {
		m.logger.Error("list pending emails", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	m.logger.Info("processing pending emails", "count", len(pending))

	for _, entry := range pending {
		m.dispatch(ctx, entry)
	}
}

func (m *Mailer) dispatch(ctx context.Context, entry *domain.EmailLog) {
	var subject, templateName, path string

	switch entry.Type {
	case domain.EmailVerification:
		subject = "Email Verification"
		templateName = email.TemplateVerification
		path = "/verify?token="
	case domain.ForgotPassword:
		subject = "Forgot Password"
		templateName = email.TemplateForgotPassword
		path = "/reset-password?token="
	default:
		// Unknown types stay Pending: not failed, not retried, just
		// stalled until someone looks at the warning.
		m.logger.Warn("unknown email type, skipping", "entry_id", entry.ID, "type", entry.Type)
		metrics.EmailsDispatchedTotal.WithLabelValues("skipped").Inc()
		return
	}

	purposeToken, err := m.tokens.IssuePurposeToken(entry.UserID, 0)
	if err != nil {
		m.fail(ctx, entry, err)
		return
	}

	tctx := email.Context{URL: m.appURL + path + purposeToken}
	if err := m.sender.Send(ctx, entry.Email, subject, templateName, tctx); err != nil {
		m.fail(ctx, entry, err)
		return
	}

	if err := m.logs.MarkSent(ctx, entry.ID); err != nil {
		m.logger.Error("mark email sent", "entry_id", entry.ID, "error", err)
		return
	}
	metrics.EmailsDispatchedTotal.WithLabelValues("sent").Inc()
	m.logger.Info("email sent", "entry_id", entry.ID, "type", entry.Type, "to", entry.Email)
}

func (m *Mailer) fail(ctx context.Context, entry *domain.EmailLog, cause error) {
	m.logger.Warn("email dispatch failed", "entry_id", entry.ID, "type", entry.Type, "error", cause)
	if err := m.logs.MarkFailed(ctx, entry.ID); err != nil {
		m.logger.Error("mark email failed", "entry_id", entry.ID, "error", err)
	}
	metrics.EmailsDispatchedTotal.WithLabelValues("failed").Inc()
}
