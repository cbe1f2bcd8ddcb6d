package scheduler_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/email"
	"github.com/bgskoro21/ecommerce-be/internal/metrics"
	"github.com/bgskoro21/ecommerce-be/internal/scheduler"
	dto "github.com/prometheus/client_model/go"
	"github.com/robfig/cron/v3"
)

// ---- fakes ----

type fakeLogRepo struct {
	pending []*domain.EmailLog
	sent    []string
	failed  []string

	listErr error
}

func (r *fakeLogRepo) Create(_ context.Context, log *domain.EmailLog) (*domain.EmailLog, error) {
	return log, nil
}

func (r *fakeLogRepo) ListPending(_ context.Context, _ domain.EmailType) ([]*domain.EmailLog, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.pending, nil
}

func (r *fakeLogRepo) MarkSent(_ context.Context, id string) error {
	r.sent = append(r.sent, id)
	return nil
}

func (r *fakeLogRepo) MarkFailed(_ context.Context, id string) error {
	r.failed = append(r.failed, id)
	return nil
}

type fakeIssuer struct {
	token string
	err   error
}

func (i *fakeIssuer) IssuePurposeToken(string, time.Duration) (string, error) {
	return i.token, i.err
}

type sentEmail struct {
	to       string
	subject  string
	template string
	tctx     email.Context
}

type fakeSender struct {
	sent    []sentEmail
	failFor map[string]error // keyed by recipient
}

func (s *fakeSender) Send(_ context.Context, to, subject, templateName string, tctx email.Context) error {
	if err, ok := s.failFor[to]; ok {
		return err
	}
	s.sent = append(s.sent, sentEmail{to: to, subject: subject, template: templateName, tctx: tctx})
	return nil
}

// ---- helpers ----

const testAppURL = "http://localhost:8080"

func newMailer(t *testing.T, logs *fakeLogRepo, issuer *fakeIssuer, sender *fakeSender) *scheduler.Mailer {
	t.Helper()
	schedule, err := cron.ParseStandard("@every 30s")
	if err != nil {
		t.Fatalf("parse schedule: %v", err)
	}
	return scheduler.NewMailer(logs, issuer, sender, testAppURL, slog.Default(), schedule)
}

func entry(id string, typ domain.EmailType) *domain.EmailLog {
	return &domain.EmailLog{
		ID:     id,
		UserID: "user-" + id,
		Email:  id + "@example.com",
		Type:   typ,
		Status: domain.EmailPending,
	}
}

// ---- Tick ----

func TestTick_DispatchesBothTypes(t *testing.T) {
	logs := &fakeLogRepo{pending: []*domain.EmailLog{
		entry("a", domain.EmailVerification),
		entry("b", domain.ForgotPassword),
	}}
	issuer := &fakeIssuer{token: "ptok"}
	sender := &fakeSender{}

	newMailer(t, logs, issuer, sender).Tick(context.Background())

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(sender.sent))
	}
	if got := sender.sent[0]; got.template != email.TemplateVerification ||
		!strings.HasPrefix(got.tctx.URL, testAppURL+"/verify?token=") {
		t.Errorf("verification email = %+v", got)
	}
	if got := sender.sent[1]; got.template != email.TemplateForgotPassword ||
		!strings.HasPrefix(got.tctx.URL, testAppURL+"/reset-password?token=") {
		t.Errorf("forgot-password email = %+v", got)
	}
	if len(logs.sent) != 2 || logs.sent[0] != "a" || logs.sent[1] != "b" {
		t.Errorf("marked sent %v, want [a b]", logs.sent)
	}
	if len(logs.failed) != 0 {
		t.Errorf("marked failed %v, want none", logs.failed)
	}
}

func TestTick_LinkEmbedsPurposeToken(t *testing.T) {
	logs := &fakeLogRepo{pending: []*domain.EmailLog{entry("a", domain.EmailVerification)}}
	issuer := &fakeIssuer{token: "the-purpose-token"}
	sender := &fakeSender{}

	newMailer(t, logs, issuer, sender).Tick(context.Background())

	want := testAppURL + "/verify?token=the-purpose-token"
	if len(sender.sent) != 1 || sender.sent[0].tctx.URL != want {
		t.Fatalf("link = %v, want %q", sender.sent, want)
	}
}

func TestTick_FailedSendIsIsolated(t *testing.T) {
	logs := &fakeLogRepo{pending: []*domain.EmailLog{
		entry("a", domain.EmailVerification),
		entry("b", domain.EmailVerification),
		entry("c", domain.ForgotPassword),
	}}
	issuer := &fakeIssuer{token: "ptok"}
	sender := &fakeSender{failFor: map[string]error{
		"b@example.com": errors.New("provider 500"),
	}}

	newMailer(t, logs, issuer, sender).Tick(context.Background())

	if len(logs.sent) != 2 || logs.sent[0] != "a" || logs.sent[1] != "c" {
		t.Errorf("marked sent %v, want [a c]", logs.sent)
	}
	if len(logs.failed) != 1 || logs.failed[0] != "b" {
		t.Errorf("marked failed %v, want [b]", logs.failed)
	}
}

func TestTick_UnknownTypeStaysPending(t *testing.T) {
	logs := &fakeLogRepo{pending: []*domain.EmailLog{
		entry("a", domain.EmailType("Newsletter")),
	}}
	issuer := &fakeIssuer{token: "ptok"}
	sender := &fakeSender{}

	newMailer(t, logs, issuer, sender).Tick(context.Background())

	if len(sender.sent) != 0 {
		t.Errorf("sent %v, want none", sender.sent)
	}
	// Neither terminal mark: the entry must remain Pending.
	if len(logs.sent) != 0 || len(logs.failed) != 0 {
		t.Errorf("terminal marks sent=%v failed=%v, want none", logs.sent, logs.failed)
	}
}

func TestTick_TokenIssueErrorMarksFailed(t *testing.T) {
	logs := &fakeLogRepo{pending: []*domain.EmailLog{entry("a", domain.EmailVerification)}}
	issuer := &fakeIssuer{err: errors.New("bad key")}
	sender := &fakeSender{}

	newMailer(t, logs, issuer, sender).Tick(context.Background())

	if len(sender.sent) != 0 {
		t.Errorf("sent %v, want none", sender.sent)
	}
	if len(logs.failed) != 1 || logs.failed[0] != "a" {
		t.Errorf("marked failed %v, want [a]", logs.failed)
	}
}

func TestTick_ListErrorSendsNothing(t *testing.T) {
	logs := &fakeLogRepo{listErr: errors.New("db down")}
	sender := &fakeSender{}

	newMailer(t, logs, &fakeIssuer{token: "ptok"}, sender).Tick(context.Background())

	if len(sender.sent) != 0 || len(logs.sent) != 0 || len(logs.failed) != 0 {
		t.Error("tick acted despite list error")
	}
}

func mailerTickSamples(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.MailerTickDuration.Write(&m); err != nil {
		t.Fatalf("read tick histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

// Every tick records its duration, including ticks that find the queue
// empty. An idle scheduler must not look dead on the dashboard.
func TestTick_IdleTickObservesDuration(t *testing.T) {
	before := mailerTickSamples(t)

	newMailer(t, &fakeLogRepo{}, &fakeIssuer{token: "ptok"}, &fakeSender{}).Tick(context.Background())

	if got := mailerTickSamples(t); got != before+1 {
		t.Errorf("tick duration samples = %d, want %d", got, before+1)
	}
}

func TestTick_ListErrorStillObservesDuration(t *testing.T) {
	before := mailerTickSamples(t)

	logs := &fakeLogRepo{listErr: errors.New("db down")}
	newMailer(t, logs, &fakeIssuer{token: "ptok"}, &fakeSender{}).Tick(context.Background())

	if got := mailerTickSamples(t); got != before+1 {
		t.Errorf("tick duration samples = %d, want %d", got, before+1)
	}
}

// Overlapping ticks can both see the same Pending entry; delivery is
// at-least-once and the duplicate send is expected, not a bug.
func TestTick_RedeliversEntryStillPending(t *testing.T) {
	logs := &fakeLogRepo{pending: []*domain.EmailLog{entry("a", domain.EmailVerification)}}
	issuer := &fakeIssuer{token: "ptok"}
	sender := &fakeSender{}

	m := newMailer(t, logs, issuer, sender)
	m.Tick(context.Background())
	m.Tick(context.Background())

	if len(sender.sent) != 2 {
		t.Fatalf("sent %d emails, want 2 (duplicate delivery)", len(sender.sent))
	}
}
