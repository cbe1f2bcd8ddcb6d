package domain

import "time"

type EmailType string

const (
	EmailVerification EmailType = "EmailVerification"
	ForgotPassword    EmailType = "ForgotPassword"
)

type EmailStatus string

const (
	EmailPending EmailStatus = "Pending"
	EmailSent    EmailStatus = "Sent"
	EmailFailed  EmailStatus = "Failed"
)

// EmailLog is a durable record of a notification email that must be
// sent. Entries are created alongside their triggering action
// (registration, forgot password) and drained asynchronously by the
// mailer. Once Sent or Failed an entry is terminal; there is no retry
// of Failed entries and no deletion path — the table doubles as an
// audit trail.
type EmailLog struct {
	ID        string
	UserID    string
	Email     string
	Type      EmailType
	Status    EmailStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
