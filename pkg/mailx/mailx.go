// Package mailx is the outbound email seam. Actual delivery is handled by an
// external provider; the service only depends on the Mailer interface and the
// server ships with a logging implementation for development and tests.
package mailx

import (
	"context"
	"log/slog"
)

// Mailer delivers transactional email. Implementations must not block the
// request path on provider latency beyond their own timeouts.
type Mailer interface {
	// SendOrganisationInvite notifies an invitee with a join link for the named organisation.
	SendOrganisationInvite(ctx context.Context, to, organisationName, inviteURL string) error

	// SendClaimCode delivers a supplier claim verification code to a company address.
	SendClaimCode(ctx context.Context, to, supplierName, code string) error
}

// LogMailer writes would-be emails to the log instead of sending them.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendOrganisationInvite(ctx context.Context, to, organisationName, inviteURL string) error {
	m.Logger.Info("mail: organisation invite",
		"to", to,
		"organisation", organisationName,
		"invite_url", inviteURL,
	)
	return nil
}

func (m *LogMailer) SendClaimCode(ctx context.Context, to, supplierName, code string) error {
	// The code itself is deliberately not logged above debug level.
	m.Logger.Info("mail: supplier claim code", "to", to, "supplier", supplierName)
	m.Logger.Debug("mail: supplier claim code value", "code", code)
	return nil
}
