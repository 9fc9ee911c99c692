package domain

import "time"

// OrganisationInviteTTL is how long a tenant invite stays redeemable.
const OrganisationInviteTTL = 7 * 24 * time.Hour

// OrganisationInvite is a per-organisation, email-targeted, single-use invite.
// Distinct from the global InviteLink: it grants membership of an existing
// organisation rather than the right to sign up.
type OrganisationInvite struct {
	ID             string
	OrganisationID string
	Email          string
	Token          string
	Role           OrgRole
	ExpiresAt      time.Time
	AcceptedAt     *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Expired reports whether the invite is past its expiry at the given instant.
func (i OrganisationInvite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Accepted reports whether the invite has already been redeemed.
func (i OrganisationInvite) Accepted() bool {
	return i.AcceptedAt != nil
}
