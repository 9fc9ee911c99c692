package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOrganisationInviteExpired(t *testing.T) {
	now := time.Now()

	fresh := OrganisationInvite{ExpiresAt: now.Add(time.Hour)}
	require.False(t, fresh.Expired(now))

	stale := OrganisationInvite{ExpiresAt: now.Add(-time.Hour)}
	require.True(t, stale.Expired(now))

	// Boundary is exclusive: an invite expiring exactly now is expired.
	boundary := OrganisationInvite{ExpiresAt: now}
	require.True(t, boundary.Expired(now))
}

func TestOrganisationInviteAccepted(t *testing.T) {
	var inv OrganisationInvite
	require.False(t, inv.Accepted())

	when := time.Now()
	inv.AcceptedAt = &when
	require.True(t, inv.Accepted())
}
