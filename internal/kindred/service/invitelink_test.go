package service

import (
	"context"
	"testing"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/stretchr/testify/require"
)

func TestInviteLinkIssue(t *testing.T) {
	st := newTestStore(t)
	svc := &InviteLinkService{Store: st, AppURL: "http://localhost:8080"}
	ctx := context.Background()

	t.Run("issues an unconstrained link", func(t *testing.T) {
		link, err := svc.Issue(ctx, "admin", nil, nil, nil)
		require.NoError(t, err)
		require.True(t, link.IsActive)
		require.NotEmpty(t, link.Token)
		require.Nil(t, link.ExpiresAt)
		require.Nil(t, link.MaxUses)
		require.Contains(t, svc.URL(link), link.Token)
	})

	t.Run("carries the target role", func(t *testing.T) {
		role := domain.RoleSupplier
		link, err := svc.Issue(ctx, "admin", &role, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, link.TargetRole)
		require.Equal(t, domain.RoleSupplier, *link.TargetRole)
	})

	t.Run("rejects a past expiry", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		_, err := svc.Issue(ctx, "admin", nil, &past, nil)
		require.ErrorIs(t, err, ErrInviteLinkInvalidExpiry)
	})

	t.Run("rejects a non-positive usage cap", func(t *testing.T) {
		zero := int64(0)
		_, err := svc.Issue(ctx, "admin", nil, nil, &zero)
		require.ErrorIs(t, err, ErrInvalidInviteLink)
	})
}

func TestInviteLinkValidate(t *testing.T) {
	st := newTestStore(t)
	svc := &InviteLinkService{Store: st}
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.Validate(ctx, "no-such-token")
		require.ErrorIs(t, err, ErrInviteLinkNotFound)
	})

	t.Run("active link validates", func(t *testing.T) {
		link := seedInviteLink(t, st, nil, nil, nil)
		got, err := svc.Validate(ctx, link.Token)
		require.NoError(t, err)
		require.Equal(t, link.Token, got.Token)
	})

	t.Run("deactivated link is rejected", func(t *testing.T) {
		link := seedInviteLink(t, st, nil, nil, nil)
		require.NoError(t, st.InviteLinks().UpdateInviteLink(ctx, link.ID, false, nil, nil))

		_, err := svc.Validate(ctx, link.Token)
		require.ErrorIs(t, err, domain.ErrInviteLinkInactive)
	})

	t.Run("expired link is rejected", func(t *testing.T) {
		// Expiry must be in the future at insert; move it into the past after.
		soon := time.Now().Add(time.Minute)
		link := seedInviteLink(t, st, nil, &soon, nil)
		past := time.Now().Add(-time.Minute)
		require.NoError(t, st.InviteLinks().UpdateInviteLink(ctx, link.ID, true, &past, nil))

		_, err := svc.Validate(ctx, link.Token)
		require.ErrorIs(t, err, domain.ErrInviteLinkExpired)
	})
}

func TestInviteLinkDelete(t *testing.T) {
	st := newTestStore(t)
	svc := &InviteLinkService{Store: st}
	auth := &AuthService{Store: st, Tokens: testTokens()}
	ctx := context.Background()

	t.Run("deletes an unused link", func(t *testing.T) {
		link := seedInviteLink(t, st, nil, nil, nil)
		require.NoError(t, svc.Delete(ctx, link.ID))

		_, err := svc.Validate(ctx, link.Token)
		require.ErrorIs(t, err, ErrInviteLinkNotFound)
	})

	t.Run("refuses to delete a consumed link", func(t *testing.T) {
		link := seedInviteLink(t, st, nil, nil, nil)
		_, err := auth.Signup(ctx, SignupParams{
			Email:       "consumer@example.com",
			Password:    "correct-horse-battery",
			Role:        domain.RoleMember,
			InviteToken: link.Token,
		})
		require.NoError(t, err)

		require.ErrorIs(t, svc.Delete(ctx, link.ID), ErrInviteLinkInUse)
	})

	t.Run("unknown id", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, "nope"), ErrInviteLinkNotFound)
	})
}

func TestInviteLinkUpdate(t *testing.T) {
	st := newTestStore(t)
	svc := &InviteLinkService{Store: st}
	ctx := context.Background()

	link := seedInviteLink(t, st, nil, nil, nil)

	cap := int64(10)
	updated, err := svc.Update(ctx, link.ID, false, nil, &cap)
	require.NoError(t, err)
	require.False(t, updated.IsActive)
	require.NotNil(t, updated.MaxUses)
	require.EqualValues(t, 10, *updated.MaxUses)

	_, err = svc.Update(ctx, "missing", true, nil, nil)
	require.ErrorIs(t, err, ErrInviteLinkNotFound)
}
