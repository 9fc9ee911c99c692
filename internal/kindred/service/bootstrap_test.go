package service

import (
	"context"
	"testing"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	st := newTestStore(t)
	svc := &BootstrapService{Store: st, Token: "deploy-secret"}
	ctx := context.Background()

	t.Run("wrong token is rejected before anything else", func(t *testing.T) {
		_, err := svc.Bootstrap(ctx, "guessed", BootstrapParams{
			Email:    "root@example.com",
			Password: "correct-horse-battery",
		})
		require.ErrorIs(t, err, ErrBootstrapUnauthorized)

		bootstrapped, err := svc.IsBootstrapped(ctx)
		require.NoError(t, err)
		require.False(t, bootstrapped)
	})

	t.Run("invalid details are rejected", func(t *testing.T) {
		for name, p := range map[string]BootstrapParams{
			"empty email":    {Email: "", Password: "correct-horse-battery"},
			"not an email":   {Email: "root", Password: "correct-horse-battery"},
			"short password": {Email: "root@example.com", Password: "short"},
		} {
			_, err := svc.Bootstrap(ctx, "deploy-secret", p)
			require.ErrorIs(t, err, ErrInvalidBootstrapRequest, name)
		}
	})

	t.Run("creates the first admin with a usable account", func(t *testing.T) {
		user, err := svc.Bootstrap(ctx, "deploy-secret", BootstrapParams{
			Email:     "Root@Example.com",
			Password:  "correct-horse-battery",
			FirstName: "Root",
			LastName:  "Admin",
		})
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, user.Role)
		require.Equal(t, "root@example.com", user.Email)

		bootstrapped, err := svc.IsBootstrapped(ctx)
		require.NoError(t, err)
		require.True(t, bootstrapped)

		// The admin can log in right away.
		auth := &AuthService{Store: st, Tokens: testTokens()}
		token, got, err := auth.Login(ctx, "root@example.com", "correct-horse-battery")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, user.ID, got.ID)

		// The backing invite link exists, is deactivated and records the use.
		link, err := st.InviteLinks().GetInviteLinkByToken(ctx, user.InviteLinkToken)
		require.NoError(t, err)
		require.False(t, link.IsActive)
		require.EqualValues(t, 1, link.UsedCount)

		// Profile names landed on the member row.
		member, err := st.Members().GetMemberByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "Root", member.FirstName)
	})

	t.Run("second bootstrap is refused", func(t *testing.T) {
		_, err := svc.Bootstrap(ctx, "deploy-secret", BootstrapParams{
			Email:    "another@example.com",
			Password: "correct-horse-battery",
		})
		require.ErrorIs(t, err, ErrAlreadyBootstrapped)
	})

	t.Run("any existing user closes the gate, not just admins", func(t *testing.T) {
		st2 := newTestStore(t)
		svc2 := &BootstrapService{Store: st2, Token: "deploy-secret"}
		seedUser(t, st2, "somebody@example.com", domain.RoleMember)

		_, err := svc2.Bootstrap(ctx, "deploy-secret", BootstrapParams{
			Email:    "root@example.com",
			Password: "correct-horse-battery",
		})
		require.ErrorIs(t, err, ErrAlreadyBootstrapped)
	})

	t.Run("bootstrap link is never consumable by signup", func(t *testing.T) {
		st3 := newTestStore(t)
		svc3 := &BootstrapService{Store: st3, Token: "deploy-secret"}
		admin, err := svc3.Bootstrap(ctx, "deploy-secret", BootstrapParams{
			Email:    "root@example.com",
			Password: "correct-horse-battery",
		})
		require.NoError(t, err)

		auth := &AuthService{Store: st3, Tokens: testTokens()}
		_, err = auth.Signup(ctx, SignupParams{
			Email:       "intruder@example.com",
			Password:    "correct-horse-battery",
			Role:        domain.RoleMember,
			InviteToken: admin.InviteLinkToken,
		})
		require.ErrorIs(t, err, domain.ErrInviteLinkInactive)
	})
}
