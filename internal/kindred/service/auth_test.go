package service

import (
	"context"
	"testing"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	st := newTestStore(t)
	svc := &AuthService{Store: st, Tokens: testTokens()}
	ctx := context.Background()

	t.Run("creates user and member against a valid invite", func(t *testing.T) {
		link := seedInviteLink(t, st, nil, nil, nil)

		user, err := svc.Signup(ctx, SignupParams{
			Email:       "jane@example.com",
			Password:    "correct-horse-battery",
			Role:        domain.RoleBrand,
			FirstName:   "Jane",
			LastName:    "Doe",
			InviteToken: link.Token,
		})
		require.NoError(t, err)
		require.Equal(t, "jane@example.com", user.Email)
		require.Equal(t, domain.RoleBrand, user.Role)
		require.Equal(t, link.Token, user.InviteLinkToken)

		member, err := st.Members().GetMemberByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "Jane", member.FirstName)
		require.Equal(t, "Doe", member.LastName)

		got, err := st.InviteLinks().GetInviteLinkByID(ctx, link.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, got.UsedCount)
	})

	t.Run("target role overrides the requested role", func(t *testing.T) {
		target := domain.RoleSupplier
		link := seedInviteLink(t, st, nil, nil, &target)

		user, err := svc.Signup(ctx, SignupParams{
			Email:       "supplier@example.com",
			Password:    "correct-horse-battery",
			Role:        domain.RoleMember,
			InviteToken: link.Token,
		})
		require.NoError(t, err)
		require.Equal(t, domain.RoleSupplier, user.Role)
	})

	t.Run("requires an invite token", func(t *testing.T) {
		_, err := svc.Signup(ctx, SignupParams{
			Email:    "noinvite@example.com",
			Password: "correct-horse-battery",
			Role:     domain.RoleMember,
		})
		require.ErrorIs(t, err, ErrInvalidSignupRequest)
	})

	t.Run("unknown invite token", func(t *testing.T) {
		_, err := svc.Signup(ctx, SignupParams{
			Email:       "ghost@example.com",
			Password:    "correct-horse-battery",
			Role:        domain.RoleMember,
			InviteToken: "no-such-token",
		})
		require.ErrorIs(t, err, ErrInviteLinkNotFound)
	})

	t.Run("admin role cannot be self-assigned", func(t *testing.T) {
		link := seedInviteLink(t, st, nil, nil, nil)
		_, err := svc.Signup(ctx, SignupParams{
			Email:       "sneaky@example.com",
			Password:    "correct-horse-battery",
			Role:        domain.RoleAdmin,
			InviteToken: link.Token,
		})
		require.ErrorIs(t, err, ErrInvalidSignupRequest)
	})

	t.Run("duplicate email is rejected and nothing is consumed", func(t *testing.T) {
		link := seedInviteLink(t, st, nil, nil, nil)
		params := SignupParams{
			Email:       "dup@example.com",
			Password:    "correct-horse-battery",
			Role:        domain.RoleMember,
			InviteToken: link.Token,
		}

		_, err := svc.Signup(ctx, params)
		require.NoError(t, err)

		_, err = svc.Signup(ctx, params)
		require.ErrorIs(t, err, ErrEmailAlreadyRegistered)

		got, err := st.InviteLinks().GetInviteLinkByID(ctx, link.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, got.UsedCount)
	})
}

func TestSignupMaxUses(t *testing.T) {
	st := newTestStore(t)
	svc := &AuthService{Store: st, Tokens: testTokens()}
	ctx := context.Background()

	one := int64(1)
	link := seedInviteLink(t, st, &one, nil, nil)

	_, err := svc.Signup(ctx, SignupParams{
		Email:       "first@example.com",
		Password:    "correct-horse-battery",
		Role:        domain.RoleMember,
		InviteToken: link.Token,
	})
	require.NoError(t, err)

	got, err := st.InviteLinks().GetInviteLinkByID(ctx, link.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, got.UsedCount)

	// The second signup on a single-use link must fail with the usage error
	// and leave no trace of the second user.
	_, err = svc.Signup(ctx, SignupParams{
		Email:       "second@example.com",
		Password:    "correct-horse-battery",
		Role:        domain.RoleMember,
		InviteToken: link.Token,
	})
	require.ErrorIs(t, err, domain.ErrInviteLinkMaxUses)

	_, err = st.Users().GetUserByEmail(ctx, "second@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLogin(t *testing.T) {
	st := newTestStore(t)
	svc := &AuthService{Store: st, Tokens: testTokens()}
	ctx := context.Background()

	link := seedInviteLink(t, st, nil, nil, nil)
	_, err := svc.Signup(ctx, SignupParams{
		Email:       "login@example.com",
		Password:    "correct-horse-battery",
		Role:        domain.RoleMember,
		InviteToken: link.Token,
	})
	require.NoError(t, err)

	t.Run("issues a verifiable session token", func(t *testing.T) {
		token, user, err := svc.Login(ctx, "login@example.com", "correct-horse-battery")
		require.NoError(t, err)
		require.Equal(t, "login@example.com", user.Email)

		claims, err := svc.Tokens.Verify(token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, string(domain.RoleMember), claims.Role)
	})

	t.Run("email is case-insensitive", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "LOGIN@example.com", "correct-horse-battery")
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "login@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
