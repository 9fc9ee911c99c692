package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store/drivers/sqlite"
	"github.com/AvallenSolutions/kindredcollective/pkg/cryptox"
	"github.com/AvallenSolutions/kindredcollective/pkg/idx"
	"github.com/AvallenSolutions/kindredcollective/pkg/jwtx"
	"github.com/AvallenSolutions/kindredcollective/pkg/mailx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestMailer(t *testing.T) mailx.Mailer {
	t.Helper()
	return &mailx.LogMailer{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testTokens() *jwtx.Tokens {
	return &jwtx.Tokens{
		Secret: []byte("test-secret"),
		Issuer: "kindred-test",
		TTL:    time.Hour,
	}
}

// seedUser inserts a user (and the invite link it consumed) directly.
func seedUser(t *testing.T, st store.Store, email string, role domain.UserRole) domain.User {
	t.Helper()
	ctx := context.Background()

	link := seedInviteLink(t, st, nil, nil, nil)
	u := domain.User{
		ID:              idx.New().String(),
		Email:           email,
		PasswordHash:    "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		Role:            role,
		InviteLinkToken: link.Token,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))
	return u
}

func seedInviteLink(t *testing.T, st store.Store, maxUses *int64, expiresAt *time.Time, targetRole *domain.UserRole) domain.InviteLink {
	t.Helper()
	ctx := context.Background()

	link := domain.InviteLink{
		ID:         idx.New().String(),
		Token:      cryptox.MustGenerateToken(cryptox.TokenSize192),
		IsActive:   true,
		ExpiresAt:  expiresAt,
		MaxUses:    maxUses,
		TargetRole: targetRole,
		CreatedBy:  "admin",
	}
	require.NoError(t, st.InviteLinks().CreateInviteLink(ctx, link))
	return link
}

// seedBrandOwner creates a user with an attached brand profile.
func seedBrandOwner(t *testing.T, st store.Store, email string) domain.User {
	t.Helper()
	ctx := context.Background()

	u := seedUser(t, st, email, domain.RoleBrand)
	b := domain.Brand{
		ID:     idx.New().String(),
		Name:   "Brand of " + email,
		Slug:   domain.Slugify("brand-" + email),
		UserID: &u.ID,
	}
	require.NoError(t, st.Brands().CreateBrand(ctx, b))
	return u
}

func seedSupplier(t *testing.T, st store.Store, name string) domain.Supplier {
	t.Helper()
	ctx := context.Background()

	s := domain.Supplier{
		ID:          idx.New().String(),
		Name:        name,
		Slug:        domain.Slugify(name),
		ClaimStatus: domain.ClaimUnclaimed,
	}
	require.NoError(t, st.Suppliers().CreateSupplier(ctx, s))
	return s
}

// seedOrganisation creates an org owned by the given user, wrapping their brand.
func seedOrganisation(t *testing.T, st store.Store, owner domain.User, name string) domain.Organisation {
	t.Helper()
	ctx := context.Background()

	svc := &OrganisationService{Store: st}
	org, err := svc.Create(ctx, owner.ID, name)
	require.NoError(t, err)
	return org
}

// joinOrganisation enrols a user directly on the roster.
func joinOrganisation(t *testing.T, st store.Store, orgID string, user domain.User, role domain.OrgRole) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.OrganisationMembers().CreateOrganisationMember(ctx, domain.OrganisationMember{
		OrganisationID: orgID,
		UserID:         user.ID,
		Role:           role,
	}))
}
