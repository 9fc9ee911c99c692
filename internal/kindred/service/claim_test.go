package service

import (
	"context"
	"testing"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/stretchr/testify/require"
)

func newClaimService(t *testing.T) *ClaimService {
	t.Helper()
	return &ClaimService{
		Store:   newTestStore(t),
		Mailer:  newTestMailer(t),
		DevMode: true,
	}
}

func TestClaimInitiate(t *testing.T) {
	svc := newClaimService(t)
	st := svc.Store
	ctx := context.Background()

	sup := seedSupplier(t, st, "Cork Supply Co")
	user := seedUser(t, st, "claimer@example.com", domain.RoleSupplier)

	t.Run("opens a claim and flips the supplier to PENDING", func(t *testing.T) {
		receipt, err := svc.Initiate(ctx, sup.Slug, user.ID, "ops@corksupply.example")
		require.NoError(t, err)
		require.NotEmpty(t, receipt.ClaimID)
		require.Len(t, receipt.Code, 6)

		got, err := st.Suppliers().GetSupplierByID(ctx, sup.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ClaimPending, got.ClaimStatus)
		require.Nil(t, got.UserID)
	})

	t.Run("one open claim per user", func(t *testing.T) {
		other := seedSupplier(t, st, "Glass Works")
		_, err := svc.Initiate(ctx, other.Slug, user.ID, "ops@glassworks.example")
		require.ErrorIs(t, err, ErrClaimAlreadyPending)
	})

	t.Run("unknown slug", func(t *testing.T) {
		u2 := seedUser(t, st, "claimer2@example.com", domain.RoleSupplier)
		_, err := svc.Initiate(ctx, "nope", u2.ID, "x@example.com")
		require.ErrorIs(t, err, ErrSupplierNotFound)
	})

	t.Run("claimed supplier is off the market", func(t *testing.T) {
		taken := seedSupplier(t, st, "Taken Co")
		u3 := seedUser(t, st, "claimer3@example.com", domain.RoleSupplier)
		require.NoError(t, st.Suppliers().SetClaimState(ctx, taken.ID, domain.ClaimClaimed, &u3.ID))

		u4 := seedUser(t, st, "claimer4@example.com", domain.RoleSupplier)
		_, err := svc.Initiate(ctx, taken.Slug, u4.ID, "x@example.com")
		require.ErrorIs(t, err, ErrSupplierAlreadyClaimed)
	})

	t.Run("a supplier owner cannot claim another", func(t *testing.T) {
		free := seedSupplier(t, st, "Free Co")
		owner := seedUser(t, st, "claimer5@example.com", domain.RoleSupplier)
		owned := seedSupplier(t, st, "Owned Co")
		require.NoError(t, st.Suppliers().SetClaimState(ctx, owned.ID, domain.ClaimClaimed, &owner.ID))

		_, err := svc.Initiate(ctx, free.Slug, owner.ID, "x@example.com")
		require.ErrorIs(t, err, ErrAlreadyOwnsSupplier)
	})
}

func TestClaimVerify(t *testing.T) {
	svc := newClaimService(t)
	st := svc.Store
	ctx := context.Background()

	sup := seedSupplier(t, st, "Verify Co")
	user := seedUser(t, st, "verify@example.com", domain.RoleSupplier)

	receipt, err := svc.Initiate(ctx, sup.Slug, user.ID, "ops@verify.example")
	require.NoError(t, err)

	t.Run("wrong code burns an attempt and stays PENDING", func(t *testing.T) {
		_, err := svc.Verify(ctx, sup.Slug, user.ID, "000000")
		require.ErrorIs(t, err, ErrInvalidClaimCode)

		claim, err := st.SupplierClaims().GetSupplierClaimByID(ctx, receipt.ClaimID)
		require.NoError(t, err)
		require.Equal(t, domain.ClaimStatePending, claim.Status)
		require.Equal(t, 1, claim.Attempts)

		got, err := st.Suppliers().GetSupplierByID(ctx, sup.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ClaimPending, got.ClaimStatus)
	})

	t.Run("correct code completes the takeover atomically", func(t *testing.T) {
		got, err := svc.Verify(ctx, sup.Slug, user.ID, receipt.Code)
		require.NoError(t, err)
		require.Equal(t, domain.ClaimClaimed, got.ClaimStatus)

		fresh, err := st.Suppliers().GetSupplierByID(ctx, sup.ID)
		require.NoError(t, err)
		require.NotNil(t, fresh.UserID)
		require.Equal(t, user.ID, *fresh.UserID)

		claim, err := st.SupplierClaims().GetSupplierClaimByID(ctx, receipt.ClaimID)
		require.NoError(t, err)
		require.Equal(t, domain.ClaimStateClaimed, claim.Status)
	})

	t.Run("no pending claim after completion", func(t *testing.T) {
		_, err := svc.Verify(ctx, sup.Slug, user.ID, receipt.Code)
		require.ErrorIs(t, err, ErrClaimNotFound)
	})
}

func TestClaimLockout(t *testing.T) {
	svc := newClaimService(t)
	st := svc.Store
	ctx := context.Background()

	sup := seedSupplier(t, st, "Lockout Co")
	user := seedUser(t, st, "lockout@example.com", domain.RoleSupplier)

	receipt, err := svc.Initiate(ctx, sup.Slug, user.ID, "ops@lockout.example")
	require.NoError(t, err)

	// Burn attempts one short of the limit.
	for i := 0; i < domain.MaxClaimVerifyAttempts-1; i++ {
		_, err := svc.Verify(ctx, sup.Slug, user.ID, "000000")
		require.ErrorIs(t, err, ErrInvalidClaimCode)
	}

	// The final failure rejects the claim and releases the supplier.
	_, err = svc.Verify(ctx, sup.Slug, user.ID, "000000")
	require.ErrorIs(t, err, ErrClaimLockedOut)

	claim, err := st.SupplierClaims().GetSupplierClaimByID(ctx, receipt.ClaimID)
	require.NoError(t, err)
	require.Equal(t, domain.ClaimStateRejected, claim.Status)

	got, err := st.Suppliers().GetSupplierByID(ctx, sup.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ClaimUnclaimed, got.ClaimStatus)
	require.Nil(t, got.UserID)

	// Even the right code is useless now.
	_, err = svc.Verify(ctx, sup.Slug, user.ID, receipt.Code)
	require.ErrorIs(t, err, ErrClaimNotFound)
}

func TestClaimAdminResolve(t *testing.T) {
	svc := newClaimService(t)
	st := svc.Store
	ctx := context.Background()

	t.Run("approval hands over the supplier", func(t *testing.T) {
		sup := seedSupplier(t, st, "Approve Co")
		user := seedUser(t, st, "approve@example.com", domain.RoleSupplier)
		receipt, err := svc.Initiate(ctx, sup.Slug, user.ID, "ops@approve.example")
		require.NoError(t, err)

		require.NoError(t, svc.AdminResolve(ctx, receipt.ClaimID, true))

		got, err := st.Suppliers().GetSupplierByID(ctx, sup.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ClaimClaimed, got.ClaimStatus)
		require.NotNil(t, got.UserID)
		require.Equal(t, user.ID, *got.UserID)
	})

	t.Run("rejection releases the supplier", func(t *testing.T) {
		sup := seedSupplier(t, st, "Reject Co")
		user := seedUser(t, st, "reject@example.com", domain.RoleSupplier)
		receipt, err := svc.Initiate(ctx, sup.Slug, user.ID, "ops@reject.example")
		require.NoError(t, err)

		require.NoError(t, svc.AdminResolve(ctx, receipt.ClaimID, false))

		got, err := st.Suppliers().GetSupplierByID(ctx, sup.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ClaimUnclaimed, got.ClaimStatus)
	})

	t.Run("settled claims cannot be resolved again", func(t *testing.T) {
		sup := seedSupplier(t, st, "Settled Co")
		user := seedUser(t, st, "settled@example.com", domain.RoleSupplier)
		receipt, err := svc.Initiate(ctx, sup.Slug, user.ID, "ops@settled.example")
		require.NoError(t, err)

		require.NoError(t, svc.AdminResolve(ctx, receipt.ClaimID, false))
		require.ErrorIs(t, svc.AdminResolve(ctx, receipt.ClaimID, true), ErrClaimNotPending)
	})

	t.Run("unknown claim", func(t *testing.T) {
		require.ErrorIs(t, svc.AdminResolve(ctx, "missing", true), ErrClaimNotFound)
	})
}
