package service

import (
	"context"
	"testing"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/stretchr/testify/require"
)

func TestOrganisationCreate(t *testing.T) {
	st := newTestStore(t)
	svc := &OrganisationService{Store: st}
	ctx := context.Background()

	t.Run("requires a business profile", func(t *testing.T) {
		u := seedUser(t, st, "plain@example.com", domain.RoleMember)
		_, err := svc.Create(ctx, u.ID, "Plain Org")
		require.ErrorIs(t, err, ErrNoBusinessProfile)
	})

	t.Run("wraps the brand and enrols the creator as OWNER", func(t *testing.T) {
		u := seedBrandOwner(t, st, "acme@example.com")

		org, err := svc.Create(ctx, u.ID, "Acme Co")
		require.NoError(t, err)
		require.Equal(t, domain.OrgTypeBrand, org.Type)
		require.NotNil(t, org.BrandID)
		require.Equal(t, "acme-co", org.Slug)

		m, err := st.OrganisationMembers().GetMembership(ctx, org.ID, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.OrgRoleOwner, m.Role)
	})

	t.Run("second create by the same user fails", func(t *testing.T) {
		u := seedBrandOwner(t, st, "double@example.com")

		_, err := svc.Create(ctx, u.ID, "First Org")
		require.NoError(t, err)

		_, err = svc.Create(ctx, u.ID, "Second Org")
		require.ErrorIs(t, err, ErrAlreadyOrgMember)
	})

	t.Run("slug collisions get a suffix", func(t *testing.T) {
		a := seedBrandOwner(t, st, "slug-a@example.com")
		b := seedBrandOwner(t, st, "slug-b@example.com")

		first, err := svc.Create(ctx, a.ID, "Shared Name")
		require.NoError(t, err)

		second, err := svc.Create(ctx, b.ID, "Shared Name")
		require.NoError(t, err)
		require.NotEqual(t, first.Slug, second.Slug)
		require.Contains(t, second.Slug, "shared-name")
	})
}

func TestOrganisationRoleRules(t *testing.T) {
	st := newTestStore(t)
	svc := &OrganisationService{Store: st}
	ctx := context.Background()

	owner := seedBrandOwner(t, st, "owner@example.com")
	org := seedOrganisation(t, st, owner, "Rules Org")

	admin := seedUser(t, st, "admin@example.com", domain.RoleMember)
	joinOrganisation(t, st, org.ID, admin, domain.OrgRoleAdmin)
	admin2 := seedUser(t, st, "admin2@example.com", domain.RoleMember)
	joinOrganisation(t, st, org.ID, admin2, domain.OrgRoleAdmin)
	member := seedUser(t, st, "member@example.com", domain.RoleMember)
	joinOrganisation(t, st, org.ID, member, domain.OrgRoleMember)

	t.Run("owner promotes a member to admin", func(t *testing.T) {
		require.NoError(t, svc.UpdateMemberRole(ctx, owner.ID, member.ID, domain.OrgRoleAdmin))
		require.NoError(t, svc.UpdateMemberRole(ctx, owner.ID, member.ID, domain.OrgRoleMember))
	})

	t.Run("role OWNER cannot be assigned directly", func(t *testing.T) {
		err := svc.UpdateMemberRole(ctx, owner.ID, admin.ID, domain.OrgRoleOwner)
		require.ErrorIs(t, err, ErrOwnerViaTransferOnly)
	})

	t.Run("the owner's own role is immutable here", func(t *testing.T) {
		err := svc.UpdateMemberRole(ctx, admin.ID, owner.ID, domain.OrgRoleMember)
		require.ErrorIs(t, err, ErrOwnerImmutable)
	})

	t.Run("admin may demote a peer admin to member", func(t *testing.T) {
		require.NoError(t, svc.UpdateMemberRole(ctx, admin.ID, admin2.ID, domain.OrgRoleMember))
		// restore
		require.NoError(t, svc.UpdateMemberRole(ctx, owner.ID, admin2.ID, domain.OrgRoleAdmin))
	})

	t.Run("admin may not promote a member", func(t *testing.T) {
		err := svc.UpdateMemberRole(ctx, admin.ID, member.ID, domain.OrgRoleAdmin)
		require.ErrorIs(t, err, ErrOrgPermissionDenied)
	})

	t.Run("member may change nothing", func(t *testing.T) {
		err := svc.UpdateMemberRole(ctx, member.ID, admin.ID, domain.OrgRoleMember)
		require.ErrorIs(t, err, ErrOrgPermissionDenied)
	})
}

func TestOrganisationRemoveAndLeave(t *testing.T) {
	st := newTestStore(t)
	svc := &OrganisationService{Store: st}
	ctx := context.Background()

	owner := seedBrandOwner(t, st, "rm-owner@example.com")
	org := seedOrganisation(t, st, owner, "Removal Org")

	admin := seedUser(t, st, "rm-admin@example.com", domain.RoleMember)
	joinOrganisation(t, st, org.ID, admin, domain.OrgRoleAdmin)
	admin2 := seedUser(t, st, "rm-admin2@example.com", domain.RoleMember)
	joinOrganisation(t, st, org.ID, admin2, domain.OrgRoleAdmin)
	member := seedUser(t, st, "rm-member@example.com", domain.RoleMember)
	joinOrganisation(t, st, org.ID, member, domain.OrgRoleMember)

	t.Run("nobody removes the owner", func(t *testing.T) {
		require.ErrorIs(t, svc.RemoveMember(ctx, admin.ID, owner.ID), ErrOwnerImmutable)
	})

	t.Run("self-removal goes through leave", func(t *testing.T) {
		require.ErrorIs(t, svc.RemoveMember(ctx, admin.ID, admin.ID), ErrCannotRemoveSelf)
	})

	t.Run("admin cannot remove a peer admin", func(t *testing.T) {
		require.ErrorIs(t, svc.RemoveMember(ctx, admin.ID, admin2.ID), ErrOrgPermissionDenied)
	})

	t.Run("admin removes a member", func(t *testing.T) {
		require.NoError(t, svc.RemoveMember(ctx, admin.ID, member.ID))
		_, err := st.OrganisationMembers().GetMembership(ctx, org.ID, member.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("owner removes an admin", func(t *testing.T) {
		require.NoError(t, svc.RemoveMember(ctx, owner.ID, admin2.ID))
	})

	t.Run("admin leaves", func(t *testing.T) {
		require.NoError(t, svc.Leave(ctx, admin.ID))
		_, err := st.OrganisationMembers().GetMembershipByUserID(ctx, admin.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("owner cannot leave", func(t *testing.T) {
		require.ErrorIs(t, svc.Leave(ctx, owner.ID), ErrOwnerCannotLeave)
	})
}

func TestOwnershipTransfer(t *testing.T) {
	st := newTestStore(t)
	svc := &OrganisationService{Store: st}
	ctx := context.Background()

	owner := seedBrandOwner(t, st, "tx-owner@example.com")
	org := seedOrganisation(t, st, owner, "Transfer Org")

	admin := seedUser(t, st, "tx-admin@example.com", domain.RoleMember)
	joinOrganisation(t, st, org.ID, admin, domain.OrgRoleAdmin)
	member := seedUser(t, st, "tx-member@example.com", domain.RoleMember)
	joinOrganisation(t, st, org.ID, member, domain.OrgRoleMember)

	t.Run("only the owner may transfer", func(t *testing.T) {
		require.ErrorIs(t, svc.TransferOwnership(ctx, admin.ID, member.ID), ErrOrgPermissionDenied)
	})

	t.Run("target must be an admin", func(t *testing.T) {
		require.ErrorIs(t, svc.TransferOwnership(ctx, owner.ID, member.ID), ErrTransferTargetNotAdmin)
	})

	t.Run("transfer swaps roles atomically", func(t *testing.T) {
		require.NoError(t, svc.TransferOwnership(ctx, owner.ID, admin.ID))

		newOwner, err := st.OrganisationMembers().GetMembership(ctx, org.ID, admin.ID)
		require.NoError(t, err)
		require.Equal(t, domain.OrgRoleOwner, newOwner.Role)

		oldOwner, err := st.OrganisationMembers().GetMembership(ctx, org.ID, owner.ID)
		require.NoError(t, err)
		require.Equal(t, domain.OrgRoleAdmin, oldOwner.Role)

		// Exactly one owner on the roster.
		roster, err := st.OrganisationMembers().ListByOrganisation(ctx, org.ID)
		require.NoError(t, err)
		owners := 0
		for _, m := range roster {
			if m.Role == domain.OrgRoleOwner {
				owners++
			}
		}
		require.Equal(t, 1, owners)
	})
}

func TestOrganisationGetAndDelete(t *testing.T) {
	st := newTestStore(t)
	svc := &OrganisationService{Store: st}
	ctx := context.Background()

	owner := seedBrandOwner(t, st, "get-owner@example.com")
	org := seedOrganisation(t, st, owner, "Viewable Org")
	member := seedUser(t, st, "get-member@example.com", domain.RoleMember)
	joinOrganisation(t, st, org.ID, member, domain.OrgRoleMember)

	t.Run("roster view includes emails and roles", func(t *testing.T) {
		view, err := svc.Get(ctx, member.ID)
		require.NoError(t, err)
		require.Equal(t, org.ID, view.Organisation.ID)
		require.Len(t, view.Members, 2)

		byUser := map[string]RosterEntry{}
		for _, e := range view.Members {
			byUser[e.UserID] = e
		}
		require.Equal(t, domain.OrgRoleOwner, byUser[owner.ID].Role)
		require.Equal(t, "get-member@example.com", byUser[member.ID].Email)
	})

	t.Run("no membership", func(t *testing.T) {
		outsider := seedUser(t, st, "outsider@example.com", domain.RoleMember)
		_, err := svc.Get(ctx, outsider.ID)
		require.ErrorIs(t, err, ErrOrganisationNotFound)
	})

	t.Run("only the owner deletes", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, member.ID), ErrOrgPermissionDenied)

		require.NoError(t, svc.Delete(ctx, owner.ID))
		_, err := st.Organisations().GetOrganisationByID(ctx, org.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		// Memberships cascade with the organisation.
		_, err = st.OrganisationMembers().GetMembershipByUserID(ctx, member.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
