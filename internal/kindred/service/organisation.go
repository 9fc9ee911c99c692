package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/pkg/idx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

var (
	ErrOrganisationNotFound  = errors.New("organisation not found")
	ErrNoBusinessProfile     = errors.New("a brand or supplier profile is required to create an organisation")
	ErrAlreadyOrgMember      = errors.New("user is already a member of an organisation")
	ErrNotOrgMember          = errors.New("user is not a member of this organisation")
	ErrOrgPermissionDenied   = errors.New("insufficient organisation role for this action")
	ErrOwnerImmutable        = errors.New("the owner cannot be removed or demoted; transfer ownership first")
	ErrOwnerViaTransferOnly  = errors.New("ownership changes hands only via transfer")
	ErrCannotRemoveSelf      = errors.New("use the leave endpoint to remove yourself")
	ErrOwnerCannotLeave      = errors.New("the owner must transfer ownership before leaving")
	ErrTransferTargetNotAdmin = errors.New("ownership can only be transferred to an admin of the organisation")
	ErrInvalidOrgRole        = errors.New("invalid organisation role")
)

// OrganisationService owns the tenant lifecycle and roster management rules.
type OrganisationService struct {
	Store store.Store
}

// OrganisationView is an organisation plus its full roster, each entry joined
// with the user's email and optional profile names.
type OrganisationView struct {
	Organisation domain.Organisation
	Members      []RosterEntry
}

// RosterEntry is one row of an organisation's member list.
type RosterEntry struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Role      domain.OrgRole
	JoinedAt  time.Time
}

// Create wraps the caller's brand or supplier profile in a new organisation
// and enrols them as its OWNER, atomically.
func (s *OrganisationService) Create(ctx context.Context, userID, name string) (domain.Organisation, error) {
	log := slogx.FromContext(ctx)

	if name == "" {
		return domain.Organisation{}, ErrInvalidProfile
	}

	// 1. One organisation per user, checked up front for a friendly error;
	//    the unique index on organisation_members backs it up under races.
	if _, err := s.Store.OrganisationMembers().GetMembershipByUserID(ctx, userID); err == nil {
		return domain.Organisation{}, ErrAlreadyOrgMember
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Organisation{}, err
	}

	// 2. The organisation wraps whichever business entity the user owns.
	org := domain.Organisation{
		ID:   idx.New().String(),
		Name: name,
		Slug: domain.Slugify(name),
	}
	if brand, err := s.Store.Brands().GetBrandByUserID(ctx, userID); err == nil {
		org.Type = domain.OrgTypeBrand
		org.BrandID = &brand.ID
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Organisation{}, err
	} else if sup, err := s.Store.Suppliers().GetSupplierByUserID(ctx, userID); err == nil {
		org.Type = domain.OrgTypeSupplier
		org.SupplierID = &sup.ID
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Organisation{}, err
	} else {
		return domain.Organisation{}, ErrNoBusinessProfile
	}

	// 3. Slug collisions get a timestamp suffix rather than an error.
	if _, err := s.Store.Organisations().GetOrganisationBySlug(ctx, org.Slug); err == nil {
		org.Slug = fmt.Sprintf("%s-%d", org.Slug, time.Now().Unix())
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Organisation{}, err
	}

	// 4. Organisation and OWNER membership land together or not at all.
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Organisations().CreateOrganisation(ctx, org); err != nil {
			return err
		}
		m := domain.OrganisationMember{
			OrganisationID: org.ID,
			UserID:         userID,
			Role:           domain.OrgRoleOwner,
		}
		if err := tx.OrganisationMembers().CreateOrganisationMember(ctx, m); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyOrgMember
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Organisation{}, err
	}

	log.Info("organisation created",
		slog.String("organisation_id", org.ID),
		slog.String("owner_id", userID),
		slog.String("type", string(org.Type)),
	)

	return org, nil
}

// Get returns the caller's organisation with its roster.
func (s *OrganisationService) Get(ctx context.Context, userID string) (OrganisationView, error) {
	membership, err := s.membershipOf(ctx, userID)
	if err != nil {
		return OrganisationView{}, err
	}

	org, err := s.Store.Organisations().GetOrganisationByID(ctx, membership.OrganisationID)
	if err != nil {
		return OrganisationView{}, err
	}

	members, err := s.Store.OrganisationMembers().ListByOrganisation(ctx, org.ID)
	if err != nil {
		return OrganisationView{}, err
	}

	view := OrganisationView{Organisation: org}
	for _, m := range members {
		entry := RosterEntry{UserID: m.UserID, Role: m.Role, JoinedAt: m.CreatedAt}
		if u, err := s.Store.Users().GetUserByID(ctx, m.UserID); err == nil {
			entry.Email = u.Email
		}
		if p, err := s.Store.Members().GetMemberByUserID(ctx, m.UserID); err == nil {
			entry.FirstName = p.FirstName
			entry.LastName = p.LastName
		}
		view.Members = append(view.Members, entry)
	}

	return view, nil
}

// Delete tears down the caller's organisation. OWNER only; memberships and
// open invites go with it via cascade.
func (s *OrganisationService) Delete(ctx context.Context, userID string) error {
	log := slogx.FromContext(ctx)

	membership, err := s.membershipOf(ctx, userID)
	if err != nil {
		return err
	}
	if membership.Role != domain.OrgRoleOwner {
		return ErrOrgPermissionDenied
	}

	if err := s.Store.Organisations().DeleteOrganisation(ctx, membership.OrganisationID); err != nil {
		return err
	}

	log.Info("organisation deleted",
		slog.String("organisation_id", membership.OrganisationID),
		slog.String("deleted_by", userID),
	)
	return nil
}

// UpdateMemberRole changes a roster member's role subject to the hierarchy:
//   - OWNER is never set or unset here; ownership moves via TransferOwnership.
//   - OWNER may set any non-owner member to ADMIN or MEMBER.
//   - ADMIN may only demote another ADMIN to MEMBER.
//   - MEMBER may change nothing.
func (s *OrganisationService) UpdateMemberRole(ctx context.Context, callerID, targetUserID string, role domain.OrgRole) error {
	if !domain.ValidOrgRole(string(role)) {
		return ErrInvalidOrgRole
	}
	if role == domain.OrgRoleOwner {
		return ErrOwnerViaTransferOnly
	}

	caller, err := s.membershipOf(ctx, callerID)
	if err != nil {
		return err
	}
	if caller.Role == domain.OrgRoleMember {
		return ErrOrgPermissionDenied
	}

	target, err := s.Store.OrganisationMembers().GetMembership(ctx, caller.OrganisationID, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotOrgMember
		}
		return err
	}
	if target.Role == domain.OrgRoleOwner {
		return ErrOwnerImmutable
	}
	if caller.Role == domain.OrgRoleAdmin {
		// Admins can only demote a peer admin back to member.
		if target.Role != domain.OrgRoleAdmin || role != domain.OrgRoleMember {
			return ErrOrgPermissionDenied
		}
	}

	return s.Store.OrganisationMembers().UpdateRole(ctx, caller.OrganisationID, targetUserID, role)
}

// RemoveMember evicts another member from the caller's organisation.
func (s *OrganisationService) RemoveMember(ctx context.Context, callerID, targetUserID string) error {
	if callerID == targetUserID {
		return ErrCannotRemoveSelf
	}

	caller, err := s.membershipOf(ctx, callerID)
	if err != nil {
		return err
	}
	if caller.Role == domain.OrgRoleMember {
		return ErrOrgPermissionDenied
	}

	target, err := s.Store.OrganisationMembers().GetMembership(ctx, caller.OrganisationID, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotOrgMember
		}
		return err
	}
	if target.Role == domain.OrgRoleOwner {
		return ErrOwnerImmutable
	}
	if caller.Role == domain.OrgRoleAdmin && target.Role == domain.OrgRoleAdmin {
		return ErrOrgPermissionDenied
	}

	return s.Store.OrganisationMembers().DeleteMembership(ctx, caller.OrganisationID, targetUserID)
}

// Leave removes the caller from their organisation. The owner cannot leave.
func (s *OrganisationService) Leave(ctx context.Context, userID string) error {
	membership, err := s.membershipOf(ctx, userID)
	if err != nil {
		return err
	}
	if membership.Role == domain.OrgRoleOwner {
		return ErrOwnerCannotLeave
	}
	return s.Store.OrganisationMembers().DeleteMembership(ctx, membership.OrganisationID, userID)
}

// TransferOwnership promotes an ADMIN to OWNER and demotes the current owner
// to ADMIN in a single transaction, so the roster never has zero or two owners.
func (s *OrganisationService) TransferOwnership(ctx context.Context, callerID, newOwnerID string) error {
	log := slogx.FromContext(ctx)

	caller, err := s.membershipOf(ctx, callerID)
	if err != nil {
		return err
	}
	if caller.Role != domain.OrgRoleOwner {
		return ErrOrgPermissionDenied
	}
	if callerID == newOwnerID {
		return ErrTransferTargetNotAdmin
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.OrganisationMembers().GetMembership(ctx, caller.OrganisationID, newOwnerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotOrgMember
			}
			return err
		}
		if target.Role != domain.OrgRoleAdmin {
			return ErrTransferTargetNotAdmin
		}

		if err := tx.OrganisationMembers().UpdateRole(ctx, caller.OrganisationID, newOwnerID, domain.OrgRoleOwner); err != nil {
			return err
		}
		return tx.OrganisationMembers().UpdateRole(ctx, caller.OrganisationID, callerID, domain.OrgRoleAdmin)
	})
	if err != nil {
		return err
	}

	log.Info("organisation ownership transferred",
		slog.String("organisation_id", caller.OrganisationID),
		slog.String("from", callerID),
		slog.String("to", newOwnerID),
	)
	return nil
}

func (s *OrganisationService) membershipOf(ctx context.Context, userID string) (domain.OrganisationMember, error) {
	m, err := s.Store.OrganisationMembers().GetMembershipByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OrganisationMember{}, ErrOrganisationNotFound
		}
		return domain.OrganisationMember{}, err
	}
	return m, nil
}
