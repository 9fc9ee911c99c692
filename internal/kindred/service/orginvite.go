package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/pkg/cryptox"
	"github.com/AvallenSolutions/kindredcollective/pkg/idx"
	"github.com/AvallenSolutions/kindredcollective/pkg/mailx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

var (
	ErrOrgInviteNotFound      = errors.New("organisation invite not found")
	ErrOrgInviteExpired       = errors.New("organisation invite has expired")
	ErrOrgInviteAccepted      = errors.New("organisation invite has already been accepted")
	ErrOrgInviteEmailMismatch = errors.New("organisation invite was issued to a different email address")
	ErrOrgInviteDuplicate     = errors.New("an open invite for this email already exists")
	ErrInviteeAlreadyMember   = errors.New("this email already belongs to a member of the organisation")
	ErrAdminInviteOwnerOnly   = errors.New("only the owner can invite admins")
	ErrInvalidInviteEmail     = errors.New("a valid email address is required")
)

// OrganisationInviteService issues and redeems per-organisation membership
// invites. These are distinct from the global signup links: scoped to one
// organisation, targeted at one email, single-use.
type OrganisationInviteService struct {
	Store  store.Store
	Mailer mailx.Mailer

	// AppURL is the public base URL used to render join links in emails.
	AppURL string
}

// InviteView is the public shape returned by the token inspection endpoint.
type InviteView struct {
	OrganisationName string
	Email            string
	Role             domain.OrgRole
	ExpiresAt        time.Time
}

// Create issues an invite into the caller's organisation. OWNER and ADMIN
// may invite members; only OWNER may invite at ADMIN level. OWNER is not an
// invitable role.
func (s *OrganisationInviteService) Create(ctx context.Context, callerID, email string, role domain.OrgRole) (domain.OrganisationInvite, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.OrganisationInvite{}, ErrInvalidInviteEmail
	}
	if role != domain.OrgRoleAdmin && role != domain.OrgRoleMember {
		return domain.OrganisationInvite{}, ErrInvalidOrgRole
	}

	caller, err := s.Store.OrganisationMembers().GetMembershipByUserID(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OrganisationInvite{}, ErrOrganisationNotFound
		}
		return domain.OrganisationInvite{}, err
	}
	if caller.Role == domain.OrgRoleMember {
		return domain.OrganisationInvite{}, ErrOrgPermissionDenied
	}
	if role == domain.OrgRoleAdmin && caller.Role != domain.OrgRoleOwner {
		return domain.OrganisationInvite{}, ErrAdminInviteOwnerOnly
	}

	org, err := s.Store.Organisations().GetOrganisationByID(ctx, caller.OrganisationID)
	if err != nil {
		return domain.OrganisationInvite{}, err
	}

	// Reject if the address already belongs to a roster member.
	if u, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		if _, err := s.Store.OrganisationMembers().GetMembership(ctx, org.ID, u.ID); err == nil {
			return domain.OrganisationInvite{}, ErrInviteeAlreadyMember
		} else if !errors.Is(err, store.ErrNotFound) {
			return domain.OrganisationInvite{}, err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.OrganisationInvite{}, err
	}

	// One open invite per (organisation, email) at a time.
	if _, err := s.Store.OrganisationInvites().GetOpenInviteByOrgAndEmail(ctx, org.ID, email, time.Now()); err == nil {
		return domain.OrganisationInvite{}, ErrOrgInviteDuplicate
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.OrganisationInvite{}, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize192)
	if err != nil {
		return domain.OrganisationInvite{}, err
	}

	inv := domain.OrganisationInvite{
		ID:             idx.New().String(),
		OrganisationID: org.ID,
		Email:          email,
		Token:          token,
		Role:           role,
		ExpiresAt:      time.Now().Add(domain.OrganisationInviteTTL),
		CreatedBy:      callerID,
	}
	if err := s.Store.OrganisationInvites().CreateOrganisationInvite(ctx, inv); err != nil {
		return domain.OrganisationInvite{}, err
	}

	inviteURL := fmt.Sprintf("%s/invite/%s", s.AppURL, inv.Token)
	if err := s.Mailer.SendOrganisationInvite(ctx, email, org.Name, inviteURL); err != nil {
		// The invite row exists and remains redeemable; email delivery is
		// retried out of band.
		log.Warn("failed to send organisation invite email",
			slog.String("invite_id", inv.ID),
			slog.Any("error", err),
		)
	}

	log.Info("organisation invite created",
		slog.String("invite_id", inv.ID),
		slog.String("organisation_id", org.ID),
		slog.String("role", string(role)),
	)

	return inv, nil
}

// Inspect resolves a token for the pre-acceptance landing page. Expired and
// already-accepted invites are reported as such without requiring auth.
func (s *OrganisationInviteService) Inspect(ctx context.Context, token string) (InviteView, error) {
	inv, err := s.Store.OrganisationInvites().GetOrganisationInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return InviteView{}, ErrOrgInviteNotFound
		}
		return InviteView{}, err
	}
	if inv.Accepted() {
		return InviteView{}, ErrOrgInviteAccepted
	}
	if inv.Expired(time.Now()) {
		return InviteView{}, ErrOrgInviteExpired
	}

	org, err := s.Store.Organisations().GetOrganisationByID(ctx, inv.OrganisationID)
	if err != nil {
		return InviteView{}, err
	}

	return InviteView{
		OrganisationName: org.Name,
		Email:            inv.Email,
		Role:             inv.Role,
		ExpiresAt:        inv.ExpiresAt,
	}, nil
}

// Revoke deletes an open invite from the caller's organisation. Same
// permission shape as Create: admins revoke member invites, the owner
// revokes anything.
func (s *OrganisationInviteService) Revoke(ctx context.Context, callerID, token string) error {
	caller, err := s.Store.OrganisationMembers().GetMembershipByUserID(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrganisationNotFound
		}
		return err
	}
	if caller.Role == domain.OrgRoleMember {
		return ErrOrgPermissionDenied
	}

	inv, err := s.Store.OrganisationInvites().GetOrganisationInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrgInviteNotFound
		}
		return err
	}
	if inv.OrganisationID != caller.OrganisationID {
		return ErrOrgInviteNotFound
	}
	if inv.Accepted() {
		return ErrOrgInviteAccepted
	}
	if inv.Role == domain.OrgRoleAdmin && caller.Role != domain.OrgRoleOwner {
		return ErrAdminInviteOwnerOnly
	}

	return s.Store.OrganisationInvites().DeleteOrganisationInvite(ctx, inv.ID)
}

// Accept redeems an invite for the authenticated user. The invite must match
// the user's own email, the user must not already belong to an organisation,
// and the membership insert plus accepted stamp land in one transaction.
func (s *OrganisationInviteService) Accept(ctx context.Context, userID, userEmail, token string) (domain.OrganisationMember, error) {
	log := slogx.FromContext(ctx)

	var membership domain.OrganisationMember
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.OrganisationInvites().GetOrganisationInviteByToken(ctx, token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrgInviteNotFound
			}
			return err
		}
		if inv.Accepted() {
			return ErrOrgInviteAccepted
		}
		if inv.Expired(time.Now()) {
			return ErrOrgInviteExpired
		}
		if !strings.EqualFold(inv.Email, userEmail) {
			return ErrOrgInviteEmailMismatch
		}

		if _, err := tx.OrganisationMembers().GetMembershipByUserID(ctx, userID); err == nil {
			return ErrAlreadyOrgMember
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		membership = domain.OrganisationMember{
			OrganisationID: inv.OrganisationID,
			UserID:         userID,
			Role:           inv.Role,
		}
		if err := tx.OrganisationMembers().CreateOrganisationMember(ctx, membership); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyOrgMember
			}
			return err
		}

		// MarkAccepted refuses already-stamped rows, closing the double-redeem
		// window between concurrent accepts.
		if err := tx.OrganisationInvites().MarkAccepted(ctx, inv.ID, time.Now()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOrgInviteAccepted
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.OrganisationMember{}, err
	}

	log.Info("organisation invite accepted",
		slog.String("organisation_id", membership.OrganisationID),
		slog.String("user_id", userID),
		slog.String("role", string(membership.Role)),
	)

	return membership, nil
}
