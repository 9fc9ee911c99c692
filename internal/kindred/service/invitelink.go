package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/pkg/cryptox"
	"github.com/AvallenSolutions/kindredcollective/pkg/idx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

var (
	ErrInviteLinkNotFound      = errors.New("invite link not found")
	ErrInvalidInviteLink       = errors.New("invalid invite link parameters")
	ErrInviteLinkInUse         = errors.New("invite link has been used and cannot be deleted")
	ErrInviteLinkInvalidExpiry = errors.New("invite link expiry must be in the future")
)

// InviteLinkService manages the global, admin-issued signup links.
type InviteLinkService struct {
	Store store.Store

	// AppURL is the public base URL used to render shareable invite URLs.
	AppURL string
}

// Issue mints a new invite link. targetRole, expiresAt and maxUses are all
// optional; a nil targetRole leaves the signup role to the registrant.
func (s *InviteLinkService) Issue(
	ctx context.Context,
	createdBy string,
	targetRole *domain.UserRole,
	expiresAt *time.Time,
	maxUses *int64,
) (domain.InviteLink, error) {
	log := slogx.FromContext(ctx)

	if targetRole != nil && !domain.ValidUserRole(string(*targetRole)) {
		return domain.InviteLink{}, ErrInvalidInviteLink
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		log.Warn("attempted to create invite link with past expiry",
			slog.Time("expires_at", *expiresAt),
		)
		return domain.InviteLink{}, ErrInviteLinkInvalidExpiry
	}
	if maxUses != nil && *maxUses <= 0 {
		return domain.InviteLink{}, ErrInvalidInviteLink
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize192)
	if err != nil {
		log.Error("failed to generate invite link token", slog.Any("error", err))
		return domain.InviteLink{}, err
	}

	link := domain.InviteLink{
		ID:         idx.New().String(),
		Token:      token,
		IsActive:   true,
		ExpiresAt:  expiresAt,
		MaxUses:    maxUses,
		TargetRole: targetRole,
		CreatedBy:  createdBy,
	}

	if err := s.Store.InviteLinks().CreateInviteLink(ctx, link); err != nil {
		log.Error("failed to create invite link",
			slog.String("invite_link_id", link.ID),
			slog.Any("error", err),
		)
		return domain.InviteLink{}, err
	}

	log.Info("invite link issued",
		slog.String("invite_link_id", link.ID),
		slog.String("created_by", createdBy),
	)

	return link, nil
}

// Validate resolves a token and applies the shared eligibility predicate.
// This is the single validation path for both the public validate endpoint
// and signup; the returned error is one of the domain.ErrInviteLink*
// sentinels or ErrInviteLinkNotFound.
func (s *InviteLinkService) Validate(ctx context.Context, token string) (domain.InviteLink, error) {
	link, err := s.Store.InviteLinks().GetInviteLinkByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.InviteLink{}, ErrInviteLinkNotFound
		}
		return domain.InviteLink{}, err
	}

	if err := link.Consumable(time.Now()); err != nil {
		return domain.InviteLink{}, err
	}

	return link, nil
}

// List returns all invite links, newest first.
func (s *InviteLinkService) List(ctx context.Context) ([]domain.InviteLink, error) {
	return s.Store.InviteLinks().ListInviteLinks(ctx)
}

// Update mutates an existing link's activation, expiry and usage cap.
func (s *InviteLinkService) Update(
	ctx context.Context,
	id string,
	isActive bool,
	expiresAt *time.Time,
	maxUses *int64,
) (domain.InviteLink, error) {
	if maxUses != nil && *maxUses <= 0 {
		return domain.InviteLink{}, ErrInvalidInviteLink
	}

	err := s.Store.InviteLinks().UpdateInviteLink(ctx, id, isActive, expiresAt, maxUses)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.InviteLink{}, ErrInviteLinkNotFound
		}
		return domain.InviteLink{}, err
	}

	return s.Store.InviteLinks().GetInviteLinkByID(ctx, id)
}

// Delete removes a link. Links that have been consumed at least once are
// retained for audit; only never-used links can go.
func (s *InviteLinkService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	link, err := s.Store.InviteLinks().GetInviteLinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteLinkNotFound
		}
		return err
	}

	if link.UsedCount > 0 {
		log.Warn("attempted to delete a consumed invite link",
			slog.String("invite_link_id", id),
			slog.Int64("used_count", link.UsedCount),
		)
		return ErrInviteLinkInUse
	}

	return s.Store.InviteLinks().DeleteInviteLink(ctx, id)
}

// URL renders the shareable signup URL for a link.
func (s *InviteLinkService) URL(link domain.InviteLink) string {
	return fmt.Sprintf("%s/signup?invite=%s", s.AppURL, link.Token)
}
