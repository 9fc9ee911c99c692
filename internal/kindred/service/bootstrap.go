package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/pkg/cryptox"
	"github.com/AvallenSolutions/kindredcollective/pkg/idx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

var (
	ErrAlreadyBootstrapped     = errors.New("service has already been bootstrapped")
	ErrBootstrapUnauthorized   = errors.New("invalid bootstrap token")
	ErrInvalidBootstrapRequest = errors.New("invalid bootstrap request")
)

// BootstrapService creates the very first admin account on a fresh database.
// Signup requires a consumable invite link and only an admin can mint one, so
// without this path a new deployment could never acquire its first user. The
// endpoint is guarded by a deploy-time token and closes itself permanently
// once any user exists.
type BootstrapService struct {
	Store store.Store

	// Token is the shared secret required to bootstrap. Empty disables the
	// flow entirely.
	Token string
}

// BootstrapParams carries the initial admin's account details.
type BootstrapParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// IsBootstrapped reports whether any user exists.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the initial admin. Because users.invite_link_token is a
// hard reference, the admin is attached to a deactivated, purpose-made invite
// link created in the same transaction; the link can never be consumed by a
// later signup. The empty-users check is repeated inside the transaction so
// two concurrent calls cannot both succeed.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, p BootstrapParams) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		log.Warn("bootstrap attempted with a wrong token")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email == "" || !strings.Contains(p.Email, "@") || len(p.Password) < 8 {
		return domain.User{}, ErrInvalidBootstrapRequest
	}

	bootstrapped, err := s.IsBootstrapped(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if bootstrapped {
		log.Warn("bootstrap attempted on an already bootstrapped service")
		return domain.User{}, ErrAlreadyBootstrapped
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		log.Error("failed to hash bootstrap password", slog.Any("error", err))
		return domain.User{}, err
	}

	linkToken, err := cryptox.GenerateToken(cryptox.TokenSize192)
	if err != nil {
		log.Error("failed to generate bootstrap link token", slog.Any("error", err))
		return domain.User{}, err
	}

	adminRole := domain.RoleAdmin
	link := domain.InviteLink{
		ID:         idx.New().String(),
		Token:      linkToken,
		IsActive:   false,
		TargetRole: &adminRole,
		CreatedBy:  "bootstrap",
	}
	user := domain.User{
		ID:              idx.New().String(),
		Email:           p.Email,
		PasswordHash:    hash,
		Role:            domain.RoleAdmin,
		InviteLinkToken: link.Token,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrAlreadyBootstrapped
		}
		if err := tx.InviteLinks().CreateInviteLink(ctx, link); err != nil {
			return err
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.InviteLinks().RecomputeUsedCount(ctx, link.Token)
	})
	if err != nil {
		return domain.User{}, err
	}

	// The profile is best-effort, same as signup.
	if p.FirstName != "" || p.LastName != "" {
		m := domain.Member{
			UserID:    user.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
		}
		if err := s.Store.Members().UpsertMember(ctx, m); err != nil {
			log.Warn("failed to create member profile at bootstrap",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
		}
	}

	log.Info("service bootstrapped",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}
