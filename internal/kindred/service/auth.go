package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/pkg/cryptox"
	"github.com/AvallenSolutions/kindredcollective/pkg/idx"
	"github.com/AvallenSolutions/kindredcollective/pkg/jwtx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

var (
	ErrEmailAlreadyRegistered = errors.New("an account with this email already exists")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrInvalidSignupRequest   = errors.New("invalid signup request")
)

// AuthService covers registration and session issuance.
type AuthService struct {
	Store       store.Store
	Tokens      *jwtx.Tokens
	InviteLinks *InviteLinkService
}

// SignupParams carries everything a registrant submits.
type SignupParams struct {
	Email       string
	Password    string
	Role        domain.UserRole
	FirstName   string
	LastName    string
	InviteToken string
}

// Signup registers a new account against an invite link. The eligibility
// check, user insert and usage recompute run inside one transaction so a
// link cannot be consumed past its cap by concurrent signups.
func (s *AuthService) Signup(ctx context.Context, p SignupParams) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Basic input validation. Role must be a self-assignable one; the
	//    link's target role can still override it below.
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Email == "" || len(p.Password) < 8 || p.InviteToken == "" {
		return domain.User{}, ErrInvalidSignupRequest
	}
	if !domain.ValidUserRole(string(p.Role)) || p.Role == domain.RoleAdmin {
		return domain.User{}, ErrInvalidSignupRequest
	}

	// 2. Hash outside the transaction; argon2 is deliberately slow.
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:              idx.New().String(),
		Email:           p.Email,
		PasswordHash:    hash,
		Role:            p.Role,
		InviteLinkToken: p.InviteToken,
	}

	// 3. Validate the link, create the user and recompute the link's usage
	//    in one transaction. Rollback leaves the count untouched.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		link, err := tx.InviteLinks().GetInviteLinkByToken(ctx, p.InviteToken)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteLinkNotFound
			}
			return err
		}
		if err := link.Consumable(time.Now()); err != nil {
			return err
		}
		if link.TargetRole != nil {
			user.Role = *link.TargetRole
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailAlreadyRegistered
			}
			return err
		}

		return tx.InviteLinks().RecomputeUsedCount(ctx, p.InviteToken)
	})
	if err != nil {
		return domain.User{}, err
	}

	// 4. The member profile is best-effort: the account exists either way and
	//    the profile can be completed later.
	if p.FirstName != "" || p.LastName != "" {
		m := domain.Member{
			UserID:    user.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
		}
		if err := s.Store.Members().UpsertMember(ctx, m); err != nil {
			log.Warn("failed to create member profile at signup",
				slog.String("user_id", user.ID),
				slog.Any("error", err),
			)
		}
	}

	log.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.Tokens.Sign(user.ID, user.Email, string(user.Role))
	if err != nil {
		log.Error("failed to sign session token",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return "", domain.User{}, err
	}

	return token, user, nil
}
