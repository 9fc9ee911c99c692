package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/pkg/idx"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrProfileExists     = errors.New("business profile already exists for this user")
	ErrInvalidProfile    = errors.New("invalid profile parameters")
	ErrSupplierNotFound  = errors.New("supplier not found")
	ErrInvalidMemberName = errors.New("first and last name are required")
)

// UserService serves the authenticated user's own account view and the
// business profile bootstrap endpoints.
type UserService struct {
	Store store.Store
}

// MeView aggregates everything the frontend needs to render the session user.
type MeView struct {
	User         domain.User
	Member       *domain.Member
	Organisation *domain.Organisation
	OrgRole      *domain.OrgRole
}

// Me returns the user plus their optional profile and organisation membership.
func (s *UserService) Me(ctx context.Context, userID string) (MeView, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return MeView{}, ErrUserNotFound
		}
		return MeView{}, err
	}

	view := MeView{User: user}

	member, err := s.Store.Members().GetMemberByUserID(ctx, userID)
	switch {
	case err == nil:
		view.Member = &member
	case !errors.Is(err, store.ErrNotFound):
		return MeView{}, err
	}

	membership, err := s.Store.OrganisationMembers().GetMembershipByUserID(ctx, userID)
	switch {
	case err == nil:
		org, err := s.Store.Organisations().GetOrganisationByID(ctx, membership.OrganisationID)
		if err != nil {
			return MeView{}, err
		}
		view.Organisation = &org
		view.OrgRole = &membership.Role
	case !errors.Is(err, store.ErrNotFound):
		return MeView{}, err
	}

	return view, nil
}

// UpdateMember creates or replaces the user's 1:1 profile.
func (s *UserService) UpdateMember(ctx context.Context, m domain.Member) (domain.Member, error) {
	if m.FirstName == "" || m.LastName == "" {
		return domain.Member{}, ErrInvalidMemberName
	}
	if err := s.Store.Members().UpsertMember(ctx, m); err != nil {
		return domain.Member{}, err
	}
	return s.Store.Members().GetMemberByUserID(ctx, m.UserID)
}

// CreateBrand registers a brand entity owned by the user. A user holds at
// most one brand.
func (s *UserService) CreateBrand(ctx context.Context, userID, name string) (domain.Brand, error) {
	if name == "" {
		return domain.Brand{}, ErrInvalidProfile
	}

	if _, err := s.Store.Brands().GetBrandByUserID(ctx, userID); err == nil {
		return domain.Brand{}, ErrProfileExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Brand{}, err
	}

	b := domain.Brand{
		ID:     idx.New().String(),
		Name:   name,
		Slug:   domain.Slugify(name),
		UserID: &userID,
	}
	if err := s.Store.Brands().CreateBrand(ctx, b); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Slug collided with a concurrent insert; retry once with a suffix.
			b.Slug = fmt.Sprintf("%s-%d", domain.Slugify(name), time.Now().Unix())
			if err := s.Store.Brands().CreateBrand(ctx, b); err != nil {
				return domain.Brand{}, err
			}
			return b, nil
		}
		return domain.Brand{}, err
	}
	return b, nil
}

// CreateOwnedSupplier registers a supplier entity owned by the user from the
// outset, skipping the claim flow. A user holds at most one supplier.
func (s *UserService) CreateOwnedSupplier(ctx context.Context, userID, name string) (domain.Supplier, error) {
	if name == "" {
		return domain.Supplier{}, ErrInvalidProfile
	}

	if _, err := s.Store.Suppliers().GetSupplierByUserID(ctx, userID); err == nil {
		return domain.Supplier{}, ErrProfileExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Supplier{}, err
	}

	sup := domain.Supplier{
		ID:          idx.New().String(),
		Name:        name,
		Slug:        domain.Slugify(name),
		UserID:      &userID,
		ClaimStatus: domain.ClaimClaimed,
	}
	if err := s.Store.Suppliers().CreateSupplier(ctx, sup); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			sup.Slug = fmt.Sprintf("%s-%d", domain.Slugify(name), time.Now().Unix())
			if err := s.Store.Suppliers().CreateSupplier(ctx, sup); err != nil {
				return domain.Supplier{}, err
			}
			return sup, nil
		}
		return domain.Supplier{}, err
	}
	return sup, nil
}

// SeedSupplier registers an unclaimed supplier entity, available for the
// claim flow. Admin-only at the HTTP layer.
func (s *UserService) SeedSupplier(ctx context.Context, name string) (domain.Supplier, error) {
	if name == "" {
		return domain.Supplier{}, ErrInvalidProfile
	}

	sup := domain.Supplier{
		ID:          idx.New().String(),
		Name:        name,
		Slug:        domain.Slugify(name),
		ClaimStatus: domain.ClaimUnclaimed,
	}
	if err := s.Store.Suppliers().CreateSupplier(ctx, sup); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			sup.Slug = fmt.Sprintf("%s-%d", domain.Slugify(name), time.Now().Unix())
			if err := s.Store.Suppliers().CreateSupplier(ctx, sup); err != nil {
				return domain.Supplier{}, err
			}
			return sup, nil
		}
		return domain.Supplier{}, err
	}
	return sup, nil
}

// GetSupplierBySlug resolves a supplier for the public claim pages.
func (s *UserService) GetSupplierBySlug(ctx context.Context, slug string) (domain.Supplier, error) {
	sup, err := s.Store.Suppliers().GetSupplierBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Supplier{}, ErrSupplierNotFound
		}
		return domain.Supplier{}, err
	}
	return sup, nil
}
