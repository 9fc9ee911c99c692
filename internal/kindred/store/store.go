package store

import (
	"context"
	"errors"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. It exposes sub-repositories to keep concerns
// tidy and testable, and a Tx pair so multi-step writes stay atomic.
type Store interface {
	Users() Users
	Members() Members
	InviteLinks() InviteLinks
	Brands() Brands
	Suppliers() Suppliers
	Organisations() Organisations
	OrganisationMembers() OrganisationMembers
	OrganisationInvites() OrganisationInvites
	SupplierClaims() SupplierClaims

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rolled back if fn returns an
	// error, committed otherwise. This is the recommended way to run the
	// multi-step writes (signup, org creation, ownership transfer, invite
	// accept, claim verify).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and signup uniqueness checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// DeleteUser cascades to members, memberships and claims (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// CountByInviteLinkToken counts users whose signup consumed the given
	// invite link. This is the source of truth for InviteLink.UsedCount.
	CountByInviteLinkToken(ctx context.Context, token string) (int64, error)

	// IsEmpty reports whether no users exist yet (the bootstrap gate).
	IsEmpty(ctx context.Context) (bool, error)
}

type Members interface {
	// GetMemberByUserID returns the 1:1 profile row for a user.
	GetMemberByUserID(ctx context.Context, userID string) (domain.Member, error)

	// UpsertMember inserts or replaces the profile for m.UserID.
	UpsertMember(ctx context.Context, m domain.Member) error
}

type InviteLinks interface {
	// CreateInviteLink writes a new admin-issued link (token stored raw; it is
	// a foreign key target for users.invite_link_token).
	CreateInviteLink(ctx context.Context, l domain.InviteLink) error

	// GetInviteLinkByToken fetches a link regardless of eligibility; callers
	// apply domain.InviteLink.Consumable themselves.
	GetInviteLinkByToken(ctx context.Context, token string) (domain.InviteLink, error)

	// GetInviteLinkByID fetches a link by id for the admin endpoints.
	GetInviteLinkByID(ctx context.Context, id string) (domain.InviteLink, error)

	// ListInviteLinks returns all links, newest first.
	ListInviteLinks(ctx context.Context) ([]domain.InviteLink, error)

	// UpdateInviteLink mutates is_active / expires_at / max_uses and bumps updated_at.
	UpdateInviteLink(ctx context.Context, id string, isActive bool, expiresAt *time.Time, maxUses *int64) error

	// RecomputeUsedCount sets used_count to the count of users referencing the
	// token. Deliberately a recompute, never an increment.
	RecomputeUsedCount(ctx context.Context, token string) error

	// DeleteInviteLink removes a link by id. Callers must ensure used_count == 0.
	DeleteInviteLink(ctx context.Context, id string) error

	// DeleteExpiredUnused removes expired links no signup ever consumed (housekeeping).
	DeleteExpiredUnused(ctx context.Context) error
}

type Brands interface {
	CreateBrand(ctx context.Context, b domain.Brand) error
	GetBrandByID(ctx context.Context, id string) (domain.Brand, error)

	// GetBrandByUserID finds a brand directly owned by the user (legacy path,
	// also the createOrganisation prerequisite check).
	GetBrandByUserID(ctx context.Context, userID string) (domain.Brand, error)
}

type Suppliers interface {
	CreateSupplier(ctx context.Context, s domain.Supplier) error
	GetSupplierByID(ctx context.Context, id string) (domain.Supplier, error)
	GetSupplierBySlug(ctx context.Context, slug string) (domain.Supplier, error)
	GetSupplierByUserID(ctx context.Context, userID string) (domain.Supplier, error)

	// SetClaimState updates claim_status and the owning user in one statement.
	// userID may be nil to release ownership.
	SetClaimState(ctx context.Context, supplierID string, status domain.ClaimStatus, userID *string) error
}

type Organisations interface {
	CreateOrganisation(ctx context.Context, o domain.Organisation) error
	GetOrganisationByID(ctx context.Context, id string) (domain.Organisation, error)
	GetOrganisationBySlug(ctx context.Context, slug string) (domain.Organisation, error)
	DeleteOrganisation(ctx context.Context, id string) error
}

type OrganisationMembers interface {
	// CreateOrganisationMember inserts a roster entry. The unique index on
	// user_id makes "at most one organisation per user" a hard constraint.
	CreateOrganisationMember(ctx context.Context, m domain.OrganisationMember) error

	// GetMembershipByUserID finds the user's single membership, if any.
	GetMembershipByUserID(ctx context.Context, userID string) (domain.OrganisationMember, error)

	// GetMembership fetches one roster entry by composite key.
	GetMembership(ctx context.Context, orgID, userID string) (domain.OrganisationMember, error)

	// ListByOrganisation returns the full roster ordered by join time.
	ListByOrganisation(ctx context.Context, orgID string) ([]domain.OrganisationMember, error)

	// UpdateRole changes a member's role and bumps updated_at.
	UpdateRole(ctx context.Context, orgID, userID string, role domain.OrgRole) error

	// DeleteMembership removes one roster entry.
	DeleteMembership(ctx context.Context, orgID, userID string) error
}

type OrganisationInvites interface {
	CreateOrganisationInvite(ctx context.Context, inv domain.OrganisationInvite) error
	GetOrganisationInviteByToken(ctx context.Context, token string) (domain.OrganisationInvite, error)

	// GetOpenInviteByOrgAndEmail finds an unexpired, unaccepted invite for the
	// email within the organisation (duplicate-invite guard).
	GetOpenInviteByOrgAndEmail(ctx context.Context, orgID, email string, now time.Time) (domain.OrganisationInvite, error)

	// MarkAccepted stamps accepted_at; single-use enforcement happens at the
	// service layer inside the accept transaction.
	MarkAccepted(ctx context.Context, inviteID string, acceptedAt time.Time) error

	DeleteOrganisationInvite(ctx context.Context, inviteID string) error

	// DeleteExpiredUnaccepted purges lapsed invites (housekeeping).
	DeleteExpiredUnaccepted(ctx context.Context) error
}

type SupplierClaims interface {
	CreateSupplierClaim(ctx context.Context, c domain.SupplierClaim) error
	GetSupplierClaimByID(ctx context.Context, id string) (domain.SupplierClaim, error)

	// GetPendingClaim finds the PENDING claim for a (supplier, user) pair.
	GetPendingClaim(ctx context.Context, supplierID, userID string) (domain.SupplierClaim, error)

	// GetPendingClaimsByUser lists the user's open claims (duplicate guard).
	GetPendingClaimsByUser(ctx context.Context, userID string) ([]domain.SupplierClaim, error)

	// SetStatus moves a claim to a (possibly terminal) state.
	SetStatus(ctx context.Context, claimID string, status domain.ClaimState) error

	// IncrementAttempts bumps the failed-code counter and returns the updated row.
	IncrementAttempts(ctx context.Context, claimID string) (domain.SupplierClaim, error)
}
