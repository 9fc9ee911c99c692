package domain

import "time"

// Brand is an independent drinks brand's business entity.
type Brand struct {
	ID        string
	Name      string
	Slug      string
	UserID    *string // Legacy direct-ownership path; organisations are the current model
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClaimStatus tracks whether a seeded supplier row has been taken over by a
// real user.
type ClaimStatus string

const (
	ClaimUnclaimed ClaimStatus = "UNCLAIMED"
	ClaimPending   ClaimStatus = "PENDING"
	ClaimClaimed   ClaimStatus = "CLAIMED"
)

// Supplier is a service supplier's business entity. Suppliers can be seeded
// by an admin before any user owns them and later claimed via the
// verification-code flow.
type Supplier struct {
	ID          string
	Name        string
	Slug        string
	UserID      *string
	ClaimStatus ClaimStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
