package domain

import "time"

// ClaimState is the lifecycle of a single claim attempt. CLAIMED and REJECTED
// are terminal.
type ClaimState string

const (
	ClaimStatePending  ClaimState = "PENDING"
	ClaimStateClaimed  ClaimState = "CLAIMED"
	ClaimStateRejected ClaimState = "REJECTED"
)

// MaxClaimVerifyAttempts is the number of wrong verification codes tolerated
// before the claim is rejected and the supplier released.
const MaxClaimVerifyAttempts = 5

// SupplierClaim records one user's attempt to take ownership of a seeded
// supplier via an emailed verification code.
type SupplierClaim struct {
	ID               string
	SupplierID       string
	UserID           string
	Status           ClaimState
	VerificationCode string // 6-digit numeric
	CompanyEmail     string
	Attempts         int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
