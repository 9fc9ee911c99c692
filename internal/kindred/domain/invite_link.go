package domain

import (
	"errors"
	"time"
)

// Eligibility failures returned by InviteLink.Consumable. Every consumer of an
// invite link (the public validate endpoint and signup) goes through the same
// predicate so the rule cannot drift between call sites.
var (
	ErrInviteLinkInactive = errors.New("invite link has been deactivated")
	ErrInviteLinkExpired  = errors.New("invite link has expired")
	ErrInviteLinkMaxUses  = errors.New("invite link has reached its maximum usage limit")
)

// InviteLink is a global, admin-issued signup token good for a number of
// signups. UsedCount is always recomputed from the users table, never
// incremented in place.
type InviteLink struct {
	ID         string
	Token      string // URL-safe random, unique; referenced by users at signup
	IsActive   bool
	ExpiresAt  *time.Time
	MaxUses    *int64
	UsedCount  int64
	TargetRole *UserRole // When set, overrides the role requested at signup
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Consumable reports whether the link can be used for a signup at the given
// instant. Returns nil when consumable, otherwise one of the ErrInviteLink*
// sentinels describing why not.
func (l InviteLink) Consumable(now time.Time) error {
	if !l.IsActive {
		return ErrInviteLinkInactive
	}
	if l.ExpiresAt != nil && !now.Before(*l.ExpiresAt) {
		return ErrInviteLinkExpired
	}
	if l.MaxUses != nil && l.UsedCount >= *l.MaxUses {
		return ErrInviteLinkMaxUses
	}
	return nil
}
