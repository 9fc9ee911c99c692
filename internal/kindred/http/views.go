package http

import (
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
)

// Response shapes shared across handlers. Handlers never serialise domain
// structs directly; these views pin the wire format independently of the
// domain model.

type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserView(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type MemberView struct {
	UserID    string  `json:"userId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	JobTitle  *string `json:"jobTitle,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func newMemberView(m domain.Member) MemberView {
	return MemberView{
		UserID:    m.UserID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		JobTitle:  m.JobTitle,
		Bio:       m.Bio,
		AvatarURL: m.AvatarURL,
	}
}

type InviteLinkView struct {
	ID         string     `json:"id"`
	Token      string     `json:"token"`
	URL        string     `json:"url,omitempty"`
	IsActive   bool       `json:"isActive"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	MaxUses    *int64     `json:"maxUses,omitempty"`
	UsedCount  int64      `json:"usedCount"`
	TargetRole *string    `json:"targetRole,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func newInviteLinkView(l domain.InviteLink, url string) InviteLinkView {
	v := InviteLinkView{
		ID:        l.ID,
		Token:     l.Token,
		URL:       url,
		IsActive:  l.IsActive,
		ExpiresAt: l.ExpiresAt,
		MaxUses:   l.MaxUses,
		UsedCount: l.UsedCount,
		CreatedAt: l.CreatedAt,
	}
	if l.TargetRole != nil {
		role := string(*l.TargetRole)
		v.TargetRole = &role
	}
	return v
}

type OrganisationView struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Type       string  `json:"type"`
	BrandID    *string `json:"brandId,omitempty"`
	SupplierID *string `json:"supplierId,omitempty"`
}

func newOrganisationView(o domain.Organisation) OrganisationView {
	return OrganisationView{
		ID:         o.ID,
		Name:       o.Name,
		Slug:       o.Slug,
		Type:       string(o.Type),
		BrandID:    o.BrandID,
		SupplierID: o.SupplierID,
	}
}

type RosterEntryView struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joinedAt"`
}

func newRosterView(entries []service.RosterEntry) []RosterEntryView {
	views := make([]RosterEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, RosterEntryView{
			UserID:    e.UserID,
			Email:     e.Email,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Role:      string(e.Role),
			JoinedAt:  e.JoinedAt,
		})
	}
	return views
}

type SupplierView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	ClaimStatus string `json:"claimStatus"`
}

func newSupplierView(s domain.Supplier) SupplierView {
	return SupplierView{
		ID:          s.ID,
		Name:        s.Name,
		Slug:        s.Slug,
		ClaimStatus: string(s.ClaimStatus),
	}
}

type BrandView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func newBrandView(b domain.Brand) BrandView {
	return BrandView{ID: b.ID, Name: b.Name, Slug: b.Slug}
}

type OrgInviteView struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
