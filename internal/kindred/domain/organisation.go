package domain

import (
	"strings"
	"time"
)

// OrgType mirrors which business entity the organisation wraps.
type OrgType string

const (
	OrgTypeBrand    OrgType = "BRAND"
	OrgTypeSupplier OrgType = "SUPPLIER"
)

// Organisation is a tenant wrapper around exactly one Brand or one Supplier.
type Organisation struct {
	ID         string
	Name       string
	Slug       string
	Type       OrgType
	BrandID    *string
	SupplierID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrganisationMember is a roster entry, identified by (organisation, user).
type OrganisationMember struct {
	OrganisationID string
	UserID         string
	Role           OrgRole
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Slugify derives a URL slug from a display name: lowercase, every run of
// non-alphanumerics collapsed to a single hyphen, hyphens trimmed from both
// ends. Collision disambiguation is the caller's concern.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
