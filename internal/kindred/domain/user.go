package domain

import "time"

type User struct {
	ID              string
	Email           string
	PasswordHash    string // argon2 encoded
	Role            UserRole
	InviteLinkToken string // Token of the invite link consumed at signup; immutable
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Member is the optional 1:1 profile attached to a User. It is created at
// signup when names are supplied, otherwise on first profile completion.
type Member struct {
	UserID    string
	FirstName string
	LastName  string
	JobTitle  *string
	Bio       *string
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
