package domain

import "time"

// Role is the user's authorization level. Two values only; anything richer
// belongs in the upstream data service.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID            string
	Email         string // unique, always stored lower-case
	Name          string // optional display name
	PasswordHash  string // argon2id encoded, never the plaintext
	Role          Role
	EmailVerified *time.Time // nil until the verification link is consumed
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsVerified reports whether the account completed email verification.
func (u User) IsVerified() bool { return u.EmailVerified != nil }
