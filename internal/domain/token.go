package domain

import "time"

// VerificationToken is a single-use email verification token. Consumption
// deletes the row; there is no status flag.
type VerificationToken struct {
	Token     string // opaque, unique
	Email     string // the email address this token verifies, lower-case
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PasswordResetToken is a single-use password reset token.
type PasswordResetToken struct {
	Token     string // opaque, unique
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RefreshToken models the stored refresh token record. Only the SHA-256
// fingerprint of the opaque token is persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the opaque token
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenPair is what a successful sign-in or refresh returns: the short-lived
// access token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until access token expiry
}
