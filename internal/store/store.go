package store

import (
	"context"
	"errors"
	"time"

	"github.com/Djalobre/kvotizza/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable.
type Store interface {
	Users() Users
	VerificationTokens() VerificationTokens
	PasswordResetTokens() PasswordResetTokens
	RefreshTokens() RefreshTokens
	AffiliateClicks() AffiliateClicks

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle transactions.
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

	// GetUserByEmail looks a user up by lower-cased email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// A duplicate email surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// SetEmailVerified stamps email_verified and bumps updated_at.
	SetEmailVerified(ctx context.Context, userID string, at time.Time) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type VerificationTokens interface {
	// CreateVerificationToken stores a freshly issued verification token.
	CreateVerificationToken(ctx context.Context, t domain.VerificationToken) error

	// GetVerificationToken fetches a token regardless of expiry; expiry is
	// the service's decision so the boundary stays testable.
	GetVerificationToken(ctx context.Context, token string) (domain.VerificationToken, error)

	// DeleteVerificationToken enforces single use.
	DeleteVerificationToken(ctx context.Context, token string) error

	// DeleteExpiredVerificationTokens is housekeeping.
	DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) error
}

type PasswordResetTokens interface {
	CreatePasswordResetToken(ctx context.Context, t domain.PasswordResetToken) error
	GetPasswordResetToken(ctx context.Context, token string) (domain.PasswordResetToken, error)
	DeletePasswordResetToken(ctx context.Context, token string) error
	DeleteExpiredPasswordResetTokens(ctx context.Context, now time.Time) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record by its SHA-256 fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (password reset).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) error
}

type AffiliateClicks interface {
	// CreateAffiliateClick records a single click-through.
	CreateAffiliateClick(ctx context.Context, c domain.AffiliateClick) error

	// CountClicksByBookie aggregates clicks per bookmaker, most clicked first.
	CountClicksByBookie(ctx context.Context) ([]domain.BookieClickCount, error)
}
