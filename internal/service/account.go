package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/Djalobre/kvotizza/internal/store"
	"github.com/Djalobre/kvotizza/pkg/cryptox"
	"github.com/Djalobre/kvotizza/pkg/idx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

var (
	// ErrMissingField signals a blank required input.
	ErrMissingField = errors.New("missing_field")

	// ErrEmailInUse signals a signup against an already registered email.
	ErrEmailInUse = errors.New("email_in_use")

	// ErrWeakPassword signals a password that fails the password policy.
	ErrWeakPassword = errors.New("weak_password")

	// ErrVerifyFailed signals an unknown, expired, or mismatched
	// verification token.
	ErrVerifyFailed = errors.New("verify_failed")

	// ErrTokenInvalid signals an unknown or expired password reset token.
	ErrTokenInvalid = errors.New("token_invalid")
)

const (
	// VerificationTokenTTL is how long an email verification link stays valid.
	VerificationTokenTTL = 24 * time.Hour

	// ResetTokenTTL is how long a password reset link stays valid.
	ResetTokenTTL = 2 * time.Hour
)

// AccountService owns the account lifecycle: signup, email verification,
// and password reset. Sign-in and token refresh live in SessionService.
type AccountService struct {
	Store store.Store
	Mail  *MailService
	Role  RolePolicy

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// expired reports whether expiresAt has passed. A token is expired the
// instant now equals expiresAt.
func expired(now, expiresAt time.Time) bool {
	return !now.Before(expiresAt)
}

// Signup registers a new account and returns the created user.
//
// The email is lower-cased before storage so lookups stay case-insensitive.
// The password is hashed with argon2id; the plaintext is never persisted.
// The role comes from the RolePolicy. The account starts unverified.
//
// Returns:
//   - ErrMissingField when email or password is blank
//   - ErrEmailInUse when the email is already registered
func (s *AccountService) Signup(ctx context.Context, email, password, name string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, ErrMissingField
	}
	if err := ValidatePassword(password); err != nil {
		return domain.User{}, err
	}

	// 1. Pre-check for an existing account. The unique index remains the
	// authority; this just gives the common case a friendly answer without
	// burning an insert.
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailInUse
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	// 2. Hash the password before touching the database.
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	// 3. Build the user record.
	now := s.now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         s.Role(email),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 4. Insert; a concurrent signup still surfaces as a unique violation.
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailInUse
		}
		return domain.User{}, err
	}

	log.Info("user signed up", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// SendVerification issues a fresh verification token for the email and
// sends the verification link. To avoid leaking which addresses are
// registered it reports success even when the email is unknown or already
// verified; no mail is sent in those cases.
func (s *AccountService) SendVerification(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrMissingField
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("verification requested for unknown email")
			return nil
		}
		return err
	}
	if user.IsVerified() {
		return nil
	}

	token, err := cryptox.NewOpaqueToken()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	err = s.Store.VerificationTokens().CreateVerificationToken(ctx, domain.VerificationToken{
		Token:     token,
		Email:     email,
		ExpiresAt: now.Add(VerificationTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	return s.Mail.SendVerificationEmail(ctx, email, token)
}

// Verify consumes a verification token and marks the account verified.
//
// The token must exist, must not be expired, and must belong to the given
// email. The token is deleted on success and on expiry; it is single use
// either way.
//
// Returns ErrVerifyFailed for every failure mode so the caller cannot
// distinguish unknown tokens from expired ones.
func (s *AccountService) Verify(ctx context.Context, token, email string) error {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if token == "" || email == "" {
		return ErrVerifyFailed
	}

	// 1. Look the token up; expiry is decided here, not in the store.
	rec, err := s.Store.VerificationTokens().GetVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrVerifyFailed
		}
		return err
	}

	// 2. An expired token is burned on sight.
	now := s.now().UTC()
	if expired(now, rec.ExpiresAt) {
		_ = s.Store.VerificationTokens().DeleteVerificationToken(ctx, token)
		return ErrVerifyFailed
	}

	// 3. The token must match the email it was issued for.
	if rec.Email != email {
		return ErrVerifyFailed
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrVerifyFailed
		}
		return err
	}

	// 4. Stamp the account and consume the token atomically.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetEmailVerified(ctx, user.ID, now); err != nil {
			return err
		}
		return tx.VerificationTokens().DeleteVerificationToken(ctx, token)
	})
	if err != nil {
		return err
	}

	log.Info("email verified", "user_id", user.ID)
	return nil
}

// RequestReset issues a password reset token and emails the reset link.
// Like SendVerification it reports success for unknown emails.
func (s *AccountService) RequestReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ErrMissingField
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := cryptox.NewOpaqueToken()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	err = s.Store.PasswordResetTokens().CreatePasswordResetToken(ctx, domain.PasswordResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(ResetTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	return s.Mail.SendResetEmail(ctx, email, token)
}

// ConfirmReset consumes a reset token and sets a new password.
//
// The new password must pass the password policy. On success the token is
// deleted and every outstanding refresh token for the user is revoked, so
// stolen sessions die with the old password.
//
// Returns:
//   - ErrWeakPassword when the new password fails the policy
//   - ErrTokenInvalid when the token is unknown or expired
func (s *AccountService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	log := slogx.FromContext(ctx)

	if token == "" {
		return ErrTokenInvalid
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	rec, err := s.Store.PasswordResetTokens().GetPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	now := s.now().UTC()
	if expired(now, rec.ExpiresAt) {
		_ = s.Store.PasswordResetTokens().DeletePasswordResetToken(ctx, token)
		return ErrTokenInvalid
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// New password, token consumption, and session revocation land together.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, rec.UserID, hash); err != nil {
			return err
		}
		if err := tx.PasswordResetTokens().DeletePasswordResetToken(ctx, token); err != nil {
			return err
		}
		// Changing the password invalidates every outstanding session.
		return tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, rec.UserID)
	})
	if err != nil {
		return err
	}

	log.Info("password reset completed", "user_id", rec.UserID)
	return nil
}
