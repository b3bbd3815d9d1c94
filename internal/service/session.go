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
	"github.com/Djalobre/kvotizza/pkg/jwtx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

var (
	// ErrInvalidCredentials signals an unknown email or a wrong password.
	// Both collapse into one error so sign-in cannot be used to probe for
	// registered addresses.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrEmailNotVerified signals correct credentials on an unverified
	// account. Deliberately distinguishable from ErrInvalidCredentials so
	// the UI can offer to resend the verification email.
	ErrEmailNotVerified = errors.New("email_not_verified")

	// ErrInvalidRefresh signals an unknown, revoked, or expired refresh token.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")
)

// SessionService owns credentials sign-in, token refresh, and sign-out.
type SessionService struct {
	Store  store.Store
	Signer *jwtx.HS256Signer

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SessionService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *SessionService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// EnrichClaims copies the session-enrichment fields from the user record
// into the claim set. Pure so the refresh path can recompute claims from a
// fresh database row and role changes propagate on the next refresh.
func EnrichClaims(c jwtx.Claims, u domain.User) jwtx.Claims {
	c.Role = string(u.Role)
	c.Verified = u.IsVerified()
	c.Email = u.Email
	return c
}

// SignIn authenticates an email/password pair and mints a token pair.
//
// Returns:
//   - ErrInvalidCredentials when the email is unknown or the password wrong
//   - ErrEmailNotVerified when credentials are correct but the email is
//     not yet verified
func (s *SessionService) SignIn(ctx context.Context, email, password string) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	// 1. Look the user up. Unknown email and bad password are the same error.
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	// 2. Check the password.
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	// 3. Password is correct; only now reveal the verification state.
	if !user.IsVerified() {
		return domain.TokenPair{}, ErrEmailNotVerified
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return domain.TokenPair{}, err
	}

	log.Info("user signed in", "user_id", user.ID)
	return pair, nil
}

// Refresh rotates a refresh token and mints a fresh token pair.
//
// The presented token is revoked, a new one is issued, and the access
// token claims are recomputed from the current user record, so role or
// verification changes take effect here.
//
// Returns ErrInvalidRefresh when the token is unknown, revoked, or expired.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	if refreshToken == "" {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	// 1. Look up by fingerprint; the plaintext token is never stored.
	hash := cryptox.FingerprintToken(refreshToken)
	rec, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}

	now := s.now().UTC()
	if rec.Revoked || expired(now, rec.ExpiresAt) {
		return domain.TokenPair{}, ErrInvalidRefresh
	}

	// 2. Recompute claims from the fresh user row.
	user, err := s.Store.Users().GetUserByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefresh
		}
		return domain.TokenPair{}, err
	}

	// 3. Rotate: retire the presented token before issuing its successor.
	if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, hash); err != nil {
		return domain.TokenPair{}, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return domain.TokenPair{}, err
	}

	log.Debug("refresh token rotated", "user_id", user.ID)
	return pair, nil
}

// SignOut revokes the presented refresh token. Unknown tokens are not an
// error; sign-out is idempotent.
func (s *SessionService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(refreshToken))
}

// issuePair mints the access JWT and a new opaque refresh token for user.
func (s *SessionService) issuePair(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	now := s.now().UTC()

	claims := jwtx.NewSessionClaims(user.ID, s.Signer.Issuer(), s.accessTTL(), now)
	claims = EnrichClaims(claims, user)

	accessToken, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refreshToken, err := cryptox.NewOpaqueToken()
	if err != nil {
		return domain.TokenPair{}, err
	}

	err = s.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(refreshToken),
		ExpiresAt: now.Add(s.refreshTTL()),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.accessTTL() / time.Second,
	}, nil
}
