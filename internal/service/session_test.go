package service

import (
	"context"
	"testing"
	"time"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/Djalobre/kvotizza/internal/email"
	"github.com/Djalobre/kvotizza/internal/store"
	"github.com/Djalobre/kvotizza/internal/store/drivers/sqlite"
	"github.com/Djalobre/kvotizza/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	sessions *SessionService
	accounts *AccountService
	store    store.Store
	signer   *jwtx.HS256Signer
	now      time.Time
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewHS256Signer([]byte("0123456789abcdef0123456789abcdef"), "kvotizza")
	require.NoError(t, err)

	f := &sessionFixture{
		store:  st,
		signer: signer,
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.sessions = &SessionService{
		Store:  st,
		Signer: signer,
		Now:    func() time.Time { return f.now },
	}
	f.accounts = &AccountService{
		Store: st,
		Mail: &MailService{
			Sender:  email.NewMemorySender(),
			From:    "noreply@kvotizza.rs",
			BaseURL: "http://localhost:3000",
		},
		Role: AllowlistRolePolicy(""),
		Now:  func() time.Time { return f.now },
	}
	return f
}

// signupVerified registers an account and marks it verified.
func (f *sessionFixture) signupVerified(t *testing.T, ctx context.Context, emailAddr string) domain.User {
	t.Helper()

	user, err := f.accounts.Signup(ctx, emailAddr, "secret1234", "")
	require.NoError(t, err)
	require.NoError(t, f.store.Users().SetEmailVerified(ctx, user.ID, f.now))

	user, err = f.store.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	return user
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown email and wrong password are the same error", func(t *testing.T) {
		f := newSessionFixture(t)
		f.signupVerified(t, ctx, "alice@example.com")

		_, err := f.sessions.SignIn(ctx, "ghost@example.com", "secret1234")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = f.sessions.SignIn(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing credentials", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.sessions.SignIn(ctx, "", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unverified email is distinguished", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.accounts.Signup(ctx, "alice@example.com", "secret1234", "")
		require.NoError(t, err)

		_, err = f.sessions.SignIn(ctx, "alice@example.com", "secret1234")
		require.ErrorIs(t, err, ErrEmailNotVerified)

		// But a wrong password on the same account must not leak the
		// verification state.
		_, err = f.sessions.SignIn(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("successful sign-in mints an enriched pair", func(t *testing.T) {
		f := newSessionFixture(t)
		user := f.signupVerified(t, ctx, "alice@example.com")

		pair, err := f.sessions.SignIn(ctx, "alice@example.com", "secret1234")
		require.NoError(t, err)
		require.Equal(t, "Bearer", pair.TokenType)
		require.NotEmpty(t, pair.RefreshToken)

		claims, err := f.signer.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, string(domain.RoleUser), claims.Role)
		require.True(t, claims.Verified)
		require.Equal(t, "alice@example.com", claims.Email)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rotation retires the presented token", func(t *testing.T) {
		f := newSessionFixture(t)
		f.signupVerified(t, ctx, "alice@example.com")

		pair, err := f.sessions.SignIn(ctx, "alice@example.com", "secret1234")
		require.NoError(t, err)

		next, err := f.sessions.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		// The old token is spent.
		_, err = f.sessions.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)

		// The new one works.
		_, err = f.sessions.Refresh(ctx, next.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("claims are recomputed from the fresh user row", func(t *testing.T) {
		f := newSessionFixture(t)

		user, err := f.accounts.Signup(ctx, "alice@example.com", "secret1234", "")
		require.NoError(t, err)

		// Mint a pair while the account is still unverified.
		pair, err := f.sessions.issuePair(ctx, user)
		require.NoError(t, err)

		claims, err := f.signer.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.False(t, claims.Verified)

		// Verification lands between issuance and refresh.
		require.NoError(t, f.store.Users().SetEmailVerified(ctx, user.ID, f.now))

		next, err := f.sessions.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err = f.signer.Verify(next.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.True(t, claims.Verified)
		require.Equal(t, user.Email, claims.Email)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		f := newSessionFixture(t)
		f.signupVerified(t, ctx, "alice@example.com")

		pair, err := f.sessions.SignIn(ctx, "alice@example.com", "secret1234")
		require.NoError(t, err)

		f.now = f.now.Add(jwtx.DefaultRefreshTokenTTL)
		_, err = f.sessions.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.sessions.Refresh(ctx, "never-issued")
		require.ErrorIs(t, err, ErrInvalidRefresh)

		_, err = f.sessions.Refresh(ctx, "")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestSignOut(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("revokes the refresh token", func(t *testing.T) {
		f := newSessionFixture(t)
		f.signupVerified(t, ctx, "alice@example.com")

		pair, err := f.sessions.SignIn(ctx, "alice@example.com", "secret1234")
		require.NoError(t, err)

		require.NoError(t, f.sessions.SignOut(ctx, pair.RefreshToken))

		_, err = f.sessions.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("idempotent on unknown tokens", func(t *testing.T) {
		f := newSessionFixture(t)

		require.NoError(t, f.sessions.SignOut(ctx, "never-issued"))
		require.NoError(t, f.sessions.SignOut(ctx, ""))
	})
}

func TestEnrichClaims(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	claims := jwtx.NewSessionClaims("user-1", "kvotizza", time.Minute, at)

	enriched := EnrichClaims(claims, domain.User{
		Email:         "boss@kvotizza.rs",
		Role:          domain.RoleAdmin,
		EmailVerified: &at,
	})

	require.Equal(t, "ADMIN", enriched.Role)
	require.True(t, enriched.Verified)
	require.Equal(t, "boss@kvotizza.rs", enriched.Email)

	// The original claim set is untouched.
	require.Empty(t, claims.Role)
	require.False(t, claims.Verified)
}
