package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Djalobre/kvotizza/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testCookie = "session"

func newTestSigner(t *testing.T) *jwtx.HS256Signer {
	t.Helper()
	signer, err := jwtx.NewHS256Signer([]byte("0123456789abcdef0123456789abcdef"), "test")
	require.NoError(t, err)
	return signer
}

func signedToken(t *testing.T, signer *jwtx.HS256Signer, role string) string {
	t.Helper()
	claims := jwtx.NewSessionClaims("user-1", signer.Issuer(), time.Minute, time.Now().UTC())
	claims.Role = role
	claims.Verified = true
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestSessionMiddleware(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)

	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			w.Header().Set("X-Subject", claims.Subject)
		}
		w.WriteHeader(http.StatusOK)
	}), SessionMiddleware(signer, testCookie))

	t.Run("bearer header populates claims", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, signer, "USER"))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, "user-1", rec.Header().Get("X-Subject"))
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: signedToken(t, signer, "USER")})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, "user-1", rec.Header().Get("X-Subject"))
	})

	t.Run("invalid token stays anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("X-Subject"))
	})
}

func TestRequireAuthn(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}),
		SessionMiddleware(signer, ""),
		RequireAuthn(),
	)

	t.Run("anonymous is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, signer, "USER"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAdminGate(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)

	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}),
		SessionMiddleware(signer, ""),
		AdminGate("ADMIN", "/api/", "/signin", "/"),
	)

	serve := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("api without session is 401", func(t *testing.T) {
		rec := serve("/api/admin/affiliate/stats", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("api with non-admin session is 403", func(t *testing.T) {
		rec := serve("/api/admin/affiliate/stats", signedToken(t, signer, "USER"))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("api with admin session passes", func(t *testing.T) {
		rec := serve("/api/admin/affiliate/stats", signedToken(t, signer, "ADMIN"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("page without session redirects to signin with callback", func(t *testing.T) {
		rec := serve("/admin/picks?tab=daily", "")
		require.Equal(t, http.StatusSeeOther, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "/signin", loc.Path)
		require.Equal(t, "/admin/picks?tab=daily", loc.Query().Get("callbackUrl"))
	})

	t.Run("page with non-admin session redirects home", func(t *testing.T) {
		rec := serve("/admin/picks", signedToken(t, signer, "USER"))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("page with admin session passes", func(t *testing.T) {
		rec := serve("/admin/picks", signedToken(t, signer, "ADMIN"))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
