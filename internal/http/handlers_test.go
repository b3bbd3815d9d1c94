package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/Djalobre/kvotizza/internal/email"
	"github.com/Djalobre/kvotizza/internal/service"
	"github.com/Djalobre/kvotizza/internal/store"
	"github.com/Djalobre/kvotizza/internal/store/drivers/sqlite"
	"github.com/Djalobre/kvotizza/internal/upstream"
	"github.com/Djalobre/kvotizza/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	handler http.Handler
	store   store.Store
	sender  *email.MemorySender
	signer  *jwtx.HS256Signer
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewHS256Signer([]byte("0123456789abcdef0123456789abcdef"), "kvotizza")
	require.NoError(t, err)

	sender := email.NewMemorySender()
	mail := &service.MailService{
		Sender:       sender,
		From:         "noreply@kvotizza.rs",
		BaseURL:      "http://localhost:3000",
		ContactInbox: "info@kvotizza.rs",
	}

	// Stand-in for the external data service.
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(upstreamSrv.Close)

	router := &Router{
		Accounts: &service.AccountService{
			Store: st,
			Mail:  mail,
			Role:  service.AllowlistRolePolicy("boss@kvotizza.rs"),
		},
		Sessions: &service.SessionService{Store: st, Signer: signer},
		Mail:     mail,
		Affiliates: &service.AffiliateService{
			Store: st,
			Links: map[string]string{"mozzart": "https://mozzartbet.com/?btag=kvotizza"},
		},
		Upstream: upstream.NewClient(upstreamSrv.URL),
		Store:    st,
		Verifier: signer,
		Logger:   slog.New(slog.DiscardHandler),
	}

	return &apiFixture{
		handler: router.Handler(),
		store:   st,
		sender:  sender,
		signer:  signer,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, body string, mod func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if mod != nil {
		mod(req)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// mailLinkParam extracts a query parameter from the link in the most
// recent captured email.
func mailLinkParam(t *testing.T, sender *email.MemorySender, param string) string {
	t.Helper()

	emails := sender.Emails()
	require.NotEmpty(t, emails)
	body := emails[len(emails)-1].Body

	start := strings.Index(body, "http://")
	require.GreaterOrEqual(t, start, 0)
	link := body[start:]
	if end := strings.IndexAny(link, " \n"); end >= 0 {
		link = link[:end]
	}

	u, err := url.Parse(link)
	require.NoError(t, err)
	value := u.Query().Get(param)
	require.NotEmpty(t, value)
	return value
}

func cookieValue(t *testing.T, rec *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestAccountLifecycle(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	// Signup
	rec := f.do(t, http.MethodPost, "/api/auth/signup",
		`{"email":"alice@example.com","password":"secret1234","name":"Alice"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok":true`)

	// The verification token lands in the mail with a 24h expiry.
	token := mailLinkParam(t, f.sender, "token")
	rec2, err := f.store.VerificationTokens().GetVerificationToken(context.Background(), token)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(service.VerificationTokenTTL), rec2.ExpiresAt, time.Minute)

	// Signing in before verification is rejected with the distinguished error.
	rec = f.do(t, http.MethodPost, "/api/auth/signin",
		`{"email":"alice@example.com","password":"secret1234"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"EmailNotVerified"}`, rec.Body.String())

	// Verification link redirects back to the sign-in page.
	rec = f.do(t, http.MethodGet, "/verify?token="+url.QueryEscape(token)+"&email=alice@example.com", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/signin?verify=ok", rec.Header().Get("Location"))

	// Sign-in now succeeds and sets the session cookies.
	rec = f.do(t, http.MethodPost, "/api/auth/signin",
		`{"email":"alice@example.com","password":"secret1234"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	access := cookieValue(t, rec, SessionCookieName)
	refresh := cookieValue(t, rec, RefreshCookieName)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := f.signer.Verify(access)
	require.NoError(t, err)
	require.Equal(t, string(domain.RoleUser), claims.Role)
	require.True(t, claims.Verified)

	// Refresh rotates the pair via the cookie.
	rec = f.do(t, http.MethodPost, "/api/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: refresh})
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := cookieValue(t, rec, RefreshCookieName)
	require.NotEmpty(t, rotated)
	require.NotEqual(t, refresh, rotated)

	// Sign-out revokes and clears.
	rec = f.do(t, http.MethodPost, "/api/auth/signout", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: rotated})
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: rotated})
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/signup",
		`{"email":"alice@example.com","password":"secret1234"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("duplicate email is 409", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/signup",
			`{"email":"alice@example.com","password":"other5678"}`, nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.JSONEq(t, `{"error":"EmailInUse"}`, rec.Body.String())
	})

	t.Run("missing fields are 400", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/signup", `{"email":"x@example.com"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"MissingField"}`, rec.Body.String())
	})

	t.Run("weak password is 400", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/signup",
			`{"email":"y@example.com","password":"weak"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"WeakPassword"}`, rec.Body.String())
	})
}

func TestVerifyFailureRedirect(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/verify?token=bogus&email=alice@example.com", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/signin?error=VerifyFailed", rec.Header().Get("Location"))
}

func TestEnumerationSafeEndpoints(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	for _, path := range []string{"/api/auth/send-verify", "/api/auth/request-reset"} {
		rec := f.do(t, http.MethodPost, path, `{"email":"ghost@example.com"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.JSONEq(t, `{"ok":true}`, rec.Body.String(), path)
	}
}

func TestAdminGateOnAPI(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	mint := func(role string) string {
		claims := jwtx.NewSessionClaims("user-1", "kvotizza", time.Minute, time.Now().UTC())
		claims.Role = role
		claims.Verified = true
		token, err := f.signer.Sign(claims)
		require.NoError(t, err)
		return token
	}

	t.Run("anonymous is 401", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/admin/affiliate/stats", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-admin is 403", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/admin/affiliate/stats", "", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+mint("USER"))
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/admin/affiliate/stats", "", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+mint("ADMIN"))
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin page redirects anonymous to signin", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/admin/picks", "", nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "/signin", loc.Path)
		require.Equal(t, "/admin/picks", loc.Query().Get("callbackUrl"))
	})
}

func TestAllowlistedSignupGetsAdminRole(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/signup",
		`{"email":"boss@kvotizza.rs","password":"secret1234"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	token := mailLinkParam(t, f.sender, "token")
	rec = f.do(t, http.MethodGet, "/verify?token="+url.QueryEscape(token)+"&email=boss@kvotizza.rs", "", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/signin",
		`{"email":"boss@kvotizza.rs","password":"secret1234"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	claims, err := f.signer.Verify(cookieValue(t, rec, SessionCookieName))
	require.NoError(t, err)
	require.Equal(t, string(domain.RoleAdmin), claims.Role)
}

func TestContactForm(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/contact",
		`{"name":"Pera","email":"pera@example.com","message":"Pozdrav!"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	emails := f.sender.Emails()
	require.Len(t, emails, 1)
	require.Equal(t, "info@kvotizza.rs", emails[0].To)
	require.Contains(t, emails[0].Body, "Pozdrav!")

	rec = f.do(t, http.MethodPost, "/api/contact", `{"name":"Pera"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAffiliateRedirect(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/go/mozzart", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://mozzartbet.com/?btag=kvotizza", rec.Header().Get("Location"))

	counts, err := f.store.AffiliateClicks().CountClicksByBookie(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 1)
	require.Equal(t, "mozzart", counts[0].Bookie)

	rec = f.do(t, http.MethodGet, "/go/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyRoutes(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	t.Run("public read passes through", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/odds?sport=fudbal", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("tips require authentication", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/tips", `{"match_id":"1"}`, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		claims := jwtx.NewSessionClaims("user-1", "kvotizza", time.Minute, time.Now().UTC())
		claims.Role = "USER"
		token, err := f.signer.Sign(claims)
		require.NoError(t, err)

		rec = f.do(t, http.MethodPost, "/api/tips", `{"match_id":"1"}`, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealthProbes(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = f.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
