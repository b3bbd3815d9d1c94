package httpx

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/Djalobre/kvotizza/pkg/jwtx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// SessionMiddleware reads the session token from the Authorization header or
// the named cookie and, when it verifies, injects the claims into the request
// context. Requests without a valid token pass through anonymous; rejection
// is the job of RequireAuthn / AdminGate so that public and gated routes can
// share the chain.
func SessionMiddleware(v jwtx.Verifier, cookieName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := bearerToken(r)
			if raw == "" && cookieName != "" {
				if c, err := r.Cookie(cookieName); err == nil {
					raw = c.Value
				}
			}
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("session token rejected", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(ctx, claims)))
		})
	}
}

// RequireAuthn rejects anonymous requests with 401.
func RequireAuthn() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ClaimsFromContext(r.Context()); !ok {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminGate guards the administrative section. It is a pure decision over
// (claims, requested path) and never mutates state:
//
//   - no session: 401 for API paths, redirect to the sign-in page with a
//     callbackUrl preserving the original destination otherwise;
//   - session without the admin role: 403 for API paths, redirect home
//     otherwise;
//   - admin session: the request passes through unmodified.
//
// API paths are those under apiPrefix (e.g. "/api/").
func AdminGate(adminRole, apiPrefix, signinURL, homeURL string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isAPI := strings.HasPrefix(r.URL.Path, apiPrefix)

			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				if isAPI {
					WriteError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				callback := url.Values{"callbackUrl": {r.URL.RequestURI()}}
				http.Redirect(w, r, signinURL+"?"+callback.Encode(), http.StatusSeeOther)
				return
			}

			if claims.Role != adminRole {
				if isAPI {
					WriteError(w, http.StatusForbidden, "Forbidden")
					return
				}
				http.Redirect(w, r, homeURL, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}
