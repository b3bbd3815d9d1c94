package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/Djalobre/kvotizza/internal/service"
	"github.com/Djalobre/kvotizza/pkg/httpx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// Cookie names for the browser session. The access JWT rides in
// SessionCookieName so server-rendered pages authenticate without a
// bearer header; the opaque refresh token stays in RefreshCookieName.
const (
	SessionCookieName = "kvotizza_session"
	RefreshCookieName = "kvotizza_refresh"
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	// Secure should be true everywhere except local development.
	Secure bool

	// RefreshTTL bounds the refresh cookie lifetime.
	RefreshTTL time.Duration
}

func (c CookieConfig) set(w http.ResponseWriter, pair domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Secure,
		MaxAge:   int(pair.ExpiresIn),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Secure,
		Expires:  time.Now().Add(c.RefreshTTL),
	})
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	for _, name := range []string{SessionCookieName, RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   c.Secure,
			MaxAge:   -1,
		})
	}
}

// SigninHandler serves POST /api/auth/signin.
type SigninHandler struct {
	Sessions *service.SessionService
	Cookies  CookieConfig
}

func (h *SigninHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "MissingField")
		return
	}

	pair, err := h.Sessions.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotVerified):
			// Distinguished on purpose so the UI can offer to resend the
			// verification email. The password was already checked.
			httpx.WriteError(w, http.StatusUnauthorized, "EmailNotVerified")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "InvalidCredentials")
		default:
			log.Error("sign-in failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "ServerError")
		}
		return
	}

	h.Cookies.set(w, pair)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// RefreshHandler serves POST /api/auth/refresh. The refresh token comes
// from the cookie, with a JSON body fallback for non-browser clients.
type RefreshHandler struct {
	Sessions *service.SessionService
	Cookies  CookieConfig
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := refreshTokenFromRequest(r)
	pair, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			h.Cookies.clear(w)
			httpx.WriteError(w, http.StatusUnauthorized, "InvalidRefreshToken")
			return
		}
		log.Error("token refresh failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	h.Cookies.set(w, pair)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// SignoutHandler serves POST /api/auth/signout. Idempotent; always clears
// the cookies.
type SignoutHandler struct {
	Sessions *service.SessionService
	Cookies  CookieConfig
}

func (h *SignoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.Sessions.SignOut(ctx, refreshTokenFromRequest(r)); err != nil {
		log.Error("sign-out failed", "err", err)
	}

	h.Cookies.clear(w)
	httpx.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}

func refreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(RefreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	var req refreshRequest
	if err := decodeJSON(r, &req); err == nil {
		return req.RefreshToken
	}
	return ""
}
