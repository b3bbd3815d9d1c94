// Package http wires the Kvotizza web API: auth and account lifecycle,
// the contact form, affiliate redirects, and the thin proxy in front of
// the upstream data service.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/Djalobre/kvotizza/internal/service"
	"github.com/Djalobre/kvotizza/internal/store"
	"github.com/Djalobre/kvotizza/internal/upstream"
	"github.com/Djalobre/kvotizza/pkg/httpx"
	"github.com/Djalobre/kvotizza/pkg/jwtx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// Config carries the router's environment-dependent knobs.
type Config struct {
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	// CookieSecure marks session cookies Secure; false only in local dev.
	CookieSecure bool

	// RefreshTTL bounds the refresh cookie lifetime; zero means the
	// jwtx default.
	RefreshTTL time.Duration

	// SigninURL and HomeURL are the frontend paths the admin gate and the
	// verification flow redirect to.
	SigninURL string
	HomeURL   string

	Version string
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Accounts   *service.AccountService
	Sessions   *service.SessionService
	Mail       *service.MailService
	Affiliates *service.AffiliateService
	Upstream   *upstream.Client
	Store      store.Store
	Verifier   jwtx.Verifier
	Logger     *slog.Logger
	Config     Config

	startTime time.Time
}

// Handler assembles the full route table with its middleware chains.
func (rt *Router) Handler() http.Handler {
	rt.startTime = time.Now()

	cfg := rt.Config
	if cfg.SigninURL == "" {
		cfg.SigninURL = "/signin"
	}
	if cfg.HomeURL == "" {
		cfg.HomeURL = "/"
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	cookies := CookieConfig{Secure: cfg.CookieSecure, RefreshTTL: cfg.RefreshTTL}
	adminGate := httpx.AdminGate(string(domain.RoleAdmin), "/api/", cfg.SigninURL, cfg.HomeURL)

	r := chi.NewRouter()
	r.Use(slogx.HTTPMiddleware(rt.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httpx.SessionMiddleware(rt.Verifier, SessionCookieName))

	// Health probes
	r.Get("/livez", LivezHandler(rt.startTime, cfg.Version))
	r.Get("/readyz", ReadyzHandler(rt.startTime, cfg.Version, rt.Store))

	// Account lifecycle. Everything that takes credentials or triggers
	// outbound mail sits behind the strict per-IP limit.
	r.Method(http.MethodPost, "/api/auth/signup",
		httpx.Chain(&SignupHandler{Accounts: rt.Accounts},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Method(http.MethodPost, "/api/auth/send-verify",
		httpx.Chain(&SendVerifyHandler{Accounts: rt.Accounts},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Method(http.MethodPost, "/api/auth/request-reset",
		httpx.Chain(&RequestResetHandler{Accounts: rt.Accounts},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Method(http.MethodPost, "/api/auth/reset",
		httpx.Chain(&ConfirmResetHandler{Accounts: rt.Accounts},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Method(http.MethodPost, "/api/auth/signin",
		httpx.Chain(&SigninHandler{Sessions: rt.Sessions, Cookies: cookies},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Method(http.MethodPost, "/api/auth/refresh",
		httpx.Chain(&RefreshHandler{Sessions: rt.Sessions, Cookies: cookies},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		))
	r.Method(http.MethodPost, "/api/auth/signout",
		httpx.Chain(&SignoutHandler{Sessions: rt.Sessions, Cookies: cookies},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		))

	// Verification link target; lands in the browser, not the API client.
	r.Method(http.MethodGet, "/verify",
		httpx.Chain(&VerifyHandler{Accounts: rt.Accounts, SigninURL: cfg.SigninURL},
			httpx.RateLimitByIP(httpx.LenientLimit),
		))

	// Contact form
	r.Method(http.MethodPost, "/api/contact",
		httpx.Chain(&ContactHandler{Mail: rt.Mail},
			httpx.RateLimitByIP(httpx.StrictLimit),
		))

	// Affiliate click-through
	r.Method(http.MethodGet, "/go/{bookie}",
		httpx.Chain(&AffiliateRedirectHandler{Affiliates: rt.Affiliates},
			httpx.RateLimitByIP(httpx.LenientLimit),
		))

	// Public reads proxied to the upstream data service
	proxy := &ProxyHandler{Upstream: rt.Upstream}
	r.Method(http.MethodGet, "/api/odds",
		httpx.Chain(http.HandlerFunc(proxy.Odds), httpx.RateLimitByIP(httpx.PublicLimit)))
	r.Method(http.MethodGet, "/api/matches/{id}/analysis",
		httpx.Chain(http.HandlerFunc(proxy.MatchAnalysis), httpx.RateLimitByIP(httpx.PublicLimit)))
	r.Method(http.MethodGet, "/api/leaderboard",
		httpx.Chain(http.HandlerFunc(proxy.Leaderboard), httpx.RateLimitByIP(httpx.PublicLimit)))
	r.Method(http.MethodGet, "/api/picks/daily",
		httpx.Chain(http.HandlerFunc(proxy.DailyTicket), httpx.RateLimitByIP(httpx.PublicLimit)))
	r.Method(http.MethodGet, "/api/picks/top",
		httpx.Chain(http.HandlerFunc(proxy.TopMatches), httpx.RateLimitByIP(httpx.PublicLimit)))

	// Tip submission requires a signed-in user
	r.Method(http.MethodPost, "/api/tips",
		httpx.Chain(http.HandlerFunc(proxy.SubmitTip),
			httpx.RequireAuthn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))

	// Admin API
	r.Method(http.MethodPost, "/api/admin/picks/daily",
		httpx.Chain(http.HandlerFunc(proxy.SetDailyTicket),
			adminGate,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
	r.Method(http.MethodPost, "/api/admin/picks/top",
		httpx.Chain(http.HandlerFunc(proxy.SetTopMatches),
			adminGate,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))
	r.Method(http.MethodGet, "/api/admin/affiliate/stats",
		httpx.Chain(&AffiliateStatsHandler{Affiliates: rt.Affiliates},
			adminGate,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		))

	// Admin pages live in the frontend; the edge forwards /admin requests
	// here first so the gate's redirect semantics apply before any page
	// renders. A gated request that reaches the handler is authorized.
	adminProbe := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Method(http.MethodGet, "/admin", httpx.Chain(adminProbe, adminGate))
	r.Method(http.MethodGet, "/admin/*", httpx.Chain(adminProbe, adminGate))

	return r
}
