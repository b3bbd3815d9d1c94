package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Djalobre/kvotizza/internal/service"
	"github.com/Djalobre/kvotizza/pkg/httpx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// AffiliateRedirectHandler serves GET /go/{bookie}. It records the click
// and bounces the visitor to the bookmaker's affiliate URL.
type AffiliateRedirectHandler struct {
	Affiliates *service.AffiliateService
}

func (h *AffiliateRedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	bookie := chi.URLParam(r, "bookie")
	target := r.URL.Query().Get("target")

	dest, err := h.Affiliates.Resolve(bookie, target)
	if err != nil {
		if errors.Is(err, service.ErrUnknownBookie) {
			httpx.WriteError(w, http.StatusNotFound, "UnknownBookie")
			return
		}
		log.Error("affiliate resolve failed", "bookie", bookie, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	// Tracking must never block the redirect.
	if err := h.Affiliates.Track(ctx, bookie, target, httpx.IPKeyExtractor(r), r.Referer()); err != nil {
		log.Warn("affiliate click not recorded", "bookie", bookie, "err", err)
	}

	http.Redirect(w, r, dest, http.StatusFound)
}

// AffiliateStatsHandler serves GET /api/admin/affiliate/stats.
type AffiliateStatsHandler struct {
	Affiliates *service.AffiliateService
}

func (h *AffiliateStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.Affiliates.Stats(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("affiliate stats failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stats)
}
