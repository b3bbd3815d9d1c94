package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Djalobre/kvotizza/internal/upstream"
	"github.com/Djalobre/kvotizza/pkg/httpx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// ProxyHandler forwards odds, picks, and tips traffic to the upstream data
// service. Bodies pass through untouched; this layer only contributes
// authentication, rate limiting, and the admin gate.
type ProxyHandler struct {
	Upstream *upstream.Client
}

func (h *ProxyHandler) Odds(w http.ResponseWriter, r *http.Request) {
	h.write(w, r)(h.Upstream.Odds(r.Context(), r.URL.Query()))
}

func (h *ProxyHandler) MatchAnalysis(w http.ResponseWriter, r *http.Request) {
	h.write(w, r)(h.Upstream.MatchAnalysis(r.Context(), chi.URLParam(r, "id")))
}

func (h *ProxyHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	h.write(w, r)(h.Upstream.Leaderboard(r.Context(), r.URL.Query()))
}

func (h *ProxyHandler) DailyTicket(w http.ResponseWriter, r *http.Request) {
	h.write(w, r)(h.Upstream.DailyTicket(r.Context()))
}

func (h *ProxyHandler) TopMatches(w http.ResponseWriter, r *http.Request) {
	h.write(w, r)(h.Upstream.TopMatches(r.Context()))
}

func (h *ProxyHandler) SubmitTip(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "BadRequest")
		return
	}
	h.write(w, r)(h.Upstream.SubmitTip(r.Context(), body))
}

func (h *ProxyHandler) SetDailyTicket(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "BadRequest")
		return
	}
	h.write(w, r)(h.Upstream.SetDailyTicket(r.Context(), body))
}

func (h *ProxyHandler) SetTopMatches(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "BadRequest")
		return
	}
	h.write(w, r)(h.Upstream.SetTopMatches(r.Context(), body))
}

// write returns a closure matching the (json.RawMessage, error) shape of the
// upstream client so every proxy method shares one response path.
func (h *ProxyHandler) write(w http.ResponseWriter, r *http.Request) func(json.RawMessage, error) {
	return func(data json.RawMessage, err error) {
		if err != nil {
			var se *upstream.StatusError
			if errors.As(err, &se) {
				// Pass the upstream's verdict through unchanged.
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(se.StatusCode)
				_, _ = w.Write([]byte(se.Body))
				return
			}
			slogx.FromContext(r.Context()).Error("upstream request failed",
				"path", r.URL.Path, "err", err)
			httpx.WriteError(w, http.StatusBadGateway, "UpstreamUnavailable")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func readBody(r *http.Request) (json.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, errBadJSON
	}
	return json.RawMessage(data), nil
}
