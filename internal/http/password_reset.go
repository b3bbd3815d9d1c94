package http

import (
	"errors"
	"net/http"

	"github.com/Djalobre/kvotizza/internal/service"
	"github.com/Djalobre/kvotizza/pkg/httpx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// RequestResetHandler serves POST /api/auth/request-reset. Like
// send-verify, the response never reveals whether the email is registered.
type RequestResetHandler struct {
	Accounts *service.AccountService
}

func (h *RequestResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "MissingField")
		return
	}

	if err := h.Accounts.RequestReset(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrMissingField) {
			httpx.WriteError(w, http.StatusBadRequest, "MissingField")
			return
		}
		log.Error("password reset request failed", "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}

// ConfirmResetHandler serves POST /api/auth/reset.
type ConfirmResetHandler struct {
	Accounts *service.AccountService
}

func (h *ConfirmResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "MissingField")
		return
	}

	if err := h.Accounts.ConfirmReset(ctx, req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "WeakPassword")
		case errors.Is(err, service.ErrTokenInvalid):
			httpx.WriteError(w, http.StatusBadRequest, "TokenInvalid")
		default:
			log.Error("password reset failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "ServerError")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}
