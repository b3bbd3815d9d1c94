package http

import (
	"errors"
	"net/http"

	"github.com/Djalobre/kvotizza/internal/service"
	"github.com/Djalobre/kvotizza/pkg/httpx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// SignupHandler serves POST /api/auth/signup.
type SignupHandler struct {
	Accounts *service.AccountService
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "MissingField")
		return
	}

	user, err := h.Accounts.Signup(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			httpx.WriteError(w, http.StatusBadRequest, "MissingField")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "WeakPassword")
		case errors.Is(err, service.ErrEmailInUse):
			httpx.WriteError(w, http.StatusConflict, "EmailInUse")
		default:
			log.Error("signup failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "ServerError")
		}
		return
	}

	// Verification mail is best-effort; the account exists either way and
	// the user can request another link from the sign-in page.
	if err := h.Accounts.SendVerification(ctx, user.Email); err != nil {
		log.Error("failed to send verification email", "user_id", user.ID, "err", err)
	}

	httpx.WriteJSON(w, http.StatusCreated, OKResponse{OK: true, UserID: user.ID})
}
