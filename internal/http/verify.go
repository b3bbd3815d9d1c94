package http

import (
	"errors"
	"net/http"

	"github.com/Djalobre/kvotizza/internal/service"
	"github.com/Djalobre/kvotizza/pkg/httpx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// VerifyHandler serves GET /verify, the link target from the verification
// email. It always answers with a redirect back to the sign-in page; the
// outcome travels in the query string.
type VerifyHandler struct {
	Accounts *service.AccountService

	// SigninURL is the sign-in page path, e.g. "/signin".
	SigninURL string
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.URL.Query().Get("token")
	email := r.URL.Query().Get("email")

	if err := h.Accounts.Verify(ctx, token, email); err != nil {
		if !errors.Is(err, service.ErrVerifyFailed) {
			log.Error("email verification failed", "err", err)
		}
		http.Redirect(w, r, h.SigninURL+"?error=VerifyFailed", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.SigninURL+"?verify=ok", http.StatusSeeOther)
}

// SendVerifyHandler serves POST /api/auth/send-verify. The response is
// {ok:true} whether or not the email is registered, so the endpoint cannot
// be used to probe for accounts.
type SendVerifyHandler struct {
	Accounts *service.AccountService
}

func (h *SendVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "MissingField")
		return
	}

	if err := h.Accounts.SendVerification(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrMissingField) {
			httpx.WriteError(w, http.StatusBadRequest, "MissingField")
			return
		}
		// Still report success; a delivery hiccup must not reveal whether
		// the address exists.
		log.Error("send verification failed", "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}
