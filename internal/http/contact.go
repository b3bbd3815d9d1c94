package http

import (
	"net/http"
	"strings"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/Djalobre/kvotizza/internal/service"
	"github.com/Djalobre/kvotizza/pkg/httpx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// ContactHandler serves POST /api/contact. Strictly rate limited per IP at
// the router; spam past the limiter still only reaches the contact inbox.
type ContactHandler struct {
	Mail *service.MailService
}

func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var msg domain.ContactMessage
	if err := decodeJSON(r, &msg); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "MissingField")
		return
	}

	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		httpx.WriteError(w, http.StatusBadRequest, "MissingField")
		return
	}

	if err := h.Mail.SendContactMessage(ctx, msg); err != nil {
		log.Error("contact message delivery failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}
