package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/Djalobre/kvotizza/internal/email"
)

// MailService composes and sends the transactional emails the auth flows
// need. The actual transport lives behind email.Sender.
type MailService struct {
	Sender email.Sender

	// From is the envelope sender for all outgoing mail.
	From string

	// BaseURL is the public origin used to build links, e.g. "https://kvotizza.rs".
	BaseURL string

	// ContactInbox receives contact form submissions.
	ContactInbox string
}

// SendVerificationEmail emails a verification link for the given address.
func (s *MailService) SendVerificationEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify?token=%s&email=%s",
		s.BaseURL, url.QueryEscape(token), url.QueryEscape(to))

	body := fmt.Sprintf(
		"Zdravo,\n\n"+
			"Potvrdite svoju email adresu klikom na link ispod:\n\n%s\n\n"+
			"Link vazi 24 sata. Ako niste otvorili nalog na Kvotizzi, ignorisite ovu poruku.\n",
		link)

	return s.Sender.Send(ctx, s.From, to, "Potvrdite email adresu", body)
}

// SendResetEmail emails a password reset link.
func (s *MailService) SendResetEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset?token=%s", s.BaseURL, url.QueryEscape(token))

	body := fmt.Sprintf(
		"Zdravo,\n\n"+
			"Zatrazili ste promenu lozinke. Kliknite na link ispod da postavite novu:\n\n%s\n\n"+
			"Link vazi 2 sata. Ako niste vi zatrazili promenu, ignorisite ovu poruku.\n",
		link)

	return s.Sender.Send(ctx, s.From, to, "Promena lozinke", body)
}

// SendContactMessage forwards a contact form submission to the contact inbox.
func (s *MailService) SendContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	body := fmt.Sprintf("Ime: %s\nEmail: %s\n\n%s\n", msg.Name, msg.Email, msg.Message)
	subject := fmt.Sprintf("Kontakt forma: %s", msg.Name)
	return s.Sender.Send(ctx, s.From, s.ContactInbox, subject, body)
}
