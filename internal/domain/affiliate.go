package domain

import "time"

// AffiliateClick records one click-through on a bookmaker affiliate link.
type AffiliateClick struct {
	ID        string
	Bookie    string // bookmaker key, e.g. "bet365"
	Target    string // deep link the visitor was forwarded to
	ClientIP  string
	Referer   string
	CreatedAt time.Time
}

// BookieClickCount is a per-bookmaker aggregate for the admin back-office.
type BookieClickCount struct {
	Bookie string `json:"bookie"`
	Clicks int64  `json:"clicks"`
}

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}
