package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/Djalobre/kvotizza/internal/store"
	"github.com/Djalobre/kvotizza/pkg/idx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// ErrUnknownBookie signals a click-through for a bookmaker without a
// configured affiliate link.
var ErrUnknownBookie = errors.New("unknown_bookie")

// AffiliateService resolves bookmaker click-throughs to affiliate URLs and
// records each click for the stats endpoint.
type AffiliateService struct {
	Store store.Store

	// Links maps lower-case bookmaker keys to affiliate URL templates. A
	// template may contain the literal "{target}" which is replaced with
	// the deep-link target passed on the click.
	Links map[string]string

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *AffiliateService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Resolve returns the affiliate URL for a bookmaker, with the optional
// deep-link target substituted in. Lookup is case-insensitive.
func (s *AffiliateService) Resolve(bookie, target string) (string, error) {
	tmpl, ok := s.Links[strings.ToLower(strings.TrimSpace(bookie))]
	if !ok {
		return "", ErrUnknownBookie
	}
	return strings.ReplaceAll(tmpl, "{target}", target), nil
}

// Track records a click-through. Recording is best-effort from the
// handler's point of view; the redirect must not fail because of it.
func (s *AffiliateService) Track(ctx context.Context, bookie, target, clientIP, referer string) error {
	log := slogx.FromContext(ctx)

	click := domain.AffiliateClick{
		ID:        idx.New().String(),
		Bookie:    strings.ToLower(strings.TrimSpace(bookie)),
		Target:    target,
		ClientIP:  clientIP,
		Referer:   referer,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Store.AffiliateClicks().CreateAffiliateClick(ctx, click); err != nil {
		log.Error("failed to record affiliate click", "bookie", click.Bookie, "error", err)
		return err
	}
	return nil
}

// Stats aggregates recorded clicks per bookmaker, most clicked first.
func (s *AffiliateService) Stats(ctx context.Context) ([]domain.BookieClickCount, error) {
	return s.Store.AffiliateClicks().CountClicksByBookie(ctx)
}
