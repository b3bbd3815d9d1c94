package service

import (
	"context"
	"testing"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/Djalobre/kvotizza/internal/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newAffiliateService(t *testing.T) *AffiliateService {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	return &AffiliateService{
		Store: st,
		Links: map[string]string{
			"mozzart":  "https://mozzartbet.com/?btag=kvotizza",
			"meridian": "https://meridianbet.rs/deeplink/{target}?ref=kvotizza",
		},
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	svc := newAffiliateService(t)

	t.Run("known bookie, case-insensitive", func(t *testing.T) {
		dest, err := svc.Resolve("Mozzart", "")
		require.NoError(t, err)
		require.Equal(t, "https://mozzartbet.com/?btag=kvotizza", dest)
	})

	t.Run("target substitution", func(t *testing.T) {
		dest, err := svc.Resolve("meridian", "arsenal-chelsea")
		require.NoError(t, err)
		require.Equal(t, "https://meridianbet.rs/deeplink/arsenal-chelsea?ref=kvotizza", dest)
	})

	t.Run("unknown bookie", func(t *testing.T) {
		_, err := svc.Resolve("unknown", "")
		require.ErrorIs(t, err, ErrUnknownBookie)
	})
}

func TestTrackAndStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newAffiliateService(t)

	for range 3 {
		require.NoError(t, svc.Track(ctx, "Mozzart", "", "192.0.2.1", ""))
	}
	require.NoError(t, svc.Track(ctx, "meridian", "arsenal-chelsea", "192.0.2.2", "https://kvotizza.rs/odds"))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.BookieClickCount{
		{Bookie: "mozzart", Clicks: 3},
		{Bookie: "meridian", Clicks: 1},
	}, stats)
}
