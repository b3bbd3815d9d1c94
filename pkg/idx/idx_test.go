package idx

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("ids are unique and sort in creation order", func(t *testing.T) {
		ids := make([]string, 0, 50)
		for range 50 {
			ids = append(ids, New().String())
		}

		require.True(t, sort.StringsAreSorted(ids))

		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			_, dup := seen[id]
			require.False(t, dup)
			seen[id] = struct{}{}
		}
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("roundtrip", func(t *testing.T) {
		id := New()
		parsed, err := Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, bad := range []string{"", "   ", "not-a-ulid", "0000"} {
			_, err := Parse(bad)
			require.ErrorIs(t, err, ErrInvalid)
		}
	})
}

func TestTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := NewAt(at)
	require.WithinDuration(t, at, id.Time(), time.Millisecond)

	require.True(t, Zero.Time().IsZero())
}
