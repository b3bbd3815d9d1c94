package service

import (
	"testing"

	"github.com/Djalobre/kvotizza/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestAllowlistRolePolicy(t *testing.T) {
	t.Parallel()

	policy := AllowlistRolePolicy("boss@kvotizza.rs, Second@Kvotizza.RS ,")

	require.Equal(t, domain.RoleAdmin, policy("boss@kvotizza.rs"))
	require.Equal(t, domain.RoleAdmin, policy("BOSS@kvotizza.rs"))
	require.Equal(t, domain.RoleAdmin, policy("second@kvotizza.rs"))
	require.Equal(t, domain.RoleUser, policy("someone@example.com"))
	require.Equal(t, domain.RoleUser, policy(""))

	empty := AllowlistRolePolicy("")
	require.Equal(t, domain.RoleUser, empty("boss@kvotizza.rs"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		for _, ok := range []string{"secret1234", "a1b2c3d4", "lozinka99", "Дуга1Лозинка"} {
			require.NoError(t, ValidatePassword(ok), "password %q", ok)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		for _, weak := range []string{"", "short1", "allletters", "12345678", "!!!!!!!!"} {
			require.ErrorIs(t, ValidatePassword(weak), ErrWeakPassword, "password %q", weak)
		}
	})
}
