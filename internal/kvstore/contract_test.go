package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract проверяет поведение, одинаковое для всех реализаций Store.
func runContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)

		val, found, err := s.Get(context.Background(), "users")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, val)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "tax_rates", `{"tax":10,"retirement":10,"insurance":5}`))

		val, found, err := s.Get(ctx, "tax_rates")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"tax":10,"retirement":10,"insurance":5}`, val)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "theme_preference", "light"))
		require.NoError(t, s.Set(ctx, "theme_preference", "dark"))

		val, found, err := s.Get(ctx, "theme_preference")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "dark", val)
	})

	t.Run("empty value is present", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "current_user", ""))

		val, found, err := s.Get(ctx, "current_user")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, val)
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "current_user", `{"id":"1"}`))
		require.NoError(t, s.Remove(ctx, "current_user"))

		_, found, err := s.Get(ctx, "current_user")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("remove missing key", func(t *testing.T) {
		s := newStore(t)

		assert.NoError(t, s.Remove(context.Background(), "never_set"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "employees_1", "[]"))
		require.NoError(t, s.Set(ctx, "employees_2", `[{"id":"e"}]`))
		require.NoError(t, s.Remove(ctx, "employees_1"))

		val, found, err := s.Get(ctx, "employees_2")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":"e"}]`, val)
	})
}
