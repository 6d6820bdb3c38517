package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract checks the versioned-write rules every Store must follow.
// User ids are random so it can run against a shared database.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	newCart := func() Cart {
		c := emptyCart("u_" + uuid.NewString())
		c.CreatedAt = now
		c.UpdatedAt = now
		return c
	}

	t.Run("missing cart", func(t *testing.T) {
		_, found, err := s.Get(ctx, "u_"+uuid.NewString())
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("create only once", func(t *testing.T) {
		c := newCart()
		c.Version = 1
		c.Items = []LineItem{{ProductID: "A", Name: "Headphones", Price: 100, Quantity: 2}}
		require.NoError(t, s.Save(ctx, c, 0))

		dup := c
		dup.Items = []LineItem{{ProductID: "B", Quantity: 9}}
		require.ErrorIs(t, s.Save(ctx, dup, 0), ErrConflict)

		got, found, err := s.Get(ctx, c.UserID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(1), got.Version)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "A", got.Items[0].ProductID)
		assert.Equal(t, 2, got.Items[0].Quantity)
	})

	t.Run("stale version loses", func(t *testing.T) {
		c := newCart()
		c.Version = 1
		require.NoError(t, s.Save(ctx, c, 0))

		first := c
		first.Version = 2
		first.Items = []LineItem{{ProductID: "A", Quantity: 1}}
		require.NoError(t, s.Save(ctx, first, 1))

		stale := c
		stale.Version = 2
		stale.Items = []LineItem{{ProductID: "B", Quantity: 1}}
		require.ErrorIs(t, s.Save(ctx, stale, 1), ErrConflict)

		got, _, err := s.Get(ctx, c.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "A", got.Items[0].ProductID)
	})

	t.Run("update of missing cart", func(t *testing.T) {
		c := newCart()
		c.Version = 4
		require.ErrorIs(t, s.Save(ctx, c, 3), ErrConflict)

		_, found, err := s.Get(ctx, c.UserID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("empty items round trip", func(t *testing.T) {
		c := newCart()
		c.Version = 1
		require.NoError(t, s.Save(ctx, c, 0))

		got, _, err := s.Get(ctx, c.UserID)
		require.NoError(t, err)
		assert.NotNil(t, got.Items)
		assert.Empty(t, got.Items)
	})

	t.Run("service retries against real conflicts", func(t *testing.T) {
		userID := "u_" + uuid.NewString()
		rival := &Service{Store: s, Catalog: testCatalog()}
		_, err := rival.Add(ctx, userID, "A", 1)
		require.NoError(t, err)

		rs := &racingStore{Store: s, races: 1}
		rs.other = func() {
			_, err := rival.Add(ctx, userID, "B", 1)
			require.NoError(t, err)
		}
		svc := &Service{Store: rs, Catalog: testCatalog()}

		c, err := svc.Add(ctx, userID, "A", 2)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"A": 3, "B": 1}, quantities(c))
		assert.Equal(t, int64(3), c.Version)
	})
}
