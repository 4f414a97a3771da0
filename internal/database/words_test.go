package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestStore(t *testing.T) *WordStore {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("words"),
		postgres.WithUsername("scribble"),
		postgres.WithPassword("scribble"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, Migrate(connString))
	// a second run has nothing left to apply
	require.NoError(t, Migrate(connString))

	store, err := NewWordStore(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestWordStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		_, err := store.RandomWords(ctx, 3)
		assert.ErrorIs(t, err, ErrNoWords)

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("import skips blanks and duplicates", func(t *testing.T) {
		inserted, err := store.ImportWords(ctx, []string{"pizza", " guitar ", "", "Pizza", "castle", "pizza"})
		require.NoError(t, err)
		assert.Equal(t, 3, inserted)

		inserted, err = store.ImportWords(ctx, []string{"GUITAR", "rocket"})
		require.NoError(t, err)
		assert.Equal(t, 1, inserted)

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		inserted, err = store.ImportWords(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, inserted)
	})

	t.Run("random words", func(t *testing.T) {
		words, err := store.RandomWords(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, words, 3)
		for _, w := range words {
			assert.Contains(t, []string{"pizza", "guitar", "castle", "rocket"}, w)
		}

		words, err = store.RandomWords(ctx, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"pizza", "guitar", "castle", "rocket"}, words)

		words, err = store.RandomWords(ctx, 0)
		assert.NoError(t, err)
		assert.Empty(t, words)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.RandomWords(cancelled, 3)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
