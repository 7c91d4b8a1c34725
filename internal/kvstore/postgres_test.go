package kvstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/salary-tracker/internal/migrations"
)

// startPostgres поднимает пустую базу без миграций и возвращает DSN.
func startPostgres(t *testing.T) string {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func setupTestPostgres(t *testing.T) string {
	ctx := context.Background()
	dsn := startPostgres(t)

	store, err := NewPostgres(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	path, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(store.DB, path))

	return dsn
}

func TestPostgres_Contract(t *testing.T) {
	dsn := setupTestPostgres(t)

	runContract(t, func(t *testing.T) Store {
		store, err := NewPostgres(context.Background(), dsn)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		require.NoError(t, store.CheckReady(context.Background()))
		_, err = store.DB.Exec(`TRUNCATE kv_entries`)
		require.NoError(t, err)
		return store
	})
}

func TestPostgres_CheckReady(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	store, err := NewPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.Error(t, store.CheckReady(ctx), "schema is not migrated yet")

	path, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(store.DB, path))

	require.NoError(t, store.CheckReady(ctx))
}
