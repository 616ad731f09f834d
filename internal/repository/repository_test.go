package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/deppfellow/pickboard/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// openTestPool connects to PG_DSN, resets the public schema and applies the
// embedded migrations. Tests are skipped when PG_DSN is unset.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set; skipping Postgres repository tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	_, err = conn.Conn().PgConn().Exec(ctx, `
		DROP SCHEMA IF EXISTS public CASCADE;
		CREATE SCHEMA public;
	`).ReadAll()
	require.NoError(t, err)

	logger := zerolog.Nop()
	_, err = database.MigrateConn(ctx, &logger, conn.Conn())
	require.NoError(t, err)

	return pool
}

func seedProfiles(t *testing.T, pool *pgxpool.Pool, ids ...string) {
	t.Helper()
	profiles := NewProfileRepository(pool)
	for _, id := range ids {
		_, created, err := profiles.Ensure(context.Background(), id)
		require.NoError(t, err)
		require.True(t, created)
	}
}

func rating(t *testing.T, pool *pgxpool.Pool, userID string) int {
	t.Helper()
	p, err := NewProfileRepository(pool).GetByID(context.Background(), userID)
	require.NoError(t, err)
	return p.Rating
}
