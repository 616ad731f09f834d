package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/pickboard/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

const versionTable = "schema_version"

// Migrate applies every embedded migration that has not run yet and
// returns the resulting schema version.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) (int32, error) {
	conn, err := pgx.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return 0, fmt.Errorf("connecting for migrations: %w", err)
	}
	defer conn.Close(ctx)

	return MigrateConn(ctx, logger, conn)
}

// MigrateConn applies the embedded migrations over an open connection.
func MigrateConn(ctx context.Context, logger *zerolog.Logger, conn *pgx.Conn) (int32, error) {
	m, err := tern.NewMigrator(ctx, conn, versionTable)
	if err != nil {
		return 0, fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("retrieving database migrations subtree: %w", err)
	}
	if err := m.LoadMigrations(subtree); err != nil {
		return 0, fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("retrieving current database migration version: %w", err)
	}

	m.OnStart = func(sequence int32, name, direction, _ string) {
		logger.Debug().
			Int32("sequence", sequence).
			Str("name", name).
			Str("direction", direction).
			Msg("applying migration")
	}

	if err := m.Migrate(ctx); err != nil {
		return from, fmt.Errorf("migrating database: %w", err)
	}

	to := int32(len(m.Migrations))
	if from == to {
		logger.Info().Msgf("database schema up to date, version %d", to)
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, to)
	}
	return to, nil
}
