package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations runs the pending <version>_<name>.up.sql files of migrationFS.
// owner names the version table, so that several stores can share a database.
func ApplyMigrations(ctx context.Context, db *sql.DB, owner string, migrationFS fs.FS) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("failed to read %s migrations: %w", owner, err)
	}
	defer source.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: "schema_migrations_" + owner})
	if err != nil {
		return fmt.Errorf("failed to prepare %s migrations: %w", owner, err)
	}

	// not closed: closing the migrate instance closes db
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to prepare %s migrations: %w", owner, err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply %s migrations: %w", owner, err)
	}

	return nil
}
