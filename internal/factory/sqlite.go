package factory

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	// register the pure go sqlite driver
	_ "modernc.org/sqlite"

	"github.com/identity-platform/profile-saga/internal/common"
)

const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)&_txlock=immediate"

// OpenSQLite opens the sqlite database shared by the event store and the projection checkpoints.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, common.CloseFunc, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", "file:"+filepath.Clean(path)+sqlitePragmas)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	shutdown := func(context.Context) error {
		return db.Close()
	}

	return db, shutdown, nil
}
