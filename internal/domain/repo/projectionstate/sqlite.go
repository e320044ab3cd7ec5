package projectionstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-logr/logr"

	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/repo/projectionstate/migrations"
)

const saveAttempts = 2

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLiteRepo stores the checkpoints of one projection, one row per stream.
type SQLiteRepo struct {
	db         *sql.DB
	projection string
	retryDelay time.Duration
}

func NewSQLiteRepo(ctx context.Context, db *sql.DB, projection string) (SQLiteRepo, error) {
	err := common.ApplyMigrations(ctx, db, "projectionstate", migrations.FS)
	if err != nil {
		return SQLiteRepo{}, fmt.Errorf("failed to migrate projection states: %w", err)
	}

	return SQLiteRepo{
		db:         db,
		projection: projection,
		retryDelay: 50 * time.Millisecond,
	}, nil
}

func (r SQLiteRepo) GetLatestProjectedEventIDs(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT stream_name, event_version FROM projection_states WHERE projection = ?`,
		r.projection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projection states: %w", err)
	}
	defer rows.Close()

	ret := map[string]int64{}

	for rows.Next() {
		var stream string
		var version int64

		err := rows.Scan(&stream, &version)
		if err != nil {
			return nil, fmt.Errorf("failed to scan projection state: %w", err)
		}

		ret[stream] = version
	}

	return ret, rows.Err()
}

// GetPositionOfLatestProjectedEvent returns the zero position when nothing was projected yet.
func (r SQLiteRepo) GetPositionOfLatestProjectedEvent(ctx context.Context) (entity.GlobalPosition, error) {
	if err := ctx.Err(); err != nil {
		return entity.GlobalPosition{}, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT stream_name, event_version, event_sequence FROM projection_states
		 WHERE projection = ? ORDER BY event_sequence DESC LIMIT 1`,
		r.projection,
	)

	ret := entity.GlobalPosition{}

	err := row.Scan(&ret.StreamName, &ret.Version, &ret.Sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.GlobalPosition{}, nil
	}

	if err != nil {
		return entity.GlobalPosition{}, fmt.Errorf("failed to get latest projected event: %w", err)
	}

	return ret, nil
}

// TrySaveProjectionState makes two attempts: the first one inside tx when given, the second one
// directly on the database. The second attempt is therefore not atomic with the rest of tx.
func (r SQLiteRepo) TrySaveProjectionState(ctx context.Context, state entity.ProjectionState, tx *sql.Tx, logger *logr.Logger) bool {
	attempt := 0

	err := retry.Do(
		func() error {
			attempt++

			var exec execer = r.db
			if attempt == 1 && tx != nil {
				exec = tx
			}

			return r.save(ctx, exec, state)
		},
		retry.Context(ctx),
		retry.Attempts(saveAttempts),
		retry.Delay(r.retryDelay),
		retry.LastErrorOnly(true),
	)

	if err == nil {
		return true
	}

	if logger == nil {
		return false
	}

	if ctx.Err() != nil {
		logger.V(1).Info("Saving projection state cancelled", "projection", r.projection, "stream", state.StreamName, "version", state.EventNumberVersion)

		return false
	}

	logger.Error(err, "Failed to save projection state", "projection", r.projection, "stream", state.StreamName, "version", state.EventNumberVersion, "attempts", attempt)

	return false
}

// save never moves a checkpoint backward.
func (r SQLiteRepo) save(ctx context.Context, exec execer, state entity.ProjectionState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var errorMessage sql.NullString
	var errorOccurredAt sql.NullInt64

	if state.ErrorOccurredAt != nil {
		errorMessage = sql.NullString{String: state.ErrorMessage, Valid: true}
		errorOccurredAt = sql.NullInt64{Int64: toMillis(*state.ErrorOccurredAt), Valid: true}
	}

	_, err := exec.ExecContext(ctx,
		`INSERT INTO projection_states (projection, stream_name, event_id, event_version, event_sequence, error_message, error_occurred_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (projection, stream_name) DO UPDATE SET
		     event_id = excluded.event_id,
		     event_version = excluded.event_version,
		     event_sequence = excluded.event_sequence,
		     error_message = excluded.error_message,
		     error_occurred_at = excluded.error_occurred_at,
		     updated_at = excluded.updated_at
		 WHERE excluded.event_version >= projection_states.event_version`,
		r.projection,
		state.StreamName,
		state.EventID,
		state.EventNumberVersion,
		state.EventNumberSequence,
		errorMessage,
		errorOccurredAt,
		toMillis(state.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save projection state of %s: %w", state.StreamName, err)
	}

	return nil
}

// GetProjectionState is used by operators and tests to inspect one checkpoint.
func (r SQLiteRepo) GetProjectionState(ctx context.Context, stream string) (entity.ProjectionState, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT event_id, event_version, event_sequence, error_message, error_occurred_at, updated_at
		 FROM projection_states WHERE projection = ? AND stream_name = ?`,
		r.projection,
		stream,
	)

	ret := entity.ProjectionState{Projection: r.projection, StreamName: stream}

	var errorMessage sql.NullString
	var errorOccurredAt sql.NullInt64
	var updatedAt int64

	err := row.Scan(&ret.EventID, &ret.EventNumberVersion, &ret.EventNumberSequence, &errorMessage, &errorOccurredAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ProjectionState{}, false, nil
	}

	if err != nil {
		return entity.ProjectionState{}, false, fmt.Errorf("failed to get projection state of %s: %w", stream, err)
	}

	ret.ErrorMessage = errorMessage.String
	ret.UpdatedAt = fromMillis(updatedAt)

	if errorOccurredAt.Valid {
		t := fromMillis(errorOccurredAt.Int64)
		ret.ErrorOccurredAt = &t
	}

	return ret, true, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
