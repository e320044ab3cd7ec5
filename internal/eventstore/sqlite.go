package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/eventstore/migrations"
)

const (
	eventColumns = `e.sequence, e.id, e.stream, e.version, e.type, e.entity_id, e.data, e.metadata, e.created_at`

	// events written outside of a batch are committed with their own transaction
	visibleEvents = `(e.batch_id IS NULL OR EXISTS (SELECT 1 FROM batches b WHERE b.id = e.batch_id AND b.status = 'committed'))`
)

type rowScanner interface {
	Scan(dest ...any) error
}

// SQLiteClient is an append-only event store with one optimistic version counter per stream.
type SQLiteClient struct {
	db    *sql.DB
	clock clockwork.Clock
}

func NewSQLiteClient(ctx context.Context, db *sql.DB, clock clockwork.Clock) (*SQLiteClient, error) {
	err := common.ApplyMigrations(ctx, db, "eventstore", migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate event store: %w", err)
	}

	return &SQLiteClient{
		db:    db,
		clock: clock,
	}, nil
}

func (c *SQLiteClient) WriteEvent(ctx context.Context, event entity.DomainEvent, stream string, opts ...WriteOption) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, err
	}

	options := WriteOptions{ExpectedVersion: AnyVersion}
	for _, opt := range opts {
		opt(&options)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	ret, err := c.appendEvent(ctx, tx, event, stream, options.ExpectedVersion, sql.NullString{})
	if err != nil {
		return WriteResult{}, err
	}

	err = tx.Commit()
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to commit event %s: %w", ret.EventID, err)
	}

	return ret, nil
}

func (c *SQLiteClient) appendEvent(ctx context.Context, tx *sql.Tx, event entity.DomainEvent, stream string, expectedVersion int64, batchID sql.NullString) (WriteResult, error) {
	if stream == "" {
		return WriteResult{}, fmt.Errorf("stream name is required")
	}

	_, err := tx.ExecContext(ctx, `INSERT INTO streams (name, version) VALUES (?, 0) ON CONFLICT (name) DO NOTHING`, stream)
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to create stream %s: %w", stream, err)
	}

	var version int64
	var archivedAt sql.NullInt64

	err = tx.QueryRowContext(ctx, `SELECT version, archived_at FROM streams WHERE name = ?`, stream).Scan(&version, &archivedAt)
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to read stream %s: %w", stream, err)
	}

	if archivedAt.Valid {
		return WriteResult{}, fmt.Errorf("write to %s: %w", stream, ErrAccessDeletedStream)
	}

	if expectedVersion != AnyVersion && expectedVersion != version {
		return WriteResult{}, fmt.Errorf("stream %s is at version %d, expected %d: %w", stream, version, expectedVersion, ErrWrongExpectedVersion)
	}

	next := version + 1

	res, err := tx.ExecContext(ctx, `UPDATE streams SET version = ? WHERE name = ? AND version = ?`, next, stream, version)
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to bump stream %s: %w", stream, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to bump stream %s: %w", stream, err)
	}

	if affected != 1 {
		return WriteResult{}, fmt.Errorf("stream %s moved concurrently: %w", stream, ErrWrongExpectedVersion)
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	if event.Created.IsZero() {
		event.Created = c.clock.Now()
	}

	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to marshal metadata of %s: %w", event.ID, err)
	}

	data := []byte(event.Data)
	if data == nil {
		data = []byte("null")
	}

	res, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, stream, version, type, entity_id, data, metadata, created_at, batch_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		stream,
		next,
		event.Type,
		event.EntityID,
		data,
		metadata,
		toMillis(event.Created),
		batchID,
	)
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to insert event %s: %w", event.ID, err)
	}

	sequence, err := res.LastInsertId()
	if err != nil {
		return WriteResult{}, fmt.Errorf("failed to get sequence of %s: %w", event.ID, err)
	}

	return WriteResult{
		Version:  next,
		EventID:  event.ID,
		Sequence: sequence,
	}, nil
}

func (c *SQLiteClient) LoadEvent(ctx context.Context, eventID string) (entity.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return entity.StoredEvent{}, err
	}

	row := c.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = ? AND `+visibleEvents, eventID)

	ret, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.StoredEvent{}, fmt.Errorf("event %s: %w", eventID, ErrEventNotFound)
	}

	if err != nil {
		return entity.StoredEvent{}, fmt.Errorf("failed to load event %s: %w", eventID, err)
	}

	return ret, nil
}

func (c *SQLiteClient) GetLastEventFromStream(ctx context.Context, stream string) (entity.StoredEvent, error) {
	err := c.checkStream(ctx, stream)
	if err != nil {
		return entity.StoredEvent{}, err
	}

	row := c.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.stream = ? AND `+visibleEvents+` ORDER BY e.version DESC LIMIT 1`,
		stream,
	)

	ret, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.StoredEvent{}, fmt.Errorf("stream %s has no event: %w", stream, ErrEventStreamNotFound)
	}

	if err != nil {
		return entity.StoredEvent{}, fmt.Errorf("failed to get last event of %s: %w", stream, err)
	}

	return ret, nil
}

// StreamExists fails with ErrAccessDeletedStream for an archived stream.
func (c *SQLiteClient) StreamExists(ctx context.Context, stream string) (bool, error) {
	err := c.checkStream(ctx, stream)

	switch {
	case errors.Is(err, ErrEventStreamNotFound):
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}

func (c *SQLiteClient) SoftDeleteStream(ctx context.Context, stream string) error {
	err := c.checkStream(ctx, stream)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `UPDATE streams SET archived_at = ? WHERE name = ? AND archived_at IS NULL`, toMillis(c.clock.Now()), stream)
	if err != nil {
		return fmt.Errorf("failed to archive stream %s: %w", stream, err)
	}

	return nil
}

func (c *SQLiteClient) ReadStream(ctx context.Context, stream string, afterVersion int64) ([]entity.StoredEvent, error) {
	err := c.checkStream(ctx, stream)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.stream = ? AND e.version > ? AND `+visibleEvents+` ORDER BY e.version`,
		stream,
		afterVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", stream, err)
	}

	return scanEvents(rows)
}

// ReadAll also returns the events of archived streams: subscribers must see the event that deleted them.
func (c *SQLiteClient) ReadAll(ctx context.Context, afterSequence int64, limit int) ([]entity.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 1
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.sequence > ? AND `+visibleEvents+` ORDER BY e.sequence LIMIT ?`,
		afterSequence,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read all events: %w", err)
	}

	return scanEvents(rows)
}

func (c *SQLiteClient) checkStream(ctx context.Context, stream string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var archivedAt sql.NullInt64

	err := c.db.QueryRowContext(ctx, `SELECT archived_at FROM streams WHERE name = ?`, stream).Scan(&archivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("stream %s: %w", stream, ErrEventStreamNotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to read stream %s: %w", stream, err)
	}

	if archivedAt.Valid {
		return fmt.Errorf("stream %s: %w", stream, ErrAccessDeletedStream)
	}

	return nil
}

func scanEvents(rows *sql.Rows) ([]entity.StoredEvent, error) {
	defer rows.Close()

	ret := make([]entity.StoredEvent, 0)

	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		ret = append(ret, event)
	}

	return ret, rows.Err()
}

func scanEvent(row rowScanner) (entity.StoredEvent, error) {
	ret := entity.StoredEvent{}

	var data, metadata []byte
	var created int64

	err := row.Scan(&ret.Sequence, &ret.ID, &ret.Stream, &ret.Version, &ret.Type, &ret.EntityID, &data, &metadata, &created)
	if err != nil {
		return ret, err
	}

	err = json.Unmarshal(metadata, &ret.Metadata)
	if err != nil {
		return ret, fmt.Errorf("invalid metadata of %s: %w", ret.ID, err)
	}

	ret.Data = json.RawMessage(data)
	ret.Created = fromMillis(created)

	return ret, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
