package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
)

// Batcher appends events in batches. Only committed batches are visible to readers.
type Batcher interface {
	BeginBatch(name string) *Batch
	Commit(ctx context.Context, b *Batch) ([]WriteResult, error)
	Abort(ctx context.Context, b *Batch) error
}

// Batch collects events that are committed together. It can be filled until it is committed or aborted.
type Batch struct {
	mu    sync.Mutex
	batch entity.EventBatch
}

func (c *SQLiteClient) BeginBatch(name string) *Batch {
	return &Batch{
		batch: entity.EventBatch{
			ID:      uuid.NewString(),
			Name:    name,
			Created: c.clock.Now(),
			Status:  entity.BatchStatusExecuted,
		},
	}
}

func (b *Batch) Add(tuple entity.EventTuple) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.batch.Status != entity.BatchStatusExecuted {
		return fmt.Errorf("batch %s is %s: %w", b.batch.ID, b.batch.Status, ErrBatchClosed)
	}

	b.batch.Events = append(b.batch.Events, entity.EventLogTuple{
		EventTuple: tuple,
		BatchID:    b.batch.ID,
	})

	return nil
}

// Snapshot returns a copy of the batch.
func (b *Batch) Snapshot() entity.EventBatch {
	b.mu.Lock()
	defer b.mu.Unlock()

	ret := b.batch
	ret.Events = append([]entity.EventLogTuple(nil), b.batch.Events...)

	return ret
}

// Commit appends every event of the batch in one transaction. On failure nothing is appended
// and the batch is recorded with the error status.
func (c *SQLiteClient) Commit(ctx context.Context, b *Batch) ([]WriteResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.batch.Status != entity.BatchStatusExecuted {
		return nil, fmt.Errorf("batch %s is %s: %w", b.batch.ID, b.batch.Status, ErrBatchClosed)
	}

	ret, err := c.commit(ctx, &b.batch)
	if err != nil {
		b.batch.Status = entity.BatchStatusError

		recordErr := c.recordBatch(context.WithoutCancel(ctx), c.db, b.batch)
		if recordErr != nil {
			return nil, fmt.Errorf("%w (and failed to record batch status: %v)", err, recordErr)
		}

		return nil, err
	}

	b.batch.Status = entity.BatchStatusCommitted

	return ret, nil
}

func (c *SQLiteClient) commit(ctx context.Context, batch *entity.EventBatch) ([]WriteResult, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	committed := *batch
	committed.Status = entity.BatchStatusCommitted

	err = c.recordBatch(ctx, tx, committed)
	if err != nil {
		return nil, err
	}

	ret := make([]WriteResult, 0, len(batch.Events))
	now := c.clock.Now()

	for i, tuple := range batch.Events {
		res, err := c.appendEvent(ctx, tx, tuple.Event, tuple.Stream, AnyVersion, sql.NullString{String: batch.ID, Valid: true})
		if err != nil {
			return nil, fmt.Errorf("failed to append event %d of batch %s: %w", i, batch.ID, err)
		}

		batch.Events[i].ID = res.EventID
		batch.Events[i].UpdatedAt = now

		ret = append(ret, res)
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit batch %s: %w", batch.ID, err)
	}

	return ret, nil
}

// Abort closes the batch without appending anything.
func (c *SQLiteClient) Abort(ctx context.Context, b *Batch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.batch.Status != entity.BatchStatusExecuted {
		return fmt.Errorf("batch %s is %s: %w", b.batch.ID, b.batch.Status, ErrBatchClosed)
	}

	b.batch.Status = entity.BatchStatusAborted

	return c.recordBatch(ctx, c.db, b.batch)
}

func (c *SQLiteClient) recordBatch(ctx context.Context, exec execer, batch entity.EventBatch) error {
	now := toMillis(c.clock.Now())

	_, err := exec.ExecContext(ctx,
		`INSERT INTO batches (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		batch.ID,
		batch.Name,
		string(batch.Status),
		toMillis(batch.Created),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to record batch %s: %w", batch.ID, err)
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BatchStatus returns the recorded status of a batch.
func (c *SQLiteClient) BatchStatus(ctx context.Context, batchID string) (entity.BatchStatus, error) {
	var status string

	err := c.db.QueryRowContext(ctx, `SELECT status FROM batches WHERE id = ?`, batchID).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("failed to get status of batch %s: %w", batchID, err)
	}

	return entity.BatchStatus(status), nil
}
