package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-logr/logr"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

//go:generate mockgen -source=interfaces.go -package=mock -destination=./mock/mock_repo.go

var (
	ErrNotFound         = errors.New("not found")
	ErrRevisionConflict = errors.New("revision conflict")
)

// Dead letter queue

type ProcessingErrorWriter interface {
	WriteProcessingError(ctx context.Context, pErr pipeline.ErrProcessingError) error
}

type ProcessingError interface {
	ProcessingErrorWriter
}

// Saga instances

// SagaRecord is the persisted form of a saga instance. Revision 0 means the instance was never saved.
type SagaRecord struct {
	CorrelationID string
	Revision      int64
	Payload       []byte
}

type SagaStore interface {
	// Get returns ErrNotFound when the instance does not exist (never created or finalized).
	Get(ctx context.Context, correlationID string) (SagaRecord, error)
	// Save stores the record if the stored revision equals record.Revision, and returns the new revision.
	Save(ctx context.Context, record SagaRecord) (int64, error)
	Delete(ctx context.Context, correlationID string) error
}

// Collector

type CollectorStore interface {
	Start(ctx context.Context, data entity.StartCollectingEventData) error
	// GetMeta returns ErrNotFound when no round was started for the collecting id.
	GetMeta(ctx context.Context, collectingID string) (entity.StartCollectingEventData, error)
	// SetExpected sets the expected count only if it is not set yet. It reports whether it did.
	SetExpected(ctx context.Context, collectingID string, expected int) (bool, error)
	// Append stores one item and returns the number of items stored so far.
	Append(ctx context.Context, item entity.EventData) (int, error)
	Count(ctx context.Context, collectingID string) (int, error)
	List(ctx context.Context, collectingID string) ([]entity.EventData, error)
	// MarkCompleted records the completion time. Only the first caller gets true.
	MarkCompleted(ctx context.Context, collectingID string, data entity.StartCollectingEventData) (bool, error)
}

// Read model

type ProfileStore interface {
	// Get returns ErrNotFound when the profile does not exist.
	Get(ctx context.Context, userID string) (entity.Profile, error)
	// Put stores the profile if the stored version equals expectedVersion (0 for a new profile).
	Put(ctx context.Context, profile entity.Profile, expectedVersion int64) error
	Delete(ctx context.Context, userID string) error
}

// Projection checkpoints

type ProjectionStateReader interface {
	GetLatestProjectedEventIDs(ctx context.Context) (map[string]int64, error)
	GetPositionOfLatestProjectedEvent(ctx context.Context) (entity.GlobalPosition, error)
}

type ProjectionStateRepository interface {
	ProjectionStateReader
	// TrySaveProjectionState never fails: it reports whether the checkpoint was persisted.
	TrySaveProjectionState(ctx context.Context, state entity.ProjectionState, tx *sql.Tx, logger *logr.Logger) bool
}

// Archive of soft deleted streams

type StreamArchiveWriter interface {
	WriteArchivedStream(ctx context.Context, stream entity.ArchivedStream) error
}
