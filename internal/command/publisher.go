package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
	"github.com/identity-platform/profile-saga/internal/eventstore"
)

var ErrNoPublisher = errors.New("no publisher for event")

// PublisherFactory picks the publisher of an event by event type.
type PublisherFactory struct {
	byType   map[string]EventPublisher
	fallback EventPublisher
}

// NewPublisherFactory returns a factory using fallback for unregistered event types. fallback may be nil.
func NewPublisherFactory(fallback EventPublisher) *PublisherFactory {
	return &PublisherFactory{
		byType:   map[string]EventPublisher{},
		fallback: fallback,
	}
}

func (f *PublisherFactory) Register(eventType string, publisher EventPublisher) *PublisherFactory {
	f.byType[eventType] = publisher

	return f
}

func (f *PublisherFactory) GetPublisher(event entity.DomainEvent) (EventPublisher, error) {
	ret, ok := f.byType[event.Type]
	if ok {
		return ret, nil
	}

	if f.fallback == nil {
		return nil, fmt.Errorf("%w %s", ErrNoPublisher, event.Type)
	}

	return f.fallback, nil
}

// Store

// StoreEventPublisher appends the event to its stream in a batch of its own.
type StoreEventPublisher struct {
	store  eventstore.Batcher
	logger *logr.Logger
}

func NewStoreEventPublisher(store eventstore.Batcher) StoreEventPublisher {
	return StoreEventPublisher{
		store: store,
	}
}

func (p StoreEventPublisher) WithLogger(logger logr.Logger) StoreEventPublisher {
	p.logger = &logger

	return p
}

func (p StoreEventPublisher) Publish(ctx context.Context, event entity.DomainEvent) (eventstore.WriteResult, error) {
	if event.Stream == "" {
		return eventstore.WriteResult{}, fmt.Errorf("event %s has no stream", event.ID)
	}

	batch := p.store.BeginBatch(event.Type)

	err := batch.Add(entity.EventTuple{Stream: event.Stream, Event: event})
	if err != nil {
		return eventstore.WriteResult{}, err
	}

	results, err := p.store.Commit(ctx, batch)
	if err != nil {
		return eventstore.WriteResult{}, fmt.Errorf("failed to store %s event: %w", event.Type, err)
	}

	if len(results) != 1 {
		return eventstore.WriteResult{}, fmt.Errorf("unexpected number of write results: %d", len(results))
	}

	ret := results[0]

	p.logInfo(2, "Event stored", "type", event.Type, "stream", event.Stream, "version", ret.Version, "sequence", ret.Sequence)

	return ret, nil
}

func (p StoreEventPublisher) logInfo(level int, msg string, keysAndValues ...any) {
	if p.logger == nil {
		return
	}

	p.logger.V(level).Info(msg, keysAndValues...)
}

// Archive

// ArchivingEventPublisher copies the whole stream, deletion included, to the archive, stores the
// deletion event and soft deletes the stream. Subscribers still receive the events of the archived stream.
type ArchivingEventPublisher struct {
	next    EventPublisher
	streams eventstore.Client
	archive repo.StreamArchiveWriter
	clock   clockwork.Clock

	softDeleteAttempts uint
	softDeleteDelay    time.Duration

	logger *logr.Logger
}

func NewArchivingEventPublisher(next EventPublisher, streams eventstore.Client, archive repo.StreamArchiveWriter, clock clockwork.Clock) ArchivingEventPublisher {
	return ArchivingEventPublisher{
		next:               next,
		streams:            streams,
		archive:            archive,
		clock:              clock,
		softDeleteAttempts: 3,
		softDeleteDelay:    100 * time.Millisecond,
	}
}

func (p ArchivingEventPublisher) WithLogger(logger logr.Logger) ArchivingEventPublisher {
	p.logger = &logger

	return p
}

// Publish fails only while nothing is stored. Once the deletion event is stored the deletion took
// effect: a stream that cannot be soft deleted is logged, not reported.
func (p ArchivingEventPublisher) Publish(ctx context.Context, event entity.DomainEvent) (eventstore.WriteResult, error) {
	events, err := p.streams.ReadStream(ctx, event.Stream, 0)
	if err != nil {
		return eventstore.WriteResult{}, fmt.Errorf("failed to read %s before archiving: %w", event.Stream, err)
	}

	pending := entity.StoredEvent{DomainEvent: event, Version: 1}
	if len(events) > 0 {
		pending.Version = events[len(events)-1].Version + 1
	}

	err = p.archive.WriteArchivedStream(ctx, entity.ArchivedStream{
		Stream:     event.Stream,
		ArchivedAt: p.clock.Now(),
		Events:     append(events, pending),
	})
	if err != nil {
		return eventstore.WriteResult{}, fmt.Errorf("failed to archive %s: %w", event.Stream, err)
	}

	ret, err := p.next.Publish(ctx, event)
	if err != nil {
		return eventstore.WriteResult{}, err
	}

	err = retry.Do(
		func() error {
			return p.streams.SoftDeleteStream(ctx, event.Stream)
		},
		retry.Context(ctx),
		retry.Attempts(p.softDeleteAttempts),
		retry.Delay(p.softDeleteDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if p.logger != nil {
			p.logger.Error(err, "Failed to soft delete archived stream, it stays readable", "stream", event.Stream)
		}

		return ret, nil
	}

	if p.logger != nil {
		p.logger.V(1).Info("Stream archived", "stream", event.Stream, "events", len(events)+1)
	}

	return ret, nil
}
