package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
)

//go:generate mockgen -source=client.go -package=mock -destination=./mock/mock_eventstore.go

var (
	ErrEventStreamNotFound  = errors.New("event stream not found")
	ErrAccessDeletedStream  = errors.New("access to deleted stream")
	ErrWrongExpectedVersion = errors.New("wrong expected version")
	ErrEventNotFound        = errors.New("event not found")
	ErrBatchClosed          = errors.New("batch is not open")
)

// AnyVersion disables the optimistic check of WriteEvent.
const AnyVersion int64 = -1

type WriteResult struct {
	Version  int64
	EventID  string
	Sequence int64
}

type WriteOptions struct {
	ExpectedVersion int64
}

type WriteOption func(*WriteOptions)

// ExpectVersion fails the write with ErrWrongExpectedVersion unless the stream is at version v (0 for a new stream).
func ExpectVersion(v int64) WriteOption {
	return func(o *WriteOptions) {
		o.ExpectedVersion = v
	}
}

type Writer interface {
	WriteEvent(ctx context.Context, event entity.DomainEvent, stream string, opts ...WriteOption) (WriteResult, error)
	SoftDeleteStream(ctx context.Context, stream string) error
}

type Reader interface {
	LoadEvent(ctx context.Context, eventID string) (entity.StoredEvent, error)
	GetLastEventFromStream(ctx context.Context, stream string) (entity.StoredEvent, error)
	StreamExists(ctx context.Context, stream string) (bool, error)
	// ReadStream returns the events of stream with a version strictly greater than afterVersion.
	ReadStream(ctx context.Context, stream string, afterVersion int64) ([]entity.StoredEvent, error)
	// ReadAll returns at most limit committed events with a sequence strictly greater than afterSequence.
	ReadAll(ctx context.Context, afterSequence int64, limit int) ([]entity.StoredEvent, error)
}

type Client interface {
	Writer
	Reader
}

// StreamAction groups the events of one stream delivered in a subscription batch, in sequence order.
type StreamAction struct {
	Stream string
	Events []entity.StoredEvent
}

// LastEventAs decodes the data of the last event of a stream.
func LastEventAs[T any](ctx context.Context, client Reader, stream string) (T, error) {
	var ret T

	event, err := client.GetLastEventFromStream(ctx, stream)
	if err != nil {
		return ret, err
	}

	err = json.Unmarshal(event.Data, &ret)
	if err != nil {
		return ret, fmt.Errorf("failed to unmarshal last event %s of %s: %w", event.ID, stream, err)
	}

	return ret, nil
}

// GroupByStream splits events into stream actions, streams ordered by their first event.
func GroupByStream(events []entity.StoredEvent) []StreamAction {
	ret := make([]StreamAction, 0)
	index := map[string]int{}

	for _, event := range events {
		i, ok := index[event.Stream]
		if !ok {
			i = len(ret)
			index[event.Stream] = i

			ret = append(ret, StreamAction{Stream: event.Stream})
		}

		ret[i].Events = append(ret[i].Events, event)
	}

	return ret
}
