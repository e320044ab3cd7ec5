package entity

import (
	"encoding/json"
	"time"
)

// EventMetadata attributes a domain event to the command that produced it.
type EventMetadata struct {
	CommandID    string `json:"commandId,omitempty"`
	CollectingID string `json:"collectingId,omitempty"`
	Initiator    string `json:"initiator,omitempty"`
	Command      string `json:"command,omitempty"`
}

type DomainEvent struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	EntityID string          `json:"entityId"`
	Stream   string          `json:"stream"`
	Data     json.RawMessage `json:"data"`
	Metadata EventMetadata   `json:"metadata"`
	Created  time.Time       `json:"created"`
}

// StoredEvent is a domain event as read back from a stream.
type StoredEvent struct {
	DomainEvent

	Version  int64 `json:"version"`
	Sequence int64 `json:"sequence"`
}

func (e StoredEvent) Header() StreamedEventHeader {
	return StreamedEventHeader{
		EventID:             e.ID,
		EventType:           e.Type,
		EventNumberVersion:  e.Version,
		EventNumberSequence: e.Sequence,
		StreamID:            e.Stream,
		Created:             e.Created,
	}
}

type EventTuple struct {
	Stream string
	Event  DomainEvent
}

type EventLogTuple struct {
	EventTuple

	BatchID   string
	ID        string
	UpdatedAt time.Time
}

type BatchStatus string

const (
	BatchStatusExecuted  BatchStatus = "executed"
	BatchStatusCommitted BatchStatus = "committed"
	BatchStatusAborted   BatchStatus = "aborted"
	BatchStatusError     BatchStatus = "error"
)

type EventBatch struct {
	ID      string
	Name    string
	Created time.Time
	Status  BatchStatus
	Events  []EventLogTuple
}

// Consumable is true only once the batch has been committed.
func (b EventBatch) Consumable() bool {
	return b.Status == BatchStatusCommitted
}

type StreamedEventHeader struct {
	EventID             string
	EventType           string
	EventNumberVersion  int64
	EventNumberSequence int64
	StreamID            string
	Created             time.Time
}

// ProjectionState is the checkpoint of one projection on one stream.
type ProjectionState struct {
	Projection          string
	EventID             string
	EventNumberVersion  int64
	EventNumberSequence int64
	StreamName          string
	ErrorMessage        string
	ErrorOccurredAt     *time.Time
	UpdatedAt           time.Time
}

func NewProjectionState(projection string, header StreamedEventHeader, now time.Time) ProjectionState {
	return ProjectionState{
		Projection:          projection,
		EventID:             header.EventID,
		EventNumberVersion:  header.EventNumberVersion,
		EventNumberSequence: header.EventNumberSequence,
		StreamName:          header.StreamID,
		UpdatedAt:           now,
	}
}

func (s ProjectionState) WithError(err error, now time.Time) ProjectionState {
	s.ErrorMessage = err.Error()
	s.ErrorOccurredAt = &now

	return s
}

// GlobalPosition is the last event projected across all streams.
type GlobalPosition struct {
	StreamName string
	Version    int64
	Sequence   int64
}
