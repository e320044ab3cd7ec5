package command

import (
	"context"
	"encoding/json"

	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/eventstore"
)

//go:generate mockgen -source=interfaces.go -package=mock -destination=./mock/mock_command.go

// ModifyResult carries what the modify step learnt about the command. EntityID is set by creations.
type ModifyResult struct {
	EntityID string
}

// Service implements one command: its payload normalization, its validation rules and the event it produces.
type Service interface {
	// Modify normalizes the payload. The returned data replaces the saga data.
	Modify(ctx context.Context, data json.RawMessage) (json.RawMessage, ModifyResult, error)
	// Validate only returns an error when validation could not run. Rule violations are part of the result.
	Validate(ctx context.Context, data json.RawMessage, initiator string) (entity.ValidationResult, error)
	Create(ctx context.Context, data json.RawMessage, commandID string, collectingID string, initiator string) (entity.DomainEvent, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.DomainEvent) (eventstore.WriteResult, error)
}

type EventPublisherFactory interface {
	GetPublisher(event entity.DomainEvent) (EventPublisher, error)
}

// ExternalValidationConfig tells which commands are validated by external responders.
// config.Config implements it.
type ExternalValidationConfig interface {
	ExternalValidationFor(command string) (config.ExternalValidation, bool)
}
