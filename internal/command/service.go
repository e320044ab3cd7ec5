package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
)

// definition describes a command over its typed payload.
type definition[T any] struct {
	name      string
	eventType string
	stream    func(entityID string) string

	modify func(T) (T, ModifyResult)
	// rules run after the struct tags passed. Optional.
	rules func(ctx context.Context, payload T) (entity.ValidationResult, error)
	event func(payload T) (entityID string, data any)
}

type typedService[T any] struct {
	definition[T]

	validate *validator.Validate
	clock    clockwork.Clock
}

func newTypedService[T any](def definition[T], validate *validator.Validate, clock clockwork.Clock) typedService[T] {
	return typedService[T]{
		definition: def,
		validate:   validate,
		clock:      clock,
	}
}

func (s typedService[T]) Modify(ctx context.Context, data json.RawMessage) (json.RawMessage, ModifyResult, error) {
	payload, err := s.decode(data)
	if err != nil {
		return nil, ModifyResult{}, err
	}

	payload, res := s.modify(payload)

	ret, err := json.Marshal(payload)
	if err != nil {
		return nil, ModifyResult{}, fmt.Errorf("failed to encode %s payload: %w", s.name, err)
	}

	return ret, res, nil
}

func (s typedService[T]) Validate(ctx context.Context, data json.RawMessage, _ string) (entity.ValidationResult, error) {
	payload, err := s.decode(data)
	if err != nil {
		return entity.ValidationResult{}, err
	}

	ret, err := checkStruct(s.validate, payload)
	if err != nil {
		return entity.ValidationResult{}, err
	}

	if !ret.IsValid || s.rules == nil {
		return ret, nil
	}

	return s.rules(ctx, payload)
}

func (s typedService[T]) Create(_ context.Context, data json.RawMessage, commandID string, collectingID string, initiator string) (entity.DomainEvent, error) {
	payload, err := s.decode(data)
	if err != nil {
		return entity.DomainEvent{}, err
	}

	entityID, eventData := s.event(payload)
	if entityID == "" {
		return entity.DomainEvent{}, fmt.Errorf("%s payload has no entity id", s.name)
	}

	raw, err := json.Marshal(eventData)
	if err != nil {
		return entity.DomainEvent{}, fmt.Errorf("failed to encode %s event: %w", s.eventType, err)
	}

	return entity.DomainEvent{
		ID:       uuid.NewString(),
		Type:     s.eventType,
		EntityID: entityID,
		Stream:   s.stream(entityID),
		Data:     raw,
		Metadata: entity.EventMetadata{
			CommandID:    commandID,
			CollectingID: collectingID,
			Initiator:    initiator,
			Command:      s.name,
		},
		Created: s.clock.Now(),
	}, nil
}

func (s typedService[T]) decode(data json.RawMessage) (T, error) {
	var ret T

	err := json.Unmarshal(data, &ret)
	if err != nil {
		return ret, fmt.Errorf("failed to decode %s payload: %w", s.name, err)
	}

	return ret, nil
}
