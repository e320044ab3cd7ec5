package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/identity-platform/profile-saga/internal/bus"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
)

const profileKind = "profile"

// ProfileProjection maintains the user profile read model and reports the outcome to the saga
// of the command that produced the event.
type ProfileProjection struct {
	store     repo.ProfileStore
	publisher bus.Publisher

	logger *logr.Logger
}

func NewProfileProjection(store repo.ProfileStore, publisher bus.Publisher) *ProfileProjection {
	return &ProfileProjection{
		store:     store,
		publisher: publisher,
	}
}

func (p *ProfileProjection) WithLogger(logger logr.Logger) *ProfileProjection {
	p.logger = &logger

	return p
}

func (p *ProfileProjection) HandleDomainEvent(ctx context.Context, header entity.StreamedEventHeader, event entity.StoredEvent) error {
	var err error

	switch event.Type {
	case entity.EventUserCreated:
		err = p.created(ctx, header, event)
	case entity.EventUserProfileUpdated:
		err = p.updated(ctx, header, event)
	case entity.EventUserDeleted:
		err = p.deleted(ctx, header, event)
	default:
		if p.logger != nil {
			p.logger.V(3).Info("Event not projected", "type", event.Type, "stream", header.StreamID)
		}

		return nil
	}

	return p.report(ctx, event, err)
}

// report tells the saga of the command how the projection went. A failed event is not projected
// again, so every error is reported.
func (p *ProfileProjection) report(ctx context.Context, event entity.StoredEvent, err error) error {
	if event.Metadata.CommandID == "" {
		return err
	}

	var reply message.Message = message.CommandProjectionSuccess{CorrelationID: event.Metadata.CommandID, EntityID: event.EntityID}
	if err != nil {
		reply = message.CommandProjectionFailure{CorrelationID: event.Metadata.CommandID, ErrorMessage: err.Error()}
	}

	publishErr := p.publisher.Publish(ctx, reply)
	if publishErr != nil {
		// the lost report is the failure that matters for the saga
		return fmt.Errorf("failed to report projection of %s: %w", event.ID, publishErr)
	}

	return err
}

func (p *ProfileProjection) created(ctx context.Context, header entity.StreamedEventHeader, event entity.StoredEvent) error {
	data := entity.UserCreated{}

	err := json.Unmarshal(event.Data, &data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", event.ID, err)
	}

	existing, err := p.store.Get(ctx, data.UserID)

	switch {
	case errors.Is(err, repo.ErrNotFound):
	case err != nil:
		return err
	case existing.Version == header.EventNumberVersion:
		// delivered again after the profile was stored
		return nil
	default:
		return entity.ProjectionMismatchError{Kind: profileKind, ID: data.UserID, Expected: 0, Actual: existing.Version}
	}

	profile := entity.Profile{
		UserID:      data.UserID,
		Name:        data.Name,
		Email:       data.Email,
		DisplayName: data.DisplayName,
		Version:     header.EventNumberVersion,
		UpdatedAt:   header.Created,
	}

	return p.put(ctx, profile, 0)
}

func (p *ProfileProjection) updated(ctx context.Context, header entity.StreamedEventHeader, event entity.StoredEvent) error {
	data := entity.UserProfileUpdated{}

	err := json.Unmarshal(event.Data, &data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", event.ID, err)
	}

	profile, err := p.get(ctx, data.UserID)
	if err != nil {
		return err
	}

	if profile.Version == header.EventNumberVersion {
		return nil
	}

	expected := header.EventNumberVersion - 1
	if profile.Version != expected {
		return entity.ProjectionMismatchError{Kind: profileKind, ID: data.UserID, Expected: expected, Actual: profile.Version}
	}

	if data.Name != nil {
		profile.Name = *data.Name
	}

	if data.Email != nil {
		profile.Email = *data.Email
	}

	if data.DisplayName != nil {
		profile.DisplayName = *data.DisplayName
	}

	profile.Version = header.EventNumberVersion
	profile.UpdatedAt = header.Created

	return p.put(ctx, profile, expected)
}

func (p *ProfileProjection) deleted(ctx context.Context, _ entity.StreamedEventHeader, event entity.StoredEvent) error {
	data := entity.UserDeleted{}

	err := json.Unmarshal(event.Data, &data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", event.ID, err)
	}

	_, err = p.get(ctx, data.UserID)
	if err != nil {
		return err
	}

	return p.store.Delete(ctx, data.UserID)
}

func (p *ProfileProjection) get(ctx context.Context, userID string) (entity.Profile, error) {
	profile, err := p.store.Get(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return entity.Profile{}, entity.InstanceNotFoundError{Kind: profileKind, ID: userID}
	}

	return profile, err
}

func (p *ProfileProjection) put(ctx context.Context, profile entity.Profile, expectedVersion int64) error {
	err := p.store.Put(ctx, profile, expectedVersion)
	if errors.Is(err, repo.ErrRevisionConflict) {
		return entity.ProjectionMismatchError{Kind: profileKind, ID: profile.UserID, Expected: expectedVersion, Actual: -1}
	}

	return err
}
