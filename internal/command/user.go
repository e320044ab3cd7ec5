package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/eventstore"
)

const (
	CreateUserCommand        = "CreateUser"
	UpdateUserProfileCommand = "UpdateUserProfile"
	DeleteUserCommand        = "DeleteUser"
)

type CreateUser struct {
	UserID      string `json:"userId,omitempty" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName,omitempty" validate:"max=100"`
}

type UpdateUserProfile struct {
	UserID      string  `json:"userId" validate:"required,uuid"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,max=100"`
}

type DeleteUser struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// NewUserRegistry registers the user commands. streams is used to check that updated or deleted users exist.
func NewUserRegistry(validate *validator.Validate, clock clockwork.Clock, streams eventstore.Reader) *Registry {
	exists := userExists(streams)

	return NewRegistry().
		Register(CreateUserCommand, newTypedService(definition[CreateUser]{
			name:      CreateUserCommand,
			eventType: entity.EventUserCreated,
			stream:    entity.UserStream,
			modify:    modifyCreateUser,
			event: func(p CreateUser) (string, any) {
				return p.UserID, entity.UserCreated(p)
			},
		}, validate, clock)).
		Register(UpdateUserProfileCommand, newTypedService(definition[UpdateUserProfile]{
			name:      UpdateUserProfileCommand,
			eventType: entity.EventUserProfileUpdated,
			stream:    entity.UserStream,
			modify:    modifyUpdateUserProfile,
			rules: func(ctx context.Context, p UpdateUserProfile) (entity.ValidationResult, error) {
				if p.Name == nil && p.Email == nil && p.DisplayName == nil {
					return entity.Invalid(entity.ValidationError{Message: "At least one profile field required"}), nil
				}

				return exists(ctx, p.UserID)
			},
			event: func(p UpdateUserProfile) (string, any) {
				return p.UserID, entity.UserProfileUpdated(p)
			},
		}, validate, clock)).
		Register(DeleteUserCommand, newTypedService(definition[DeleteUser]{
			name:      DeleteUserCommand,
			eventType: entity.EventUserDeleted,
			stream:    entity.UserStream,
			modify: func(p DeleteUser) (DeleteUser, ModifyResult) {
				p.UserID = strings.TrimSpace(p.UserID)

				return p, ModifyResult{EntityID: p.UserID}
			},
			rules: func(ctx context.Context, p DeleteUser) (entity.ValidationResult, error) {
				return exists(ctx, p.UserID)
			},
			event: func(p DeleteUser) (string, any) {
				return p.UserID, entity.UserDeleted(p)
			},
		}, validate, clock))
}

func modifyCreateUser(p CreateUser) (CreateUser, ModifyResult) {
	if strings.TrimSpace(p.UserID) == "" {
		p.UserID = uuid.NewString()
	}

	p.UserID = strings.TrimSpace(p.UserID)
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.DisplayName = strings.TrimSpace(p.DisplayName)

	return p, ModifyResult{EntityID: p.UserID}
}

func modifyUpdateUserProfile(p UpdateUserProfile) (UpdateUserProfile, ModifyResult) {
	p.UserID = strings.TrimSpace(p.UserID)
	p.Name = trimmed(p.Name)
	p.DisplayName = trimmed(p.DisplayName)

	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		p.Email = &email
	}

	return p, ModifyResult{EntityID: p.UserID}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}

	ret := strings.TrimSpace(*value)

	return &ret
}

var deletedUser = entity.Invalid(entity.ValidationError{Field: "UserID", Message: "UserID refers to a deleted user"})

func userExists(streams eventstore.Reader) func(ctx context.Context, userID string) (entity.ValidationResult, error) {
	return func(ctx context.Context, userID string) (entity.ValidationResult, error) {
		stream := entity.UserStream(userID)

		ok, err := streams.StreamExists(ctx, stream)

		switch {
		case errors.Is(err, eventstore.ErrAccessDeletedStream):
			return deletedUser, nil
		case err != nil:
			return entity.ValidationResult{}, fmt.Errorf("failed to check user %s: %w", userID, err)
		case !ok:
			return entity.Invalid(entity.ValidationError{Field: "UserID", Message: "UserID unknown"}), nil
		}

		// the stream of a deleted user stays readable when its soft deletion failed
		last, err := streams.GetLastEventFromStream(ctx, stream)
		if err != nil {
			return entity.ValidationResult{}, fmt.Errorf("failed to read last event of user %s: %w", userID, err)
		}

		if last.Type == entity.EventUserDeleted {
			return deletedUser, nil
		}

		return entity.Valid(), nil
	}
}
