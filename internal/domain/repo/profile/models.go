package profile

import (
	"time"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
)

type State struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func mapToModels(profile entity.Profile) State {
	return State{
		Name:        profile.Name,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		UpdatedAt:   profile.UpdatedAt,
	}
}

func mapToEntity(userID string, version int64, state State) entity.Profile {
	return entity.Profile{
		UserID:      userID,
		Name:        state.Name,
		Email:       state.Email,
		DisplayName: state.DisplayName,
		Version:     version,
		UpdatedAt:   state.UpdatedAt,
	}
}
