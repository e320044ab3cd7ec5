package entity

import "time"

// Profile is the user-profile read model.
type Profile struct {
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	Version     int64     `json:"version"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ArchivedStream is a soft deleted stream together with the events it held.
type ArchivedStream struct {
	Stream     string
	ArchivedAt time.Time
	Events     []StoredEvent
}

// User events

const (
	EventUserCreated        = "UserCreated"
	EventUserProfileUpdated = "UserProfileUpdated"
	EventUserDeleted        = "UserDeleted"

	UserStreamPrefix = "user_"
)

func UserStream(userID string) string {
	return UserStreamPrefix + userID
}

type UserCreated struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// UserProfileUpdated only carries the fields that changed.
type UserProfileUpdated struct {
	UserID      string  `json:"userId"`
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
}

type UserDeleted struct {
	UserID string `json:"userId"`
}
