package projection_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/identity-platform/profile-saga/internal/bus/bustest"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
	"github.com/identity-platform/profile-saga/internal/projection"
)

// Helper

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]entity.Profile
	err      error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: map[string]entity.Profile{}}
}

func (s *memProfiles) Get(_ context.Context, userID string) (entity.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return entity.Profile{}, s.err
	}

	ret, ok := s.profiles[userID]
	if !ok {
		return entity.Profile{}, fmt.Errorf("profile %s: %w", userID, repo.ErrNotFound)
	}

	return ret, nil
}

func (s *memProfiles) Put(_ context.Context, profile entity.Profile, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profiles[profile.UserID].Version != expectedVersion {
		return repo.ErrRevisionConflict
	}

	s.profiles[profile.UserID] = profile

	return nil
}

func (s *memProfiles) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, userID)

	return nil
}

var created = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func userEvent(eventType string, version int64, commandID string, data any) entity.StoredEvent {
	payload, err := json.Marshal(data)
	Expect(err).NotTo(HaveOccurred())

	return entity.StoredEvent{
		DomainEvent: entity.DomainEvent{
			ID:       fmt.Sprintf("evt-%d", version),
			Type:     eventType,
			EntityID: "u1",
			Stream:   entity.UserStream("u1"),
			Data:     payload,
			Metadata: entity.EventMetadata{CommandID: commandID},
			Created:  created,
		},
		Version:  version,
		Sequence: version,
	}
}

func apply(p *projection.ProfileProjection, event entity.StoredEvent) error {
	return p.HandleDomainEvent(context.Background(), event.Header(), event)
}

func pointer(s string) *string {
	return &s
}

// Test

var _ = Describe("Projecting user profiles", func() {
	var (
		store      *memProfiles
		publisher  *bustest.Publisher
		projector  *projection.ProfileProjection
		createUser entity.StoredEvent
	)

	BeforeEach(func() {
		store = newMemProfiles()
		publisher = bustest.NewPublisher()
		projector = projection.NewProfileProjection(store, publisher)
		createUser = userEvent(entity.EventUserCreated, 1, "saga-1", entity.UserCreated{UserID: "u1", Name: "Ada", Email: "ada@example.com"})
	})

	It("should create, update and delete the profile", func() {
		Expect(apply(projector, createUser)).To(Succeed())
		Expect(apply(projector, userEvent(entity.EventUserProfileUpdated, 2, "saga-2", entity.UserProfileUpdated{UserID: "u1", DisplayName: pointer("ada")}))).To(Succeed())

		profile, err := store.Get(context.Background(), "u1")
		Expect(err).NotTo(HaveOccurred())
		Expect(profile).To(Equal(entity.Profile{UserID: "u1", Name: "Ada", Email: "ada@example.com", DisplayName: "ada", Version: 2, UpdatedAt: created}))

		Expect(apply(projector, userEvent(entity.EventUserDeleted, 3, "saga-3", entity.UserDeleted{UserID: "u1"}))).To(Succeed())

		_, err = store.Get(context.Background(), "u1")
		Expect(errors.Is(err, repo.ErrNotFound)).To(BeTrue())

		Expect(bustest.OfType[message.CommandProjectionSuccess](publisher)).To(Equal([]message.CommandProjectionSuccess{
			{CorrelationID: "saga-1", EntityID: "u1"},
			{CorrelationID: "saga-2", EntityID: "u1"},
			{CorrelationID: "saga-3", EntityID: "u1"},
		}))
	})

	It("should accept the same creation twice", func() {
		Expect(apply(projector, createUser)).To(Succeed())
		Expect(apply(projector, createUser)).To(Succeed())

		Expect(bustest.OfType[message.CommandProjectionSuccess](publisher)).To(HaveLen(2))
	})

	It("should report a version skew as a mismatch", func() {
		Expect(apply(projector, createUser)).To(Succeed())

		err := apply(projector, userEvent(entity.EventUserProfileUpdated, 3, "saga-3", entity.UserProfileUpdated{UserID: "u1", Name: pointer("Bob")}))
		Expect(errors.Is(err, entity.ErrProjectionMismatch)).To(BeTrue())

		failures := bustest.OfType[message.CommandProjectionFailure](publisher)
		Expect(failures).To(HaveLen(1))
		Expect(failures[0].CorrelationID).To(Equal("saga-3"))
	})

	It("should report a missing profile", func() {
		err := apply(projector, userEvent(entity.EventUserDeleted, 2, "saga-2", entity.UserDeleted{UserID: "u1"}))
		Expect(errors.Is(err, entity.ErrInstanceNotFound)).To(BeTrue())

		Expect(bustest.OfType[message.CommandProjectionFailure](publisher)).To(HaveLen(1))
	})

	It("should report infrastructure errors too", func() {
		store.err = errors.New("connection refused")

		Expect(apply(projector, createUser)).To(MatchError(ContainSubstring("connection refused")))

		failures := bustest.OfType[message.CommandProjectionFailure](publisher)
		Expect(failures).To(HaveLen(1))
		Expect(failures[0].CorrelationID).To(Equal("saga-1"))
		Expect(failures[0].ErrorMessage).To(ContainSubstring("connection refused"))
	})

	It("should report undecodable events", func() {
		broken := createUser
		broken.Data = []byte("{")

		Expect(apply(projector, broken)).To(MatchError(ContainSubstring("failed to decode")))
		Expect(bustest.OfType[message.CommandProjectionFailure](publisher)).To(HaveLen(1))
	})

	It("should fail when the report cannot be published", func() {
		publisher.FailWith(errors.New("broker down"))

		Expect(apply(projector, createUser)).To(MatchError(ContainSubstring("broker down")))
	})

	It("should not report events without command", func() {
		Expect(apply(projector, userEvent(entity.EventUserCreated, 1, "", entity.UserCreated{UserID: "u1", Name: "Ada"}))).To(Succeed())
		Expect(publisher.Messages()).To(BeEmpty())
	})
})
