package projection_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/repo/projectionstate"
	"github.com/identity-platform/profile-saga/internal/eventstore"
	"github.com/identity-platform/profile-saga/internal/factory"
	"github.com/identity-platform/profile-saga/internal/projection"
)

// Helper

type dispatched struct {
	Stream  string
	Version int64
}

type recordingHandler struct {
	calls []dispatched
	fail  map[dispatched]error
}

func (h *recordingHandler) HandleDomainEvent(_ context.Context, header entity.StreamedEventHeader, _ entity.StoredEvent) error {
	call := dispatched{Stream: header.StreamID, Version: header.EventNumberVersion}
	h.calls = append(h.calls, call)

	return h.fail[call]
}

// unsavedStates never persists a checkpoint.
type unsavedStates struct {
	projectionstate.SQLiteRepo
}

func (unsavedStates) TrySaveProjectionState(context.Context, entity.ProjectionState, *sql.Tx, *logr.Logger) bool {
	return false
}

func event(stream string, version int64, sequence int64) entity.StoredEvent {
	return entity.StoredEvent{
		DomainEvent: entity.DomainEvent{
			ID:     fmt.Sprintf("%s-%d", stream, version),
			Type:   entity.EventUserProfileUpdated,
			Stream: stream,
		},
		Version:  version,
		Sequence: sequence,
	}
}

func newStates(name string) projectionstate.SQLiteRepo {
	ctx := context.Background()

	db, closeFn, err := factory.OpenSQLite(ctx, filepath.Join(GinkgoT().TempDir(), "state.db"))
	Expect(err).NotTo(HaveOccurred())

	DeferCleanup(func() {
		_ = closeFn(ctx)
	})

	ret, err := projectionstate.NewSQLiteRepo(ctx, db, name)
	Expect(err).NotTo(HaveOccurred())

	return ret
}

// Test

var _ = Describe("Replaying events", func() {
	var (
		ctx     context.Context
		states  projectionstate.SQLiteRepo
		handler *recordingHandler
		health  *projection.Health
		engine  *projection.Engine
	)

	newEngine := func(options projection.Options) {
		var err error

		registry := prometheus.NewRegistry()

		health, err = projection.NewHealth(registry)
		Expect(err).NotTo(HaveOccurred())

		engine, err = projection.NewEngine(options, states, handler, health, clockwork.NewFakeClock(), registry)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		states = newStates("profiles")
		handler = &recordingHandler{fail: map[dispatched]error{}}
	})

	When("in single stream mode", func() {
		BeforeEach(func() {
			newEngine(projection.Options{Name: "profiles", Mode: config.ProjectionModeSingleStream, StreamName: "user_123"})
			Expect(states.TrySaveProjectionState(ctx, entity.NewProjectionState("profiles", event("user_123", 1, 1).Header(), time.Now()), nil, nil)).To(BeTrue())
		})

		It("should dispatch each version above the checkpoint once", func() {
			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_other", Events: []entity.StoredEvent{event("user_other", 1, 2)}},
				{Stream: "user_123", Events: []entity.StoredEvent{
					event("user_123", 1, 1),
					event("user_123", 2, 3),
					event("user_123", 2, 3),
					event("user_123", 3, 4),
				}},
			})).To(Succeed())

			Expect(handler.calls).To(Equal([]dispatched{{"user_123", 2}, {"user_123", 3}}))

			By("receiving the same batch again")
			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_123", Events: []entity.StoredEvent{event("user_123", 2, 3), event("user_123", 3, 4)}},
			})).To(Succeed())

			Expect(handler.calls).To(HaveLen(2))
		})

		It("should dispatch versions delivered out of order", func() {
			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_123", Events: []entity.StoredEvent{
					event("user_123", 2, 2),
					event("user_123", 4, 4),
					event("user_123", 3, 3),
					event("user_123", 4, 4),
				}},
			})).To(Succeed())

			Expect(handler.calls).To(Equal([]dispatched{{"user_123", 2}, {"user_123", 3}, {"user_123", 4}}))
		})
	})

	When("in single stream mode without checkpoint", func() {
		BeforeEach(func() {
			newEngine(projection.Options{Name: "profiles", Mode: config.ProjectionModeSingleStream, StreamName: "user_x"})
		})

		It("should dispatch every distinct version once", func() {
			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_x", Events: []entity.StoredEvent{event("user_x", 1, 1), event("user_x", 3, 3), event("user_x", 2, 2)}},
			})).To(Succeed())

			Expect(handler.calls).To(Equal([]dispatched{{"user_x", 1}, {"user_x", 2}, {"user_x", 3}}))
		})
	})

	When("in all streams mode", func() {
		BeforeEach(func() {
			newEngine(projection.Options{Name: "profiles", Mode: config.ProjectionModeAllStreams, StreamPrefix: "user_"})
			Expect(states.TrySaveProjectionState(ctx, entity.NewProjectionState("profiles", event("user_a", 1, 1).Header(), time.Now()), nil, nil)).To(BeTrue())
		})

		It("should filter per stream and dispatch in sequence order", func() {
			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_a", Events: []entity.StoredEvent{event("user_a", 1, 1), event("user_a", 2, 4)}},
				{Stream: "user_b", Events: []entity.StoredEvent{event("user_b", 1, 2), event("user_b", 2, 5)}},
				{Stream: "order_c", Events: []entity.StoredEvent{event("order_c", 1, 3)}},
			})).To(Succeed())

			Expect(handler.calls).To(Equal([]dispatched{{"user_b", 1}, {"user_a", 2}, {"user_b", 2}}))

			latest, err := states.GetLatestProjectedEventIDs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(latest).To(Equal(map[string]int64{"user_a": 2, "user_b": 2}))
		})

		It("should dispatch events of one stream delivered out of order in sequence order", func() {
			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_b", Events: []entity.StoredEvent{event("user_b", 2, 5), event("user_b", 1, 4)}},
				{Stream: "user_c", Events: []entity.StoredEvent{event("user_c", 1, 3)}},
			})).To(Succeed())

			Expect(handler.calls).To(Equal([]dispatched{{"user_c", 1}, {"user_b", 1}, {"user_b", 2}}))
		})

		It("should not dispatch twice in a run when a checkpoint could not be saved", func() {
			registry := prometheus.NewRegistry()

			health, err := projection.NewHealth(registry)
			Expect(err).NotTo(HaveOccurred())

			forgetful, err := projection.NewEngine(projection.Options{Name: "profiles", Mode: config.ProjectionModeAllStreams, StreamPrefix: "user_"},
				unsavedStates{states}, handler, health, clockwork.NewFakeClock(), registry)
			Expect(err).NotTo(HaveOccurred())

			batch := []eventstore.StreamAction{{Stream: "user_b", Events: []entity.StoredEvent{event("user_b", 1, 2)}}}

			Expect(forgetful.HandleBatch(ctx, batch)).To(Succeed())
			Expect(forgetful.HandleBatch(ctx, batch)).To(Succeed())
			Expect(handler.calls).To(Equal([]dispatched{{"user_b", 1}}))
		})
	})

	When("the handler fails", func() {
		BeforeEach(func() {
			newEngine(projection.Options{Name: "profiles", Mode: config.ProjectionModeAllStreams, StreamPrefix: "user_"})
		})

		It("should reset the health on mismatch and go on", func() {
			health.Set(projection.Degraded)
			handler.fail[dispatched{"user_a", 1}] = entity.ProjectionMismatchError{Kind: "profile", ID: "a", Expected: 0, Actual: 1}

			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_a", Events: []entity.StoredEvent{event("user_a", 1, 1), event("user_a", 2, 2)}},
			})).To(Succeed())

			Expect(health.Status()).To(Equal(projection.Healthy))
			Expect(handler.calls).To(HaveLen(2))
		})

		It("should keep the health and checkpoint the error when the instance is missing", func() {
			handler.fail[dispatched{"user_a", 1}] = entity.InstanceNotFoundError{Kind: "profile", ID: "a"}

			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_a", Events: []entity.StoredEvent{event("user_a", 1, 1)}},
			})).To(Succeed())

			Expect(health.Status()).To(Equal(projection.Healthy))

			checkpoint, found, err := states.GetProjectionState(ctx, "user_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(checkpoint.EventNumberVersion).To(BeEquivalentTo(1))
			Expect(checkpoint.ErrorMessage).To(ContainSubstring("instance not found"))
		})

		It("should degrade, checkpoint the error and go on with the batch on any other error", func() {
			handler.fail[dispatched{"user_a", 1}] = errors.New("valkey unreachable")

			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_a", Events: []entity.StoredEvent{event("user_a", 1, 1)}},
				{Stream: "user_b", Events: []entity.StoredEvent{event("user_b", 1, 2)}},
			})).To(Succeed())

			Expect(health.Status()).To(Equal(projection.Degraded))
			Expect(handler.calls).To(Equal([]dispatched{{"user_a", 1}, {"user_b", 1}}))

			checkpoint, found, err := states.GetProjectionState(ctx, "user_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(checkpoint.EventNumberVersion).To(BeEquivalentTo(1))
			Expect(checkpoint.ErrorMessage).To(ContainSubstring("valkey unreachable"))

			By("not dispatching the failed event again")
			Expect(engine.HandleBatch(ctx, []eventstore.StreamAction{
				{Stream: "user_a", Events: []entity.StoredEvent{event("user_a", 1, 1), event("user_a", 2, 3)}},
			})).To(Succeed())
			Expect(handler.calls).To(Equal([]dispatched{{"user_a", 1}, {"user_b", 1}, {"user_a", 2}}))

			By("serving the health")
			recorder := httptest.NewRecorder()
			health.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			Expect(recorder.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(recorder.Body.String()).To(Equal("Degraded"))
		})

		It("should stop without checkpoint when the context ends", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			Expect(engine.HandleBatch(cancelled, []eventstore.StreamAction{
				{Stream: "user_a", Events: []entity.StoredEvent{event("user_a", 1, 1)}},
			})).To(MatchError(context.Canceled))
			Expect(handler.calls).To(BeEmpty())
		})
	})

	It("should refuse a single stream projection without stream", func() {
		_, err := projection.NewEngine(projection.Options{Name: "profiles", Mode: config.ProjectionModeSingleStream}, states, handler, nil, clockwork.NewFakeClock(), prometheus.NewRegistry())
		Expect(err).To(HaveOccurred())
	})
})
