package saga_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/mock/gomock"

	"github.com/identity-platform/profile-saga/internal/bus/bustest"
	"github.com/identity-platform/profile-saga/internal/command"
	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
	repomock "github.com/identity-platform/profile-saga/internal/domain/repo/mock"
	"github.com/identity-platform/profile-saga/internal/eventstore"
	"github.com/identity-platform/profile-saga/internal/factory"
	"github.com/identity-platform/profile-saga/internal/saga"
	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

// Helper

type memStore struct {
	mu      sync.Mutex
	records map[string]repo.SagaRecord
}

func newMemStore() *memStore {
	return &memStore{records: map[string]repo.SagaRecord{}}
}

func (s *memStore) Get(_ context.Context, correlationID string) (repo.SagaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret, ok := s.records[correlationID]
	if !ok {
		return repo.SagaRecord{}, fmt.Errorf("saga %s: %w", correlationID, repo.ErrNotFound)
	}

	return ret, nil
}

func (s *memStore) Save(_ context.Context, record repo.SagaRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records[record.CorrelationID].Revision != record.Revision {
		return 0, repo.ErrRevisionConflict
	}

	record.Revision++
	s.records[record.CorrelationID] = record

	return record.Revision, nil
}

func (s *memStore) Delete(_ context.Context, correlationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, correlationID)

	return nil
}

func (s *memStore) state(correlationID string) (saga.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[correlationID]
	if !ok {
		return saga.State{}, false
	}

	ret := saga.State{}
	Expect(json.Unmarshal(record.Payload, &ret)).To(Succeed())

	return ret, true
}

type rules map[string]config.ExternalValidation

func (r rules) ExternalValidationFor(name string) (config.ExternalValidation, bool) {
	ret, ok := r[name]

	return ret, ok && ret.Responders > 0
}

// feed hands every published message addressed to the saga back to the handler, until none is left.
func feed(ctx context.Context, handler *saga.Handler, publisher *bustest.Publisher) []message.Message {
	ret := make([]message.Message, 0)

	for {
		msgs := publisher.Drain()
		if len(msgs) == 0 {
			return ret
		}

		for _, msg := range msgs {
			switch msg.(type) {
			case message.ValidateCommand, message.ValidationCompositeResponse:
				Expect(handler.Handle(ctx, msg)).To(Succeed())
			default:
				ret = append(ret, msg)
			}
		}
	}
}

// Test

var _ = Describe("Saga handler", func() {
	var ctx context.Context
	var store *memStore
	var events *eventstore.SQLiteClient
	var publisher *bustest.Publisher
	var registry *prometheus.Registry
	var external rules
	var handler *saga.Handler

	BeforeEach(func() {
		ctx = context.Background()
		store = newMemStore()
		publisher = bustest.NewPublisher()
		registry = prometheus.NewRegistry()
		external = rules{}

		db, closeFn, err := factory.OpenSQLite(ctx, filepath.Join(GinkgoT().TempDir(), "events.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(closeFn, ctx)

		clock := clockwork.NewFakeClock()

		events, err = eventstore.NewSQLiteClient(ctx, db, clock)
		Expect(err).NotTo(HaveOccurred())

		commands := command.NewUserRegistry(command.NewValidate(), clock, events)
		publishers := command.NewPublisherFactory(command.NewStoreEventPublisher(events))

		machine := saga.NewMachine(commands, external, publishers, saga.NewPublishLock())

		handler, err = saga.NewHandler(machine, store, publisher, config.Retry{MaxAttempt: 1}, registry)
		Expect(err).NotTo(HaveOccurred())
	})

	When("a valid CreateUser is submitted without external validation", func() {
		It("should succeed exactly once with the created entity", func() {
			Expect(handler.Handle(ctx, message.SubmitCommand{
				CorrelationID: "corr-1",
				Command:       command.CreateUserCommand,
				Data:          json.RawMessage(`{"name":"Ada","email":"ada@example.com"}`),
				ID:            entity.CommandIdentifier{ID: "cmd-1"},
				Initiator:     "alice",
			})).To(Succeed())

			outbound := feed(ctx, handler, publisher)
			Expect(outbound).To(BeEmpty(), "no ValidationTriggered without external validation")

			state, ok := store.state("corr-1")
			Expect(ok).To(BeTrue())
			Expect(state.Status).To(Equal(saga.StatusExecuted))
			Expect(state.EntityID).NotTo(BeEmpty())

			stored, err := events.ReadAll(ctx, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HaveLen(1))
			Expect(stored[0].Metadata.CommandID).To(Equal("corr-1"))

			Expect(handler.Handle(ctx, message.CommandProjectionSuccess{CorrelationID: "corr-1", EntityID: state.EntityID})).To(Succeed())

			successes := bustest.OfType[message.SubmitCommandSuccess](publisher)
			Expect(successes).To(Equal([]message.SubmitCommandSuccess{{Command: "CreateUser", ID: "cmd-1", EntityID: state.EntityID}}))

			_, ok = store.state("corr-1")
			Expect(ok).To(BeFalse(), "the saga is finalized")

			Expect(outcomeCount(registry, "CreateUser", "Success")).To(BeEquivalentTo(1))

			By("discarding late answers")

			Expect(handler.Handle(ctx, message.CommandProjectionSuccess{CorrelationID: "corr-1", EntityID: state.EntityID})).To(Succeed())
			Expect(bustest.OfType[message.SubmitCommandSuccess](publisher)).To(HaveLen(1))
		})
	})

	When("the internal validation fails", func() {
		It("should reject the command with the validation errors", func() {
			Expect(handler.Handle(ctx, message.SubmitCommand{
				CorrelationID: "corr-2",
				Command:       command.CreateUserCommand,
				Data:          json.RawMessage(`{"email":"ada@example.com"}`),
				ID:            entity.CommandIdentifier{ID: "cmd-2"},
			})).To(Succeed())

			outbound := feed(ctx, handler, publisher)

			Expect(outbound).To(HaveLen(1))

			failure, ok := outbound[0].(message.SubmitCommandFailure)
			Expect(ok).To(BeTrue())
			Expect(failure.ErrorMessage).To(Equal("Validation failed."))
			Expect(failure.Errors).To(Equal([]string{"Name required"}))

			_, ok = store.state("corr-2")
			Expect(ok).To(BeFalse(), "the rejected saga is finalized")
		})
	})

	When("the command requires external validation", func() {
		It("should wait for the composite response", func() {
			external["CreateUser"] = config.ExternalValidation{Responders: 2}

			Expect(handler.Handle(ctx, message.SubmitCommand{
				CorrelationID: "corr-3",
				Command:       command.CreateUserCommand,
				Data:          json.RawMessage(`{"name":"Ada","email":"ada@example.com"}`),
				ID:            entity.CommandIdentifier{ID: "cmd-3"},
			})).To(Succeed())

			outbound := feed(ctx, handler, publisher)
			Expect(outbound).To(HaveLen(2))
			Expect(outbound[0]).To(BeAssignableToTypeOf(message.StartCollectingMessage{}))
			Expect(outbound[1]).To(BeAssignableToTypeOf(message.ValidationTriggered{}))

			state, _ := store.state("corr-3")
			Expect(state.Status).To(Equal(saga.StatusInternalValidated))

			Expect(handler.Handle(ctx, message.ValidationCompositeResponse{CollectingID: "corr-3", IsValid: true})).To(Succeed())

			state, _ = store.state("corr-3")
			Expect(state.Status).To(Equal(saga.StatusExecuted))
		})
	})

	When("a submission is delivered twice", func() {
		It("should ignore the duplicate", func() {
			submitted := message.SubmitCommand{
				CorrelationID: "corr-4",
				Command:       command.CreateUserCommand,
				Data:          json.RawMessage(`{"name":"Ada","email":"ada@example.com"}`),
			}

			Expect(handler.Handle(ctx, submitted)).To(Succeed())
			Expect(handler.Handle(ctx, submitted)).To(Succeed())

			Expect(bustest.OfType[message.ValidateCommand](publisher)).To(HaveLen(1))
		})
	})

	When("the publication of the outcome fails", func() {
		It("should hand the outbound messages to the dead letter queue", func() {
			publisher.FailWith(pipeline.NewErrRetryableError(fmt.Errorf("broker down")))

			err := handler.Handle(ctx, message.SubmitCommand{
				CorrelationID: "corr-5",
				Command:       command.CreateUserCommand,
				Data:          json.RawMessage(`{"name":"Ada","email":"ada@example.com"}`),
			})
			Expect(err).To(HaveOccurred())

			pErr := pipeline.AsProcessingError(err)
			Expect(pErr.Category).To(Equal("publish"))
			Expect(err).NotTo(MatchError(pipeline.ErrRetryableError))
			Expect(pErr.AdditionalInputs).To(HaveLen(1))
			Expect(pErr.AdditionalInputs[0].Key).To(Equal(message.TypeValidateCommand))
		})
	})
})

var _ = Describe("Saga handler persistence", func() {
	It("should ask for a retry when the saga moved concurrently", func() {
		ctrl := gomock.NewController(GinkgoT())
		store := repomock.NewMockSagaStore(ctrl)

		state := saga.State{CorrelationID: "corr-6", Command: "CreateUser", Status: saga.StatusExecuted}
		payload, err := json.Marshal(state)
		Expect(err).NotTo(HaveOccurred())

		store.EXPECT().Get(gomock.Any(), "corr-6").Return(repo.SagaRecord{CorrelationID: "corr-6", Revision: 2, Payload: payload}, nil)
		store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, record repo.SagaRecord) (int64, error) {
			Expect(record.Revision).To(BeEquivalentTo(2))

			return 0, repo.ErrRevisionConflict
		})

		machine := saga.NewMachine(command.NewRegistry(), rules{}, command.NewPublisherFactory(nil), saga.NoopLock{})

		handler, err := saga.NewHandler(machine, store, bustest.NewPublisher(), config.Retry{}, prometheus.NewRegistry())
		Expect(err).NotTo(HaveOccurred())

		// an executed saga takes a valid composite response without creating the event again
		err = handler.Handle(context.Background(), message.ValidationCompositeResponse{CollectingID: "corr-6", IsValid: true})
		Expect(err).To(MatchError(pipeline.ErrRetryableError))
	})

	It("should not create the event again when the saga cannot be stored after it", func() {
		ctx := context.Background()

		db, closeFn, err := factory.OpenSQLite(ctx, filepath.Join(GinkgoT().TempDir(), "events.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(closeFn, ctx)

		clock := clockwork.NewFakeClock()

		events, err := eventstore.NewSQLiteClient(ctx, db, clock)
		Expect(err).NotTo(HaveOccurred())

		state := saga.State{
			CorrelationID: "corr-7",
			Command:       command.CreateUserCommand,
			Data:          json.RawMessage(`{"userId":"6f1c2f4e-4a4b-4c1e-9a35-0d1b2c3d4e5f","name":"Ada","email":"ada@example.com"}`),
			Status:        saga.StatusInternalValidated,
		}
		payload, err := json.Marshal(state)
		Expect(err).NotTo(HaveOccurred())

		ctrl := gomock.NewController(GinkgoT())
		store := repomock.NewMockSagaStore(ctrl)

		store.EXPECT().Get(gomock.Any(), "corr-7").Return(repo.SagaRecord{CorrelationID: "corr-7", Revision: 1, Payload: payload}, nil).Times(1)
		store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(0), pipeline.NewErrRetryableError(errors.New("TRYAGAIN"))).Times(1)

		commands := command.NewUserRegistry(command.NewValidate(), clock, events)
		machine := saga.NewMachine(commands, rules{}, command.NewPublisherFactory(command.NewStoreEventPublisher(events)), saga.NoopLock{})

		handler, err := saga.NewHandler(machine, store, bustest.NewPublisher(), config.Retry{MaxAttempt: 3}, prometheus.NewRegistry())
		Expect(err).NotTo(HaveOccurred())

		retried := pipeline.NewRetryProcessing[message.Message](pipeline.ProcessingFunc[message.Message](handler.Handle), pipeline.RetryConfig{MaxAttempt: 3})

		err = retried.Process(ctx, message.ValidationCompositeResponse{CollectingID: "corr-7", IsValid: true})
		Expect(err).To(HaveOccurred())
		Expect(err).NotTo(MatchError(pipeline.ErrRetryableError))

		pErr := pipeline.AsProcessingError(err)
		Expect(pErr.Category).To(Equal("store"))
		Expect(pErr.AdditionalInputs).To(HaveLen(1))
		Expect(pErr.AdditionalInputs[0].Key).To(Equal("corr-7"))

		stored, err := events.ReadAll(ctx, 0, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(HaveLen(1), "the event is appended once")
	})
})

func outcomeCount(registry *prometheus.Registry, command string, outcome string) float64 {
	families, err := registry.Gather()
	Expect(err).NotTo(HaveOccurred())

	for _, family := range families {
		if family.GetName() != "saga_outcome_total" {
			continue
		}

		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}

			if labels["command"] == command && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}

	return 0
}
