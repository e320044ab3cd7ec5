package collector_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/identity-platform/profile-saga/internal/bus"
	"github.com/identity-platform/profile-saga/internal/bus/bustest"
	"github.com/identity-platform/profile-saga/internal/collector"
	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

// Helper

type memStore struct {
	mu    sync.Mutex
	meta  map[string]entity.StartCollectingEventData
	items map[string][]entity.EventData
}

func newMemStore() *memStore {
	return &memStore{
		meta:  map[string]entity.StartCollectingEventData{},
		items: map[string][]entity.EventData{},
	}
}

func (s *memStore) Start(_ context.Context, data entity.StartCollectingEventData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meta[data.CollectingID] = data

	return nil
}

func (s *memStore) GetMeta(_ context.Context, collectingID string) (entity.StartCollectingEventData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret, ok := s.meta[collectingID]
	if !ok {
		return ret, fmt.Errorf("round %s: %w", collectingID, repo.ErrNotFound)
	}

	return ret, nil
}

func (s *memStore) SetExpected(_ context.Context, collectingID string, expected int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.meta[collectingID]
	if !ok {
		return false, fmt.Errorf("round %s: %w", collectingID, repo.ErrNotFound)
	}

	if meta.CollectItemsAccount != nil {
		return false, nil
	}

	meta.CollectItemsAccount = &expected
	s.meta[collectingID] = meta

	return true, nil
}

func (s *memStore) Append(_ context.Context, item entity.EventData) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.CollectingID] = append(s.items[item.CollectingID], item)

	return len(s.items[item.CollectingID]), nil
}

func (s *memStore) Count(_ context.Context, collectingID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items[collectingID]), nil
}

func (s *memStore) List(_ context.Context, collectingID string) ([]entity.EventData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]entity.EventData(nil), s.items[collectingID]...), nil
}

func (s *memStore) MarkCompleted(_ context.Context, collectingID string, data entity.StartCollectingEventData) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta[collectingID].Completed() {
		return false, nil
	}

	s.meta[collectingID] = data

	return true, nil
}

func ptr(i int) *int {
	return &i
}

func envelope(msg message.Message) message.Envelope {
	env, err := message.Wrap(msg, "host-1", "req-1", time.Now())
	Expect(err).NotTo(HaveOccurred())

	return env
}

// Test

var _ = Describe("Collecting responses", func() {
	var (
		ctx       context.Context
		store     *memStore
		publisher *bustest.Publisher
		router    *bus.Router
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newMemStore()
		publisher = bustest.NewPublisher()

		c, err := collector.NewCollector(store, publisher, clockwork.NewFakeClock(), config.Retry{MaxAttempt: 1}, prometheus.NewRegistry())
		Expect(err).NotTo(HaveOccurred())

		router = c.Register(bus.NewRouter())
	})

	process := func(msg message.Message) error {
		return router.Process(ctx, envelope(msg))
	}

	When("a round expects three items", func() {
		BeforeEach(func() {
			Expect(process(message.StartCollectingMessage{CollectingID: "round", CollectItemsAccount: ptr(3), StatusDispatchModulo: ptr(1)})).To(Succeed())
			Expect(bustest.OfType[message.StartCollectingSuccess](publisher)).To(HaveLen(1))
		})

		It("should publish one composite once the third item arrives", func() {
			for i := 0; i < 3; i++ {
				Expect(process(message.SubmitCommandSuccess{Command: "CreateUser", ID: fmt.Sprint(i), CollectingID: "round"})).To(Succeed())
			}

			responses := bustest.OfType[message.CollectingItemsResponse](publisher)
			Expect(responses).To(HaveLen(1))
			Expect(responses[0].Successes).To(HaveLen(3))
			Expect(responses[0].Failures).To(BeEmpty())

			statuses := bustest.OfType[message.CollectingItemsStatus](publisher)
			Expect(statuses).To(HaveLen(2), "progress of the first two items only")
			Expect(statuses[1].CollectedItemsAccount).To(Equal(2))
		})

		It("should split failures from successes", func() {
			Expect(process(message.SubmitCommandSuccess{ID: "1", CollectingID: "round"})).To(Succeed())
			Expect(process(message.SubmitCommandFailure{ID: "2", CollectingID: "round", ErrorMessage: "Validation failed."})).To(Succeed())
			Expect(process(message.SubmitCommandSuccess{ID: "3", CollectingID: "round"})).To(Succeed())

			responses := bustest.OfType[message.CollectingItemsResponse](publisher)
			Expect(responses).To(HaveLen(1))
			Expect(responses[0].Successes).To(HaveLen(2))
			Expect(responses[0].Failures).To(HaveLen(1))
		})

		It("should ignore items arriving after the completion", func() {
			for i := 0; i < 4; i++ {
				Expect(process(message.SubmitCommandSuccess{ID: fmt.Sprint(i), CollectingID: "round"})).To(Succeed())
			}

			Expect(bustest.OfType[message.CollectingItemsResponse](publisher)).To(HaveLen(1))
			Expect(bustest.OfType[message.CollectingItemsStatus](publisher)).To(HaveLen(2))
		})
	})

	When("no status modulo is given", func() {
		It("should never publish progress", func() {
			Expect(process(message.StartCollectingMessage{CollectingID: "round", CollectItemsAccount: ptr(5)})).To(Succeed())
			Expect(process(message.StartCollectingMessage{CollectingID: "zero", CollectItemsAccount: ptr(5), StatusDispatchModulo: ptr(0)})).To(Succeed())

			for i := 0; i < 3; i++ {
				Expect(process(message.SubmitCommandSuccess{ID: fmt.Sprint(i), CollectingID: "round"})).To(Succeed())
				Expect(process(message.SubmitCommandSuccess{ID: fmt.Sprint(i), CollectingID: "zero"})).To(Succeed())
			}

			Expect(bustest.OfType[message.CollectingItemsStatus](publisher)).To(BeEmpty())
			Expect(bustest.OfType[message.CollectingItemsResponse](publisher)).To(BeEmpty())
		})
	})

	When("the expected count is set after the items arrived", func() {
		It("should complete the round right away", func() {
			Expect(process(message.StartCollectingMessage{CollectingID: "round"})).To(Succeed())
			Expect(process(message.SubmitCommandSuccess{ID: "1", CollectingID: "round"})).To(Succeed())
			Expect(process(message.SubmitCommandSuccess{ID: "2", CollectingID: "round"})).To(Succeed())
			Expect(bustest.OfType[message.CollectingItemsResponse](publisher)).To(BeEmpty())

			Expect(process(message.SetCollectItemsAccountMessage{CollectingID: "round", CollectItemsAccount: 2})).To(Succeed())

			responses := bustest.OfType[message.CollectingItemsResponse](publisher)
			Expect(responses).To(HaveLen(1))
			Expect(responses[0].Successes).To(HaveLen(2))
		})

		It("should keep the first expected count", func() {
			Expect(process(message.StartCollectingMessage{CollectingID: "round", CollectItemsAccount: ptr(3)})).To(Succeed())
			Expect(process(message.SetCollectItemsAccountMessage{CollectingID: "round", CollectItemsAccount: 1})).To(Succeed())
			Expect(process(message.SubmitCommandSuccess{ID: "1", CollectingID: "round"})).To(Succeed())

			Expect(bustest.OfType[message.CollectingItemsResponse](publisher)).To(BeEmpty())
		})
	})

	When("items arrive before the round is started", func() {
		It("should take them into account on start", func() {
			Expect(process(message.SubmitCommandSuccess{ID: "1", CollectingID: "round"})).To(Succeed())
			Expect(process(message.StartCollectingMessage{CollectingID: "round", CollectItemsAccount: ptr(1), StatusDispatchModulo: ptr(1)})).To(Succeed())

			Expect(bustest.OfType[message.CollectingItemsResponse](publisher)).To(HaveLen(1))
			Expect(bustest.OfType[message.CollectingItemsStatus](publisher)).To(BeEmpty())
		})
	})

	When("the status is requested", func() {
		It("should publish the current count", func() {
			Expect(process(message.StartCollectingMessage{CollectingID: "round", ExternalProcessID: "import-7"})).To(Succeed())
			Expect(process(message.SubmitCommandFailure{ID: "1", CollectingID: "round"})).To(Succeed())
			Expect(process(message.GetCollectingItemsStatusMessage{CollectingID: "round"})).To(Succeed())

			Expect(bustest.OfType[message.CollectingItemsStatus](publisher)).To(ConsistOf(message.CollectingItemsStatus{
				CollectingID:          "round",
				CollectedItemsAccount: 1,
				ExternalProcessID:     "import-7",
			}))
		})
	})

	When("validators answer", func() {
		It("should merge their results", func() {
			Expect(process(message.StartCollectingMessage{CollectingID: "saga-1", CollectItemsAccount: ptr(2)})).To(Succeed())
			Expect(process(message.ValidationResponse{CollectingID: "saga-1", IsValid: true, Validator: "a"})).To(Succeed())
			Expect(process(message.ValidationResponse{
				CollectingID: "saga-1",
				Validator:    "b",
				Errors:       []entity.ValidationError{{Field: "Email", Message: "Email already used"}},
			})).To(Succeed())

			composites := bustest.OfType[message.ValidationCompositeResponse](publisher)
			Expect(composites).To(HaveLen(1))
			Expect(composites[0].CollectingID).To(Equal("saga-1"))
			Expect(composites[0].IsValid).To(BeFalse())
			Expect(composites[0].Result().Messages()).To(ConsistOf("Email already used"))
		})
	})

	When("messages do not belong to a round", func() {
		It("should skip command answers", func() {
			Expect(process(message.SubmitCommandSuccess{ID: "1"})).To(Succeed())
			Expect(publisher.Messages()).To(BeEmpty())
		})

		It("should reject validation answers", func() {
			err := process(message.ValidationResponse{IsValid: true})

			pErr := pipeline.ErrProcessingError{}
			Expect(errors.As(err, &pErr)).To(BeTrue())
			Expect(pErr.Category).To(Equal(common.CategoryContract))
		})

		It("should reject a start without collecting id", func() {
			err := process(message.StartCollectingMessage{})

			Expect(errors.Is(err, entity.ErrEmptyCollectingID)).To(BeTrue())
		})
	})

	When("the composite cannot be published", func() {
		It("should route it to the dead letter queue", func() {
			Expect(process(message.StartCollectingMessage{CollectingID: "round", CollectItemsAccount: ptr(1)})).To(Succeed())

			publisher.FailWith(pipeline.NewErrRetryableError(errors.New("broker down")))
			err := process(message.SubmitCommandSuccess{ID: "1", CollectingID: "round"})

			pErr := pipeline.ErrProcessingError{}
			Expect(errors.As(err, &pErr)).To(BeTrue())
			Expect(pErr.Category).To(Equal(common.CategoryPublish))
			Expect(pErr.AdditionalInputs).To(HaveLen(1))
			Expect(pErr.AdditionalInputs[0].Key).To(Equal(message.TypeCollectingItemsResponse))
		})
	})
})
