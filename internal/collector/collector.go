package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/identity-platform/profile-saga/internal/bus"
	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
)

// Composer builds the composite response of a completed round.
type Composer func(meta entity.StartCollectingEventData, successes []entity.EventData, failures []entity.EventData) (message.Message, error)

type tracked struct {
	// classify returns the collecting id of the message and whether it is a success.
	classify func(payload json.RawMessage) (string, bool, error)
	compose  Composer
	// optional messages without collecting id are not part of any round and are skipped.
	optional bool
}

// Collector aggregates the responses sharing a collecting id into one composite response.
type Collector struct {
	store     repo.CollectorStore
	publisher bus.Publisher
	clock     clockwork.Clock
	retry     config.Retry

	tracked map[string]tracked

	items     *prometheus.CounterVec
	completed prometheus.Counter

	logger *logr.Logger
}

func NewCollector(store repo.CollectorStore, publisher bus.Publisher, clock clockwork.Clock, retryConfig config.Retry, registry prometheus.Registerer) (*Collector, error) {
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "items_total",
		Help:      "Number of collected items by type and result",
	}, []string{"type", "result"})

	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collector",
		Name:      "completed_total",
		Help:      "Number of completed collecting rounds",
	})

	for _, c := range []prometheus.Collector{items, completed} {
		err := registry.Register(c)
		if err != nil {
			return nil, fmt.Errorf("failed to register collector metrics: %w", err)
		}
	}

	ret := &Collector{
		store:     store,
		publisher: publisher,
		clock:     clock,
		retry:     retryConfig,
		tracked:   map[string]tracked{},
		items:     items,
		completed: completed,
	}

	Track(ret, func(m message.SubmitCommandSuccess) (string, bool) { return m.CollectingID, true }, ComposeItems, true)
	Track(ret, func(m message.SubmitCommandFailure) (string, bool) { return m.CollectingID, false }, ComposeItems, true)
	Track(ret, func(m message.ValidationResponse) (string, bool) { return m.CollectingID, m.IsValid }, ComposeValidation, false)

	return ret, nil
}

func (c *Collector) WithLogger(logger logr.Logger) *Collector {
	c.logger = &logger

	return c
}

// Track makes the collector consume messages of type T. classify returns the collecting id and
// whether the message is a success. The composer of the first collected item builds the composite.
func Track[T message.Message](c *Collector, classify func(T) (string, bool), compose Composer, optional bool) {
	var zero T

	c.tracked[zero.MessageType()] = tracked{
		classify: func(payload json.RawMessage) (string, bool, error) {
			var msg T

			err := json.Unmarshal(payload, &msg)
			if err != nil {
				return "", false, err
			}

			id, success := classify(msg)

			return id, success, nil
		},
		compose:  compose,
		optional: optional,
	}
}

// Register routes the collector messages.
func (c *Collector) Register(router *bus.Router) *bus.Router {
	bus.Route(router, func(ctx context.Context, msg message.StartCollectingMessage, _ message.Envelope) error {
		return c.Start(ctx, msg)
	})
	bus.Route(router, func(ctx context.Context, msg message.SetCollectItemsAccountMessage, _ message.Envelope) error {
		return c.SetCollectItemsAccount(ctx, msg)
	})
	bus.Route(router, func(ctx context.Context, msg message.GetCollectingItemsStatusMessage, _ message.Envelope) error {
		return c.GetStatus(ctx, msg)
	})

	for messageType := range c.tracked {
		router.Handle(messageType, c.Consume)
	}

	return router
}

// Consume stores one tracked response and completes the round when it was the last expected one.
func (c *Collector) Consume(ctx context.Context, env message.Envelope) error {
	t, ok := c.tracked[env.Type]
	if !ok {
		return common.NewContractError(bus.ErrUnknownMessage, "type %s is not collected", env.Type)
	}

	collectingID, success, err := t.classify(env.Payload)
	if err != nil {
		return common.NewErrProcessingError(err, common.CategoryDecode, nil, "failed to decode %s", env.Type)
	}

	if collectingID == "" {
		if t.optional {
			c.logInfo(3, "Skipping message outside of any collecting round", "type", env.Type, "key", env.Key)

			return nil
		}

		return common.NewContractError(entity.ErrEmptyCollectingID, "invalid %s", env.Type)
	}

	count, err := c.store.Append(ctx, entity.EventData{
		CollectingID:  collectingID,
		Type:          env.Type,
		Data:          env.Payload,
		ErrorOccurred: !success,
		Host:          env.Host,
		RequestID:     env.RequestID,
	})
	if err != nil {
		return err
	}

	c.items.WithLabelValues(env.Type, result(success)).Inc()
	c.logInfo(2, "Item collected", "collectingId", collectingID, "type", env.Type, "count", count)

	return c.checkStatus(ctx, collectingID, count, true)
}

// checkStatus completes the round when count reached the expected count. Otherwise it
// publishes the progress every modulo items when progress is set.
func (c *Collector) checkStatus(ctx context.Context, collectingID string, count int, progress bool) error {
	meta, err := c.store.GetMeta(ctx, collectingID)
	if errors.Is(err, repo.ErrNotFound) {
		c.logInfo(2, "Collecting round not started yet", "collectingId", collectingID, "count", count)

		return nil
	}

	if err != nil {
		return err
	}

	if meta.Completed() {
		return nil
	}

	if meta.CollectItemsAccount != nil && count > 0 && count >= *meta.CollectItemsAccount {
		return c.complete(ctx, meta)
	}

	every := meta.StatusDispatch.Every()
	if !progress || every == 0 || count == 0 || count%every != 0 {
		return nil
	}

	return c.publisher.Publish(ctx, message.CollectingItemsStatus{
		CollectingID:          collectingID,
		CollectedItemsAccount: count,
		ExternalProcessID:     meta.ExternalProcessID,
	})
}

func (c *Collector) complete(ctx context.Context, meta entity.StartCollectingEventData) error {
	now := c.clock.Now()
	meta.CompletedAt = &now

	won, err := c.store.MarkCompleted(ctx, meta.CollectingID, meta)
	if err != nil {
		return err
	}

	if !won {
		c.logInfo(1, "Collecting round already completed", "collectingId", meta.CollectingID)

		return nil
	}

	items, err := c.store.List(ctx, meta.CollectingID)
	if err != nil {
		return err
	}

	successes := make([]entity.EventData, 0, len(items))
	failures := make([]entity.EventData, 0)

	for _, item := range items {
		if item.ErrorOccurred {
			failures = append(failures, item)
		} else {
			successes = append(successes, item)
		}
	}

	compose := ComposeItems
	if len(items) > 0 {
		t, ok := c.tracked[items[0].Type]
		if ok {
			compose = t.compose
		}
	}

	composite, err := compose(meta, successes, failures)
	if err != nil {
		return common.NewErrProcessingError(err, common.CategoryDecode, nil, "failed to compose response of %s", meta.CollectingID)
	}

	c.completed.Inc()
	c.logInfo(1, "Collecting round completed", "collectingId", meta.CollectingID, "successes", len(successes), "failures", len(failures))

	// the round is marked completed: a redelivery would not publish it again
	return bus.PublishOrDeadLetter(ctx, c.publisher, c.retry, composite)
}

// Start records a new round. Items received before the start are taken into account.
func (c *Collector) Start(ctx context.Context, msg message.StartCollectingMessage) error {
	if msg.CollectingID == "" {
		return common.NewContractError(entity.ErrEmptyCollectingID, "invalid %s", msg.MessageType())
	}

	err := c.store.Start(ctx, entity.StartCollectingEventData{
		CollectingID:        msg.CollectingID,
		CollectItemsAccount: msg.CollectItemsAccount,
		StatusDispatch:      entity.StatusDispatch{Modulo: msg.StatusDispatchModulo},
		ExternalProcessID:   msg.ExternalProcessID,
		Started:             c.clock.Now(),
	})
	if err != nil {
		publishErr := c.publisher.Publish(ctx, message.StartCollectingFailure{CollectingID: msg.CollectingID, ErrorMessage: err.Error()})
		if publishErr != nil {
			c.logError(publishErr, "Failed to publish start failure", "collectingId", msg.CollectingID)
		}

		return err
	}

	err = c.publisher.Publish(ctx, message.StartCollectingSuccess{CollectingID: msg.CollectingID})
	if err != nil {
		return err
	}

	return c.recheck(ctx, msg.CollectingID)
}

// SetCollectItemsAccount sets the expected count of a round unless it is already set.
func (c *Collector) SetCollectItemsAccount(ctx context.Context, msg message.SetCollectItemsAccountMessage) error {
	if msg.CollectingID == "" {
		return common.NewContractError(entity.ErrEmptyCollectingID, "invalid %s", msg.MessageType())
	}

	set, err := c.store.SetExpected(ctx, msg.CollectingID, msg.CollectItemsAccount)
	if err != nil {
		return err
	}

	if !set {
		c.logInfo(1, "Expected count already set", "collectingId", msg.CollectingID)
	}

	return c.recheck(ctx, msg.CollectingID)
}

// GetStatus publishes the progress of a round on demand.
func (c *Collector) GetStatus(ctx context.Context, msg message.GetCollectingItemsStatusMessage) error {
	if msg.CollectingID == "" {
		return common.NewContractError(entity.ErrEmptyCollectingID, "invalid %s", msg.MessageType())
	}

	meta, err := c.store.GetMeta(ctx, msg.CollectingID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	count, err := c.store.Count(ctx, msg.CollectingID)
	if err != nil {
		return err
	}

	return c.publisher.Publish(ctx, message.CollectingItemsStatus{
		CollectingID:          msg.CollectingID,
		CollectedItemsAccount: count,
		ExternalProcessID:     meta.ExternalProcessID,
	})
}

// recheck completes the round if its items are already there. It never publishes progress.
func (c *Collector) recheck(ctx context.Context, collectingID string) error {
	count, err := c.store.Count(ctx, collectingID)
	if err != nil {
		return err
	}

	return c.checkStatus(ctx, collectingID, count, false)
}

func result(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}

func (c *Collector) logInfo(level int, msg string, keysAndValues ...any) {
	if c.logger == nil {
		return
	}

	c.logger.V(level).Info(msg, keysAndValues...)
}

func (c *Collector) logError(err error, msg string, keysAndValues ...any) {
	if c.logger == nil {
		return
	}

	c.logger.Error(err, msg, keysAndValues...)
}
