package saga

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/identity-platform/profile-saga/internal/bus"
	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

const (
	outcomeDiscarded = "Discarded"
	outcomeIgnored   = "Ignored"
	outcomeDuplicate = "Duplicate"
)

// Handler loads the saga addressed by a message, runs the transition, stores the new state and
// publishes the outbound messages.
type Handler struct {
	machine   *Machine
	store     repo.SagaStore
	publisher bus.Publisher
	retry     config.Retry

	outcomes *prometheus.CounterVec

	logger *logr.Logger
}

func NewHandler(machine *Machine, store repo.SagaStore, publisher bus.Publisher, retryConfig config.Retry, registry prometheus.Registerer) (*Handler, error) {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "saga",
		Name:      "outcome_total",
		Help:      "Number of handled saga messages by command and outcome",
	}, []string{"command", "outcome"})

	err := registry.Register(outcomes)
	if err != nil {
		return nil, fmt.Errorf("failed to register saga outcome counter: %w", err)
	}

	return &Handler{
		machine:   machine,
		store:     store,
		publisher: publisher,
		retry:     retryConfig,
		outcomes:  outcomes,
	}, nil
}

func (h *Handler) WithLogger(logger logr.Logger) *Handler {
	h.logger = &logger

	return h
}

// Register routes the saga messages to the handler.
func (h *Handler) Register(router *bus.Router) *bus.Router {
	bus.Route(router, func(ctx context.Context, msg message.SubmitCommand, _ message.Envelope) error {
		return h.Handle(ctx, msg)
	})
	bus.Route(router, func(ctx context.Context, msg message.ValidateCommand, _ message.Envelope) error {
		return h.Handle(ctx, msg)
	})
	bus.Route(router, func(ctx context.Context, msg message.ValidationCompositeResponse, _ message.Envelope) error {
		return h.Handle(ctx, msg)
	})
	bus.Route(router, func(ctx context.Context, msg message.CommandProjectionSuccess, _ message.Envelope) error {
		return h.Handle(ctx, msg)
	})
	bus.Route(router, func(ctx context.Context, msg message.CommandProjectionFailure, _ message.Envelope) error {
		return h.Handle(ctx, msg)
	})

	return router
}

func (h *Handler) Handle(ctx context.Context, msg message.Message) error {
	key := msg.CorrelationKey()

	state, found, err := h.load(ctx, key)
	if err != nil {
		return err
	}

	_, submit := msg.(message.SubmitCommand)

	switch {
	case !found && !submit:
		// late answer for a finalized saga
		h.logInfo(1, "Discarding message of a missing saga", "correlationId", key, "type", msg.MessageType())
		h.count("", outcomeDiscarded)

		return nil
	case found && submit:
		h.logInfo(1, "Ignoring duplicate submission", "correlationId", key)
		h.count(state.Command, outcomeDuplicate)

		return nil
	}

	outcome, err := h.machine.Transition(ctx, state, msg)
	if err != nil {
		return common.NewContractError(err, "invalid %s message", msg.MessageType())
	}

	if outcome.Ignored {
		h.count(state.Command, outcomeIgnored)

		return nil
	}

	err = h.persist(ctx, state, outcome)
	if err != nil && outcome.Durable {
		return h.unrepeatable(outcome, err)
	}

	if err != nil {
		return err
	}

	h.logInfo(2, "Saga transition", "correlationId", key, "type", msg.MessageType(), "from", state.Status.String(), "to", outcome.State.Status.String())

	if outcome.Finalize {
		h.count(outcome.State.Command, outcome.State.Status.String())
	}

	return h.publish(ctx, outcome)
}

func (h *Handler) load(ctx context.Context, correlationID string) (State, bool, error) {
	record, err := h.store.Get(ctx, correlationID)
	if errors.Is(err, repo.ErrNotFound) {
		return State{}, false, nil
	}

	if err != nil {
		return State{}, false, err
	}

	state := State{}

	err = json.Unmarshal(record.Payload, &state)
	if err != nil {
		return State{}, false, common.NewErrProcessingError(err, common.CategoryValkeyPayload, []pipeline.Input{
			{Source: "saga", Key: correlationID, Value: record.Payload},
		}, "failed to decode saga %s", correlationID)
	}

	state.Revision = record.Revision

	return state, true, nil
}

func (h *Handler) persist(ctx context.Context, previous State, outcome Outcome) error {
	key := outcome.State.CorrelationID

	if outcome.Finalize {
		if previous.Revision == 0 {
			return nil
		}

		return h.store.Delete(ctx, key)
	}

	payload, err := json.Marshal(outcome.State)
	if err != nil {
		return common.NewErrProcessingError(err, common.CategoryStore, nil, "failed to encode saga %s", key)
	}

	_, err = h.store.Save(ctx, repo.SagaRecord{
		CorrelationID: key,
		Revision:      previous.Revision,
		Payload:       payload,
	})
	if errors.Is(err, repo.ErrRevisionConflict) {
		// reprocessing reloads the instance
		return common.NewRetryableErrProcessingError(err, common.CategoryStore, nil, "saga %s moved concurrently", key)
	}

	return err
}

// unrepeatable stops the retries of a transition whose event is already stored. The stored saga keeps
// its previous state: the projection report of the event still finalizes it.
func (h *Handler) unrepeatable(outcome Outcome, err error) error {
	key := outcome.State.CorrelationID

	h.logError(err, "Event stored but not the saga", "correlationId", key)

	inputs := []pipeline.Input{}

	payload, marshalErr := json.Marshal(outcome.State)
	if marshalErr == nil {
		inputs = append(inputs, pipeline.Input{Source: "saga", Key: key, Value: payload})
	}

	// drop the retryable marker of the cause
	return common.NewErrProcessingError(errors.New(err.Error()), common.CategoryStore, inputs, "event of saga %s is stored but not the saga", key)
}

// publish does not rely on redelivery: once the state is stored the message is not accepted anymore.
func (h *Handler) publish(ctx context.Context, outcome Outcome) error {
	return bus.PublishOrDeadLetter(ctx, h.publisher, h.retry, outcome.Messages...)
}

func (h *Handler) count(command string, outcome string) {
	h.outcomes.WithLabelValues(command, outcome).Inc()
}

func (h *Handler) logInfo(level int, msg string, keysAndValues ...any) {
	if h.logger == nil {
		return
	}

	h.logger.V(level).Info(msg, keysAndValues...)
}

func (h *Handler) logError(err error, msg string, keysAndValues ...any) {
	if h.logger == nil {
		return
	}

	h.logger.Error(err, msg, keysAndValues...)
}
