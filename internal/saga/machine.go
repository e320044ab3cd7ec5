package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/identity-platform/profile-saga/internal/command"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/message"
)

const ValidationFailedMessage = "Validation failed."

// Commands resolves the service of a command name. *command.Registry implements it.
type Commands interface {
	Lookup(name string) (command.Service, bool)
}

// Outcome is the result of a transition: the next state and the messages to publish once it is stored.
type Outcome struct {
	State    State
	Messages []message.Message
	// Finalize removes the instance.
	Finalize bool
	// Ignored is set when the state does not accept the message. State is unchanged.
	Ignored bool
	// Durable is set when the transition appended an event to the store: it must not run again.
	Durable bool
}

// accepted lists the states in which each message is handled.
var accepted = map[string][]Status{
	message.TypeSubmitCommand:            {StatusInitial},
	message.TypeValidateCommand:          {StatusSubmitted},
	message.TypeValidationComposite:      {StatusInternalValidated, StatusExecuted},
	message.TypeCommandProjectionSuccess: {StatusExecuted, StatusInternalValidated},
	message.TypeCommandProjectionFailure: {StatusExecuted, StatusInternalValidated},
}

// Machine drives a command from its submission to Success or Rejected.
type Machine struct {
	commands   Commands
	external   command.ExternalValidationConfig
	publishers command.EventPublisherFactory
	lock       Lock

	logger *logr.Logger
}

func NewMachine(commands Commands, external command.ExternalValidationConfig, publishers command.EventPublisherFactory, lock Lock) *Machine {
	return &Machine{
		commands:   commands,
		external:   external,
		publishers: publishers,
		lock:       lock,
	}
}

func (m *Machine) WithLogger(logger logr.Logger) *Machine {
	m.logger = &logger

	return m
}

// Transition applies msg to state. The error is only set for messages breaking the contract,
// in which case nothing happened. Any other failure is a Rejected outcome.
func (m *Machine) Transition(ctx context.Context, state State, msg message.Message) (Outcome, error) {
	if msg.CorrelationKey() == "" {
		return Outcome{}, fmt.Errorf("%s: %w", msg.MessageType(), entity.ErrEmptyCorrelationID)
	}

	if !accepts(state.Status, msg.MessageType()) {
		m.logInfo(1, "Message not accepted in current state", "correlationId", msg.CorrelationKey(), "type", msg.MessageType(), "status", state.Status.String())

		return Outcome{State: state, Ignored: true}, nil
	}

	switch typed := msg.(type) {
	case message.SubmitCommand:
		if typed.Command == "" {
			return Outcome{}, fmt.Errorf("%s %s: %w", typed.MessageType(), typed.CorrelationID, entity.ErrEmptyCommandName)
		}

		state = newState(typed)

		return m.guard(state, func() (Outcome, error) { return m.submit(ctx, state) }), nil
	case message.ValidateCommand:
		return m.guard(state, func() (Outcome, error) { return m.validate(ctx, state) }), nil
	case message.ValidationCompositeResponse:
		return m.guard(state, func() (Outcome, error) { return m.composite(ctx, state, typed) }), nil
	case message.CommandProjectionSuccess:
		return m.guard(state, func() (Outcome, error) { return m.projectionSucceeded(state, typed), nil }), nil
	case message.CommandProjectionFailure:
		return m.guard(state, func() (Outcome, error) { return m.projectionFailed(state, typed), nil }), nil
	default:
		return Outcome{}, fmt.Errorf("unexpected message %s", msg.MessageType())
	}
}

func accepts(status Status, messageType string) bool {
	for _, s := range accepted[messageType] {
		if s == status {
			return true
		}
	}

	return false
}

func newState(msg message.SubmitCommand) State {
	return State{
		CorrelationID:     msg.CorrelationID,
		Command:           msg.Command,
		CommandIdentifier: msg.ID,
		Initiator:         msg.Initiator,
		Status:            StatusInitial,
	}.WithData(msg.Data)
}

// guard turns any error or panic of a transition into a Rejected outcome.
func (m *Machine) guard(state State, transition func() (Outcome, error)) (ret Outcome) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("%v", r)
		}

		ret = m.reject(state, StageError{Stage: StageTransition, Kind: KindUnexpected, Err: fmt.Errorf("panic: %w", err)})
	}()

	ret, err := transition()
	if err != nil {
		return m.reject(state, err)
	}

	return ret
}

func (m *Machine) reject(state State, err error) Outcome {
	exception := string(KindUnexpected)

	var stageErr StageError
	if errors.As(err, &stageErr) {
		exception = stageErr.Exception()
	}

	m.logError(err, "Command rejected", "correlationId", state.CorrelationID, "command", state.Command, "status", state.Status.String())

	return Outcome{
		State:    state.WithStatus(StatusRejected),
		Messages: []message.Message{failure(state, err.Error(), exception, nil)},
		Finalize: true,
	}
}

// Stages

func (m *Machine) service(name string) (command.Service, error) {
	ret, ok := m.commands.Lookup(name)
	if !ok {
		return nil, StageError{Stage: StageResolve, Kind: KindContract, Err: fmt.Errorf("%w %q", command.ErrUnknownCommand, name)}
	}

	return ret, nil
}

func (m *Machine) submit(ctx context.Context, state State) (Outcome, error) {
	service, err := m.service(state.Command)
	if err != nil {
		return Outcome{}, err
	}

	data, res, err := service.Modify(ctx, state.Data)
	if err != nil {
		return Outcome{}, newStageError(StageModify, err)
	}

	next := state.WithData(data).WithEntityID(res.EntityID).WithStatus(StatusSubmitted)

	return Outcome{
		State:    next,
		Messages: []message.Message{message.ValidateCommand{CorrelationID: state.CorrelationID}},
	}, nil
}

func (m *Machine) validate(ctx context.Context, state State) (Outcome, error) {
	service, err := m.service(state.Command)
	if err != nil {
		return Outcome{}, err
	}

	result, err := service.Validate(ctx, state.Data, state.Initiator)
	if err != nil {
		return Outcome{}, newStageError(StageValidate, err)
	}

	next := state.WithValidationResult(result).WithStatus(StatusInternalValidated)

	rule, external := m.external.ExternalValidationFor(state.Command)
	if !result.IsValid || !external {
		return Outcome{
			State:    next,
			Messages: []message.Message{message.NewValidationCompositeResponse(state.CorrelationID, result)},
		}, nil
	}

	// the saga correlation id is the collecting id: one external round per saga
	responders := rule.Responders

	start := message.StartCollectingMessage{
		CollectingID:        state.CorrelationID,
		CollectItemsAccount: &responders,
		ExternalProcessID:   state.CorrelationID,
	}

	if rule.Modulo > 0 {
		modulo := rule.Modulo
		start.StatusDispatchModulo = &modulo
	}

	return Outcome{
		State: next,
		Messages: []message.Message{
			start,
			message.ValidationTriggered{
				Data:         state.Data,
				Command:      state.Command,
				CollectingID: state.CorrelationID,
			},
		},
	}, nil
}

func (m *Machine) composite(ctx context.Context, state State, msg message.ValidationCompositeResponse) (Outcome, error) {
	next := state.WithValidationResult(msg.Result())

	if !msg.IsValid {
		rejection := StageError{Stage: StageValidate, Kind: KindValidation, Err: errors.New(ValidationFailedMessage)}

		return Outcome{
			State:    next.WithStatus(StatusRejected),
			Messages: []message.Message{failure(state, ValidationFailedMessage, rejection.Exception(), next.ValidationResult.Messages())},
			Finalize: true,
		}, nil
	}

	if state.Status == StatusExecuted {
		m.logInfo(1, "Event already created, ignoring validation", "correlationId", state.CorrelationID)

		return Outcome{State: next}, nil
	}

	event, err := m.createAndPublish(ctx, next)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{State: next.WithEntityID(event.EntityID).WithStatus(StatusExecuted), Durable: true}, nil
}

// createAndPublish builds the domain event of the command and stores it under the publish lock.
func (m *Machine) createAndPublish(ctx context.Context, state State) (entity.DomainEvent, error) {
	valid, err := state.validated()
	if err != nil {
		return entity.DomainEvent{}, newStageError(StageCreateEvent, err)
	}

	if !valid {
		return entity.DomainEvent{}, StageError{Stage: StageCreateEvent, Kind: KindValidation, Err: errors.New(ValidationFailedMessage)}
	}

	service, err := m.service(state.Command)
	if err != nil {
		return entity.DomainEvent{}, err
	}

	event, err := service.Create(ctx, state.Data, state.CorrelationID, state.CommandIdentifier.CollectingID, state.Initiator)
	if err != nil {
		return entity.DomainEvent{}, newStageError(StageCreateEvent, err)
	}

	publisher, err := m.publishers.GetPublisher(event)
	if err != nil {
		return entity.DomainEvent{}, newStageError(StagePublish, err)
	}

	err = m.lock.Acquire(ctx)
	if err != nil {
		return entity.DomainEvent{}, newStageError(StagePublish, err)
	}
	defer m.lock.Release()

	res, err := publisher.Publish(ctx, event)
	if err != nil {
		return entity.DomainEvent{}, newStageError(StagePublish, err)
	}

	m.logInfo(2, "Event published", "correlationId", state.CorrelationID, "type", event.Type, "stream", event.Stream, "version", res.Version)

	return event, nil
}

func (m *Machine) projectionSucceeded(state State, msg message.CommandProjectionSuccess) Outcome {
	next := state.WithEntityID(msg.EntityID).WithStatus(StatusSuccess)

	return Outcome{
		State: next,
		Messages: []message.Message{message.SubmitCommandSuccess{
			Command:      state.Command,
			ID:           state.CommandIdentifier.ID,
			CollectingID: state.CommandIdentifier.CollectingID,
			EntityID:     next.EntityID,
		}},
		Finalize: true,
	}
}

func (m *Machine) projectionFailed(state State, msg message.CommandProjectionFailure) Outcome {
	return Outcome{
		State:    state.WithStatus(StatusRejected),
		Messages: []message.Message{failure(state, msg.ErrorMessage, "projection", nil)},
		Finalize: true,
	}
}

func failure(state State, errorMessage string, exception string, errs []string) message.SubmitCommandFailure {
	return message.SubmitCommandFailure{
		Command:      state.Command,
		ID:           state.CommandIdentifier.ID,
		CollectingID: state.CommandIdentifier.CollectingID,
		ErrorMessage: errorMessage,
		Exception:    exception,
		Errors:       errs,
	}
}

func (m *Machine) logInfo(level int, msg string, keysAndValues ...any) {
	if m.logger == nil {
		return
	}

	m.logger.V(level).Info(msg, keysAndValues...)
}

func (m *Machine) logError(err error, msg string, keysAndValues ...any) {
	if m.logger == nil {
		return
	}

	m.logger.Error(err, msg, keysAndValues...)
}
