package saga_test

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/identity-platform/profile-saga/internal/command"
	"github.com/identity-platform/profile-saga/internal/command/mock"
	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/internal/eventstore"
	"github.com/identity-platform/profile-saga/internal/saga"
)

// Helper

type countingLock struct {
	acquired int
	released int
}

func (l *countingLock) Acquire(context.Context) error {
	l.acquired++

	return nil
}

func (l *countingLock) Release() {
	l.released++
}

var submit = message.SubmitCommand{
	CorrelationID: "corr-1",
	Command:       "CreateUser",
	Data:          json.RawMessage(`{"name":"Ada"}`),
	ID:            entity.CommandIdentifier{ID: "cmd-1", CollectingID: "round-1"},
	Initiator:     "alice",
}

func stateIn(status saga.Status) saga.State {
	return saga.State{
		CorrelationID:     "corr-1",
		Command:           "CreateUser",
		Data:              json.RawMessage(`{"name":"Ada","userId":"u-1"}`),
		CommandIdentifier: entity.CommandIdentifier{ID: "cmd-1", CollectingID: "round-1"},
		Initiator:         "alice",
		EntityID:          "u-1",
		Status:            status,
		Revision:          3,
	}
}

func intPtr(v int) *int {
	return &v
}

// Test

var _ = Describe("Command orchestration state machine", func() {
	var ctrl *gomock.Controller
	var ctx context.Context

	var service *mock.MockService
	var external *mock.MockExternalValidationConfig
	var publishers *mock.MockEventPublisherFactory
	var publisher *mock.MockEventPublisher
	var lock *countingLock

	var machine *saga.Machine

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		ctx = context.Background()

		service = mock.NewMockService(ctrl)
		external = mock.NewMockExternalValidationConfig(ctrl)
		publishers = mock.NewMockEventPublisherFactory(ctrl)
		publisher = mock.NewMockEventPublisher(ctrl)
		lock = &countingLock{}

		registry := command.NewRegistry().Register("CreateUser", service)
		machine = saga.NewMachine(registry, external, publishers, lock)
	})

	When("a command is submitted", func() {
		It("should modify the payload and ask for validation", func() {
			service.EXPECT().Modify(gomock.Any(), submit.Data).Return(json.RawMessage(`{"name":"Ada","userId":"u-1"}`), command.ModifyResult{EntityID: "u-1"}, nil)

			outcome, err := machine.Transition(ctx, saga.State{}, submit)
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Finalize).To(BeFalse())
			Expect(outcome.State.Status).To(Equal(saga.StatusSubmitted))
			Expect(outcome.State.EntityID).To(Equal("u-1"))
			Expect(outcome.State.CommandIdentifier).To(Equal(submit.ID))
			Expect(string(outcome.State.Data)).To(Equal(`{"name":"Ada","userId":"u-1"}`))
			Expect(outcome.Messages).To(Equal([]message.Message{message.ValidateCommand{CorrelationID: "corr-1"}}))
		})

		It("should reject an unknown command", func() {
			unknown := submit
			unknown.Command = "RenameUser"

			outcome, err := machine.Transition(ctx, saga.State{}, unknown)
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Finalize).To(BeTrue())
			Expect(outcome.State.Status).To(Equal(saga.StatusRejected))
			Expect(outcome.Messages).To(HaveLen(1))

			failure, ok := outcome.Messages[0].(message.SubmitCommandFailure)
			Expect(ok).To(BeTrue())
			Expect(failure.ID).To(Equal("cmd-1"))
			Expect(failure.CollectingID).To(Equal("round-1"))
			Expect(failure.Exception).To(Equal("contract/resolve"))
			Expect(failure.ErrorMessage).To(ContainSubstring("unknown command"))
		})

		It("should refuse a submission breaking the contract", func() {
			_, err := machine.Transition(ctx, saga.State{}, message.SubmitCommand{CorrelationID: "corr-1"})
			Expect(err).To(MatchError(entity.ErrEmptyCommandName))

			_, err = machine.Transition(ctx, saga.State{}, message.SubmitCommand{Command: "CreateUser"})
			Expect(err).To(MatchError(entity.ErrEmptyCorrelationID))
		})

		It("should reject the command when modify panics", func() {
			service.EXPECT().Modify(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, json.RawMessage) (json.RawMessage, command.ModifyResult, error) {
				panic("boom")
			})

			outcome, err := machine.Transition(ctx, saga.State{}, submit)
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.State.Status).To(Equal(saga.StatusRejected))
			Expect(outcome.Messages[0].(message.SubmitCommandFailure).Exception).To(Equal("unexpected/transition"))
		})
	})

	When("the command is validated", func() {
		It("should answer itself when no external validation is configured", func() {
			service.EXPECT().Validate(gomock.Any(), gomock.Any(), "alice").Return(entity.Valid(), nil)
			external.EXPECT().ExternalValidationFor("CreateUser").Return(config.ExternalValidation{}, false)

			outcome, err := machine.Transition(ctx, stateIn(saga.StatusSubmitted), message.ValidateCommand{CorrelationID: "corr-1"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.State.Status).To(Equal(saga.StatusInternalValidated))
			Expect(outcome.State.ValidationResult).To(Equal(&entity.ValidationResult{IsValid: true}))
			Expect(outcome.Messages).To(Equal([]message.Message{
				message.ValidationCompositeResponse{CollectingID: "corr-1", IsValid: true},
			}))
		})

		It("should trigger the external validation round keyed by the correlation id", func() {
			service.EXPECT().Validate(gomock.Any(), gomock.Any(), "alice").Return(entity.Valid(), nil)
			external.EXPECT().ExternalValidationFor("CreateUser").Return(config.ExternalValidation{Responders: 2, Modulo: 1}, true)

			outcome, err := machine.Transition(ctx, stateIn(saga.StatusSubmitted), message.ValidateCommand{CorrelationID: "corr-1"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.State.Status).To(Equal(saga.StatusInternalValidated))
			Expect(outcome.Messages).To(Equal([]message.Message{
				message.StartCollectingMessage{
					CollectingID:         "corr-1",
					CollectItemsAccount:  intPtr(2),
					ExternalProcessID:    "corr-1",
					StatusDispatchModulo: intPtr(1),
				},
				message.ValidationTriggered{
					Data:         json.RawMessage(`{"name":"Ada","userId":"u-1"}`),
					Command:      "CreateUser",
					CollectingID: "corr-1",
				},
			}))
		})

		It("should not trigger external validation when the internal one fails", func() {
			invalid := entity.Invalid(entity.ValidationError{Field: "Name", Message: "Name required"})

			service.EXPECT().Validate(gomock.Any(), gomock.Any(), "alice").Return(invalid, nil)
			external.EXPECT().ExternalValidationFor("CreateUser").Return(config.ExternalValidation{Responders: 2}, true).AnyTimes()

			outcome, err := machine.Transition(ctx, stateIn(saga.StatusSubmitted), message.ValidateCommand{CorrelationID: "corr-1"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Messages).To(Equal([]message.Message{message.NewValidationCompositeResponse("corr-1", invalid)}))
		})
	})

	When("the composite validation arrives", func() {
		It("should reject an invalid command with the validation errors", func() {
			outcome, err := machine.Transition(ctx, stateIn(saga.StatusInternalValidated), message.ValidationCompositeResponse{
				CollectingID: "corr-1",
				Errors:       []entity.ValidationError{{Field: "Name", Message: "Name required"}},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Finalize).To(BeTrue())
			Expect(outcome.State.Status).To(Equal(saga.StatusRejected))
			Expect(outcome.State.ValidationResult.IsValid).To(BeFalse())
			Expect(outcome.Messages).To(Equal([]message.Message{message.SubmitCommandFailure{
				Command:      "CreateUser",
				ID:           "cmd-1",
				CollectingID: "round-1",
				ErrorMessage: "Validation failed.",
				Exception:    "validation/validate",
				Errors:       []string{"Name required"},
			}}))
		})

		It("should create and publish the event under the lock", func() {
			event := entity.DomainEvent{ID: "e-1", Type: entity.EventUserCreated, EntityID: "u-1", Stream: "user_u-1"}

			service.EXPECT().Create(gomock.Any(), gomock.Any(), "corr-1", "round-1", "alice").Return(event, nil)
			publishers.EXPECT().GetPublisher(event).Return(publisher, nil)
			publisher.EXPECT().Publish(gomock.Any(), event).Return(eventstore.WriteResult{Version: 1, EventID: "e-1", Sequence: 7}, nil)

			outcome, err := machine.Transition(ctx, stateIn(saga.StatusInternalValidated), message.ValidationCompositeResponse{CollectingID: "corr-1", IsValid: true})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Finalize).To(BeFalse())
			Expect(outcome.State.Status).To(Equal(saga.StatusExecuted))
			Expect(outcome.Messages).To(BeEmpty())
			Expect(lock.acquired).To(Equal(1))
			Expect(lock.released).To(Equal(1))
		})

		It("should reject the command when the store refuses the event", func() {
			event := entity.DomainEvent{ID: "e-1", Type: entity.EventUserCreated, EntityID: "u-1", Stream: "user_u-1"}

			service.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(event, nil)
			publishers.EXPECT().GetPublisher(event).Return(publisher, nil)
			publisher.EXPECT().Publish(gomock.Any(), event).Return(eventstore.WriteResult{}, eventstore.ErrAccessDeletedStream)

			outcome, err := machine.Transition(ctx, stateIn(saga.StatusInternalValidated), message.ValidationCompositeResponse{CollectingID: "corr-1", IsValid: true})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.State.Status).To(Equal(saga.StatusRejected))
			Expect(outcome.Messages[0].(message.SubmitCommandFailure).Exception).To(Equal("infrastructure/publish"))
			Expect(lock.released).To(Equal(lock.acquired))
		})

		It("should not create the event twice once executed", func() {
			outcome, err := machine.Transition(ctx, stateIn(saga.StatusExecuted), message.ValidationCompositeResponse{CollectingID: "corr-1", IsValid: true})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.State.Status).To(Equal(saga.StatusExecuted))
			Expect(outcome.Messages).To(BeEmpty())
		})
	})

	When("the projection reports", func() {
		It("should succeed with the projected entity", func() {
			outcome, err := machine.Transition(ctx, stateIn(saga.StatusExecuted), message.CommandProjectionSuccess{CorrelationID: "corr-1", EntityID: "u-1"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Finalize).To(BeTrue())
			Expect(outcome.State.Status).To(Equal(saga.StatusSuccess))
			Expect(outcome.Messages).To(Equal([]message.Message{message.SubmitCommandSuccess{
				Command:      "CreateUser",
				ID:           "cmd-1",
				CollectingID: "round-1",
				EntityID:     "u-1",
			}}))
		})

		It("should reject on projection failure", func() {
			outcome, err := machine.Transition(ctx, stateIn(saga.StatusExecuted), message.CommandProjectionFailure{CorrelationID: "corr-1", ErrorMessage: "email already used"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.State.Status).To(Equal(saga.StatusRejected))
			Expect(outcome.Messages[0].(message.SubmitCommandFailure).ErrorMessage).To(Equal("email already used"))
		})
	})

	When("a message is not accepted in the current state", func() {
		It("should leave the state unchanged", func() {
			state := stateIn(saga.StatusSubmitted)

			outcome, err := machine.Transition(ctx, state, message.CommandProjectionSuccess{CorrelationID: "corr-1"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Ignored).To(BeTrue())
			Expect(outcome.State).To(Equal(state))
			Expect(outcome.Messages).To(BeEmpty())
		})
	})
})

var _ = Describe("Saga state", func() {
	It("should be copied by transitions", func() {
		state := saga.State{Data: json.RawMessage(`{}`)}

		next := state.WithStatus(saga.StatusSubmitted).WithEntityID("u-1").WithValidationResult(entity.Valid())

		Expect(state.Status).To(Equal(saga.StatusInitial))
		Expect(state.EntityID).To(BeEmpty())
		Expect(state.ValidationResult).To(BeNil())
		Expect(next.Status).To(Equal(saga.StatusSubmitted))
	})

	It("should persist its status by name", func() {
		raw, err := json.Marshal(saga.State{Status: saga.StatusInternalValidated})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"status":"InternalValidated"`))

		decoded := saga.State{}
		Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
		Expect(decoded.Status).To(Equal(saga.StatusInternalValidated))

		Expect(json.Unmarshal([]byte(`{"status":"Paused"}`), &decoded)).NotTo(Succeed())
	})

	It("should classify stage errors", func() {
		err := saga.StageError{Stage: saga.StagePublish, Kind: saga.KindInfrastructure, Err: eventstore.ErrWrongExpectedVersion}

		Expect(errors.Is(err, eventstore.ErrWrongExpectedVersion)).To(BeTrue())
		Expect(err.Exception()).To(Equal("infrastructure/publish"))
	})
})
