package saga

import (
	"errors"
	"fmt"

	"github.com/identity-platform/profile-saga/internal/command"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/eventstore"
)

type Stage string

const (
	StageTransition  Stage = "transition"
	StageResolve     Stage = "resolve"
	StageModify      Stage = "modify"
	StageValidate    Stage = "validate"
	StageCreateEvent Stage = "create_event"
	StagePublish     Stage = "publish"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindInfrastructure Kind = "infrastructure"
	KindContract       Kind = "contract"
	KindUnexpected     Kind = "unexpected"
)

// StageError is the failure of one stage of a transition. It always rejects the saga.
type StageError struct {
	Stage Stage
	Kind  Kind
	Err   error
}

func (e StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e StageError) Unwrap() error {
	return e.Err
}

// Exception is the short description carried by SubmitCommandFailure.
func (e StageError) Exception() string {
	return fmt.Sprintf("%s/%s", e.Kind, e.Stage)
}

func newStageError(stage Stage, err error) StageError {
	return StageError{Stage: stage, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, eventstore.ErrEventStreamNotFound),
		errors.Is(err, eventstore.ErrAccessDeletedStream),
		errors.Is(err, eventstore.ErrWrongExpectedVersion):
		return KindInfrastructure
	case errors.Is(err, command.ErrUnknownCommand),
		errors.Is(err, command.ErrNoPublisher),
		errors.Is(err, entity.ErrNilValidationResult):
		return KindContract
	default:
		return KindUnexpected
	}
}
