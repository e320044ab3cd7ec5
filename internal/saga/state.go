package saga

import (
	"encoding/json"
	"fmt"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
)

type Status int

const (
	StatusInitial Status = iota
	StatusSubmitted
	StatusInternalValidated
	StatusExecuted
	StatusSuccess
	StatusRejected
)

var statusNames = map[Status]string{
	StatusInitial:           "Initial",
	StatusSubmitted:         "Submitted",
	StatusInternalValidated: "InternalValidated",
	StatusExecuted:          "Executed",
	StatusSuccess:           "Success",
	StatusRejected:          "Rejected",
}

func (s Status) String() string {
	ret, ok := statusNames[s]
	if !ok {
		return fmt.Sprintf("Status(%d)", int(s))
	}

	return ret
}

// Terminal states finalize the saga.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusRejected
}

func (s Status) MarshalText() ([]byte, error) {
	_, ok := statusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown saga status %d", int(s))
	}

	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status

			return nil
		}
	}

	return fmt.Errorf("unknown saga status %q", string(text))
}

// State is one saga instance. Transitions never mutate a State, they return a modified copy.
type State struct {
	CorrelationID     string                   `json:"correlationId"`
	Command           string                   `json:"command"`
	Data              json.RawMessage          `json:"data"`
	CommandIdentifier entity.CommandIdentifier `json:"commandIdentifier"`
	Initiator         string                   `json:"initiator"`
	EntityID          string                   `json:"entityId,omitempty"`
	ValidationResult  *entity.ValidationResult `json:"validationResult,omitempty"`
	Status            Status                   `json:"status"`

	// Revision of the stored instance, 0 when it was never stored.
	Revision int64 `json:"-"`
}

func (s State) WithData(data json.RawMessage) State {
	s.Data = append(json.RawMessage(nil), data...)

	return s
}

func (s State) WithEntityID(entityID string) State {
	if entityID != "" {
		s.EntityID = entityID
	}

	return s
}

func (s State) WithValidationResult(result entity.ValidationResult) State {
	result.Errors = append([]entity.ValidationError(nil), result.Errors...)
	s.ValidationResult = &result

	return s
}

func (s State) WithStatus(status Status) State {
	s.Status = status

	return s
}

// validated fails when no validation result was recorded yet.
func (s State) validated() (bool, error) {
	if s.ValidationResult == nil {
		return false, entity.ErrNilValidationResult
	}

	return s.ValidationResult.IsValid, nil
}
