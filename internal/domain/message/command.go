package message

import (
	"encoding/json"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
)

const (
	TypeSubmitCommand            = "SubmitCommand"
	TypeSubmitCommandSuccess     = "SubmitCommandSuccess"
	TypeSubmitCommandFailure     = "SubmitCommandFailure"
	TypeValidateCommand          = "ValidateCommand"
	TypeValidationTriggered      = "ValidationTriggered"
	TypeValidationResponse       = "ValidationResponse"
	TypeValidationComposite      = "ValidationCompositeResponse"
	TypeCommandProjectionSuccess = "CommandProjectionSuccess"
	TypeCommandProjectionFailure = "CommandProjectionFailure"
)

// SubmitCommand starts a saga. Its CorrelationID is the saga identity.
type SubmitCommand struct {
	CorrelationID string                   `json:"correlationId"`
	Command       string                   `json:"command"`
	Data          json.RawMessage          `json:"data"`
	ID            entity.CommandIdentifier `json:"id"`
	Initiator     string                   `json:"initiator"`
}

func (SubmitCommand) MessageType() string { return TypeSubmitCommand }

func (m SubmitCommand) CorrelationKey() string { return m.CorrelationID }

// SubmitCommandSuccess is keyed by collecting id so that the collector of the round receives it in order.
type SubmitCommandSuccess struct {
	Command      string `json:"command"`
	ID           string `json:"id"`
	CollectingID string `json:"collectingId,omitempty"`
	EntityID     string `json:"entityId"`
}

func (SubmitCommandSuccess) MessageType() string { return TypeSubmitCommandSuccess }

func (m SubmitCommandSuccess) CorrelationKey() string { return keyOf(m.CollectingID, m.ID) }

type SubmitCommandFailure struct {
	Command      string   `json:"command"`
	ID           string   `json:"id"`
	CollectingID string   `json:"collectingId,omitempty"`
	ErrorMessage string   `json:"errorMessage"`
	Exception    string   `json:"exception,omitempty"`
	Errors       []string `json:"errors,omitempty"`
}

func (SubmitCommandFailure) MessageType() string { return TypeSubmitCommandFailure }

func (m SubmitCommandFailure) CorrelationKey() string { return keyOf(m.CollectingID, m.ID) }

type ValidateCommand struct {
	CorrelationID string `json:"correlationId"`
}

func (ValidateCommand) MessageType() string { return TypeValidateCommand }

func (m ValidateCommand) CorrelationKey() string { return m.CorrelationID }

// ValidationTriggered asks external validators to validate a payload. They answer with ValidationResponse.
type ValidationTriggered struct {
	Data         json.RawMessage `json:"data"`
	Command      string          `json:"command"`
	CollectingID string          `json:"collectingId"`
}

func (ValidationTriggered) MessageType() string { return TypeValidationTriggered }

func (m ValidationTriggered) CorrelationKey() string { return m.CollectingID }

type ValidationResponse struct {
	CollectingID string                   `json:"collectingId"`
	IsValid      bool                     `json:"isValid"`
	Errors       []entity.ValidationError `json:"errors,omitempty"`
	Validator    string                   `json:"validator,omitempty"`
}

func (ValidationResponse) MessageType() string { return TypeValidationResponse }

func (m ValidationResponse) CorrelationKey() string { return m.CollectingID }

func (m ValidationResponse) Result() entity.ValidationResult {
	return entity.ValidationResult{IsValid: m.IsValid, Errors: m.Errors}
}

// ValidationCompositeResponse carries the aggregated validation of a saga. CollectingID is the saga correlation id.
type ValidationCompositeResponse struct {
	CollectingID string                   `json:"collectingId"`
	IsValid      bool                     `json:"isValid"`
	Errors       []entity.ValidationError `json:"errors,omitempty"`
}

func (ValidationCompositeResponse) MessageType() string { return TypeValidationComposite }

func (m ValidationCompositeResponse) CorrelationKey() string { return m.CollectingID }

func (m ValidationCompositeResponse) Result() entity.ValidationResult {
	return entity.ValidationResult{IsValid: m.IsValid, Errors: m.Errors}
}

func NewValidationCompositeResponse(collectingID string, result entity.ValidationResult) ValidationCompositeResponse {
	return ValidationCompositeResponse{
		CollectingID: collectingID,
		IsValid:      result.IsValid,
		Errors:       result.Errors,
	}
}

type CommandProjectionSuccess struct {
	CorrelationID string `json:"correlationId"`
	EntityID      string `json:"entityId"`
}

func (CommandProjectionSuccess) MessageType() string { return TypeCommandProjectionSuccess }

func (m CommandProjectionSuccess) CorrelationKey() string { return m.CorrelationID }

type CommandProjectionFailure struct {
	CorrelationID string `json:"correlationId"`
	ErrorMessage  string `json:"errorMessage"`
}

func (CommandProjectionFailure) MessageType() string { return TypeCommandProjectionFailure }

func (m CommandProjectionFailure) CorrelationKey() string { return m.CorrelationID }

func keyOf(preferred string, fallback string) string {
	if preferred != "" {
		return preferred
	}

	return fallback
}
