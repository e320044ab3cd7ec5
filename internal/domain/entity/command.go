package entity

import "strings"

// CommandIdentifier is the public correlation of a command: ID identifies the command for its
// caller, CollectingID groups the outcomes of several commands in one collection round.
type CommandIdentifier struct {
	ID           string `json:"id"`
	CollectingID string `json:"collectingId,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func Valid() ValidationResult {
	return ValidationResult{IsValid: true}
}

func Invalid(errs ...ValidationError) ValidationResult {
	return ValidationResult{IsValid: false, Errors: errs}
}

// MergeValidationResults is valid only when every result is valid. Errors are concatenated in order.
func MergeValidationResults(results ...ValidationResult) ValidationResult {
	ret := Valid()

	for _, result := range results {
		if !result.IsValid {
			ret.IsValid = false
		}

		ret.Errors = append(ret.Errors, result.Errors...)
	}

	return ret
}

func (r ValidationResult) Messages() []string {
	ret := make([]string, 0, len(r.Errors))

	for _, e := range r.Errors {
		ret = append(ret, e.Message)
	}

	return ret
}

func (r ValidationResult) String() string {
	if r.IsValid {
		return "valid"
	}

	return "invalid: " + strings.Join(r.Messages(), "; ")
}
