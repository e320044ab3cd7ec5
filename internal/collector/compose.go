package collector

import (
	"encoding/json"
	"fmt"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/message"
)

// ComposeItems returns the raw payloads of the round split in successes and failures.
func ComposeItems(meta entity.StartCollectingEventData, successes []entity.EventData, failures []entity.EventData) (message.Message, error) {
	return message.CollectingItemsResponse{
		CollectingID:      meta.CollectingID,
		ExternalProcessID: meta.ExternalProcessID,
		Successes:         payloads(successes),
		Failures:          payloads(failures),
	}, nil
}

// ComposeValidation merges the answers of the external validators. The round is valid when every validator agreed.
func ComposeValidation(meta entity.StartCollectingEventData, successes []entity.EventData, failures []entity.EventData) (message.Message, error) {
	results := make([]entity.ValidationResult, 0, len(successes)+len(failures))

	for _, item := range append(append([]entity.EventData(nil), successes...), failures...) {
		response := message.ValidationResponse{}

		err := json.Unmarshal(item.Data, &response)
		if err != nil {
			return nil, fmt.Errorf("failed to decode validation response %s: %w", item.RequestID, err)
		}

		results = append(results, response.Result())
	}

	return message.NewValidationCompositeResponse(meta.CollectingID, entity.MergeValidationResults(results...)), nil
}

func payloads(items []entity.EventData) []json.RawMessage {
	ret := make([]json.RawMessage, 0, len(items))

	for _, item := range items {
		ret = append(ret, item.Data)
	}

	return ret
}
