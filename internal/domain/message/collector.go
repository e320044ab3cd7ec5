package message

import "encoding/json"

const (
	TypeStartCollecting         = "StartCollectingMessage"
	TypeStartCollectingSuccess  = "StartCollectingSuccess"
	TypeStartCollectingFailure  = "StartCollectingFailure"
	TypeSetCollectItemsAccount  = "SetCollectItemsAccountMessage"
	TypeGetCollectingStatus     = "GetCollectingItemsStatusMessage"
	TypeCollectingItemsStatus   = "CollectingItemsStatus"
	TypeCollectingItemsResponse = "CollectingItemsResponse"
)

type StartCollectingMessage struct {
	CollectingID         string `json:"collectingId"`
	CollectItemsAccount  *int   `json:"collectItemsAccount,omitempty"`
	ExternalProcessID    string `json:"externalProcessId,omitempty"`
	StatusDispatchModulo *int   `json:"statusDispatchModulo,omitempty"`
}

func (StartCollectingMessage) MessageType() string { return TypeStartCollecting }

func (m StartCollectingMessage) CorrelationKey() string { return m.CollectingID }

type StartCollectingSuccess struct {
	CollectingID string `json:"collectingId"`
}

func (StartCollectingSuccess) MessageType() string { return TypeStartCollectingSuccess }

func (m StartCollectingSuccess) CorrelationKey() string { return m.CollectingID }

type StartCollectingFailure struct {
	CollectingID string `json:"collectingId"`
	ErrorMessage string `json:"errorMessage"`
}

func (StartCollectingFailure) MessageType() string { return TypeStartCollectingFailure }

func (m StartCollectingFailure) CorrelationKey() string { return m.CollectingID }

type SetCollectItemsAccountMessage struct {
	CollectingID        string `json:"collectingId"`
	CollectItemsAccount int    `json:"collectItemsAccount"`
}

func (SetCollectItemsAccountMessage) MessageType() string { return TypeSetCollectItemsAccount }

func (m SetCollectItemsAccountMessage) CorrelationKey() string { return m.CollectingID }

type GetCollectingItemsStatusMessage struct {
	CollectingID string `json:"collectingId"`
}

func (GetCollectingItemsStatusMessage) MessageType() string { return TypeGetCollectingStatus }

func (m GetCollectingItemsStatusMessage) CorrelationKey() string { return m.CollectingID }

type CollectingItemsStatus struct {
	CollectingID          string `json:"collectingId"`
	CollectedItemsAccount int    `json:"collectedItemsAccount"`
	ExternalProcessID     string `json:"externalProcessId,omitempty"`
}

func (CollectingItemsStatus) MessageType() string { return TypeCollectingItemsStatus }

func (m CollectingItemsStatus) CorrelationKey() string { return m.CollectingID }

// CollectingItemsResponse is the composite of a generic collecting round.
type CollectingItemsResponse struct {
	CollectingID      string            `json:"collectingId"`
	ExternalProcessID string            `json:"externalProcessId,omitempty"`
	Successes         []json.RawMessage `json:"successes"`
	Failures          []json.RawMessage `json:"failures"`
}

func (CollectingItemsResponse) MessageType() string { return TypeCollectingItemsResponse }

func (m CollectingItemsResponse) CorrelationKey() string { return m.CollectingID }
