package entity

import (
	"encoding/json"
	"time"
)

// EventData is one collected response.
type EventData struct {
	CollectingID  string          `json:"collectingId"`
	Type          string          `json:"type"`
	Data          json.RawMessage `json:"data"`
	ErrorOccurred bool            `json:"errorOccurred"`
	Host          string          `json:"host,omitempty"`
	RequestID     string          `json:"requestId,omitempty"`
}

type StatusDispatch struct {
	Modulo *int `json:"modulo,omitempty"`
}

// Every returns the progress period, zero when progress must not be published.
func (s StatusDispatch) Every() int {
	if s.Modulo == nil || *s.Modulo < 0 {
		return 0
	}

	return *s.Modulo
}

type StartCollectingEventData struct {
	CollectingID        string         `json:"collectingId"`
	CollectItemsAccount *int           `json:"collectItemsAccount,omitempty"`
	StatusDispatch      StatusDispatch `json:"statusDispatch"`
	ExternalProcessID   string         `json:"externalProcessId,omitempty"`
	Started             time.Time      `json:"started"`
	CompletedAt         *time.Time     `json:"completedAt,omitempty"`
}

func (d StartCollectingEventData) Completed() bool {
	return d.CompletedAt != nil
}
