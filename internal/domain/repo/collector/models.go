package collector

import (
	"strconv"
	"time"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
)

const (
	fieldCollectingID      = "collectingId"
	fieldExpected          = "expected"
	fieldModulo            = "modulo"
	fieldExternalProcessID = "externalProcessId"
	fieldStarted           = "started"
	fieldCompletedAt       = "completedAt"
)

func metaKey(collectingID string) string {
	return "collector:" + collectingID + ":meta"
}

func itemsKey(collectingID string) string {
	return "collector:" + collectingID + ":items"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func mapToEntity(fields map[string]string) (entity.StartCollectingEventData, error) {
	ret := entity.StartCollectingEventData{
		CollectingID:      fields[fieldCollectingID],
		ExternalProcessID: fields[fieldExternalProcessID],
	}

	if v, ok := fields[fieldExpected]; ok {
		expected, err := strconv.Atoi(v)
		if err != nil {
			return ret, err
		}

		ret.CollectItemsAccount = &expected
	}

	if v, ok := fields[fieldModulo]; ok {
		modulo, err := strconv.Atoi(v)
		if err != nil {
			return ret, err
		}

		ret.StatusDispatch.Modulo = &modulo
	}

	if v, ok := fields[fieldStarted]; ok {
		started, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return ret, err
		}

		ret.Started = started
	}

	if v, ok := fields[fieldCompletedAt]; ok {
		completedAt, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return ret, err
		}

		ret.CompletedAt = &completedAt
	}

	return ret, nil
}
