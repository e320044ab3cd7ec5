package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
)

// ValkeyRepo keeps one hash of metadata and one list of items per collecting id.
// Items are appended with RPUSH so that concurrent responders never overwrite each other.
type ValkeyRepo struct {
	client     valkey.Client
	expiration time.Duration
}

func NewValkeyRepo(client valkey.Client, expiration time.Duration) ValkeyRepo {
	return ValkeyRepo{
		client:     client,
		expiration: expiration,
	}
}

func (r ValkeyRepo) Start(ctx context.Context, data entity.StartCollectingEventData) error {
	key := metaKey(data.CollectingID)

	hset := r.client.B().Hset().Key(key).FieldValue().
		FieldValue(fieldCollectingID, data.CollectingID).
		FieldValue(fieldExternalProcessID, data.ExternalProcessID).
		FieldValue(fieldStarted, formatTime(data.Started))

	if data.StatusDispatch.Modulo != nil {
		hset = hset.FieldValue(fieldModulo, strconv.Itoa(*data.StatusDispatch.Modulo))
	}

	commands := valkey.Commands{hset.Build()}

	if data.CollectItemsAccount != nil {
		commands = append(commands, r.client.B().Hsetnx().Key(key).Field(fieldExpected).Value(strconv.Itoa(*data.CollectItemsAccount)).Build())
	}

	commands = append(commands, r.expire(key), r.expire(itemsKey(data.CollectingID)))

	for _, resp := range r.client.DoMulti(ctx, commands...) {
		err := resp.Error()
		if err != nil {
			return repo.ValkeyError(err, "failed to start collecting %s", data.CollectingID)
		}
	}

	return nil
}

func (r ValkeyRepo) GetMeta(ctx context.Context, collectingID string) (entity.StartCollectingEventData, error) {
	command := r.client.B().Hgetall().Key(metaKey(collectingID)).Build()

	resp := r.client.Do(ctx, command)

	err := resp.Error()
	if err != nil {
		return entity.StartCollectingEventData{}, repo.ValkeyError(err, "failed to get collecting %s", collectingID)
	}

	fields, err := resp.AsStrMap()
	if err != nil {
		return entity.StartCollectingEventData{}, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected hgetall response type for %s", collectingID)
	}

	if len(fields) == 0 {
		return entity.StartCollectingEventData{}, fmt.Errorf("collecting %s: %w", collectingID, repo.ErrNotFound)
	}

	ret, err := mapToEntity(fields)
	if err != nil {
		return ret, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "invalid metadata for %s", collectingID)
	}

	if ret.CollectingID == "" {
		// only the expected count was set, start was not received yet
		ret.CollectingID = collectingID
	}

	return ret, nil
}

func (r ValkeyRepo) SetExpected(ctx context.Context, collectingID string, expected int) (bool, error) {
	key := metaKey(collectingID)

	resps := r.client.DoMulti(
		ctx,
		r.client.B().Hsetnx().Key(key).Field(fieldExpected).Value(strconv.Itoa(expected)).Build(),
		r.expire(key),
	)

	for _, resp := range resps {
		err := resp.Error()
		if err != nil {
			return false, repo.ValkeyError(err, "failed to set expected count of %s", collectingID)
		}
	}

	set, err := resps[0].AsInt64()
	if err != nil {
		return false, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected hsetnx response type for %s", collectingID)
	}

	return set == 1, nil
}

func (r ValkeyRepo) Append(ctx context.Context, item entity.EventData) (int, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return 0, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "failed to marshal item of %s", item.CollectingID)
	}

	key := itemsKey(item.CollectingID)

	resps := r.client.DoMulti(
		ctx,
		r.client.B().Rpush().Key(key).Element(string(data)).Build(),
		r.expire(key),
	)

	for _, resp := range resps {
		err := resp.Error()
		if err != nil {
			return 0, repo.ValkeyError(err, "failed to append item to %s", item.CollectingID)
		}
	}

	count, err := resps[0].AsInt64()
	if err != nil {
		return 0, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected rpush response type for %s", item.CollectingID)
	}

	return int(count), nil
}

func (r ValkeyRepo) Count(ctx context.Context, collectingID string) (int, error) {
	resp := r.client.Do(ctx, r.client.B().Llen().Key(itemsKey(collectingID)).Build())

	err := resp.Error()
	if err != nil {
		return 0, repo.ValkeyError(err, "failed to count items of %s", collectingID)
	}

	count, err := resp.AsInt64()
	if err != nil {
		return 0, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected llen response type for %s", collectingID)
	}

	return int(count), nil
}

func (r ValkeyRepo) List(ctx context.Context, collectingID string) ([]entity.EventData, error) {
	resp := r.client.Do(ctx, r.client.B().Lrange().Key(itemsKey(collectingID)).Start(0).Stop(-1).Build())

	err := resp.Error()
	if err != nil {
		return nil, repo.ValkeyError(err, "failed to list items of %s", collectingID)
	}

	raws, err := resp.AsStrSlice()
	if err != nil {
		return nil, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected lrange response type for %s", collectingID)
	}

	ret := make([]entity.EventData, 0, len(raws))

	for i, raw := range raws {
		item := entity.EventData{}

		err := json.Unmarshal([]byte(raw), &item)
		if err != nil {
			return nil, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "failed to unmarshal item %d of %s", i, collectingID)
		}

		ret = append(ret, item)
	}

	return ret, nil
}

func (r ValkeyRepo) MarkCompleted(ctx context.Context, collectingID string, data entity.StartCollectingEventData) (bool, error) {
	completedAt := time.Now()
	if data.CompletedAt != nil {
		completedAt = *data.CompletedAt
	}

	command := r.client.B().Hsetnx().Key(metaKey(collectingID)).Field(fieldCompletedAt).Value(formatTime(completedAt)).Build()

	resp := r.client.Do(ctx, command)

	err := resp.Error()
	if err != nil {
		return false, repo.ValkeyError(err, "failed to mark %s completed", collectingID)
	}

	set, err := resp.AsInt64()
	if err != nil {
		return false, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected hsetnx response type for %s", collectingID)
	}

	return set == 1, nil
}

func (r ValkeyRepo) expire(key string) valkey.Completed {
	return r.client.B().Expire().Key(key).Seconds(int64(r.expiration.Seconds())).Build()
}
