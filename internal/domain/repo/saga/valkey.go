package saga

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
)

const (
	keyPrefix = "saga:"

	fieldRevision = "revision"
	fieldPayload  = "payload"
)

// KEYS[1] saga key, ARGV[1] expected revision, ARGV[2] payload, ARGV[3] ttl in seconds
var saveScript = valkey.NewLuaScript(`
local current = redis.call('HGET', KEYS[1], 'revision')
if not current then
  current = '0'
end
if current ~= ARGV[1] then
  return -1
end
local nextRevision = tonumber(ARGV[1]) + 1
redis.call('HSET', KEYS[1], 'revision', nextRevision, 'payload', ARGV[2])
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[3]))
return nextRevision
`)

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

func (r ValkeyRepo) Get(ctx context.Context, correlationID string) (repo.SagaRecord, error) {
	command := r.client.B().Hgetall().Key(keyPrefix + correlationID).Build()

	resp := r.client.Do(ctx, command)

	err := resp.Error()
	if err != nil {
		return repo.SagaRecord{}, repo.ValkeyError(err, "failed to get saga %s", correlationID)
	}

	fields, err := resp.AsStrMap()
	if err != nil {
		return repo.SagaRecord{}, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected hgetall response type for saga %s", correlationID)
	}

	if len(fields) == 0 {
		return repo.SagaRecord{}, fmt.Errorf("saga %s: %w", correlationID, repo.ErrNotFound)
	}

	revision, err := strconv.ParseInt(fields[fieldRevision], 10, 64)
	if err != nil {
		return repo.SagaRecord{}, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "invalid revision for saga %s", correlationID)
	}

	return repo.SagaRecord{
		CorrelationID: correlationID,
		Revision:      revision,
		Payload:       []byte(fields[fieldPayload]),
	}, nil
}

func (r ValkeyRepo) Save(ctx context.Context, record repo.SagaRecord) (int64, error) {
	args := []string{
		strconv.FormatInt(record.Revision, 10),
		string(record.Payload),
		strconv.FormatInt(int64(r.expiration.Seconds()), 10),
	}

	resp := saveScript.Exec(ctx, r.client, []string{keyPrefix + record.CorrelationID}, args)

	err := resp.Error()
	if err != nil {
		return 0, repo.ValkeyError(err, "failed to save saga %s", record.CorrelationID)
	}

	revision, err := resp.AsInt64()
	if err != nil {
		return 0, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected save response type for saga %s", record.CorrelationID)
	}

	if revision < 0 {
		return 0, fmt.Errorf("saga %s at revision %d: %w", record.CorrelationID, record.Revision, repo.ErrRevisionConflict)
	}

	return revision, nil
}

func (r ValkeyRepo) Delete(ctx context.Context, correlationID string) error {
	command := r.client.B().Del().Key(keyPrefix + correlationID).Build()

	err := r.client.Do(ctx, command).Error()
	if err != nil {
		return repo.ValkeyError(err, "failed to delete saga %s", correlationID)
	}

	return nil
}
