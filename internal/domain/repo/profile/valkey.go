package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
)

const (
	fieldVersion = "version"
	fieldData    = "data"
)

// KEYS[1] profile key, ARGV[1] expected version, ARGV[2] new version, ARGV[3] data
var putScript = valkey.NewLuaScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if not current then
  current = '0'
end
if current ~= ARGV[1] then
  return -1
end
redis.call('HSET', KEYS[1], 'version', ARGV[2], 'data', ARGV[3])
return 1
`)

type ValkeyRepo struct {
	client valkey.Client
	prefix string
}

func NewValkeyRepo(client valkey.Client, prefix string) ValkeyRepo {
	return ValkeyRepo{
		client: client,
		prefix: prefix,
	}
}

func (r ValkeyRepo) Put(ctx context.Context, profile entity.Profile, expectedVersion int64) error {
	// Convert to local model
	state := mapToModels(profile)

	// Marshal local model
	data, err := json.Marshal(state)
	if err != nil {
		return common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "failed to marshal profile %s", profile.UserID)
	}

	args := []string{
		strconv.FormatInt(expectedVersion, 10),
		strconv.FormatInt(profile.Version, 10),
		string(data),
	}

	resp := putScript.Exec(ctx, r.client, []string{r.key(profile.UserID)}, args)

	err = resp.Error()
	if err != nil {
		return repo.ValkeyError(err, "failed to put profile %s", profile.UserID)
	}

	ok, err := resp.AsInt64()
	if err != nil {
		return common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected put response type for %s", profile.UserID)
	}

	if ok != 1 {
		return fmt.Errorf("profile %s expected at version %d: %w", profile.UserID, expectedVersion, repo.ErrRevisionConflict)
	}

	return nil
}

func (r ValkeyRepo) Get(ctx context.Context, userID string) (entity.Profile, error) {
	command := r.client.B().Hgetall().Key(r.key(userID)).Build()

	resp := r.client.Do(ctx, command)

	err := resp.Error()
	if err != nil {
		return entity.Profile{}, repo.ValkeyError(err, "failed to get profile %s", userID)
	}

	fields, err := resp.AsStrMap()
	if err != nil {
		return entity.Profile{}, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "unexpected hgetall response type for %s", userID)
	}

	if len(fields) == 0 {
		return entity.Profile{}, fmt.Errorf("profile %s: %w", userID, repo.ErrNotFound)
	}

	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return entity.Profile{}, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "invalid version for profile %s", userID)
	}

	state := State{}

	err = json.Unmarshal([]byte(fields[fieldData]), &state)
	if err != nil {
		return entity.Profile{}, common.NewErrProcessingError(err, common.CategoryValkeyPayload, nil, "failed to unmarshal profile %s", userID)
	}

	return mapToEntity(userID, version, state), nil
}

func (r ValkeyRepo) Delete(ctx context.Context, userID string) error {
	command := r.client.B().Del().Key(r.key(userID)).Build()

	err := r.client.Do(ctx, command).Error()
	if err != nil {
		return repo.ValkeyError(err, "failed to delete profile %s", userID)
	}

	return nil
}

func (r ValkeyRepo) key(userID string) string {
	return r.prefix + ":" + userID
}
