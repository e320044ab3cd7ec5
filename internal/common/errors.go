package common

import (
	"fmt"

	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

const (
	CategoryContract      = "contract"
	CategoryDecode        = "decode"
	CategoryStore         = "store"
	CategoryPublish       = "publish"
	CategoryValkeyClient  = "valkey_client"
	CategoryValkeyPayload = "valkey_payload"
)

func NewErrProcessingError(err error, category string, inputs []pipeline.Input, reason string, args ...interface{}) pipeline.ErrProcessingError {
	cause := fmt.Sprintf(reason, args...)
	dErr := fmt.Errorf("%s: %w", cause, err)

	return pipeline.NewErrProcessingError(dErr, category, inputs)
}

func NewRetryableErrProcessingError(err error, category string, inputs []pipeline.Input, reason string, args ...interface{}) pipeline.ErrProcessingError {
	return NewErrProcessingError(pipeline.NewErrRetryableError(err), category, inputs, reason, args...)
}

// NewContractError reports a message that can never be processed, whatever the number of retries.
func NewContractError(err error, reason string, args ...interface{}) pipeline.ErrProcessingError {
	return NewErrProcessingError(err, CategoryContract, nil, reason, args...)
}
