package repo

import (
	"errors"
	"syscall"

	"github.com/valkey-io/valkey-go"

	"github.com/identity-platform/profile-saga/internal/common"
)

// ValkeyError classifies a valkey client error as a processing error, retryable when the cause is transient.
func ValkeyError(err error, reason string, args ...interface{}) error {
	if IsValkeyRetryable(err) {
		return common.NewRetryableErrProcessingError(err, common.CategoryValkeyClient, nil, reason, args...)
	}

	return common.NewErrProcessingError(err, common.CategoryValkeyClient, nil, reason, args...)
}

func IsValkeyRetryable(err error) bool {
	// Network error
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	if valkey.IsValkeyNil(err) {
		return false
	}

	// Valkey specfic error
	vErr, isValkeyError := valkey.IsValkeyErr(err)
	if !isValkeyError {
		return false
	}

	return vErr.IsTryAgain() || vErr.IsClusterDown()
}
