package bus

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/avast/retry-go/v4"

	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

// PublishOrDeadLetter publishes messages that cannot be produced again by reprocessing the inbound
// message. Transient failures are retried here. When publishing still fails, the returned processing
// error is not retryable and carries the messages, so that they end in the dead letter queue.
func PublishOrDeadLetter(ctx context.Context, publisher Publisher, conf config.Retry, msgs ...message.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	err := retry.Do(
		func() error {
			return publisher.Publish(ctx, msgs...)
		},
		retry.Context(ctx),
		retry.Attempts(max(conf.MaxAttempt, 1)),
		retry.Delay(conf.Delay),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, pipeline.ErrRetryableError)
		}),
		retry.LastErrorOnly(true),
	)
	if err == nil {
		return nil
	}

	inputs := make([]pipeline.Input, 0, len(msgs))

	for _, msg := range msgs {
		value, marshalErr := json.Marshal(msg)
		if marshalErr != nil {
			continue
		}

		inputs = append(inputs, pipeline.Input{Source: "outbound", Key: msg.MessageType(), Value: value})
	}

	// drop the retryable marker of the cause
	return common.NewErrProcessingError(errors.New(err.Error()), common.CategoryPublish, inputs, "failed to publish %d message(s) keyed %s", len(msgs), msgs[0].CorrelationKey())
}
