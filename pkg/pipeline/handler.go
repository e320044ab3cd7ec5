package pipeline

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/go-logr/logr"
)

type Handler[Payload any] struct {
	logger *logr.Logger

	decode          Decoder[Payload]
	processing      Processing[Payload]
	errorProcessing ErrorProcessing
}

func NewHandler[Payload any](decode Decoder[Payload], processing Processing[Payload], errProcessing ErrorProcessing) Handler[Payload] {
	return Handler[Payload]{
		decode:          decode,
		processing:      processing,
		errorProcessing: errProcessing,
	}
}

// NewJSONHandler decodes the record value as JSON.
func NewJSONHandler[Payload any](processing Processing[Payload], errProcessing ErrorProcessing) Handler[Payload] {
	return NewHandler(JSONDecoder[Payload](), processing, errProcessing)
}

func JSONDecoder[Payload any]() Decoder[Payload] {
	return func(msg *sarama.ConsumerMessage) (Payload, error) {
		var payload Payload

		err := json.Unmarshal(msg.Value, &payload)

		return payload, err
	}
}

func (h Handler[Payload]) WithLogger(logger logr.Logger) Handler[Payload] {
	h.logger = &logger

	return h
}

func (h Handler[Payload]) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()

	h.logInfo(0, "Start consuming",
		"topic", claim.Topic(),
		"partition", claim.Partition(),
		"initialOffset", claim.InitialOffset(),
	)

	for msg := range claim.Messages() {
		// If a re-balancing occurred, context will be canceled
		// Could also be a termination signal or anything
		if ctx.Err() != nil {
			break
		}

		if msg == nil {
			h.logInfo(1, "Nil message")

			continue
		}

		h.handle(ctx, session, msg)
	}

	return nil
}

func (h Handler[Payload]) handle(ctx context.Context, session sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) {
	h.logInfo(3, "Processing message", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)

	payload, err := h.decode(msg)
	if err != nil { // Not retryable
		h.processError(ctx, msg, NewErrProcessingError(err, UnmarshalErrorCategory, nil), session)

		return
	}

	err = h.processing.Process(ctx, payload)
	if err != nil {
		h.processError(ctx, msg, err, session)

		return
	}

	session.MarkMessage(msg, "")
}

func (h Handler[Payload]) processError(ctx context.Context, msg *sarama.ConsumerMessage, pipelineError error, session sarama.ConsumerGroupSession) {
	// If context has been cancelled, don't commit offset. Message will be reprocessed with a valid context
	err := ctx.Err()
	if err != nil {
		h.logInfo(1, "Not processing error, context has been cancelled")

		return
	}

	defer session.MarkMessage(msg, "")

	h.logError(pipelineError, "Processing failed")

	processingError := AsProcessingError(pipelineError).WithMessage(msg)

	err = h.errorProcessing.Process(ctx, processingError)
	if err != nil {
		h.logError(err, "Error pipeline failed")

		h.dumpErrorContext(msg, processingError)
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (h Handler[Payload]) Setup(session sarama.ConsumerGroupSession) error {
	h.logInfo(0, "Setup to consume", "claims", session.Claims())

	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
// but before the offsets are committed for the very last time.
func (h Handler[Payload]) Cleanup(session sarama.ConsumerGroupSession) error {
	h.logInfo(0, "Cleanup after consuming", "claims", session.Claims())

	return nil
}

func (h Handler[Payload]) dumpErrorContext(msg *sarama.ConsumerMessage, err ErrProcessingError) {
	h.logError(err,
		"Failed to process message",
		"kafka.topic", msg.Topic,
		"kafka.partition", msg.Partition,
		"kafka.offset", msg.Offset,
		"kafka.key", string(msg.Key),
		"kafka.payload", string(msg.Value),
		"additionalInputs", err.AdditionalInputs,
		"category", err.Category,
	)
}

func (h Handler[Payload]) logInfo(level int, msg string, keysAndValues ...any) {
	if h.logger == nil {
		return
	}

	h.logger.V(level).Info(msg, keysAndValues...)
}

func (h Handler[Payload]) logError(err error, msg string, keysAndValues ...any) {
	if h.logger == nil {
		return
	}

	h.logger.Error(err, msg, keysAndValues...)
}
