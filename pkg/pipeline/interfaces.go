package pipeline

import (
	"context"

	"github.com/IBM/sarama"
)

//go:generate mockgen -source=interfaces.go -package=mock -destination=./mock/mock_pipeline.go

type Processing[Payload any] interface {
	Process(context.Context, Payload) error
}

type ErrorProcessing Processing[ErrProcessingError]

// Decoder turns a kafka record into the payload handed to the processing.
type Decoder[Payload any] func(msg *sarama.ConsumerMessage) (Payload, error)

// ProcessingFunc adapts a function to Processing.
type ProcessingFunc[Payload any] func(context.Context, Payload) error

func (f ProcessingFunc[Payload]) Process(ctx context.Context, payload Payload) error {
	return f(ctx, payload)
}
