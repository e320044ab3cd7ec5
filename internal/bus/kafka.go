package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

const headerMessageType = "message-type"

// KafkaPublisher sends every message as a JSON envelope keyed by its correlation key.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	clock    clockwork.Clock

	topic string
	host  string
}

func NewKafkaPublisher(producer sarama.SyncProducer, clock clockwork.Clock, topic string, host string) KafkaPublisher {
	return KafkaPublisher{
		producer: producer,
		clock:    clock,
		topic:    topic,
		host:     host,
	}
}

func (p KafkaPublisher) Publish(ctx context.Context, msgs ...message.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([]*sarama.ProducerMessage, 0, len(msgs))

	for _, msg := range msgs {
		record, err := p.record(msg)
		if err != nil {
			return err
		}

		records = append(records, record)
	}

	err := p.producer.SendMessages(records)
	if err != nil {
		return pipeline.NewRetryableErrProcessingError(fmt.Errorf("failed to publish %d messages: %w", len(records), err), common.CategoryPublish, nil)
	}

	return nil
}

func (p KafkaPublisher) record(msg message.Message) (*sarama.ProducerMessage, error) {
	env, err := message.Wrap(msg, p.host, uuid.NewString(), p.clock.Now())
	if err != nil {
		return nil, pipeline.NewErrProcessingError(err, common.CategoryPublish, nil)
	}

	value, err := json.Marshal(env)
	if err != nil {
		return nil, pipeline.NewErrProcessingError(fmt.Errorf("failed to marshal envelope of %s: %w", env.Type, err), common.CategoryPublish, nil)
	}

	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(env.Key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerMessageType), Value: []byte(env.Type)},
		},
		Timestamp: env.Sent,
	}, nil
}
