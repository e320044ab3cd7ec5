package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/IBM/sarama"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	promdto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/identity-platform/profile-saga/internal/domain/message"
)

const (
	kafkaURL      = "localhost:39092"
	localstackURL = "http://localhost:34566"

	maxSizeName = 12

	ErrorMetricFamily = "error_processing_error_total"
	SagaMetricFamily  = "saga_outcome_total"
)

// Metrics ports of the roles, as exposed by the compose project.
const (
	OrchestrateMetricsPort = 37771
	CollectMetricsPort     = 37772
	ProjectMetricsPort     = 37773
)

type TestConfig struct {
	ProjectName     string
	KafkaTopic      string
	DLQS3Bucket     string
	ArchiveS3Bucket string
}

type TestContext struct {
	Config TestConfig

	s3Client *s3.Client

	kafkaClient   sarama.Client
	kafkaProducer sarama.SyncProducer
	kafkaAdmin    sarama.ClusterAdmin
}

type KeyValue struct {
	Key   string
	Value string
}

var random *rand.Rand

func init() {
	now := time.Now()

	random = rand.New(rand.NewSource(now.UnixMilli()))
}

func CreateTestConfig(test string) TestConfig {
	prefix := test
	if len(test) > maxSizeName {
		prefix = test[:maxSizeName]
	}

	name := fmt.Sprintf("%s-%x", prefix, random.Int31())

	return TestConfig{
		ProjectName:     fmt.Sprintf("profile-saga-%s", name),
		KafkaTopic:      name,
		DLQS3Bucket:     fmt.Sprintf("%s-dlq", name),
		ArchiveS3Bucket: fmt.Sprintf("%s-archive", name),
	}
}

func CreateTestContext(conf TestConfig) (TestContext, error) {
	ret := TestContext{
		Config: conf,
	}

	// localstack s3 client
	s3Config, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("useless", "useless", "")),
		config.WithBaseEndpoint(localstackURL),
		config.WithRegion("us-east-1"),
	)
	if err != nil {
		return ret, fmt.Errorf("failed to create localstack config: %w", err)
	}

	ret.s3Client = s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	// Kafka client
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.ClientID = conf.ProjectName
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	kc, err := sarama.NewClient([]string{kafkaURL}, saramaConfig)
	if err != nil {
		return ret, fmt.Errorf("failed to create kafka client: %w", err)
	}

	ret.kafkaClient = kc

	kp, err := sarama.NewSyncProducerFromClient(kc)
	if err != nil {
		return ret, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	ret.kafkaProducer = kp

	ka, err := sarama.NewClusterAdminFromClient(kc)
	if err != nil {
		return ret, fmt.Errorf("failed to create kafka admin: %w", err)
	}

	ret.kafkaAdmin = ka

	return ret, nil
}

// Generic func

func (tc TestContext) DeployAll(ctx context.Context) error {
	err := tc.CreateKafkaTopic(ctx)
	if err != nil {
		return err
	}

	err = tc.CreateS3Buckets(ctx)
	if err != nil {
		return fmt.Errorf("failed to create buckets: %w", err)
	}

	err = tc.DeployProfileSaga(ctx)
	if err != nil {
		return fmt.Errorf("failed to deploy profile saga: %w", err)
	}

	return nil
}

func (tc TestContext) Shutdown(ctx context.Context) error {
	// Delete the roles first: they use the clients resources
	err := tc.DeleteAll(ctx)
	if err != nil {
		return err
	}

	return tc.Close(ctx)
}

func (tc TestContext) DeleteAll(ctx context.Context) error {
	err := tc.DeleteProfileSaga(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete profile saga: %w", err)
	}

	err = tc.DeleteKafkaTopic(ctx)
	if err != nil {
		return err
	}

	err = tc.DeleteS3Buckets(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete buckets: %w", err)
	}

	return nil
}

func (tc TestContext) Close(ctx context.Context) error {
	err := tc.kafkaProducer.Close()
	if err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}

	err = tc.kafkaAdmin.Close()
	if err != nil {
		return fmt.Errorf("failed to close kafka admin: %w", err)
	}

	return nil
}

// Profile saga func

func (tc TestContext) DeployProfileSaga(ctx context.Context) error {
	err := runMake(upTarget, makeVars(tc.Config))
	if err != nil {
		return fmt.Errorf("failed to deploy profile saga: %w", err)
	}

	return nil
}

func (tc TestContext) DeleteProfileSaga(ctx context.Context) error {
	err := runMake(downTarget, map[string]string{"PROJECT_NAME": tc.Config.ProjectName})
	if err != nil {
		return fmt.Errorf("failed to delete profile saga: %w", err)
	}

	return nil
}

// Kafka func

func (tc TestContext) CreateKafkaTopic(ctx context.Context) error {
	err := tc.kafkaAdmin.CreateTopic(tc.Config.KafkaTopic, &sarama.TopicDetail{NumPartitions: 3, ReplicationFactor: 1}, false)
	if err != nil {
		return fmt.Errorf("failed to create kafka topic: %w", err)
	}

	return nil
}

func (tc TestContext) DeleteKafkaTopic(ctx context.Context) error {
	err := tc.kafkaAdmin.DeleteTopic(tc.Config.KafkaTopic)
	if err != nil {
		return fmt.Errorf("failed to delete kafka topic: %w", err)
	}

	return nil
}

// Send pushes a bus message the way the roles publish them.
func (tc TestContext) Send(ctx context.Context, msg message.Message) error {
	env, err := message.Wrap(msg, "e2e", "", time.Now())
	if err != nil {
		return err
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return tc.PushRaw(ctx, env.Key, payload)
}

func (tc TestContext) PushRaw(ctx context.Context, key string, payload []byte) error {
	_, _, err := tc.kafkaProducer.SendMessage(&sarama.ProducerMessage{
		Topic: tc.Config.KafkaTopic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to push msg: %w", err)
	}

	return nil
}

// Envelopes reads the whole topic and returns the envelopes of the given type.
func (tc TestContext) Envelopes(ctx context.Context, messageType string) ([]message.Envelope, error) {
	consumer, err := sarama.NewConsumerFromClient(tc.kafkaClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	defer consumer.Close()

	partitions, err := tc.kafkaClient.Partitions(tc.Config.KafkaTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	ret := make([]message.Envelope, 0)

	for _, partition := range partitions {
		envs, err := tc.readPartition(ctx, consumer, partition, messageType)
		if err != nil {
			return nil, err
		}

		ret = append(ret, envs...)
	}

	return ret, nil
}

func (tc TestContext) readPartition(ctx context.Context, consumer sarama.Consumer, partition int32, messageType string) ([]message.Envelope, error) {
	newest, err := tc.kafkaClient.GetOffset(tc.Config.KafkaTopic, partition, sarama.OffsetNewest)
	if err != nil {
		return nil, fmt.Errorf("failed to get offset of partition %d: %w", partition, err)
	}

	ret := make([]message.Envelope, 0)

	if newest == 0 {
		return ret, nil
	}

	pc, err := consumer.ConsumePartition(tc.Config.KafkaTopic, partition, sarama.OffsetOldest)
	if err != nil {
		return nil, fmt.Errorf("failed to consume partition %d: %w", partition, err)
	}
	defer pc.Close()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case record := <-pc.Messages():
			env := message.Envelope{}

			err := json.Unmarshal(record.Value, &env)
			if err == nil && env.Type == messageType {
				ret = append(ret, env)
			}

			if record.Offset >= newest-1 {
				return ret, nil
			}
		}
	}
}

// Metrics func

func (tc TestContext) GetMetric(ctx context.Context, port int, family string, labels ...KeyValue) (*promdto.Metric, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://localhost:%d/metrics", port), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	defer resp.Body.Close()

	parser := expfmt.TextParser{}

	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metrics: %w", err)
	}

	metricFamily, ok := families[family]
	if !ok {
		return nil, fmt.Errorf("metric family %s not found", family)
	}

	for _, metric := range metricFamily.GetMetric() {
		if hasLabels(metric, labels) {
			return metric, nil
		}
	}

	return nil, errors.New("metric not found")
}

func hasLabels(metric *promdto.Metric, labels []KeyValue) bool {
	for _, expected := range labels {
		found := false

		for _, label := range metric.GetLabel() {
			if label.GetName() == expected.Key && label.GetValue() == expected.Value {
				found = true
			}
		}

		if !found {
			return false
		}
	}

	return true
}

// S3 func

func (tc TestContext) CreateS3Buckets(ctx context.Context) error {
	err := tc.createS3Bucket(ctx, tc.Config.ArchiveS3Bucket)
	if err != nil {
		return fmt.Errorf("failed to create archive s3 bucket: %w", err)
	}

	err = tc.createS3Bucket(ctx, tc.Config.DLQS3Bucket)
	if err != nil {
		return fmt.Errorf("failed to create dlq s3 bucket: %w", err)
	}

	return nil
}

func (tc TestContext) DeleteS3Buckets(ctx context.Context) error {
	err := tc.deleteS3Bucket(ctx, tc.Config.ArchiveS3Bucket)
	if err != nil {
		return fmt.Errorf("failed to delete archive s3 bucket: %w", err)
	}

	err = tc.deleteS3Bucket(ctx, tc.Config.DLQS3Bucket)
	if err != nil {
		return fmt.Errorf("failed to delete dlq s3 bucket: %w", err)
	}

	return nil
}

func (tc TestContext) ListS3Objects(ctx context.Context, bucket string, prefix string) ([]string, error) {
	ret := make([]string, 0)

	resp, err := tc.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: &prefix,
	})
	if err != nil {
		return ret, fmt.Errorf("failed to list object: %w", err)
	}

	for _, obj := range resp.Contents {
		ret = append(ret, *obj.Key)
	}

	return ret, nil
}

func (tc TestContext) createS3Bucket(ctx context.Context, bucket string) error {
	_, err := tc.s3Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &bucket})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}

	return nil
}

// deleteS3Bucket empties the bucket first.
func (tc TestContext) deleteS3Bucket(ctx context.Context, bucket string) error {
	keys, err := tc.ListS3Objects(ctx, bucket, "")
	if err != nil {
		return err
	}

	for _, key := range keys {
		_, err := tc.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key})
		if err != nil {
			return fmt.Errorf("failed to delete object %s: %w", key, err)
		}
	}

	_, err = tc.s3Client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: &bucket})
	if err != nil {
		return fmt.Errorf("failed to delete bucket %s: %w", bucket, err)
	}

	return nil
}
