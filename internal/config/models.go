package config

import "time"

type Config struct {
	GracefulDuration   time.Duration
	Metrics            Metrics
	Logs               Logs
	Tracing            Tracing
	DeadLetterQueue    S3
	Archive            S3
	Kafka              Kafka
	Valkey             Valkey
	EventStore         EventStore
	Projection         Projection
	ExternalValidation map[string]ExternalValidation
	Retry              Retry
}

type Metrics struct {
	Port int
}

type Logs struct {
	Level   int
	Encoder EncoderType
}

type EncoderType string

const (
	EncoderTypeJson    EncoderType = "json"
	EncoderTypeConsole EncoderType = "console"
)

type Tracing struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type S3 struct {
	Bucket       string
	KeyPrefix    string
	BaseEndpoint string
	Region       string
	UsePathStyle bool
	Creds        AWSCreds
}

type AWSCreds struct {
	AccessKeyID     string
	SecretAccessKey string
}

func (c AWSCreds) String() string {
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		return "creds set"
	}

	return "no creds"
}

type Kafka struct {
	Broker   KafkaBroker
	Consumer KafkaConsumer
	Producer KafkaProducer
}

type KafkaBroker struct {
	URLs    string
	Version string
	Creds   KafkaCreds
}

type SASLMechanism string

const (
	SASLMechanismNone        SASLMechanism = ""
	SASLMechanismPlain       SASLMechanism = "PLAIN"
	SASLMechanismScramSHA256 SASLMechanism = "SCRAM-SHA-256"
	SASLMechanismScramSHA512 SASLMechanism = "SCRAM-SHA-512"
)

type KafkaCreds struct {
	Mechanism SASLMechanism
	Username  string
	Password  string
}

func (c KafkaCreds) String() string {
	if c.Mechanism == SASLMechanismNone {
		return "no sasl"
	}

	return string(c.Mechanism) + " creds set"
}

type KafkaConsumer struct {
	Topic string
	Group string
}

type KafkaProducer struct {
	Topic string
}

type Valkey struct {
	URL           string
	Creds         ValkeyCreds
	SagaTTL       time.Duration
	CollectorTTL  time.Duration
	ProfilePrefix string
}

type ValkeyCreds struct {
	Password string
}

func (c ValkeyCreds) String() string {
	if c.Password != "" {
		return "password set"
	}

	return "no password"
}

// EventStore holds the options the projection engine reloads at runtime.
type EventStore struct {
	Path         string
	PollInterval time.Duration
	BatchSize    int
}

type ProjectionMode string

const (
	ProjectionModeSingleStream ProjectionMode = "single"
	ProjectionModeAllStreams   ProjectionMode = "all"
)

type Projection struct {
	Name         string
	Mode         ProjectionMode
	StreamName   string
	StreamPrefix string
}

// ExternalValidation is keyed by command name in Config.
type ExternalValidation struct {
	Responders int
	Modulo     int
}

type Retry struct {
	MaxAttempt uint
	Delay      time.Duration
}
