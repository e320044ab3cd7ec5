package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const prefix = "PROFILESAGA"

var conf Config

// Parse reads the configuration file given as parameter.
func Parse(confFile string) (*Config, error) {
	setDefault()

	viper.SetEnvPrefix(prefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	if len(confFile) > 0 {
		viper.SetConfigFile(confFile)

		err := viper.ReadInConfig()
		if err != nil {
			return &conf, fmt.Errorf("failed to read config file %v: %w", confFile, err)
		}
	}

	err := viper.Unmarshal(&conf)
	if err != nil {
		return &conf, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &conf, nil
}

// KafkaConfig returns kafka configuration.
// Passwords and sensitive information should be hidden with by implementing Stringer.
func KafkaConfig() Kafka {
	return conf.Kafka
}

// ExternalValidationFor returns the external validation rule of a command, if any.
func (c Config) ExternalValidationFor(command string) (ExternalValidation, bool) {
	// viper lowercases map keys
	rule, ok := c.ExternalValidation[strings.ToLower(command)]
	if !ok {
		rule, ok = c.ExternalValidation[command]
	}

	if !ok || rule.Responders <= 0 {
		return ExternalValidation{}, false
	}

	return rule, true
}

func setDefault() {
	viper.SetDefault("logs.level", 4)
	viper.SetDefault("logs.encoder", EncoderTypeConsole)
	viper.SetDefault("gracefulDuration", "10s")
	viper.SetDefault("metrics.port", 7777)
	viper.SetDefault("tracing.serviceName", "profile-saga")
	viper.SetDefault("kafka.broker.version", "3.6.0")
	viper.SetDefault("kafka.consumer.topic", "profile-commands")
	viper.SetDefault("kafka.producer.topic", "profile-commands")
	viper.SetDefault("valkey.sagaTTL", "24h")
	viper.SetDefault("valkey.collectorTTL", "1h")
	viper.SetDefault("valkey.profilePrefix", "profile")
	viper.SetDefault("eventStore.path", "events.db")
	viper.SetDefault("eventStore.pollInterval", "500ms")
	viper.SetDefault("eventStore.batchSize", 256)
	viper.SetDefault("projection.name", "user-profile")
	viper.SetDefault("projection.mode", ProjectionModeAllStreams)
	viper.SetDefault("projection.streamPrefix", "user_")
	viper.SetDefault("retry.maxAttempt", 3)
	viper.SetDefault("retry.delay", "200ms")
}
