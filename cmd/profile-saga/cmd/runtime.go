package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/identity-platform/profile-saga/internal/bus"
	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/internal/domain/repo/processingerror"
	"github.com/identity-platform/profile-saga/internal/factory"
	"github.com/identity-platform/profile-saga/internal/log"
	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

// runtime holds what every role shares: metrics, tracing, the kafka producer and the resources to release.
type runtime struct {
	role     string
	conf     config.Config
	host     string
	clock    clockwork.Clock
	registry *prometheus.Registry
	logger   logr.Logger

	closers []common.CloseFunc
}

func newRuntime(ctx context.Context, role string, conf config.Config) (*runtime, error) {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ret := &runtime{
		role:     role,
		conf:     conf,
		host:     host,
		clock:    clockwork.NewRealClock(),
		registry: registry,
		logger:   log.Component(role),
	}

	shutdownTracing, err := factory.SetupTracing(ctx, conf.Tracing, role)
	if err != nil {
		return nil, err
	}

	ret.closers = append(ret.closers, shutdownTracing)

	return ret, nil
}

func (r *runtime) addCloser(closer common.CloseFunc) {
	r.closers = append(r.closers, closer)
}

func (r *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), r.conf.GracefulDuration)
	defer cancel()

	err := common.CloseAll(ctx, r.closers...)
	if err != nil {
		r.logger.Error(err, "Failed to release resources")
	}
}

func (r *runtime) publisher() (bus.Publisher, error) {
	producer, err := factory.CreateKafkaProducer(r.conf.Kafka)
	if err != nil {
		return nil, err
	}

	r.addCloser(func(context.Context) error {
		return producer.Close()
	})

	return bus.NewKafkaPublisher(producer, r.clock, r.conf.Kafka.Producer.Topic, r.host), nil
}

// consumer creates the kafka pipeline of the role: envelopes go to the router, failures to the dead letter queue.
func (r *runtime) consumer(ctx context.Context, router *bus.Router) (pipeline.Runner[message.Envelope], error) {
	kafkaConf := r.conf.Kafka
	if kafkaConf.Consumer.Group == "" {
		kafkaConf.Consumer.Group = "profile-saga-" + r.role
	} else {
		kafkaConf.Consumer.Group += "-" + r.role
	}

	s3Client, err := factory.CreateS3Client(ctx, r.conf.DeadLetterQueue)
	if err != nil {
		return pipeline.Runner[message.Envelope]{}, fmt.Errorf("failed to create dead letter queue client: %w", err)
	}

	dlq := processingerror.NewS3Writer(s3Client, r.clock, r.conf.DeadLetterQueue.Bucket, r.conf.DeadLetterQueue.KeyPrefix, r.role, r.host)

	errProcessing, err := factory.DecorateErrorProcessing(pipeline.ProcessingFunc[pipeline.ErrProcessingError](dlq.WriteProcessingError), r.conf.Retry, r.registry)
	if err != nil {
		return pipeline.Runner[message.Envelope]{}, err
	}

	processing, err := factory.DecorateProcessing(router.WithLogger(r.logger), r.conf.Retry, r.registry)
	if err != nil {
		return pipeline.Runner[message.Envelope]{}, err
	}

	consumerGroup, err := factory.CreateKafkaConsumer(kafkaConf)
	if err != nil {
		return pipeline.Runner[message.Envelope]{}, err
	}

	r.addCloser(func(context.Context) error {
		return consumerGroup.Close()
	})

	handler := pipeline.NewJSONHandler[message.Envelope](processing, errProcessing)

	return pipeline.NewRunner(consumerGroup, []string{kafkaConf.Consumer.Topic}, handler).WithLogger(r.logger), nil
}

// serve runs the metrics server and the role loop until ctx is done or one of them fails.
func (r *runtime) serve(ctx context.Context, health http.Handler, loop func(ctx context.Context) error) error {
	server := factory.CreatePrometheusServer(r.conf.Metrics, r.registry, health)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	})

	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		defer r.logger.V(1).Info("Role stopped")

		return loop(ctx)
	})

	return group.Wait()
}

// run wraps a role: process limits, signals, resources.
func run(role string, start func(ctx context.Context, rt *runtime) error) {
	logger := log.Component(role)

	err := common.SetupProcess()
	if err != nil {
		logger.Error(err, "Failed to setup process")

		os.Exit(1)
	}

	// Listen to sigterm and interrupt signals
	ctx := common.SetupSignalHandler(context.Background())

	rt, err := newRuntime(ctx, role, *conf)
	if err != nil {
		logger.Error(err, "Failed to create runtime")

		os.Exit(1)
	}

	err = start(ctx, rt)
	rt.close()

	if err != nil {
		logger.Error(err, "Role failed")

		os.Exit(1)
	}

	logger.V(2).Info("Processing stopped")
}
