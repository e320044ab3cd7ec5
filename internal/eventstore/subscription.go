package eventstore

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
)

type BatchHandler interface {
	HandleBatch(ctx context.Context, actions []StreamAction) error
}

type Options struct {
	PollInterval time.Duration
	BatchSize    int
}

// OptionsProvider hands out the current subscription options together with a context
// that is cancelled as soon as these options are replaced.
type OptionsProvider interface {
	Options() (Options, context.Context)
}

type StaticOptions Options

func (o StaticOptions) Options() (Options, context.Context) {
	return Options(o), context.Background()
}

// Subscription polls the store and delivers committed events in sequence order.
// A batch the handler fails on is delivered again.
type Subscription struct {
	logger *logr.Logger

	reader   Reader
	handler  BatchHandler
	provider OptionsProvider
	clock    clockwork.Clock
}

func NewSubscription(reader Reader, handler BatchHandler, provider OptionsProvider, clock clockwork.Clock) Subscription {
	return Subscription{
		reader:   reader,
		handler:  handler,
		provider: provider,
		clock:    clock,
	}
}

func (s Subscription) WithLogger(logger logr.Logger) Subscription {
	s.logger = &logger

	return s
}

// Run delivers events after afterSequence until ctx is done.
func (s Subscription) Run(ctx context.Context, afterSequence int64) error {
	s.logInfo(0, "Start subscription", "afterSequence", afterSequence)

	position := afterSequence

	for {
		options, generation := s.provider.Options()

		next, full := s.poll(ctx, position, options)
		position = next

		if ctx.Err() != nil {
			s.logInfo(0, "Stop subscription", "position", position)

			return nil
		}

		if full {
			continue
		}

		if !s.wait(ctx, generation, options.PollInterval) {
			s.logInfo(0, "Stop subscription", "position", position)

			return nil
		}
	}
}

// poll returns the new position and whether the batch was full.
func (s Subscription) poll(ctx context.Context, position int64, options Options) (int64, bool) {
	events, err := s.reader.ReadAll(ctx, position, options.BatchSize)
	if err != nil {
		if ctx.Err() == nil {
			s.logError(err, "Failed to read events", "position", position)
		}

		return position, false
	}

	if len(events) == 0 {
		return position, false
	}

	s.logInfo(2, "Delivering events", "count", len(events), "from", events[0].Sequence)

	err = s.handler.HandleBatch(ctx, GroupByStream(events))
	if err != nil {
		if ctx.Err() == nil {
			s.logError(err, "Failed to handle batch, will be delivered again", "position", position)
		}

		return position, false
	}

	return events[len(events)-1].Sequence, options.BatchSize > 0 && len(events) >= options.BatchSize
}

// wait returns false when ctx is done. A new options generation ends the wait early.
func (s Subscription) wait(ctx context.Context, generation context.Context, interval time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-generation.Done():
		s.logInfo(1, "Options changed, polling now")

		return true
	case <-s.clock.After(interval):
		return true
	}
}

func (s Subscription) logInfo(level int, msg string, keysAndValues ...any) {
	if s.logger == nil {
		return
	}

	s.logger.V(level).Info(msg, keysAndValues...)
}

func (s Subscription) logError(err error, msg string, keysAndValues ...any) {
	if s.logger == nil {
		return
	}

	s.logger.Error(err, msg, keysAndValues...)
}
