package projection

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/sync/semaphore"

	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/eventstore"
)

type generation struct {
	id      int
	options eventstore.Options
	ctx     context.Context
	cancel  context.CancelFunc
}

// Reloader hands the event store options of the current configuration generation to the subscription.
// Applying a new generation cancels the context of the previous one.
type Reloader struct {
	gate *semaphore.Weighted

	mu      sync.RWMutex
	current generation

	logger *logr.Logger
}

func NewReloader(initial config.EventStore) *Reloader {
	ctx, cancel := context.WithCancel(context.Background())

	return &Reloader{
		gate: semaphore.NewWeighted(1),
		current: generation{
			id:      1,
			options: optionsOf(initial),
			ctx:     ctx,
			cancel:  cancel,
		},
	}
}

func (r *Reloader) WithLogger(logger logr.Logger) *Reloader {
	r.logger = &logger

	return r
}

// Options implements eventstore.OptionsProvider.
func (r *Reloader) Options() (eventstore.Options, context.Context) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current.options, r.current.ctx
}

// Generation returns the number of applied generations.
func (r *Reloader) Generation() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current.id
}

// ApplyConfig switches to the event store options of conf. Unchanged options keep the current generation.
func (r *Reloader) ApplyConfig(ctx context.Context, conf config.Config) error {
	err := r.gate.Acquire(ctx, 1)
	if err != nil {
		return fmt.Errorf("failed to acquire configuration gate: %w", err)
	}
	defer r.gate.Release(1)

	next := optionsOf(conf.EventStore)

	r.mu.Lock()
	previous := r.current

	if previous.options == next {
		r.mu.Unlock()
		r.logInfo(2, "Event store options unchanged", "generation", previous.id)

		return nil
	}

	genCtx, cancel := context.WithCancel(context.Background())
	r.current = generation{
		id:      previous.id + 1,
		options: next,
		ctx:     genCtx,
		cancel:  cancel,
	}
	r.mu.Unlock()

	previous.cancel()

	r.logInfo(0, "Event store options reloaded", "generation", previous.id+1, "pollInterval", next.PollInterval, "batchSize", next.BatchSize)

	return nil
}

// Run applies every configuration generation published by watcher until ctx is done.
func (r *Reloader) Run(ctx context.Context, watcher *config.Watcher) {
	watcher.Subscribe(func(conf config.Config) {
		err := r.ApplyConfig(ctx, conf)
		if err != nil && r.logger != nil {
			r.logger.Error(err, "Failed to apply configuration")
		}
	})

	<-ctx.Done()

	r.mu.RLock()
	defer r.mu.RUnlock()

	r.current.cancel()
}

func optionsOf(conf config.EventStore) eventstore.Options {
	return eventstore.Options{
		PollInterval: conf.PollInterval,
		BatchSize:    conf.BatchSize,
	}
}

func (r *Reloader) logInfo(level int, msg string, keysAndValues ...any) {
	if r.logger == nil {
		return
	}

	r.logger.V(level).Info(msg, keysAndValues...)
}
