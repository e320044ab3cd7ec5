package projection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/repo"
	"github.com/identity-platform/profile-saga/internal/eventstore"
)

const tracerName = "github.com/identity-platform/profile-saga/internal/projection"

// DomainHandler applies one event to a read model.
type DomainHandler interface {
	HandleDomainEvent(ctx context.Context, header entity.StreamedEventHeader, event entity.StoredEvent) error
}

type Options struct {
	Name         string
	Mode         config.ProjectionMode
	StreamName   string
	StreamPrefix string
}

func OptionsFrom(conf config.Projection) Options {
	return Options{
		Name:         conf.Name,
		Mode:         conf.Mode,
		StreamName:   conf.StreamName,
		StreamPrefix: conf.StreamPrefix,
	}
}

// Engine replays the events delivered by the event store subscription onto a DomainHandler,
// each event at most once per checkpoint.
type Engine struct {
	options Options
	states  repo.ProjectionStateRepository
	handler DomainHandler
	health  HealthReporter
	clock   clockwork.Clock
	tracer  trace.Tracer

	events *prometheus.CounterVec

	// initialLatest holds the versions dispatched during this run, per stream.
	// The persisted checkpoints stay the reference.
	mu            sync.Mutex
	initialLatest map[string]int64

	logger *logr.Logger
}

func NewEngine(options Options, states repo.ProjectionStateRepository, handler DomainHandler, health HealthReporter, clock clockwork.Clock, registry prometheus.Registerer) (*Engine, error) {
	if options.Mode != config.ProjectionModeSingleStream && options.Mode != config.ProjectionModeAllStreams {
		return nil, fmt.Errorf("unexpected projection mode %q", options.Mode)
	}

	if options.Mode == config.ProjectionModeSingleStream && options.StreamName == "" {
		return nil, fmt.Errorf("projection %s: stream name is required in single stream mode", options.Name)
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "projection",
		Name:      "events_total",
		Help:      "Number of events handled by the projection by result",
	}, []string{"result"})

	err := registry.Register(events)
	if err != nil {
		return nil, fmt.Errorf("failed to register projection metrics: %w", err)
	}

	return &Engine{
		options:       options,
		states:        states,
		handler:       handler,
		health:        health,
		clock:         clock,
		tracer:        otel.Tracer(tracerName),
		events:        events,
		initialLatest: map[string]int64{},
	}, nil
}

func (e *Engine) WithLogger(logger logr.Logger) *Engine {
	e.logger = &logger

	return e
}

// StartPosition returns the sequence after which the subscription must start.
func (e *Engine) StartPosition(ctx context.Context) (int64, error) {
	position, err := e.states.GetPositionOfLatestProjectedEvent(ctx)
	if err != nil {
		return 0, err
	}

	return position.Sequence, nil
}

// HandleBatch implements eventstore.BatchHandler. An error makes the subscription deliver the batch again.
func (e *Engine) HandleBatch(ctx context.Context, actions []eventstore.StreamAction) error {
	var events []entity.StoredEvent
	var err error

	switch e.options.Mode {
	case config.ProjectionModeSingleStream:
		events, err = e.singleStream(ctx, actions)
	default:
		events, err = e.allStreams(ctx, actions)
	}

	if err != nil {
		e.health.Set(Unhealthy)

		return fmt.Errorf("failed to read checkpoints of %s: %w", e.options.Name, err)
	}

	for _, event := range events {
		// interrupted handlers are not failures of the event
		if ctx.Err() != nil {
			return ctx.Err()
		}

		e.dispatch(ctx, event)
	}

	return ctx.Err()
}

func (e *Engine) singleStream(ctx context.Context, actions []eventstore.StreamAction) ([]entity.StoredEvent, error) {
	var target *eventstore.StreamAction

	for i := range actions {
		if actions[i].Stream == e.options.StreamName {
			target = &actions[i]

			break
		}
	}

	if target == nil {
		return nil, nil
	}

	position, err := e.states.GetPositionOfLatestProjectedEvent(ctx)
	if err != nil {
		return nil, err
	}

	last := int64(0)
	if position.StreamName == e.options.StreamName {
		last = position.Version
	}

	ret := newerThan(target.Events, last)

	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Version < ret[j].Version
	})

	return ret, nil
}

func (e *Engine) allStreams(ctx context.Context, actions []eventstore.StreamAction) ([]entity.StoredEvent, error) {
	latest, err := e.states.GetLatestProjectedEventIDs(ctx)
	if err != nil {
		return nil, err
	}

	ret := make([]entity.StoredEvent, 0)

	for _, action := range actions {
		if !strings.HasPrefix(action.Stream, e.options.StreamPrefix) {
			continue
		}

		unprojected := newerThan(action.Events, latest[action.Stream])

		// the in-run cache only narrows what the checkpoints let through
		floor, ok := e.seenVersion(action.Stream)
		if !ok || floor <= latest[action.Stream] {
			ret = append(ret, unprojected...)

			continue
		}

		fresh := newerThan(unprojected, floor)
		if skipped := len(unprojected) - len(fresh); skipped > 0 {
			e.events.WithLabelValues("skipped").Add(float64(skipped))
			e.logInfo(3, "Events already projected in this run", "stream", action.Stream, "count", skipped)
		}

		ret = append(ret, fresh...)
	}

	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Sequence < ret[j].Sequence
	})

	return ret, nil
}

// newerThan keeps the events of one stream whose version is above checkpoint, each version once,
// whatever the delivery order.
func newerThan(events []entity.StoredEvent, checkpoint int64) []entity.StoredEvent {
	ret := make([]entity.StoredEvent, 0, len(events))
	seen := make(map[int64]struct{}, len(events))

	for _, event := range events {
		if event.Version <= checkpoint {
			continue
		}

		if _, ok := seen[event.Version]; ok {
			continue
		}

		seen[event.Version] = struct{}{}
		ret = append(ret, event)
	}

	return ret
}

// dispatch hands one event to the handler. A failing event never stops the batch: it is classified,
// reflected in the health and, unless the projection no longer matches the events, checkpointed.
func (e *Engine) dispatch(ctx context.Context, event entity.StoredEvent) {
	header := event.Header()

	ctx, span := e.tracer.Start(ctx, "projection.dispatch", trace.WithAttributes(
		attribute.String("projection.name", e.options.Name),
		attribute.String("event.id", header.EventID),
		attribute.String("event.type", header.EventType),
		attribute.String("event.stream", header.StreamID),
		attribute.Int64("event.version", header.EventNumberVersion),
		attribute.Int64("event.sequence", header.EventNumberSequence),
	))
	defer span.End()

	err := e.handler.HandleDomainEvent(ctx, header, event)

	switch {
	case err == nil:
		e.events.WithLabelValues("projected").Inc()
		e.checkpoint(ctx, entity.NewProjectionState(e.options.Name, header, e.clock.Now()))

	case errors.Is(err, entity.ErrProjectionMismatch):
		span.RecordError(err)
		e.events.WithLabelValues("mismatch").Inc()
		e.logInfo(0, "Projection does not match the event, a rebuild is expected", "stream", header.StreamID, "version", header.EventNumberVersion, "reason", err.Error())
		e.health.Set(Healthy)

	case errors.Is(err, entity.ErrInstanceNotFound):
		span.RecordError(err)
		e.events.WithLabelValues("not_found").Inc()
		e.logInfo(1, "Instance of the event not found", "stream", header.StreamID, "version", header.EventNumberVersion, "reason", err.Error())

		now := e.clock.Now()
		e.checkpoint(ctx, entity.NewProjectionState(e.options.Name, header, now).WithError(err, now))

	case ctx.Err() != nil:
		// shutting down, the event is delivered again on restart
		span.RecordError(err)

		return

	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.events.WithLabelValues("failed").Inc()
		e.logError(err, "Failed to project event, skipping it", "stream", header.StreamID, "version", header.EventNumberVersion, "type", header.EventType)
		e.health.Set(Degraded)

		now := e.clock.Now()
		e.checkpoint(ctx, entity.NewProjectionState(e.options.Name, header, now).WithError(err, now))
	}

	e.markSeen(header)
}

func (e *Engine) checkpoint(ctx context.Context, state entity.ProjectionState) {
	if !e.states.TrySaveProjectionState(ctx, state, nil, e.logger) {
		e.logInfo(1, "Checkpoint not saved", "stream", state.StreamName, "version", state.EventNumberVersion)
	}
}

func (e *Engine) seenVersion(stream string) (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	version, ok := e.initialLatest[stream]

	return version, ok
}

func (e *Engine) markSeen(header entity.StreamedEventHeader) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if header.EventNumberVersion > e.initialLatest[header.StreamID] {
		e.initialLatest[header.StreamID] = header.EventNumberVersion
	}
}

func (e *Engine) logInfo(level int, msg string, keysAndValues ...any) {
	if e.logger == nil {
		return
	}

	e.logger.V(level).Info(msg, append([]any{"projection", e.options.Name}, keysAndValues...)...)
}

func (e *Engine) logError(err error, msg string, keysAndValues ...any) {
	if e.logger == nil {
		return
	}

	e.logger.Error(err, msg, append([]any{"projection", e.options.Name}, keysAndValues...)...)
}
