package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/identity-platform/profile-saga/internal/common"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

const CategoryUnknownMessage = "unknown_message"

var ErrUnknownMessage = errors.New("unknown message type")

type HandlerFunc func(ctx context.Context, env message.Envelope) error

// Router dispatches envelopes by message type. It is a pipeline.Processing[message.Envelope].
type Router struct {
	logger *logr.Logger

	routes        map[string]HandlerFunc
	ignoreUnknown bool
}

func NewRouter() *Router {
	return &Router{
		routes: map[string]HandlerFunc{},
	}
}

func (r *Router) WithLogger(logger logr.Logger) *Router {
	r.logger = &logger

	return r
}

// IgnoreUnknown makes the router skip message types it has no route for.
// Several roles share one topic, each one only handles its own messages.
func (r *Router) IgnoreUnknown() *Router {
	r.ignoreUnknown = true

	return r
}

func (r *Router) Handle(messageType string, handler HandlerFunc) *Router {
	r.routes[messageType] = handler

	return r
}

func (r *Router) Types() []string {
	ret := make([]string, 0, len(r.routes))

	for t := range r.routes {
		ret = append(ret, t)
	}

	return ret
}

func (r *Router) Process(ctx context.Context, env message.Envelope) error {
	handler, ok := r.routes[env.Type]
	if !ok {
		if r.ignoreUnknown {
			r.logInfo(3, "Ignoring message", "type", env.Type, "key", env.Key)

			return nil
		}

		return pipeline.NewErrProcessingError(fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type), CategoryUnknownMessage, nil)
	}

	r.logInfo(2, "Routing message", "type", env.Type, "key", env.Key)

	return handler(ctx, env)
}

// Route binds a typed handler: the envelope is decoded before the handler is called.
func Route[T message.Message](r *Router, handle func(ctx context.Context, msg T, env message.Envelope) error) *Router {
	var zero T

	return r.Handle(zero.MessageType(), func(ctx context.Context, env message.Envelope) error {
		msg, err := Decode[T](env)
		if err != nil {
			return err
		}

		return handle(ctx, msg, env)
	})
}

// Decode returns a non retryable processing error when the payload does not match T.
func Decode[T message.Message](env message.Envelope) (T, error) {
	ret, err := message.Unwrap[T](env)
	if err != nil {
		return ret, pipeline.NewErrProcessingError(err, common.CategoryDecode, []pipeline.Input{
			{Source: "envelope", Key: env.Type, Value: env.Payload},
		})
	}

	return ret, nil
}

func (r *Router) logInfo(level int, msg string, keysAndValues ...any) {
	if r.logger == nil {
		return
	}

	r.logger.V(level).Info(msg, keysAndValues...)
}
