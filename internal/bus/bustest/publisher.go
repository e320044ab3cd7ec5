// Package bustest provides an in-memory bus publisher for tests.
package bustest

import (
	"context"
	"sync"

	"github.com/identity-platform/profile-saga/internal/domain/message"
)

type Publisher struct {
	mu       sync.Mutex
	messages []message.Message
	err      error
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// FailWith makes every following Publish fail with err. A nil err restores publishing.
func (p *Publisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.err = err
}

func (p *Publisher) Publish(_ context.Context, msgs ...message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}

	p.messages = append(p.messages, msgs...)

	return nil
}

func (p *Publisher) Messages() []message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]message.Message(nil), p.messages...)
}

// Drain returns the published messages and forgets them.
func (p *Publisher) Drain() []message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	ret := p.messages
	p.messages = nil

	return ret
}

// OfType returns the published messages of type T.
func OfType[T message.Message](p *Publisher) []T {
	ret := make([]T, 0)

	for _, msg := range p.Messages() {
		typed, ok := msg.(T)
		if ok {
			ret = append(ret, typed)
		}
	}

	return ret
}
