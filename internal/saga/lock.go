package saga

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Lock serializes the publication of events to the store.
type Lock interface {
	Acquire(ctx context.Context) error
	Release()
}

// PublishLock is a mutual exclusion shared by every saga of the process.
type PublishLock struct {
	sem *semaphore.Weighted
}

func NewPublishLock() PublishLock {
	return PublishLock{sem: semaphore.NewWeighted(1)}
}

func (l PublishLock) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l PublishLock) Release() {
	l.sem.Release(1)
}

type NoopLock struct{}

func (NoopLock) Acquire(ctx context.Context) error { return ctx.Err() }

func (NoopLock) Release() {}
