package projection_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/identity-platform/profile-saga/internal/config"
	"github.com/identity-platform/profile-saga/internal/eventstore"
	"github.com/identity-platform/profile-saga/internal/projection"
)

var _ = Describe("Reloading the event store options", func() {
	var reloader *projection.Reloader

	BeforeEach(func() {
		reloader = projection.NewReloader(config.EventStore{PollInterval: time.Second, BatchSize: 10})
	})

	It("should cancel the previous generation", func() {
		options, previous := reloader.Options()
		Expect(options).To(Equal(eventstore.Options{PollInterval: time.Second, BatchSize: 10}))

		Expect(reloader.ApplyConfig(context.Background(), config.Config{EventStore: config.EventStore{PollInterval: time.Minute, BatchSize: 10}})).To(Succeed())

		Expect(previous.Err()).To(MatchError(context.Canceled))

		options, current := reloader.Options()
		Expect(options.PollInterval).To(Equal(time.Minute))
		Expect(current.Err()).NotTo(HaveOccurred())
		Expect(reloader.Generation()).To(Equal(2))
	})

	It("should keep the generation when the options did not change", func() {
		_, previous := reloader.Options()

		Expect(reloader.ApplyConfig(context.Background(), config.Config{EventStore: config.EventStore{PollInterval: time.Second, BatchSize: 10, Path: "other.db"}})).To(Succeed())

		Expect(previous.Err()).NotTo(HaveOccurred())
		Expect(reloader.Generation()).To(Equal(1))
	})

	It("should apply the generations published by the watcher", func() {
		watcher := config.NewWatcher()
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			defer close(done)
			reloader.Run(ctx, watcher)
		}()

		Eventually(func() int {
			watcher.Notify(config.Config{EventStore: config.EventStore{PollInterval: 2 * time.Second, BatchSize: 5}})

			return reloader.Generation()
		}).Should(Equal(2))

		cancel()
		Eventually(done).Should(BeClosed())

		_, last := reloader.Options()
		Expect(last.Err()).To(MatchError(context.Canceled))
	})
})
