package e2e_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
	"github.com/identity-platform/profile-saga/internal/domain/message"
	"github.com/identity-platform/profile-saga/test/e2e"
)

// Helper

func submit(commandName string, data any) message.SubmitCommand {
	payload, err := json.Marshal(data)
	Expect(err).NotTo(HaveOccurred())

	return message.SubmitCommand{
		CorrelationID: uuid.NewString(),
		Command:       commandName,
		Data:          payload,
		ID:            entity.CommandIdentifier{ID: uuid.NewString()},
		Initiator:     "e2e",
	}
}

func decode[T message.Message](envs []message.Envelope) []T {
	ret := make([]T, 0, len(envs))

	for _, env := range envs {
		msg, err := message.Unwrap[T](env)
		Expect(err).NotTo(HaveOccurred())

		ret = append(ret, msg)
	}

	return ret
}

// Test Case

var _ = Describe("Submitting user commands", func() {
	var testConfig e2e.TestConfig
	var testContext e2e.TestContext

	var ctx context.Context

	BeforeEach(func() {
		var err error
		ctx = context.TODO()

		testConfig = e2e.CreateTestConfig("commands")

		testContext, err = e2e.CreateTestContext(testConfig)
		Expect(err).NotTo(HaveOccurred())

		err = testContext.DeployAll(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		// Keep all components if the test failed
		if CurrentSpecReport().Failed() {
			GinkgoLogr.Info("Test failed", "config", testConfig)

			return
		}

		err := testContext.Shutdown(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	When("creating then deleting a user", func() {
		var userID string
		var create message.SubmitCommand

		BeforeEach(func() {
			userID = uuid.NewString()
			create = submit("CreateUser", map[string]string{"userId": userID, "name": "Ada", "email": "ada@example.com"})

			err := testContext.Send(ctx, create)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should answer once the profile is projected and archive the deleted stream", func(ctx SpecContext) {
			By("eventually answering the creation")
			Eventually(func(g Gomega, ctx context.Context) {
				envs, err := testContext.Envelopes(ctx, message.TypeSubmitCommandSuccess)
				g.Expect(err).NotTo(HaveOccurred())

				successes := decode[message.SubmitCommandSuccess](envs)
				g.Expect(successes).To(ContainElement(message.SubmitCommandSuccess{Command: "CreateUser", ID: create.ID.ID, EntityID: userID}))
			}).WithContext(ctx).WithTimeout(time.Minute).WithPolling(2 * time.Second).Should(Succeed())

			By("deleting the user")
			err := testContext.Send(ctx, submit("DeleteUser", map[string]string{"userId": userID}))
			Expect(err).NotTo(HaveOccurred())

			Eventually(func(g Gomega, ctx context.Context) {
				objects, err := testContext.ListS3Objects(ctx, testConfig.ArchiveS3Bucket, "")
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(objects).To(HaveLen(1))
				g.Expect(objects[0]).To(ContainSubstring(entity.UserStream(userID)))
			}).WithContext(ctx).WithTimeout(time.Minute).WithPolling(2 * time.Second).Should(Succeed())
		})
	})

	When("the payload is invalid", func() {
		var create message.SubmitCommand

		BeforeEach(func() {
			create = submit("CreateUser", map[string]string{"email": "not-an-email"})

			err := testContext.Send(ctx, create)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject the command with the validation errors", func(ctx SpecContext) {
			Eventually(func(g Gomega, ctx context.Context) {
				envs, err := testContext.Envelopes(ctx, message.TypeSubmitCommandFailure)
				g.Expect(err).NotTo(HaveOccurred())

				failures := decode[message.SubmitCommandFailure](envs)
				g.Expect(failures).To(HaveLen(1))
				g.Expect(failures[0].ID).To(Equal(create.ID.ID))
				g.Expect(failures[0].ErrorMessage).To(Equal("Validation failed."))
				g.Expect(failures[0].Errors).To(ContainElements("Name required", "Email must be a valid email address"))
			}).WithContext(ctx).WithTimeout(time.Minute).WithPolling(2 * time.Second).Should(Succeed())

			Eventually(func(g Gomega, ctx context.Context) {
				metric, err := testContext.GetMetric(ctx, e2e.OrchestrateMetricsPort, e2e.SagaMetricFamily,
					e2e.KeyValue{Key: "command", Value: "CreateUser"},
					e2e.KeyValue{Key: "outcome", Value: "Rejected"},
				)
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(metric.GetCounter().GetValue()).To(BeEquivalentTo(1))
			}).WithContext(ctx).WithTimeout(time.Minute).WithPolling(2 * time.Second).Should(Succeed())
		})
	})
})
