package pipeline_test

import (
	"context"
	"errors"

	"github.com/IBM/sarama"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/identity-platform/profile-saga/pkg/pipeline"
	"github.com/identity-platform/profile-saga/pkg/pipeline/mock"
)

// Helper

type fakeSession struct {
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32 { return nil }
func (s *fakeSession) MemberID() string { return "member" }
func (s *fakeSession) GenerationID() int32 { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string) {}
func (s *fakeSession) Commit() {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) { s.marked = append(s.marked, msg.Offset) }

type fakeClaim struct {
	messages chan *sarama.ConsumerMessage
}

func newFakeClaim(msgs ...*sarama.ConsumerMessage) fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(msgs))
	for _, msg := range msgs {
		ch <- msg
	}

	close(ch)

	return fakeClaim{messages: ch}
}

func (c fakeClaim) Topic() string { return "commands" }
func (c fakeClaim) Partition() int32 { return 0 }
func (c fakeClaim) InitialOffset() int64 { return 0 }
func (c fakeClaim) HighWaterMarkOffset() int64 { return 0 }
func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

// Test

var _ = Describe("Testing the JSON handler", func() {
	var ctrl *gomock.Controller

	var proc *mock.MockProcessing[Data]
	var errProc *mock.MockProcessing[pipeline.ErrProcessingError]
	var handler pipeline.Handler[Data]
	var session *fakeSession

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())

		proc = mock.NewMockProcessing[Data](ctrl)
		errProc = mock.NewMockProcessing[pipeline.ErrProcessingError](ctrl)
		handler = pipeline.NewJSONHandler[Data](proc, errProc)
	})

	When("records are valid and processed", func() {
		BeforeEach(func() {
			session = &fakeSession{ctx: context.Background()}

			proc.EXPECT().Process(gomock.Any(), data).Return(nil).Times(2)
		})

		It("should mark every record", func() {
			claim := newFakeClaim(
				&sarama.ConsumerMessage{Offset: 1, Value: []byte(`{"Type":"SubmitCommand"}`)},
				&sarama.ConsumerMessage{Offset: 2, Value: []byte(`{"Type":"SubmitCommand"}`)},
			)

			Expect(handler.ConsumeClaim(session, claim)).To(Succeed())
			Expect(session.marked).To(Equal([]int64{1, 2}))
		})
	})

	When("a record cannot be decoded", func() {
		BeforeEach(func() {
			session = &fakeSession{ctx: context.Background()}

			errProc.EXPECT().Process(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, pErr pipeline.ErrProcessingError) error {
				Expect(pErr.Category).To(Equal(pipeline.UnmarshalErrorCategory))
				Expect(pErr.Message).NotTo(BeNil())
				Expect(pErr.Message.Offset).To(BeEquivalentTo(7))

				return nil
			}).Times(1)
		})

		It("should route it to the error processing and still mark it", func() {
			claim := newFakeClaim(&sarama.ConsumerMessage{Offset: 7, Value: []byte(`not json`)})

			Expect(handler.ConsumeClaim(session, claim)).To(Succeed())
			Expect(session.marked).To(Equal([]int64{7}))
		})
	})

	When("the context is cancelled while processing fails", func() {
		BeforeEach(func() {
			ctx, cancel := context.WithCancel(context.Background())
			session = &fakeSession{ctx: ctx}

			proc.EXPECT().Process(gomock.Any(), data).DoAndReturn(func(context.Context, Data) error {
				cancel()

				return errors.New("interrupted")
			}).Times(1)
		})

		It("should neither call the error processing nor mark the record", func() {
			claim := newFakeClaim(&sarama.ConsumerMessage{Offset: 3, Value: []byte(`{"Type":"SubmitCommand"}`)})

			Expect(handler.ConsumeClaim(session, claim)).To(Succeed())
			Expect(session.marked).To(BeEmpty())
		})
	})
})
