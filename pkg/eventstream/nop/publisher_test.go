package nop_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/eventstream"
	"github.com/papercomputeco/mealprep/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	var (
		ctx context.Context
		p   *nop.Publisher
	)

	BeforeEach(func() {
		ctx = context.Background()
		p = nop.NewPublisher()
	})

	It("rejects nil events without counting them", func() {
		Expect(p.PublishPlan(ctx, nil)).To(MatchError(eventstream.ErrNilPlanEvent))
		Expect(p.Published()).To(BeZero())
	})

	It("counts accepted plan events", func() {
		event := &eventstream.PlanGeneratedEvent{PlanID: 7}
		Expect(p.PublishPlan(ctx, event)).To(Succeed())
		Expect(p.PublishPlan(ctx, event)).To(Succeed())
		Expect(p.Published()).To(Equal(int64(2)))
	})

	It("is safe for concurrent publishers", func() {
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = p.PublishPlan(ctx, &eventstream.PlanGeneratedEvent{})
			}()
		}
		wg.Wait()
		Expect(p.Published()).To(Equal(int64(16)))
	})

	It("refuses events after Close", func() {
		Expect(p.Close()).To(Succeed())
		err := p.PublishPlan(ctx, &eventstream.PlanGeneratedEvent{})
		Expect(err).To(MatchError(eventstream.ErrPublisherClosed))
		Expect(p.Published()).To(BeZero())
	})
})
