package testutils

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/storage"
)

// DriverConformance registers the behavior every storage.Driver shares.
// newDriver is called before each spec; the driver is closed after it.
func DriverConformance(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = nil
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("messages", func() {
		It("returns a session transcript in insertion order", func() {
			first := &storage.Message{SessionID: "s1", Text: "plan my week", IsUser: true}
			second := &storage.Message{SessionID: "s1", Text: "Here you go"}
			other := &storage.Message{SessionID: "s2", Text: "unrelated", IsUser: true}

			Expect(driver.SaveMessage(ctx, first)).To(Succeed())
			Expect(driver.SaveMessage(ctx, other)).To(Succeed())
			Expect(driver.SaveMessage(ctx, second)).To(Succeed())

			Expect(first.ID).NotTo(BeZero())
			Expect(second.ID).To(BeNumerically(">", first.ID))
			Expect(first.CreatedAt).NotTo(BeZero())

			got, err := driver.Messages(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[0].Text).To(Equal("plan my week"))
			Expect(got[0].IsUser).To(BeTrue())
			Expect(got[1].Text).To(Equal("Here you go"))
			Expect(got[1].IsUser).To(BeFalse())
		})

		It("returns an empty transcript for an unknown session", func() {
			got, err := driver.Messages(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())
		})

		It("rejects nil messages", func() {
			Expect(driver.SaveMessage(ctx, nil)).To(HaveOccurred())
		})
	})

	Describe("plans", func() {
		It("returns the latest plan per session and overall", func() {
			created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			a1 := &storage.Plan{SessionID: "a", UserID: "u_999", Markdown: "# A1", CreatedAt: created}
			b1 := &storage.Plan{SessionID: "b", UserID: "u_999", Markdown: "# B1"}
			a2 := &storage.Plan{SessionID: "a", UserID: "u_999", Markdown: "# A2"}

			for _, p := range []*storage.Plan{a1, b1, a2} {
				Expect(driver.SavePlan(ctx, p)).To(Succeed())
			}

			got, err := driver.LatestPlan(ctx, "b")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Markdown).To(Equal("# B1"))

			got, err = driver.LatestPlan(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Markdown).To(Equal("# A2"))

			got, err = driver.LatestPlan(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(a2.ID))
		})

		It("keeps the supplied creation time", func() {
			created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			Expect(driver.SavePlan(ctx, &storage.Plan{SessionID: "a", Markdown: "x", CreatedAt: created})).To(Succeed())

			got, err := driver.LatestPlan(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CreatedAt.Equal(created)).To(BeTrue())
		})

		It("reports a missing plan as not found", func() {
			_, err := driver.LatestPlan(ctx, "nobody")
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("lists plans newest first with a limit", func() {
			for _, md := range []string{"one", "two", "three"} {
				Expect(driver.SavePlan(ctx, &storage.Plan{SessionID: "s", Markdown: md})).To(Succeed())
			}

			all, err := driver.ListPlans(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].Markdown).To(Equal("three"))

			limited, err := driver.ListPlans(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(limited).To(HaveLen(2))
			Expect(limited[1].Markdown).To(Equal("two"))
		})
	})
}
