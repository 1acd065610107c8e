package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/storage"
	"github.com/papercomputeco/mealprep/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/mealprep/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	testutils.DriverConformance(func() storage.Driver {
		return inmemory.NewDriver()
	})

	It("returns copies that callers cannot mutate", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		Expect(d.SavePlan(ctx, &storage.Plan{SessionID: "s", Markdown: "# Plan"})).To(Succeed())

		got, err := d.LatestPlan(ctx, "s")
		Expect(err).NotTo(HaveOccurred())
		got.Markdown = "changed"

		again, err := d.LatestPlan(ctx, "s")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Markdown).To(Equal("# Plan"))
		Expect(d.Count()).To(Equal(1))
	})
})
