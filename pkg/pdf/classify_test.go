package pdf_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/pdf"
)

var _ = Describe("Classify", func() {
	DescribeTable("first matching rule wins",
		func(line string, kind pdf.LineKind, text string) {
			gotKind, gotText := pdf.Classify(line)
			Expect(gotKind).To(Equal(kind), "kind of %q", line)
			Expect(gotText).To(Equal(text))
		},
		Entry("h1", "# Weekly Plan", pdf.LineH1, "Weekly Plan"),
		Entry("h2", "## Monday", pdf.LineH2, "Monday"),
		Entry("h3", "### Breakfast", pdf.LineH3, "Breakfast"),
		Entry("header before link", "## [Oats](https://x.com)", pdf.LineH2, "[Oats](https://x.com)"),
		Entry("link line", "Try [Oats](https://x.com/o) today", pdf.LineLink, "Try [Oats](https://x.com/o) today"),
		Entry("link before list", "- [Oats](https://x.com/o)", pdf.LineLink, "- [Oats](https://x.com/o)"),
		Entry("link before bold", "**Lunch**: [Soup](https://x.com/s)", pdf.LineLink, "**Lunch**: [Soup](https://x.com/s)"),
		Entry("dash list item", "- 2 eggs", pdf.LineListItem, "2 eggs"),
		Entry("star list item", "* 1 cup rice", pdf.LineListItem, "1 cup rice"),
		Entry("indented list item", "   - spinach  ", pdf.LineListItem, "spinach"),
		Entry("list before bold", "- **Dinner** salmon", pdf.LineListItem, "**Dinner** salmon"),
		Entry("bold paragraph", "**Total** 1800 kcal", pdf.LineBold, "**Total** 1800 kcal"),
		Entry("plain paragraph", "Drink water.", pdf.LinePlain, "Drink water."),
		Entry("hash without space", "#hashtag", pdf.LinePlain, "#hashtag"),
		Entry("ordered list falls through", "1. Preheat oven", pdf.LinePlain, "1. Preheat oven"),
		Entry("brackets without a link", "see [notes] (later)", pdf.LinePlain, "see [notes] (later)"),
		Entry("blank", "", pdf.LineBlank, ""),
		Entry("whitespace only", "   \t", pdf.LineBlank, ""),
	)
})
