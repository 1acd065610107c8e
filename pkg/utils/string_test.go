package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Truncate", func() {
	DescribeTable("shortening strings",
		func(in string, maxLen int, want string) {
			Expect(Truncate(in, maxLen)).To(Equal(want))
		},
		Entry("within the limit", "short", 10, "short"),
		Entry("exactly at the limit", "12345", 5, "12345"),
		Entry("over the limit", "this is a long string", 10, "this is a ..."),
		Entry("accented session titles", "crème brûlée week", 8, "crème br..."),
		Entry("zero width", "oats", 0, "..."),
		Entry("negative width", "oats", -3, "..."),
		Entry("empty input", "", 4, ""),
	)

	It("never splits a multi-byte rune", func() {
		out := Truncate("🥑🥑🥑🥑", 2)
		Expect(out).To(Equal("🥑🥑..."))
	})
})
