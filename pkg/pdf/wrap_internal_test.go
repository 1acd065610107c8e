package pdf

import (
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type runeMetrics struct{}

func (runeMetrics) TextWidth(text string, _ Style) float64 {
	return float64(utf8.RuneCountInString(text))
}

var _ = Describe("wrapText", func() {
	style := Style{Font: "Helvetica", Size: 11}

	It("returns one empty line for empty text", func() {
		Expect(wrapText("   ", 10, style, runeMetrics{})).To(Equal([]string{""}))
	})

	It("keeps text that fits on one line", func() {
		Expect(wrapText("two eggs", 10, style, runeMetrics{})).To(Equal([]string{"two eggs"}))
	})

	It("breaks between words greedily", func() {
		Expect(wrapText("aa bb cc dd", 5, style, runeMetrics{})).To(Equal([]string{"aa bb", "cc dd"}))
	})

	It("keeps runs of spaces inside a line", func() {
		Expect(wrapText("aa   bb", 10, style, runeMetrics{})).To(Equal([]string{"aa   bb"}))
	})

	It("keeps leading indentation on the first line", func() {
		Expect(wrapText("  1 cup rice", 12, style, runeMetrics{})).To(Equal([]string{"  1 cup rice"}))
	})

	It("drops spaces that fall on a break", func() {
		Expect(wrapText("aa    bb", 4, style, runeMetrics{})).To(Equal([]string{"aa", "bb"}))
	})

	It("drops trailing whitespace and treats tabs as spaces", func() {
		Expect(wrapText("aa\tbb  ", 10, style, runeMetrics{})).To(Equal([]string{"aa bb"}))
	})

	It("breaks a word longer than the width between runes", func() {
		Expect(wrapText("x https://example.com/abc", 8, style, runeMetrics{})).To(Equal([]string{
			"x", "https://", "example.", "com/abc",
		}))
	})

	It("terminates when no single rune fits", func() {
		Expect(wrapText("abc", 0.5, style, runeMetrics{})).To(Equal([]string{"a", "b", "c"}))
	})
})
