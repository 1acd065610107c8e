package cliui_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("prints a success mark and returns nil", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "Creating session", func() error { return nil })
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("Creating session"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		Expect(buf.String()).To(HaveSuffix("\n"))
	})

	It("prints a fail mark and returns the error", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")
		err := cliui.Step(&buf, "Rendering", func() error { return boom })
		Expect(err).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})
})

var _ = Describe("FormatDuration", func() {
	It("formats sub-second durations in milliseconds", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("formats longer durations in seconds", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("Wrap", func() {
	It("wraps at word boundaries", func() {
		out := cliui.Wrap("one two three four", 9)
		for _, line := range strings.Split(out, "\n") {
			Expect(len(line)).To(BeNumerically("<=", 9))
		}
		Expect(strings.Fields(out)).To(Equal([]string{"one", "two", "three", "four"}))
	})

	It("leaves text alone for a non-positive width", func() {
		Expect(cliui.Wrap("a b c", 0)).To(Equal("a b c"))
	})
})

var _ = Describe("Width", func() {
	It("falls back for non-terminals", func() {
		f, err := os.CreateTemp(GinkgoT().TempDir(), "out")
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(cliui.IsTerminal(f)).To(BeFalse())
		Expect(cliui.Width(f)).To(Equal(cliui.DefaultWidth))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("renders headings and keeps their text", func() {
		out, err := cliui.RenderMarkdown("# Weekly Plan\n\n- Oats", 60)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Weekly Plan"))
		Expect(out).To(ContainSubstring("Oats"))
	})
})
