package agent_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/agent"
	"github.com/papercomputeco/mealprep/pkg/logger"
)

func textFrame(text string) string {
	return `data: {"content":{"role":"model","parts":[{"text":"` + text + `"}]}}` + "\n\n"
}

// chunked yields the input in fixed-size pieces, one per Read.
type chunked struct {
	data []byte
	size int
}

func (c *chunked) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := min(c.size, len(c.data), len(p))
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

var _ = Describe("ReadSnapshots", func() {
	var snapshots []string

	record := func(s string) { snapshots = append(snapshots, s) }

	BeforeEach(func() {
		snapshots = nil
	})

	It("replaces the running text with each snapshot", func() {
		input := textFrame("Mon") + textFrame("Monday: oats")

		text, err := agent.ReadSnapshots(strings.NewReader(input), nil, record, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Monday: oats"))
		Expect(snapshots).To(Equal([]string{"Mon", "Monday: oats"}))
	})

	It("is independent of chunk boundaries", func() {
		input := textFrame("a") + "data: [DONE]\n\n" + textFrame("ab") + textFrame("abc")

		want, err := agent.ReadSnapshots(strings.NewReader(input), nil, nil, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		for size := 1; size <= len(input); size += 7 {
			snapshots = nil
			got, err := agent.ReadSnapshots(&chunked{data: []byte(input), size: size}, nil, record, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
			Expect(snapshots).To(Equal([]string{"a", "ab", "abc"}), "chunk size %d", size)
		}
	})

	It("skips the done sentinel and malformed frames", func() {
		var logs bytes.Buffer
		input := "data: [DONE]\n\n" + "data: {not json\n\n" + textFrame("X")

		text, err := agent.ReadSnapshots(strings.NewReader(input), nil, record, logger.New(logger.WithWriter(&logs)))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("X"))
		Expect(snapshots).To(Equal([]string{"X"}))
		Expect(logs.String()).To(ContainSubstring("skipping malformed agent frame"))
	})

	It("yields both snapshots around a sentinel and a malformed frame for every chunk size", func() {
		input := textFrame("Hi") + "data: [DONE]\n\n" + "data: {not json}\n\n" + textFrame("Hi there")

		for size := 1; size <= len(input); size++ {
			snapshots = nil
			text, err := agent.ReadSnapshots(&chunked{data: []byte(input), size: size}, nil, record, logger.Nop())
			Expect(err).NotTo(HaveOccurred(), "chunk size %d", size)
			Expect(text).To(Equal("Hi there"), "chunk size %d", size)
			Expect(snapshots).To(Equal([]string{"Hi", "Hi there"}), "chunk size %d", size)
		}
	})

	It("stops at an error event without reading further", func() {
		input := textFrame("partial") + `data: {"error":"quota exceeded"}` + "\n\n" + textFrame("never")

		_, err := agent.ReadSnapshots(strings.NewReader(input), nil, record, logger.Nop())

		var perr *agent.ProtocolError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Message).To(Equal("quota exceeded"))
		Expect(snapshots).To(Equal([]string{"partial"}))
	})

	It("treats errorMessage as an error event", func() {
		input := `data: {"errorCode":"SAFETY","errorMessage":"blocked"}` + "\n\n"

		_, err := agent.ReadSnapshots(strings.NewReader(input), nil, nil, logger.Nop())
		Expect(err).To(MatchError("blocked"))
	})

	It("ignores events with neither content nor error", func() {
		input := `data: {"author":"planner","actions":{}}` + "\n\n" + textFrame("ok")

		text, err := agent.ReadSnapshots(strings.NewReader(input), nil, nil, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("ok"))
	})

	It("uses the first non-empty text part and ignores function parts", func() {
		input := `data: {"content":{"parts":[{"functionCall":{"name":"search","args":{}}},{"text":""},{"text":"first"},{"text":"second"}]}}` + "\n\n"

		text, err := agent.ReadSnapshots(strings.NewReader(input), nil, nil, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("first"))
	})

	It("fails with no text content received when nothing arrives", func() {
		input := "data: [DONE]\n\n" + `data: {"content":{"parts":[{"functionCall":{"name":"search"}}]}}` + "\n\n"

		_, err := agent.ReadSnapshots(strings.NewReader(input), nil, record, logger.Nop())
		Expect(err).To(MatchError(agent.ErrNoTextReceived))
		Expect(err.Error()).To(Equal("no text content received"))
		Expect(agent.IsNoContent(err)).To(BeTrue())
		Expect(snapshots).To(BeEmpty())
	})

	It("copies the raw stream to the tee writer", func() {
		var tee bytes.Buffer
		input := textFrame("hi") + "data: [DONE]\n\n"

		_, err := agent.ReadSnapshots(strings.NewReader(input), &tee, nil, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(tee.String()).To(Equal(input))
	})

	It("returns read errors", func() {
		boom := errors.New("reset by peer")
		_, err := agent.ReadSnapshots(iotest.ErrReader(boom), nil, nil, logger.Nop())
		Expect(err).To(MatchError(boom))
	})
})
