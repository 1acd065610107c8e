package sse_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/sse"
)

// drain reads frames until exhaustion.
func drain(r *sse.TeeReader) []string {
	var out []string
	for {
		f, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if f == nil {
			return out
		}
		out = append(out, f.Data)
	}
}

var _ = Describe("Reader", func() {
	var dst *bytes.Buffer

	BeforeEach(func() {
		dst = &bytes.Buffer{}
	})

	Describe("Next", func() {
		Context("with agent SSE events", func() {
			It("parses a single frame", func() {
				r := sse.NewTeeReader(strings.NewReader("data: hello world\n\n"), dst)

				f, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(f.Data).To(Equal("hello world"))

				f, err = r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNil())
			})

			It("parses consecutive frames including the done sentinel", func() {
				input := "data: {\"content\":{\"parts\":[{\"text\":\"Hel\"}]}}\n\n" +
					"data: {\"content\":{\"parts\":[{\"text\":\"Hello\"}]}}\n\n" +
					"data: [DONE]\n\n"
				frames := drain(sse.NewTeeReader(strings.NewReader(input), dst))

				Expect(frames).To(HaveLen(3))
				Expect(frames[1]).To(ContainSubstring("Hello"))
				Expect(frames[2]).To(Equal(sse.Done))
			})

			It("is unaffected by one-byte reads", func() {
				input := "data: first\n\ndata:second\n\n"
				r := sse.NewTeeReader(iotest.OneByteReader(strings.NewReader(input)), dst)

				Expect(drain(r)).To(Equal([]string{"first", "second"}))
			})
		})

		Context("verbatim byte forwarding", func() {
			It("forwards all bytes including comments and delimiters to dst", func() {
				input := ": keep-alive\nevent: message\ndata: first\n\ndata: second\n\n"
				_ = drain(sse.NewTeeReader(strings.NewReader(input), dst))

				Expect(dst.String()).To(Equal(input))
			})

			It("forwards a trailing partial line it does not decode", func() {
				input := "data: first\ndata: unterminated"
				frames := drain(sse.NewTeeReader(strings.NewReader(input), dst))

				Expect(frames).To(Equal([]string{"first"}))
				Expect(dst.String()).To(Equal(input))
			})

			It("accepts a nil destination", func() {
				Expect(drain(sse.NewTeeReader(strings.NewReader("data: x\n"), nil))).To(Equal([]string{"x"}))
			})
		})

		Context("errors", func() {
			It("returns source read errors", func() {
				boom := errors.New("connection reset")
				r := sse.NewTeeReader(iotest.ErrReader(boom), dst)

				_, err := r.Next()
				Expect(err).To(MatchError(boom))
			})

			It("returns destination write errors", func() {
				pr, pw := io.Pipe()
				Expect(pr.Close()).To(Succeed())
				r := sse.NewTeeReader(strings.NewReader("data: x\n"), pw)

				_, err := r.Next()
				Expect(err).To(MatchError(io.ErrClosedPipe))
			})
		})

		Context("edge cases", func() {
			It("returns nil on empty input", func() {
				f, err := sse.NewTeeReader(strings.NewReader(""), dst).Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNil())
			})

			It("skips blank lines and unknown fields", func() {
				input := "\n\nretry: 3000\nfoo: bar\ndata: hello\n\n"
				Expect(drain(sse.NewTeeReader(strings.NewReader(input), dst))).To(Equal([]string{"hello"}))
			})

			It("skips empty data fields", func() {
				input := "data:\ndata: \ndata: x\n"
				Expect(drain(sse.NewTeeReader(strings.NewReader(input), dst))).To(Equal([]string{"x"}))
			})
		})
	})
})
