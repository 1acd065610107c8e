package pdf_test

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mealprep/pkg/pdf"
)

func kinds(instrs []pdf.Instruction) []pdf.Kind {
	out := make([]pdf.Kind, len(instrs))
	for i, in := range instrs {
		out[i] = in.Kind
	}
	return out
}

var _ = Describe("Exporter", func() {
	var (
		exp *pdf.Exporter
		cfg pdf.Config
	)

	BeforeEach(func() {
		var err error
		cfg = pdf.DefaultConfig()
		exp, err = pdf.NewExporter(cfg, fixedMetrics{})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewExporter", func() {
		It("fills unset fields from the defaults", func() {
			e, err := pdf.NewExporter(pdf.Config{LineHeight: 6}, fixedMetrics{})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Config().LineHeight).To(Equal(6.0))
			Expect(e.Config().BreakY).To(Equal(270.0))
			Expect(e.Config().ListWrapWidth).To(Equal(170.0))
		})

		It("rejects a break threshold above the top margin", func() {
			_, err := pdf.NewExporter(pdf.Config{TopY: 50, BreakY: 40}, fixedMetrics{})
			Expect(err).To(MatchError(ContainSubstring("break y")))
		})

		It("rejects non-core fonts", func() {
			_, err := pdf.NewExporter(pdf.Config{FontFamily: "Comic Sans"}, fixedMetrics{})
			Expect(err).To(MatchError(ContainSubstring("core PDF font")))
		})

		It("requires metrics", func() {
			_, err := pdf.NewExporter(cfg, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("headers", func() {
		It("renders an h1 as one large bold run", func() {
			instrs, err := exp.Export("# Title")
			Expect(err).NotTo(HaveOccurred())

			Expect(instrs).To(HaveLen(1))
			Expect(instrs[0].Kind).To(Equal(pdf.KindText))
			Expect(instrs[0].Text).To(Equal("Title"))
			Expect(instrs[0].X).To(Equal(10.0))
			Expect(instrs[0].Y).To(Equal(15.0))
			Expect(instrs[0].Style).To(Equal(pdf.Style{Font: "Helvetica", Size: 18, Bold: true}))
		})

		It("advances by the heading increment", func() {
			instrs, err := exp.Export("# A\n## B\n### C\nD")
			Expect(err).NotTo(HaveOccurred())

			Expect(instrs).To(HaveLen(4))
			Expect(instrs[1].Y).To(Equal(25.0))
			Expect(instrs[1].Style.Size).To(Equal(14.0))
			Expect(instrs[2].Y).To(Equal(33.0))
			Expect(instrs[2].Style.Size).To(Equal(12.0))
			Expect(instrs[3].Y).To(Equal(40.0))
			Expect(instrs[3].Style).To(Equal(pdf.Style{Font: "Helvetica", Size: 11}))
		})
	})

	Describe("link lines", func() {
		It("splits text and links left to right on one baseline", func() {
			instrs, err := exp.Export("See [Recipe](https://x.com/a) and [Other](https://x.com/b) today")
			Expect(err).NotTo(HaveOccurred())

			Expect(kinds(instrs)).To(Equal([]pdf.Kind{
				pdf.KindText, pdf.KindLink, pdf.KindText, pdf.KindLink, pdf.KindText,
			}))
			Expect(instrs[0].Text).To(Equal("See "))
			Expect(instrs[1].Text).To(Equal("Recipe"))
			Expect(instrs[1].URL).To(Equal("https://x.com/a"))
			Expect(instrs[2].Text).To(Equal(" and "))
			Expect(instrs[3].Text).To(Equal("Other"))
			Expect(instrs[3].URL).To(Equal("https://x.com/b"))
			Expect(instrs[4].Text).To(Equal(" today"))

			x := 10.0
			for _, in := range instrs {
				Expect(in.Y).To(Equal(15.0))
				Expect(in.X).To(Equal(x))
				x += float64(len(in.Text))
			}
			Expect(instrs[1].W).To(Equal(6.0))
			Expect(instrs[1].H).To(BeNumerically(">", 0))
		})

		It("advances one line height", func() {
			instrs, err := exp.Export("[A](https://a.com)\nnext")
			Expect(err).NotTo(HaveOccurred())
			Expect(instrs[len(instrs)-1].Y).To(Equal(20.0))
		})
	})

	Describe("list items", func() {
		It("prefixes the bullet at the indent", func() {
			instrs, err := exp.Export("- 2 eggs")
			Expect(err).NotTo(HaveOccurred())

			Expect(instrs).To(HaveLen(1))
			Expect(instrs[0].Text).To(Equal("• 2 eggs"))
			Expect(instrs[0].X).To(Equal(15.0))
		})

		It("continues wrapped segments at the same indent", func() {
			long := strings.Repeat("word ", 60)
			instrs, err := exp.Export("* " + long + "\nafter")
			Expect(err).NotTo(HaveOccurred())

			Expect(len(instrs)).To(BeNumerically(">", 2))
			items := instrs[:len(instrs)-1]
			Expect(items[0].Text).To(HavePrefix("• word"))
			for i, in := range items {
				Expect(in.X).To(Equal(15.0))
				Expect(in.Y).To(Equal(15.0 + 5*float64(i)))
				Expect(utf8.RuneCountInString(in.Text)).To(BeNumerically("<=", 172))
				if i > 0 {
					Expect(in.Text).To(HavePrefix("  word"))
				}
			}
			Expect(instrs[len(instrs)-1].Y).To(Equal(15.0 + 5*float64(len(items))))
		})
	})

	Describe("bold runs", func() {
		It("alternates weights and lays runs end to end", func() {
			instrs, err := exp.Export("Plain **Bold** Plain2")
			Expect(err).NotTo(HaveOccurred())

			Expect(instrs).To(HaveLen(3))
			Expect(instrs[0].Text).To(Equal("Plain "))
			Expect(instrs[0].Style.Bold).To(BeFalse())
			Expect(instrs[1].Text).To(Equal("Bold"))
			Expect(instrs[1].Style.Bold).To(BeTrue())
			Expect(instrs[2].Text).To(Equal(" Plain2"))
			Expect(instrs[2].Style.Bold).To(BeFalse())

			Expect(instrs[0].X).To(Equal(10.0))
			Expect(instrs[1].X).To(Equal(16.0))
			Expect(instrs[2].X).To(Equal(22.0))
			for _, in := range instrs {
				Expect(in.Y).To(Equal(15.0))
			}
		})

		It("toggles on empty segments", func() {
			instrs, err := exp.Export("**Lunch** soup")
			Expect(err).NotTo(HaveOccurred())

			Expect(instrs).To(HaveLen(2))
			Expect(instrs[0].Text).To(Equal("Lunch"))
			Expect(instrs[0].Style.Bold).To(BeTrue())
			Expect(instrs[0].X).To(Equal(10.0))
			Expect(instrs[1].Style.Bold).To(BeFalse())
		})

		It("leaves the trailing text bold for an odd marker count", func() {
			instrs, err := exp.Export("a **b")
			Expect(err).NotTo(HaveOccurred())

			Expect(instrs).To(HaveLen(2))
			Expect(instrs[1].Text).To(Equal("b"))
			Expect(instrs[1].Style.Bold).To(BeTrue())
		})
	})

	Describe("plain paragraphs and blank lines", func() {
		It("wraps to the content width one line height apart", func() {
			para := strings.TrimSpace(strings.Repeat("lorem ", 50))
			instrs, err := exp.Export(para)
			Expect(err).NotTo(HaveOccurred())

			Expect(instrs).To(HaveLen(2))
			Expect(len(instrs[0].Text)).To(BeNumerically("<=", 190))
			Expect(instrs[1].Y).To(Equal(20.0))
			Expect(instrs[0].Text + " " + instrs[1].Text).To(Equal(para))
		})

		It("advances the blank spacing for empty lines", func() {
			instrs, err := exp.Export("\n\nx")
			Expect(err).NotTo(HaveOccurred())

			Expect(instrs).To(HaveLen(1))
			Expect(instrs[0].Y).To(Equal(21.0))
		})

		It("tolerates CRLF line endings", func() {
			instrs, err := exp.Export("# A\r\nb\r\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(instrs[0].Text).To(Equal("A"))
			Expect(instrs[1].Text).To(Equal("b"))
		})
	})

	Describe("pagination", func() {
		It("breaks once before the line that starts past the threshold", func() {
			// 15 + 52*5 = 275 > 270, so line 53 starts a new page.
			lines := make([]string, 60)
			for i := range lines {
				lines[i] = "meal"
			}
			instrs, err := exp.Export(strings.Join(lines, "\n"))
			Expect(err).NotTo(HaveOccurred())

			breaks := 0
			for i, in := range instrs {
				if in.Kind != pdf.KindPageBreak {
					continue
				}
				breaks++
				Expect(in.Line).To(Equal(53))
				Expect(instrs[i-1].Y).To(Equal(270.0))
				Expect(instrs[i+1].Y).To(Equal(15.0))
			}
			Expect(breaks).To(Equal(1))
		})

		It("checks once per source line by default", func() {
			cur := exp.NewCursor()
			cur.Y = 265
			para := strings.TrimSpace(strings.Repeat("lorem ", 100))

			instrs, err := exp.ExportLine(cur, 1, para, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(instrs)).NotTo(ContainElement(pdf.KindPageBreak))
			Expect(cur.Y).To(BeNumerically(">", 270))

			instrs, err = exp.ExportLine(cur, 2, "next", instrs)
			Expect(err).NotTo(HaveOccurred())
			Expect(instrs[len(instrs)-2].Kind).To(Equal(pdf.KindPageBreak))
			Expect(cur.Page).To(Equal(2))
			Expect(cur.Y).To(Equal(20.0))
		})

		It("checks wrapped sub-lines when enabled", func() {
			c := cfg
			c.PaginateWrappedLines = true
			e, err := pdf.NewExporter(c, fixedMetrics{})
			Expect(err).NotTo(HaveOccurred())

			cur := e.NewCursor()
			cur.Y = 265
			para := strings.TrimSpace(strings.Repeat("lorem ", 100))

			instrs, err := e.ExportLine(cur, 1, para, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(instrs)).To(ContainElement(pdf.KindPageBreak))
			for _, in := range instrs {
				if in.Kind == pdf.KindText {
					Expect(in.Y).To(BeNumerically("<=", 275))
				}
			}
		})
	})

	Describe("failures", func() {
		It("rejects invalid UTF-8 with the line number and no output", func() {
			instrs, err := exp.Export("# ok\nbad \xff line")

			var exportErr *pdf.ExportError
			Expect(errors.As(err, &exportErr)).To(BeTrue())
			Expect(exportErr.Line).To(Equal(2))
			Expect(errors.Is(err, pdf.ErrInvalidText)).To(BeTrue())
			Expect(instrs).To(BeNil())
		})
	})

	It("gives concurrent exports independent cursors", func() {
		doc := "# Plan\n" + strings.Repeat("- item\n", 80)
		want, err := exp.Export(doc)
		Expect(err).NotTo(HaveOccurred())

		var wg sync.WaitGroup
		results := make([][]pdf.Instruction, 8)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _ = exp.Export(doc)
			}()
		}
		wg.Wait()

		for _, got := range results {
			Expect(got).To(Equal(want))
		}
	})
})
