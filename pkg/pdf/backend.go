package pdf

import (
	"fmt"
	"io"
	"sync"

	"github.com/phpdave11/gofpdf"
)

// Renderer executes drawing instructions. Implementations report their
// first failure from the call that hit it.
type Renderer interface {
	Text(in Instruction) error
	Link(in Instruction) error
	AddPage() error
	Finish(w io.Writer) error
}

// Replay feeds instructions to r in order. The first failure is returned
// as an *ExportError naming the source line.
func Replay(instrs []Instruction, r Renderer) error {
	for _, in := range instrs {
		var err error
		switch in.Kind {
		case KindText:
			err = r.Text(in)
		case KindLink:
			err = r.Link(in)
		case KindPageBreak:
			err = r.AddPage()
		default:
			err = fmt.Errorf("unknown instruction kind %d", in.Kind)
		}
		if err != nil {
			return &ExportError{Line: in.Line, Err: err}
		}
	}
	return nil
}

// GofpdfBackend renders instructions with gofpdf core fonts in millimetres.
// Text is translated to cp1252 so the bullet glyph survives.
type GofpdfBackend struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	cfg Config
}

// NewGofpdfBackend starts a document with its first page added.
func NewGofpdfBackend(cfg Config) (*GofpdfBackend, error) {
	cfg = applyConfig(cfg)

	doc := gofpdf.New("P", "mm", cfg.PageSize, "")
	doc.SetMargins(cfg.Margin, cfg.TopY, cfg.Margin)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("mealprep", true)
	doc.SetTitle("Meal Plan", true)
	doc.AddPage()
	doc.SetFont(cfg.FontFamily, "", cfg.BodySize)
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("pdf setup: %w", err)
	}

	return &GofpdfBackend{
		pdf: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
		cfg: cfg,
	}, nil
}

func (b *GofpdfBackend) Text(in Instruction) error {
	b.pdf.SetFont(in.Style.Font, in.Style.fontStyle(), in.Style.Size)
	b.pdf.SetTextColor(0, 0, 0)
	b.pdf.Text(in.X, in.Y, b.tr(in.Text))
	return b.pdf.Error()
}

func (b *GofpdfBackend) Link(in Instruction) error {
	rgb := b.cfg.LinkRGB
	b.pdf.SetFont(in.Style.Font, in.Style.fontStyle(), in.Style.Size)
	b.pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
	b.pdf.Text(in.X, in.Y, b.tr(in.Text))
	b.pdf.LinkString(in.X, in.Y-in.H*0.8, in.W, in.H, in.URL)
	b.pdf.SetTextColor(0, 0, 0)
	return b.pdf.Error()
}

func (b *GofpdfBackend) AddPage() error {
	b.pdf.AddPage()
	return b.pdf.Error()
}

// Finish writes the finished document to w.
func (b *GofpdfBackend) Finish(w io.Writer) error {
	return b.pdf.Output(w)
}

// CoreMetrics measures text with gofpdf's built-in core font tables. It is
// safe for concurrent use.
type CoreMetrics struct {
	mu  sync.Mutex
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func NewCoreMetrics() *CoreMetrics {
	doc := gofpdf.New("P", "mm", "A4", "")
	return &CoreMetrics{
		pdf: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
	}
}

func (m *CoreMetrics) TextWidth(text string, style Style) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pdf.SetFont(style.Font, style.fontStyle(), style.Size)
	return m.pdf.GetStringWidth(m.tr(text))
}
