package pdf

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidText is reported for a source line that is not valid UTF-8.
var ErrInvalidText = errors.New("line is not valid UTF-8")

// ExportError aborts an export. Line is the 1-based source line being laid
// out or rendered when the failure happened, zero when none was.
type ExportError struct {
	Line int
	Err  error
}

func (e *ExportError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("exporting pdf: %v", e.Err)
	}
	return fmt.Sprintf("exporting pdf: line %d: %v", e.Line, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Exporter lays out Markdown on a fixed page geometry. Its config and
// metrics are read-only, so one Exporter may serve concurrent calls.
type Exporter struct {
	cfg     Config
	metrics Metrics
}

// NewExporter merges cfg over DefaultConfig and validates the result.
func NewExporter(cfg Config, m Metrics) (*Exporter, error) {
	if m == nil {
		return nil, errors.New("pdf: nil metrics")
	}

	cfg = applyConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pdf config: %w", err)
	}

	return &Exporter{cfg: cfg, metrics: m}, nil
}

// Config returns the effective configuration.
func (e *Exporter) Config() Config {
	return e.cfg
}

// Export lays out markdown and returns the drawing instructions in the
// order they must be rendered. On error no instructions are returned.
func (e *Exporter) Export(markdown string) ([]Instruction, error) {
	cur := e.NewCursor()

	var out []Instruction
	for i, line := range strings.Split(markdown, "\n") {
		var err error
		out, err = e.ExportLine(cur, i+1, strings.TrimSuffix(line, "\r"), out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ExportLine lays out one source line at cur, appending to out. The page
// break check runs first, before the line is classified.
func (e *Exporter) ExportLine(cur *Cursor, lineNo int, line string, out []Instruction) ([]Instruction, error) {
	if !utf8.ValidString(line) {
		return out, &ExportError{Line: lineNo, Err: ErrInvalidText}
	}

	out = e.breakIfNeeded(cur, lineNo, out)

	kind, text := Classify(line)
	switch kind {
	case LineH1:
		out = e.heading(cur, lineNo, text, e.cfg.H1, out)
	case LineH2:
		out = e.heading(cur, lineNo, text, e.cfg.H2, out)
	case LineH3:
		out = e.heading(cur, lineNo, text, e.cfg.H3, out)
	case LineLink:
		out = e.links(cur, lineNo, text, out)
	case LineListItem:
		out = e.listItem(cur, lineNo, text, out)
	case LineBold:
		out = e.boldRuns(cur, lineNo, text, out)
	case LinePlain:
		out = e.paragraph(cur, lineNo, text, out)
	default:
		cur.Y += e.cfg.BlankSpacing
	}
	return out, nil
}

func (e *Exporter) breakIfNeeded(cur *Cursor, lineNo int, out []Instruction) []Instruction {
	if cur.Y <= e.cfg.BreakY {
		return out
	}
	cur.Y = e.cfg.TopY
	cur.Page++
	return append(out, Instruction{Kind: KindPageBreak, Line: lineNo})
}

// text emits one run at (x, cur.Y) and returns its width.
func (e *Exporter) text(cur *Cursor, lineNo int, s string, x float64, style Style, out *[]Instruction) float64 {
	cur.Style = style
	*out = append(*out, Instruction{Kind: KindText, Line: lineNo, Text: s, X: x, Y: cur.Y, Style: style})
	return e.metrics.TextWidth(s, style)
}

func (e *Exporter) heading(cur *Cursor, lineNo int, s string, h Heading, out []Instruction) []Instruction {
	e.text(cur, lineNo, s, e.cfg.Margin, e.cfg.headingStyle(h), &out)
	cur.Y += h.Advance
	return out
}

// links lays out alternating plain and link segments on one baseline.
func (e *Exporter) links(cur *Cursor, lineNo int, line string, out []Instruction) []Instruction {
	style := e.cfg.bodyStyle()
	x := e.cfg.Margin
	last := 0

	for _, m := range linkPattern.FindAllStringSubmatchIndex(line, -1) {
		if before := line[last:m[0]]; before != "" {
			x += e.text(cur, lineNo, before, x, style, &out)
		}

		label, url := line[m[2]:m[3]], line[m[4]:m[5]]
		w := e.metrics.TextWidth(label, style)
		out = append(out, Instruction{
			Kind:  KindLink,
			Line:  lineNo,
			Text:  label,
			X:     x,
			Y:     cur.Y,
			Style: style,
			URL:   url,
			W:     w,
			H:     pointsToMM(style.Size),
		})
		x += w
		last = m[1]
	}

	if rest := line[last:]; rest != "" {
		e.text(cur, lineNo, rest, x, style, &out)
	}

	cur.Style = style
	cur.Y += e.cfg.LineHeight
	return out
}

func (e *Exporter) listItem(cur *Cursor, lineNo int, s string, out []Instruction) []Instruction {
	style := e.cfg.bodyStyle()
	x := e.cfg.Margin + e.cfg.ListIndent

	for i, seg := range wrapText(s, e.cfg.ListWrapWidth, style, e.metrics) {
		if i == 0 {
			e.text(cur, lineNo, "• "+seg, x, style, &out)
			continue
		}
		cur.Y += e.cfg.LineHeight
		out = e.breakWrapped(cur, lineNo, out)
		e.text(cur, lineNo, "  "+seg, x, style, &out)
	}

	cur.Y += e.cfg.LineHeight
	return out
}

// boldRuns splits on "**". Even segments are normal and odd segments bold,
// whether or not a segment is empty. An odd number of markers leaves the
// trailing text bold.
func (e *Exporter) boldRuns(cur *Cursor, lineNo int, line string, out []Instruction) []Instruction {
	x := e.cfg.Margin
	for i, seg := range strings.Split(line, "**") {
		style := e.cfg.bodyStyle()
		if i%2 == 1 {
			style = e.cfg.boldStyle()
		}
		if seg == "" {
			continue
		}
		x += e.text(cur, lineNo, seg, x, style, &out)
	}

	cur.Y += e.cfg.LineHeight
	return out
}

func (e *Exporter) paragraph(cur *Cursor, lineNo int, s string, out []Instruction) []Instruction {
	style := e.cfg.bodyStyle()
	for i, seg := range wrapText(s, e.cfg.ContentWidth, style, e.metrics) {
		if i > 0 {
			out = e.breakWrapped(cur, lineNo, out)
		}
		e.text(cur, lineNo, seg, e.cfg.Margin, style, &out)
		cur.Y += e.cfg.LineHeight
	}
	return out
}

// breakWrapped applies the threshold to a wrapped sub-line when
// PaginateWrappedLines is set.
func (e *Exporter) breakWrapped(cur *Cursor, lineNo int, out []Instruction) []Instruction {
	if !e.cfg.PaginateWrappedLines {
		return out
	}
	return e.breakIfNeeded(cur, lineNo, out)
}

func pointsToMM(pt float64) float64 {
	return pt * 25.4 / 72
}
