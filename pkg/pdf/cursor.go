package pdf

// Cursor is the layout state of one export. It is created per call and
// never shared.
type Cursor struct {
	// Y is the baseline of the next line in millimetres from the page top.
	Y float64
	// Page is the 1-based page the next instruction lands on.
	Page int
	// Style is the style of the last emitted run.
	Style Style
}

// NewCursor returns a cursor at the top of the first page.
func (e *Exporter) NewCursor() *Cursor {
	return &Cursor{Y: e.cfg.TopY, Page: 1, Style: e.cfg.bodyStyle()}
}
