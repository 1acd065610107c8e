package pdf

// Style is the font state of one text run.
type Style struct {
	Font string
	Size float64
	Bold bool
}

// fontStyle is the gofpdf style string for the run.
func (s Style) fontStyle() string {
	if s.Bold {
		return "B"
	}
	return ""
}

func (c Config) bodyStyle() Style {
	return Style{Font: c.FontFamily, Size: c.BodySize}
}

func (c Config) boldStyle() Style {
	return Style{Font: c.FontFamily, Size: c.BodySize, Bold: true}
}

func (c Config) headingStyle(h Heading) Style {
	return Style{Font: c.FontFamily, Size: h.Size, Bold: true}
}

// Metrics measures rendered text. Implementations must be safe for
// concurrent use; Export only reads from them.
type Metrics interface {
	// TextWidth returns the width of text in millimetres.
	TextWidth(text string, style Style) float64
}
