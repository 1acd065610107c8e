package pdf

import (
	"errors"
	"fmt"
	"strings"
)

// Heading holds the font size (points) and the vertical advance
// (millimetres) of one header level.
type Heading struct {
	Size    float64
	Advance float64
}

// Config holds the page geometry and typography. All lengths are in
// millimetres, font sizes in points.
type Config struct {
	PageSize   string
	FontFamily string

	Margin        float64
	ContentWidth  float64
	TopY          float64
	BreakY        float64
	LineHeight    float64
	BlankSpacing  float64
	ListIndent    float64
	ListWrapWidth float64

	H1       Heading
	H2       Heading
	H3       Heading
	BodySize float64

	LinkRGB [3]int

	// PaginateWrappedLines also checks the break threshold before every
	// wrapped sub-line of list items and paragraphs. By default the check
	// runs once per source line, so a long paragraph can run past BreakY.
	PaginateWrappedLines bool
}

// DefaultConfig returns the A4 layout used for exported meal plans.
func DefaultConfig() Config {
	return Config{
		PageSize:      "A4",
		FontFamily:    "Helvetica",
		Margin:        10,
		ContentWidth:  190,
		TopY:          15,
		BreakY:        270,
		LineHeight:    5,
		BlankSpacing:  3,
		ListIndent:    5,
		ListWrapWidth: 170,
		H1:            Heading{Size: 18, Advance: 10},
		H2:            Heading{Size: 14, Advance: 8},
		H3:            Heading{Size: 12, Advance: 7},
		BodySize:      11,
		LinkRGB:       [3]int{0, 102, 204},
	}
}

// applyConfig fills zero-value fields in cfg from DefaultConfig.
func applyConfig(cfg Config) Config {
	d := DefaultConfig()

	if cfg.PageSize == "" {
		cfg.PageSize = d.PageSize
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = d.FontFamily
	}
	if cfg.Margin == 0 {
		cfg.Margin = d.Margin
	}
	if cfg.ContentWidth == 0 {
		cfg.ContentWidth = d.ContentWidth
	}
	if cfg.TopY == 0 {
		cfg.TopY = d.TopY
	}
	if cfg.BreakY == 0 {
		cfg.BreakY = d.BreakY
	}
	if cfg.LineHeight == 0 {
		cfg.LineHeight = d.LineHeight
	}
	if cfg.BlankSpacing == 0 {
		cfg.BlankSpacing = d.BlankSpacing
	}
	if cfg.ListIndent == 0 {
		cfg.ListIndent = d.ListIndent
	}
	if cfg.ListWrapWidth == 0 {
		cfg.ListWrapWidth = cfg.ContentWidth - 20
	}
	if cfg.H1 == (Heading{}) {
		cfg.H1 = d.H1
	}
	if cfg.H2 == (Heading{}) {
		cfg.H2 = d.H2
	}
	if cfg.H3 == (Heading{}) {
		cfg.H3 = d.H3
	}
	if cfg.BodySize == 0 {
		cfg.BodySize = d.BodySize
	}
	if cfg.LinkRGB == ([3]int{}) {
		cfg.LinkRGB = d.LinkRGB
	}
	return cfg
}

// Validate reports geometry that cannot be laid out.
func (c Config) Validate() error {
	var errs []error

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"content width", c.ContentWidth},
		{"line height", c.LineHeight},
		{"list wrap width", c.ListWrapWidth},
		{"body size", c.BodySize},
		{"h1 size", c.H1.Size},
		{"h2 size", c.H2.Size},
		{"h3 size", c.H3.Size},
	} {
		if f.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", f.name, f.v))
		}
	}
	if c.BreakY <= c.TopY {
		errs = append(errs, fmt.Errorf("break y (%g) must be below top y (%g)", c.BreakY, c.TopY))
	}
	if !isCoreFont(c.FontFamily) {
		errs = append(errs, fmt.Errorf("font family %q is not a core PDF font", c.FontFamily))
	}
	for _, v := range c.LinkRGB {
		if v < 0 || v > 255 {
			errs = append(errs, fmt.Errorf("link color component %d out of range", v))
			break
		}
	}

	return errors.Join(errs...)
}

func isCoreFont(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "helvetica", "arial", "times", "courier":
		return true
	default:
		return false
	}
}
