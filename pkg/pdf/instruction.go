package pdf

// Kind discriminates Instruction variants.
type Kind int

const (
	// KindText places Text at (X, Y) in Style.
	KindText Kind = iota
	// KindLink places Text at (X, Y) in the link color and makes the
	// W x H box above the baseline a clickable link to URL.
	KindLink
	// KindPageBreak starts a new page.
	KindPageBreak
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLink:
		return "link"
	case KindPageBreak:
		return "page-break"
	default:
		return "unknown"
	}
}

// Instruction is one positioned drawing primitive. Y is the text baseline.
// Line is the 1-based source line that produced it.
type Instruction struct {
	Kind  Kind
	Line  int
	Text  string
	X     float64
	Y     float64
	Style Style
	URL   string
	W     float64
	H     float64
}
