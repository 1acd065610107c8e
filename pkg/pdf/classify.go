package pdf

import (
	"regexp"
	"strings"
)

// LineKind is the classification of one Markdown source line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineH1
	LineH2
	LineH3
	LineLink
	LineListItem
	LineBold
	LinePlain
)

func (k LineKind) String() string {
	switch k {
	case LineH1:
		return "h1"
	case LineH2:
		return "h2"
	case LineH3:
		return "h3"
	case LineLink:
		return "link"
	case LineListItem:
		return "list-item"
	case LineBold:
		return "bold"
	case LinePlain:
		return "plain"
	default:
		return "blank"
	}
}

var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// Classify returns the kind of line and the text the kind lays out:
// header text without its marker, list item text without its bullet, and
// the unmodified line otherwise. The checks run in a fixed order and the
// first match wins, so "## [a](b)" is a header and "- **x**" a list item.
func Classify(line string) (LineKind, string) {
	switch {
	case strings.HasPrefix(line, "# "):
		return LineH1, line[2:]
	case strings.HasPrefix(line, "## "):
		return LineH2, line[3:]
	case strings.HasPrefix(line, "### "):
		return LineH3, line[4:]
	case linkPattern.MatchString(line):
		return LineLink, line
	}

	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
		return LineListItem, trimmed[2:]
	case strings.Contains(line, "**"):
		return LineBold, line
	case trimmed != "":
		return LinePlain, line
	default:
		return LineBlank, ""
	}
}
