package pdf

import (
	"strings"
)

// wrapText greedily breaks text into lines no wider than width, splitting
// on single spaces. Leading indentation and inner runs of spaces are kept;
// spaces that fall on a break are dropped, as is trailing whitespace. Tabs
// count as one space. A single word wider than width is broken between
// runes. It always returns at least one line.
func wrapText(text string, width float64, style Style, m Metrics) []string {
	text = strings.TrimRight(strings.ReplaceAll(text, "\t", " "), " ")
	if strings.TrimSpace(text) == "" {
		return []string{""}
	}

	var (
		lines   []string
		current string
		started bool
	)
	flush := func() {
		if s := strings.TrimRight(current, " "); s != "" {
			lines = append(lines, s)
		}
		current, started = "", false
	}

	for _, word := range strings.Split(text, " ") {
		if !started && word == "" && len(lines) > 0 {
			continue
		}

		candidate := word
		if started {
			candidate = current + " " + word
		}
		if m.TextWidth(candidate, style) <= width {
			current, started = candidate, true
			continue
		}

		if started {
			flush()
			if word == "" {
				continue
			}
		}
		if m.TextWidth(word, style) <= width {
			current, started = word, true
			continue
		}

		pieces := breakWord(word, width, style, m)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current, started = pieces[len(pieces)-1], true
	}
	if started {
		flush()
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// breakWord splits word into runs that fit width. Every run holds at least
// one rune, so a width smaller than one glyph still terminates.
func breakWord(word string, width float64, style Style, m Metrics) []string {
	var (
		pieces []string
		b      strings.Builder
	)
	for _, r := range word {
		next := b.String() + string(r)
		if b.Len() > 0 && m.TextWidth(next, style) > width {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	return append(pieces, b.String())
}
