// Package pdf lays out meal-plan Markdown as positioned drawing
// instructions and renders them to PDF.
//
// Only a small dialect is recognized, one source line at a time: "# ",
// "## " and "### " headers, lines carrying [text](url) links, "- " and "* "
// list items, lines with **bold** runs, plain paragraphs and blank lines.
// Anything else (ordered lists, code, tables) is laid out as a plain
// paragraph.
//
// Export is a pure function of the Markdown, the Config and the Metrics.
// Each call owns its Cursor. Replay feeds the resulting instructions to a
// Renderer, and Render wires the two together over gofpdf.
package pdf
