package table

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

// DefaultColumns is the line width assumed when serializing a structured
// table, mirroring pandoc's default --columns setting.
const DefaultColumns = 72

// Render serializes the structured table into the host document as a grid
// table whose column character widths encode the width spec: each column
// occupies its width fraction of the given line width, and cell text is
// word-wrapped to fit. Alignments are encoded in the header (or top)
// border and the caption becomes a trailing `: ...` paragraph. Literal
// (non-markdown) cell text is escaped so the host does not interpret it.
func (t *Table) Render(columns int) string {
	if columns <= 0 {
		columns = DefaultColumns
	}

	all := t.Rows
	if t.Header != nil {
		all = append([][]string{t.Header}, t.Rows...)
	}

	nCol := 0
	if len(all) > 0 {
		nCol = len(all[0])
	}

	// Reverse of the auto-width accounting: a column's content gets its
	// width fraction of the line minus 3 cells of border overhead.
	target := make([]int, nCol)
	for j := range target {
		target[j] = 1
		if j < len(t.Widths) {
			if w := int(math.Round(t.Widths[j]*float64(columns))) - 3; w > 1 {
				target[j] = w
			}
		}
	}

	cells := make([][][]string, len(all))
	for i, row := range all {
		cells[i] = make([][]string, len(row))
		for j, cell := range row {
			text := cell
			if !t.Markdown {
				text = escapeMarkdown(text)
			}
			cells[i][j] = strings.Split(wordwrap.String(text, target[j]), "\n")
		}
	}

	// Overlong unbreakable words grow their column past the target so the
	// grid stays well-formed.
	widths := make([]int, nCol)
	copy(widths, target)
	for _, row := range cells {
		for j, lines := range row {
			for _, line := range lines {
				if w := runewidth.StringWidth(line); w > widths[j] {
					widths[j] = w
				}
			}
		}
	}

	var sb strings.Builder
	sb.WriteString(gridBorder(widths, '-'))
	for i, row := range cells {
		sb.WriteByte('\n')
		sb.WriteString(gridRow(row, widths))
		sb.WriteByte('\n')
		if i == 0 && t.Header != nil {
			sb.WriteString(gridBorder(widths, '='))
		} else {
			sb.WriteString(gridBorder(widths, '-'))
		}
	}

	text := sb.String()
	if t.Alignments != nil {
		text = encodeAlignmentBorder(text, t.Alignments, t.Header != nil)
	}
	if t.Caption != "" {
		text += "\n\n: " + t.Caption
	}
	return text
}

// escapeMarkdown backslash-escapes characters that would otherwise be
// interpreted as markup when literal cell text lands in the document.
func escapeMarkdown(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune("\\`*_[]<>#", r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
