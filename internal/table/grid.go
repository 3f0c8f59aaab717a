package table

import (
	"log/slog"
	"strings"

	"github.com/mattn/go-runewidth"
)

// WriteGrid renders regularized rows as an ASCII grid table sized to its
// content: one space of padding on each side of a cell, `-` separators
// between rows, and a `=` separator under the first row when header is
// true. Cells may contain embedded line breaks. When an alignment spec is
// present the header (or top) border is rewritten to carry colon alignment
// markers. A non-empty caption is appended after a blank line.
func WriteGrid(rows [][]string, caption string, aligns []Alignment, header bool) string {
	cells := splitCells(rows)
	widths := contentWidths(cells)

	var sb strings.Builder
	sb.WriteString(gridBorder(widths, '-'))
	for i, row := range cells {
		sb.WriteByte('\n')
		sb.WriteString(gridRow(row, widths))
		sb.WriteByte('\n')
		if i == 0 && header {
			sb.WriteString(gridBorder(widths, '='))
		} else {
			sb.WriteString(gridBorder(widths, '-'))
		}
	}

	text := sb.String()
	if aligns != nil {
		text = encodeAlignmentBorder(text, aligns, header)
	}
	if caption != "" {
		text += "\n\n: " + caption
	}
	return text
}

// splitCells breaks every cell into its lines.
func splitCells(rows [][]string) [][][]string {
	out := make([][][]string, len(rows))
	for i, row := range rows {
		out[i] = make([][]string, len(row))
		for j, cell := range row {
			out[i][j] = strings.Split(cell, "\n")
		}
	}
	return out
}

// contentWidths returns the display width of the widest line per column.
func contentWidths(cells [][][]string) []int {
	var widths []int
	for _, row := range cells {
		for j, lines := range row {
			for len(widths) <= j {
				widths = append(widths, 0)
			}
			for _, line := range lines {
				if w := runewidth.StringWidth(line); w > widths[j] {
					widths[j] = w
				}
			}
		}
	}
	return widths
}

// gridBorder draws a horizontal border: +----+----+ with the given fill.
func gridBorder(widths []int, fill byte) string {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat(string(fill), w+2))
		sb.WriteByte('+')
	}
	return sb.String()
}

// gridRow draws one table row, possibly spanning several text lines.
func gridRow(row [][]string, widths []int) string {
	height := 1
	for _, lines := range row {
		if len(lines) > height {
			height = len(lines)
		}
	}

	out := make([]string, height)
	for k := 0; k < height; k++ {
		var sb strings.Builder
		sb.WriteByte('|')
		for j, w := range widths {
			line := ""
			if j < len(row) && k < len(row[j]) {
				line = row[j][k]
			}
			sb.WriteByte(' ')
			sb.WriteString(line)
			sb.WriteString(strings.Repeat(" ", w-runewidth.StringWidth(line)))
			sb.WriteString(" |")
		}
		out[k] = sb.String()
	}
	return strings.Join(out, "\n")
}

// encodeAlignmentBorder rewrites the header/body separator of a grid table
// (or the top border when there is no header) so that the host reads column
// alignments from colon markers: left gets a colon on the first character
// of its segment, right on the last, center on both. When a header is
// expected but no separator row made of '+' and '=' exists, the text is
// returned unmodified with a warning.
func encodeAlignmentBorder(text string, aligns []Alignment, header bool) string {
	lines := strings.Split(text, "\n")

	idx := 0
	if header {
		idx = -1
		for i, line := range lines {
			if isHeaderBorder(line) {
				idx = i
				break
			}
		}
		if idx < 0 {
			slog.Warn("cannot add alignment to grid table")
			return text
		}
	}

	segs := strings.Split(lines[idx], "+")
	if len(segs) < 3 {
		slog.Warn("cannot add alignment to grid table")
		return text
	}
	segs = segs[1 : len(segs)-1]

	for j, seg := range segs {
		if j >= len(aligns) || seg == "" {
			continue
		}
		b := []byte(seg)
		switch aligns[j] {
		case AlignLeft:
			b[0] = ':'
		case AlignRight:
			b[len(b)-1] = ':'
		case AlignCenter:
			b[0] = ':'
			b[len(b)-1] = ':'
		}
		segs[j] = string(b)
	}

	lines[idx] = "+" + strings.Join(segs, "+") + "+"
	return strings.Join(lines, "\n")
}

// isHeaderBorder reports whether line is a grid-table header separator,
// i.e. consists solely of '+' and '=' with at least one of each.
func isHeaderBorder(line string) bool {
	hasPlus, hasEq := false, false
	for _, r := range line {
		switch r {
		case '+':
			hasPlus = true
		case '=':
			hasEq = true
		default:
			return false
		}
	}
	return hasPlus && hasEq
}
