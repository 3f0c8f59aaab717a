package table

import "strings"

// pipeSeparator is the pipe-table separator token for a column alignment.
var pipeSeparator = map[Alignment]string{
	AlignLeft:    ":---",
	AlignCenter:  ":---:",
	AlignRight:   "---:",
	AlignDefault: "---",
}

// WritePipe renders regularized rows as a pipe table: cells joined with
// tab-padded vertical bars, one row per line, with the separator row
// derived from the alignments inserted after the first row. A nil
// alignment spec renders every column as AlignDefault. A non-empty caption
// is appended after a blank line.
func WritePipe(rows [][]string, caption string, aligns []Alignment) string {
	nCol := 0
	if len(rows) > 0 {
		nCol = len(rows[0])
	}

	sep := make([]string, nCol)
	for j := range sep {
		a := AlignDefault
		if j < len(aligns) {
			a = aligns[j]
		}
		sep[j] = pipeSeparator[a]
	}

	lines := make([]string, 0, len(rows)+3)
	for i, row := range rows {
		lines = append(lines, pipeRow(row))
		if i == 0 {
			lines = append(lines, pipeRow(sep))
		}
	}

	if caption != "" {
		lines = append(lines, "", ": "+caption)
	}
	return strings.Join(lines, "\n")
}

func pipeRow(cells []string) string {
	return "|\t" + strings.Join(cells, "\t|\t") + "\t|"
}
