// Package table implements the layout core of the odootable filter: row
// regularization, alignment parsing, column width calculation, and the
// three render targets (structured grid table, pipe-table text, grid-table
// text). All diagnostics for recoverable input problems go through slog;
// the only hard failure is ErrEmptyTable.
package table

import (
	"errors"
	"log/slog"
)

// ErrEmptyTable indicates that there is nothing to lay out: either no data
// rows at all, or every cell is empty so no width can be derived. Callers
// conventionally recover from it by deleting the output element.
var ErrEmptyTable = errors.New("table has no content")

// Alignment is the horizontal alignment of one column.
type Alignment int

const (
	// AlignDefault defers to whatever the host document format does.
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns the pandoc name of the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "AlignLeft"
	case AlignCenter:
		return "AlignCenter"
	case AlignRight:
		return "AlignRight"
	default:
		return "AlignDefault"
	}
}

// Table is the structured render target: a fully laid-out table ready to be
// serialized into the host document.
type Table struct {
	// Header is the detached header row, nil when the table has none.
	Header []string
	// Rows are the body rows. Every row has the same number of cells.
	Rows [][]string
	// Alignments has one entry per column, or is nil to defer to the host.
	Alignments []Alignment
	// Widths are the column widths as fractions of the total line width.
	Widths []float64
	// Caption is inline markdown, empty when the table has no caption.
	Caption string
	// Markdown reports whether cell text is markup to be interpreted by
	// the host rather than literal text.
	Markdown bool
}

// Regularize pads short rows with empty cells so that every row has as many
// cells as the longest one, modifying rows in place. It returns the
// resulting column count, or ErrEmptyTable when there are no rows.
func Regularize(rows [][]string) (int, error) {
	if len(rows) == 0 {
		return 0, ErrEmptyTable
	}

	nCol := 0
	for _, row := range rows {
		if len(row) > nCol {
			nCol = len(row)
		}
	}

	for i, row := range rows {
		if len(row) == nCol {
			continue
		}
		slog.Warn("row is shorter than the longest row, empty cells appended", "row", i)
		padded := make([]string, nCol)
		copy(padded, row)
		rows[i] = padded
	}
	return nCol, nil
}
