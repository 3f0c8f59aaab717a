package table

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ParseFraction parses a numeric option value: a Go number as delivered by
// the YAML decoder, a decimal string, or an integer ratio such as "2/3".
func ParseFraction(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		s := strings.TrimSpace(n)
		if num, den, ok := strings.Cut(s, "/"); ok {
			a, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid fraction %q: %w", s, err)
			}
			b, err := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid fraction %q: %w", s, err)
			}
			if b == 0 {
				return 0, fmt.Errorf("invalid fraction %q: zero denominator", s)
			}
			return float64(a) / float64(b), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("invalid number %v (%T)", v, v)
	}
}

// ExplicitWidths parses a user-supplied width list into column width
// fractions. It returns nil, with a warning, when the list length does not
// match the column count, when an entry does not parse as a number or
// fraction, or when an entry is negative; callers then fall back to
// AutoWidths.
func ExplicitWidths(width []any, nCol int) []float64 {
	if width == nil {
		return nil
	}
	if len(width) != nCol {
		slog.Warn("given widths differ from the number of columns, ignored", "widths", len(width), "columns", nCol)
		return nil
	}

	out := make([]float64, nCol)
	for i, v := range width {
		f, err := ParseFraction(v)
		if err != nil {
			slog.Warn("specified width is not a valid number or fraction, ignored", "error", err)
			return nil
		}
		if f < 0 {
			slog.Warn("width cannot be negative, ignored", "width", f)
			return nil
		}
		out[i] = f
	}
	return out
}

// TableWidth parses the table-width option. Absent, malformed or
// non-positive values fall back to 1.0, the latter two with a warning.
func TableWidth(v any) float64 {
	if v == nil {
		return 1.0
	}
	w, err := ParseFraction(v)
	if err != nil {
		slog.Warn("table width should be a number or fraction, set to 1 instead", "error", err)
		return 1.0
	}
	if w <= 0 {
		slog.Warn("table width must be positive, set to 1 instead", "table-width", w)
		return 1.0
	}
	return w
}

// AutoWidths derives proportional column widths from cell content: each
// column is as wide as its longest line (cells may contain embedded line
// breaks), plus 3 display cells of per-column rendering overhead matching
// the way pandoc accounts for borders and padding. It returns ErrEmptyTable
// when every cell is empty.
func AutoWidths(tableWidth float64, nCol int, rows [][]string) ([]float64, error) {
	maxCol := make([]int, nCol)
	for _, row := range rows {
		for j := 0; j < nCol && j < len(row); j++ {
			for _, line := range strings.Split(row[j], "\n") {
				if w := runewidth.StringWidth(line); w > maxCol[j] {
					maxCol[j] = w
				}
			}
		}
	}

	total := 0
	for _, w := range maxCol {
		total += w
	}
	if total == 0 {
		return nil, ErrEmptyTable
	}

	scale := tableWidth / float64(total+3*nCol)
	widths := make([]float64, nCol)
	for j, w := range maxCol {
		widths[j] = float64(w+3) * scale
	}
	return widths, nil
}

// Widths resolves the width spec for a regularized table: the explicit
// width list when it is usable, automatic content-derived widths otherwise.
func Widths(width []any, tableWidth any, nCol int, rows [][]string) ([]float64, error) {
	if w := ExplicitWidths(width, nCol); w != nil {
		return w, nil
	}
	return AutoWidths(TableWidth(tableWidth), nCol, rows)
}
