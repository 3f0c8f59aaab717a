package table

import (
	"log/slog"
	"unicode"
)

// ParseAlignments maps a short alignment code string to one Alignment per
// column: l, c, r and d (case-insensitive) select left, center, right and
// default. A string longer than nCol is truncated, a shorter one is padded
// with AlignDefault, and unknown characters fall back to AlignDefault; all
// three cases produce a warning only. An empty spec returns nil, meaning
// the host default applies to every column.
func ParseAlignments(spec string, nCol int) []Alignment {
	if spec == "" {
		return nil
	}

	codes := []rune(spec)
	if len(codes) > nCol {
		slog.Warn("alignment string is too long, truncated", "alignment", spec, "columns", nCol)
		codes = codes[:nCol]
	} else if len(codes) < nCol {
		slog.Warn("alignment string is too short, default used for the remaining columns", "alignment", spec, "columns", nCol)
	}

	aligns := make([]Alignment, nCol)
	for i, code := range codes {
		switch unicode.ToLower(code) {
		case 'l':
			aligns[i] = AlignLeft
		case 'c':
			aligns[i] = AlignCenter
		case 'r':
			aligns[i] = AlignRight
		case 'd':
			aligns[i] = AlignDefault
		default:
			slog.Warn("invalid alignment character, default used", "char", string(code))
			aligns[i] = AlignDefault
		}
	}
	return aligns
}
