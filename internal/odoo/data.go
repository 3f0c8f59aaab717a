package odoo

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
)

// ReadData fetches the rows for a model: search the domain, export the
// requested fields, and optionally prepend a header row parsed from the
// override text. Zero exported rows yield ErrNoRecords.
func (c *Client) ReadData(ctx context.Context, model string, fields []string, domain []any, headerOverride string) ([][]string, error) {
	ids, err := c.Search(ctx, model, domain)
	if err != nil {
		return nil, err
	}
	slog.Debug("searched odoo model", "model", model, "records", len(ids))

	rows, err := c.ExportData(ctx, model, ids, fields)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	if headerOverride != "" {
		header, err := ParseHeaderOverride(headerOverride)
		if err != nil {
			return nil, err
		}
		rows = append([][]string{header}, rows...)
	}
	return rows, nil
}

// ParseHeaderOverride parses override text as exactly one comma-separated
// row of header cells. Anything else is ErrHeaderOverride.
func ParseHeaderOverride(text string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderOverride, err)
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("%w: got %d rows", ErrHeaderOverride, len(records))
	}
	return records[0], nil
}
