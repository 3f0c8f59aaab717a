// Package output writes query results as JSON, optionally filtered
// through a jq expression.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
)

// Printer writes structured data to one destination.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintJSON outputs data as JSON. A non-empty jq query filters the data
// first; every result the query emits becomes one JSON document. When
// compact is false the output is indented.
func (p *Printer) PrintJSON(data any, query string, compact bool) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	if !compact {
		enc.SetIndent("", "  ")
	}

	if query == "" {
		return enc.Encode(data)
	}

	normalized, err := normalizeToInterface(data)
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid --jq: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --jq: %w", err)
	}

	iter := code.Run(normalized)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if queryErr, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %s", queryErr)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// normalizeToInterface round-trips data through JSON so gojq only ever
// sees maps, slices and scalars.
func normalizeToInterface(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
