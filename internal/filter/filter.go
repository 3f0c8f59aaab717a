// Package filter converts fenced odootable blocks in a markdown document
// into tables: it merges per-block options with document-global defaults,
// obtains rows from an Odoo instance or a CSV file, lays the table out and
// renders it as a structured grid table, a pipe-table text blob or a
// grid-table text blob.
package filter

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/salmonumbrella/odootable/internal/config"
	"github.com/salmonumbrella/odootable/internal/odoo"
	"github.com/salmonumbrella/odootable/internal/table"
)

// ResultKind tags the outcome of one block conversion.
type ResultKind int

const (
	// ResultRendered carries replacement output for the element.
	ResultRendered ResultKind = iota
	// ResultDeleted means the element should be removed (empty table).
	ResultDeleted
	// ResultUnchanged means the element should be left as it is.
	ResultUnchanged
)

// Result is the outcome of converting one odootable block. Fatal
// conditions (missing required options, malformed header overrides,
// connection failures) are ordinary errors instead.
type Result struct {
	Kind ResultKind
	// Table is the structured node produced by the default render mode.
	Table *table.Table
	// Text is the replacement markup. For the structured mode it is the
	// serialized form of Table; for the text modes it is the pipe or grid
	// blob itself.
	Text string
	// Raw marks text-mode output that must be spliced verbatim, without
	// the host validation pass.
	Raw bool
}

// Fetcher supplies rows of cell text from a remote data source.
// *odoo.Client implements it.
type Fetcher interface {
	ReadData(ctx context.Context, model string, fields []string, domain []any, headerOverride string) ([][]string, error)
}

// Converter applies the odootable conversion to documents. The zero value
// uses built-in defaults and a real Odoo client.
type Converter struct {
	// Globals are the configuration-file defaults, merged beneath any
	// `odootable` metadata the document carries.
	Globals config.Globals
	// Columns is the assumed line width for structured tables; zero means
	// table.DefaultColumns.
	Columns int
	// LookupPassword, when set, resolves missing passwords from an
	// external store.
	LookupPassword PasswordLookup
	// DebugOutput, when set, receives JSON-RPC traffic logs.
	DebugOutput io.Writer
	// FailFast aborts document processing on the first block whose
	// conversion fails. When false a failing block is logged and left
	// unchanged so the rest of the document still converts.
	FailFast bool
	// NewFetcher builds the remote data source; tests replace it.
	NewFetcher func(host string, port int, database, login, password string) Fetcher
}

func (cv *Converter) fetcher(opts *Options) Fetcher {
	if cv.NewFetcher != nil {
		return cv.NewFetcher(opts.URL, opts.Port, opts.Database, opts.Login, opts.Password)
	}
	client := odoo.NewClient(opts.URL, opts.Port, opts.Database, opts.Login, opts.Password)
	if cv.DebugOutput != nil {
		client = client.WithDebugOutput(cv.DebugOutput)
	}
	return client
}

// Convert builds the output for one block: opts is the block's YAML
// options, data its trailing header-override text, and globals the merged
// document-global defaults. The returned Result says whether the element
// is replaced, deleted or left untouched.
func (cv *Converter) Convert(ctx context.Context, opts Options, data string, globals config.Globals) (Result, error) {
	if err := resolve(&opts, globals, cv.LookupPassword); err != nil {
		return Result{}, err
	}

	rows, err := cv.readRows(ctx, &opts, data)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Warn("include path not found, element left unchanged", "include", opts.Include)
		return Result{Kind: ResultUnchanged}, nil
	case errors.Is(err, odoo.ErrNoRecords):
		slog.Warn("table is empty, element deleted")
		return Result{Kind: ResultDeleted}, nil
	case err != nil:
		return Result{}, err
	}

	nCol, err := table.Regularize(rows)
	if errors.Is(err, table.ErrEmptyTable) {
		slog.Warn("table is empty, element deleted")
		return Result{Kind: ResultDeleted}, nil
	}
	if err != nil {
		return Result{}, err
	}

	aligns := opts.alignments(nCol)

	if opts.usePipe || opts.useGrid {
		return cv.renderText(rows, aligns, &opts)
	}
	return cv.renderStructured(rows, nCol, aligns, &opts)
}

// renderText produces the pipe or grid text blob. Grid wins when both
// render modes are requested.
func (cv *Converter) renderText(rows [][]string, aligns []table.Alignment, opts *Options) (Result, error) {
	var text string
	if opts.useGrid {
		header := len(rows) > 1 && opts.headerOn()
		text = table.WriteGrid(rows, opts.Caption, aligns, header)
	} else {
		text = table.WritePipe(rows, opts.Caption, aligns)
	}

	if !opts.RawMarkdown && !opts.useGrid {
		validatePipeMarkup(text)
	}
	return Result{Kind: ResultRendered, Text: text, Raw: opts.RawMarkdown}, nil
}

// renderStructured builds the structured table node and its serialized
// form. Widths are computed over the full regularized table, before the
// header row is detached.
func (cv *Converter) renderStructured(rows [][]string, nCol int, aligns []table.Alignment, opts *Options) (Result, error) {
	widths, err := table.Widths(opts.widthSpec(), opts.TableWidth, nCol, rows)
	if errors.Is(err, table.ErrEmptyTable) {
		slog.Warn("table is empty, element deleted")
		return Result{Kind: ResultDeleted}, nil
	}
	if err != nil {
		return Result{}, err
	}

	var header []string
	body := rows
	if len(rows) > 1 && opts.headerOn() {
		header = rows[0]
		body = rows[1:]
	}

	tbl := &table.Table{
		Header:     header,
		Rows:       body,
		Alignments: aligns,
		Widths:     widths,
		Caption:    resolveCaption(opts.Caption),
		Markdown:   opts.Markdown,
	}

	columns := opts.Columns
	if columns <= 0 {
		columns = cv.Columns
	}
	return Result{Kind: ResultRendered, Table: tbl, Text: tbl.Render(columns)}, nil
}

// readRows obtains the raw table from the include file or the remote
// source.
func (cv *Converter) readRows(ctx context.Context, opts *Options, data string) ([][]string, error) {
	if opts.Include != "" {
		return readCSVFile(opts.Include, data)
	}
	return cv.fetcher(opts).ReadData(ctx, opts.Model, opts.Fields, opts.Domain, data)
}

// readCSVFile reads rows from a CSV file, honoring the same header
// override contract as the remote source.
func readCSVFile(path, headerOverride string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, odoo.ErrNoRecords
	}

	if headerOverride != "" {
		header, err := odoo.ParseHeaderOverride(headerOverride)
		if err != nil {
			return nil, err
		}
		rows = append([][]string{header}, rows...)
	}
	return rows, nil
}
