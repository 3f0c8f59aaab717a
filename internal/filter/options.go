package filter

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/salmonumbrella/odootable/internal/config"
	"github.com/salmonumbrella/odootable/internal/table"
)

// Options is the per-block configuration parsed from the YAML section of a
// fenced odootable block. Loosely-typed fields are declared as `any` so
// that a wrong type degrades to a warning instead of failing the decode.
type Options struct {
	URL      string   `yaml:"url"`
	Port     int      `yaml:"port"`
	Database string   `yaml:"database"`
	Login    string   `yaml:"login"`
	Password string   `yaml:"password"`
	Model    string   `yaml:"model"`
	Fields   []string `yaml:"fields"`
	Domain   []any    `yaml:"domain"`

	// Include reads rows from a CSV file instead of fetching them.
	Include string `yaml:"include"`

	Header      any    `yaml:"header"`
	Caption     string `yaml:"caption"`
	Width       any    `yaml:"width"`
	TableWidth  any    `yaml:"table-width"`
	Alignment   any    `yaml:"alignment"`
	Markdown    bool   `yaml:"markdown"`
	Columns     int    `yaml:"columns"`
	PipeTables  *bool  `yaml:"pipe_tables"`
	GridTables  *bool  `yaml:"grid_tables"`
	RawMarkdown bool   `yaml:"raw_markdown"`

	// Resolved render-mode flags, set by resolve.
	usePipe bool
	useGrid bool
}

// headerOn reports the effective header option; it defaults to true,
// warning when the option carries some other type.
func (o *Options) headerOn() bool {
	switch v := o.Header.(type) {
	case nil:
		return true
	case bool:
		return v
	default:
		slog.Warn("header should be a boolean, default used instead", "header", v)
		return true
	}
}

// widthSpec returns the width option as a list of per-column entries,
// warning when the option carries some other type.
func (o *Options) widthSpec() []any {
	switch v := o.Width.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		slog.Warn("width should be a list, auto widths used instead", "width", v)
		return nil
	}
}

// alignmentSpec returns the alignment option as a string, warning when the
// option carries some other type.
func (o *Options) alignmentSpec() string {
	switch v := o.Alignment.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		slog.Warn("alignment should be a string, default used instead", "alignment", v)
		return ""
	}
}

// OptionError reports a required connection option that is set neither on
// the block nor globally. It is a fatal configuration error.
type OptionError struct {
	Option string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("%s must be set either globally or locally", e.Option)
}

// PasswordLookup resolves a connection password from an external store
// (the OS keyring) when neither the block nor the globals carry one.
type PasswordLookup func(url, login string) (string, bool)

// resolve merges globals beneath the per-block options and validates the
// connection fields. Validation is skipped when rows come from an include
// file. The global domain entries are coerced and prepended to the local
// ones.
func resolve(opts *Options, globals config.Globals, lookup PasswordLookup) error {
	if opts.PipeTables != nil {
		opts.usePipe = *opts.PipeTables
	} else if globals.PipeTables != nil {
		opts.usePipe = *globals.PipeTables
	}
	if opts.GridTables != nil {
		opts.useGrid = *opts.GridTables
	} else if globals.GridTables != nil {
		opts.useGrid = *globals.GridTables
	}

	if opts.Include != "" {
		return nil
	}

	if opts.URL == "" {
		if globals.URL == "" {
			return &OptionError{Option: "url"}
		}
		opts.URL = globals.URL
		if opts.Database == "" {
			opts.Database = globals.Database
		}
	}
	if opts.Database == "" {
		opts.Database = opts.URL
	}
	if opts.Port == 0 {
		opts.Port = globals.Port
	}
	if opts.Port == 0 {
		opts.Port = 80
	}
	if opts.Login == "" {
		if globals.Login == "" {
			return &OptionError{Option: "login"}
		}
		opts.Login = globals.Login
	}
	if opts.Password == "" {
		opts.Password = globals.Password
	}
	if opts.Password == "" && lookup != nil {
		if pw, ok := lookup(opts.URL, opts.Login); ok {
			opts.Password = pw
		}
	}
	if opts.Password == "" {
		return &OptionError{Option: "password"}
	}
	if opts.Model == "" {
		if globals.Model == "" {
			return &OptionError{Option: "model"}
		}
		opts.Model = globals.Model
	}
	if len(opts.Fields) == 0 {
		if len(globals.Fields) == 0 {
			return &OptionError{Option: "fields"}
		}
		opts.Fields = globals.Fields
	}

	if len(globals.Domain) > 0 {
		opts.Domain = append(coerceDomain(globals.Domain), opts.Domain...)
		slog.Debug("combined domain", "domain", fmt.Sprint(opts.Domain))
	}
	return nil
}

// coerceDomain rewrites the leaves of globally-supplied domain entries:
// text values that parse as integers become integers, then floats, and
// anything else stays text. Entries that are not lists (domain operators
// like "|") pass through unchanged.
func coerceDomain(domain []any) []any {
	out := make([]any, len(domain))
	for i, entry := range domain {
		leaves, ok := entry.([]any)
		if !ok {
			out[i] = entry
			continue
		}
		coerced := make([]any, len(leaves))
		for j, leaf := range leaves {
			coerced[j] = coerceLeaf(leaf)
		}
		out[i] = coerced
	}
	return out
}

func coerceLeaf(leaf any) any {
	s, ok := leaf.(string)
	if !ok {
		return leaf
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// alignments parses the alignment option for a regularized table.
func (o *Options) alignments(nCol int) []table.Alignment {
	return table.ParseAlignments(o.alignmentSpec(), nCol)
}
