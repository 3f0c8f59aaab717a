package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/salmonumbrella/odootable/internal/config"
)

func boolPtr(v bool) *bool { return &v }

func connectedGlobals() config.Globals {
	return config.Globals{
		URL:      "odoo.example.com",
		Login:    "admin",
		Password: "secret",
		Model:    "res.partner",
		Fields:   []string{"name"},
	}
}

func TestResolveMissingOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		globals config.Globals
		missing string
	}{
		{name: "url", opts: Options{}, globals: config.Globals{}, missing: "url"},
		{
			name:    "login",
			opts:    Options{URL: "odoo.example.com"},
			globals: config.Globals{},
			missing: "login",
		},
		{
			name:    "password",
			opts:    Options{URL: "odoo.example.com", Login: "admin"},
			globals: config.Globals{},
			missing: "password",
		},
		{
			name:    "model",
			opts:    Options{URL: "odoo.example.com", Login: "admin", Password: "pw"},
			globals: config.Globals{},
			missing: "model",
		},
		{
			name:    "fields",
			opts:    Options{URL: "odoo.example.com", Login: "admin", Password: "pw", Model: "res.partner"},
			globals: config.Globals{},
			missing: "fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolve(&tt.opts, tt.globals, nil)
			var optErr *OptionError
			if !errors.As(err, &optErr) {
				t.Fatalf("resolve() error = %v, want *OptionError", err)
			}
			if optErr.Option != tt.missing {
				t.Errorf("missing option = %q, want %q", optErr.Option, tt.missing)
			}
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	opts := Options{}
	if err := resolve(&opts, connectedGlobals(), nil); err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if opts.Database != "odoo.example.com" {
		t.Errorf("Database = %q, want the url", opts.Database)
	}
	if opts.Port != 80 {
		t.Errorf("Port = %d, want 80", opts.Port)
	}
	if opts.Model != "res.partner" || !reflect.DeepEqual(opts.Fields, []string{"name"}) {
		t.Errorf("model/fields not taken from globals: %q %v", opts.Model, opts.Fields)
	}
}

func TestResolveGlobalDatabaseRequiresGlobalURL(t *testing.T) {
	globals := connectedGlobals()
	globals.Database = "production"

	// A block-local url ignores the global database and falls back to the
	// url itself.
	opts := Options{URL: "other.example.com"}
	if err := resolve(&opts, globals, nil); err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if opts.Database != "other.example.com" {
		t.Errorf("Database = %q, want %q", opts.Database, "other.example.com")
	}

	opts = Options{}
	if err := resolve(&opts, globals, nil); err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if opts.Database != "production" {
		t.Errorf("Database = %q, want %q", opts.Database, "production")
	}
}

func TestResolvePasswordLookup(t *testing.T) {
	globals := connectedGlobals()
	globals.Password = ""

	var gotURL, gotLogin string
	lookup := func(url, login string) (string, bool) {
		gotURL, gotLogin = url, login
		return "from-keyring", true
	}

	opts := Options{}
	if err := resolve(&opts, globals, lookup); err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if opts.Password != "from-keyring" {
		t.Errorf("Password = %q, want the keyring value", opts.Password)
	}
	if gotURL != "odoo.example.com" || gotLogin != "admin" {
		t.Errorf("lookup keyed by %q/%q, want url/login", gotURL, gotLogin)
	}
}

func TestResolveIncludeSkipsValidation(t *testing.T) {
	opts := Options{Include: "data.csv"}
	if err := resolve(&opts, config.Globals{}, nil); err != nil {
		t.Fatalf("resolve() error = %v, want nil for include blocks", err)
	}
}

func TestResolveRenderModeFlags(t *testing.T) {
	tests := []struct {
		name              string
		local, global     *bool
		wantPipe, useGrid bool
	}{
		{name: "unset everywhere", wantPipe: false},
		{name: "global on", global: boolPtr(true), wantPipe: true},
		{name: "local off beats global on", local: boolPtr(false), global: boolPtr(true), wantPipe: false},
		{name: "local on", local: boolPtr(true), wantPipe: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Include: "data.csv", PipeTables: tt.local}
			globals := config.Globals{PipeTables: tt.global}
			if err := resolve(&opts, globals, nil); err != nil {
				t.Fatalf("resolve() error = %v", err)
			}
			if opts.usePipe != tt.wantPipe {
				t.Errorf("usePipe = %v, want %v", opts.usePipe, tt.wantPipe)
			}
		})
	}
}

func TestResolveCombinedDomain(t *testing.T) {
	globals := connectedGlobals()
	globals.Domain = []any{[]any{"id", ">", "5"}, []any{"credit", "<", "1.5"}}

	opts := Options{Domain: []any{[]any{"name", "=", "x"}}}
	if err := resolve(&opts, globals, nil); err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	want := []any{
		[]any{"id", ">", int64(5)},
		[]any{"credit", "<", 1.5},
		[]any{"name", "=", "x"},
	}
	if !reflect.DeepEqual(opts.Domain, want) {
		t.Errorf("Domain = %#v, want %#v", opts.Domain, want)
	}
}

func TestCoerceDomainOperatorsPassThrough(t *testing.T) {
	got := coerceDomain([]any{"|", []any{"id", "=", "10"}, []any{"id", "=", "x"}})
	want := []any{"|", []any{"id", "=", int64(10)}, []any{"id", "=", "x"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("coerceDomain() = %#v, want %#v", got, want)
	}
}

func TestAlignmentSpecWrongType(t *testing.T) {
	opts := Options{Alignment: 42}
	if got := opts.alignmentSpec(); got != "" {
		t.Errorf("alignmentSpec() = %q, want empty for non-string option", got)
	}
}

func TestHeaderOn(t *testing.T) {
	tests := []struct {
		name   string
		header any
		want   bool
	}{
		{name: "unset defaults on", header: nil, want: true},
		{name: "false", header: false, want: false},
		{name: "true", header: true, want: true},
		{name: "wrong type defaults on", header: 1, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Header: tt.header}
			if got := opts.headerOn(); got != tt.want {
				t.Errorf("headerOn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWidthSpecWrongType(t *testing.T) {
	opts := Options{Width: 0.5}
	if got := opts.widthSpec(); got != nil {
		t.Errorf("widthSpec() = %v, want nil for scalar option", got)
	}

	opts = Options{Width: []any{0.3, 0.7}}
	if got := opts.widthSpec(); !reflect.DeepEqual(got, []any{0.3, 0.7}) {
		t.Errorf("widthSpec() = %v, want the list unchanged", got)
	}
}
