package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/odootable/internal/auth"
	"github.com/salmonumbrella/odootable/internal/config"
	"github.com/salmonumbrella/odootable/internal/filter"
	"github.com/salmonumbrella/odootable/internal/odoo"
	"github.com/salmonumbrella/odootable/internal/output"
)

// queryOptions is the connection and query surface of the query command.
type queryOptions struct {
	url      string
	port     int
	database string
	login    string
	password string
	model    string
	fields   []string
	domain   string

	jq      string
	compact bool
}

func newQueryCmd(app *App, configPath *string, debugMode *bool) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a table query and print the rows as JSON",
		Long: `Query an Odoo model directly, outside any document, and print the
matching rows as JSON records. Connection options fall back to the
config file; the password additionally falls back to the keyring.

The --jq flag filters the records with a jq expression.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), app, cfg, opts, *debugMode)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "Odoo server host")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Odoo server port (default 80)")
	cmd.Flags().StringVar(&opts.database, "database", "", "Database name (default: the url)")
	cmd.Flags().StringVar(&opts.login, "login", "", "Odoo login")
	cmd.Flags().StringVar(&opts.password, "password", "", "Odoo password (default: keyring)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model to query, e.g. res.partner")
	cmd.Flags().StringSliceVar(&opts.fields, "fields", nil, "Fields to export")
	cmd.Flags().StringVar(&opts.domain, "domain", "", "Domain filter as JSON, e.g. '[[\"id\",\">\",5]]'")
	cmd.Flags().StringVar(&opts.jq, "jq", "", "Filter the records with a jq expression")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "Compact JSON output")

	return cmd
}

func runQuery(ctx context.Context, app *App, cfg *config.Config, opts queryOptions, debugMode bool) error {
	conn, err := resolveConnection(opts, cfg.Defaults, auth.Lookup)
	if err != nil {
		return err
	}

	var domain []any
	if opts.domain != "" {
		if err := json.Unmarshal([]byte(opts.domain), &domain); err != nil {
			return fmt.Errorf("invalid --domain: %w", err)
		}
	}

	client := odoo.NewClient(conn.url, conn.port, conn.database, conn.login, conn.password)
	if debugMode {
		client = client.WithDebugOutput(app.Stderr)
	}
	rows, err := client.ReadData(ctx, conn.model, conn.fields, domain, "")
	if err != nil && !errors.Is(err, odoo.ErrNoRecords) {
		return err
	}

	records := make([]map[string]any, len(rows))
	for i, row := range rows {
		rec := make(map[string]any, len(conn.fields))
		for j, field := range conn.fields {
			if j < len(row) {
				rec[field] = row[j]
			}
		}
		records[i] = rec
	}

	return output.NewPrinter(app.Stdout).PrintJSON(records, opts.jq, opts.compact)
}

type connection struct {
	url, database, login, password, model string
	port                                  int
	fields                                []string
}

// resolveConnection applies the same option fallback chain a fenced block
// gets: flag, then config file, then the lookup (the keyring) for the
// password.
func resolveConnection(opts queryOptions, globals config.Globals, lookup filter.PasswordLookup) (connection, error) {
	conn := connection{
		url:      opts.url,
		port:     opts.port,
		database: opts.database,
		login:    opts.login,
		password: opts.password,
		model:    opts.model,
		fields:   opts.fields,
	}

	if conn.url == "" {
		conn.url = globals.URL
	}
	if conn.url == "" {
		return conn, &filter.OptionError{Option: "url"}
	}
	if conn.database == "" {
		conn.database = globals.Database
	}
	if conn.database == "" {
		conn.database = conn.url
	}
	if conn.port == 0 {
		conn.port = globals.Port
	}
	if conn.port == 0 {
		conn.port = 80
	}
	if conn.login == "" {
		conn.login = globals.Login
	}
	if conn.login == "" {
		return conn, &filter.OptionError{Option: "login"}
	}
	if conn.password == "" {
		conn.password = globals.Password
	}
	if conn.password == "" && lookup != nil {
		if pw, ok := lookup(conn.url, conn.login); ok {
			conn.password = pw
		}
	}
	if conn.password == "" {
		return conn, &filter.OptionError{Option: "password"}
	}
	if conn.model == "" {
		conn.model = globals.Model
	}
	if conn.model == "" {
		return conn, &filter.OptionError{Option: "model"}
	}
	if len(conn.fields) == 0 {
		conn.fields = globals.Fields
	}
	if len(conn.fields) == 0 {
		return conn, &filter.OptionError{Option: "fields"}
	}
	return conn, nil
}
