package cmd

import (
	"errors"
	"testing"

	"github.com/salmonumbrella/odootable/internal/config"
	"github.com/salmonumbrella/odootable/internal/filter"
)

func TestResolveConnection(t *testing.T) {
	globals := config.Globals{
		URL:      "odoo.example.com",
		Login:    "admin",
		Password: "secret",
		Model:    "res.partner",
		Fields:   []string{"name"},
	}

	conn, err := resolveConnection(queryOptions{}, globals, nil)
	if err != nil {
		t.Fatalf("resolveConnection() error = %v", err)
	}
	if conn.database != "odoo.example.com" {
		t.Errorf("database = %q, want the url", conn.database)
	}
	if conn.port != 80 {
		t.Errorf("port = %d, want 80", conn.port)
	}

	// Flags win over config defaults.
	conn, err = resolveConnection(queryOptions{model: "res.users", fields: []string{"login"}}, globals, nil)
	if err != nil {
		t.Fatalf("resolveConnection() error = %v", err)
	}
	if conn.model != "res.users" || conn.fields[0] != "login" {
		t.Errorf("flags not applied: %q %v", conn.model, conn.fields)
	}
}

func TestResolveConnectionMissing(t *testing.T) {
	tests := []struct {
		name    string
		opts    queryOptions
		missing string
	}{
		{name: "url", opts: queryOptions{}, missing: "url"},
		{name: "login", opts: queryOptions{url: "h"}, missing: "login"},
		{name: "password", opts: queryOptions{url: "h", login: "l"}, missing: "password"},
		{name: "model", opts: queryOptions{url: "h", login: "l", password: "p"}, missing: "model"},
		{name: "fields", opts: queryOptions{url: "h", login: "l", password: "p", model: "m"}, missing: "fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveConnection(tt.opts, config.Globals{}, nil)
			var optErr *filter.OptionError
			if !errors.As(err, &optErr) {
				t.Fatalf("resolveConnection() error = %v, want *filter.OptionError", err)
			}
			if optErr.Option != tt.missing {
				t.Errorf("missing option = %q, want %q", optErr.Option, tt.missing)
			}
		})
	}
}
