package cmd

import (
	"context"
	"errors"

	"github.com/salmonumbrella/odootable/internal/filter"
	"github.com/salmonumbrella/odootable/internal/odoo"
)

const (
	ExitOK       = 0
	ExitSystem   = 1
	ExitUser     = 2
	ExitAuth     = 3
	ExitCanceled = 130
)

// ExitCode maps a command error to a stable process exit code for
// automation.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	if errors.Is(err, odoo.ErrAuthFailed) {
		return ExitAuth
	}

	var optErr *filter.OptionError
	if errors.As(err, &optErr) {
		return ExitUser
	}
	if errors.Is(err, odoo.ErrHeaderOverride) {
		return ExitUser
	}

	// Server-side exceptions are usually caused by the query the document
	// asked for (bad model, bad field, bad domain) rather than the tool.
	var rpcErr *odoo.RPCError
	if errors.As(err, &rpcErr) {
		return ExitUser
	}

	return ExitSystem
}
