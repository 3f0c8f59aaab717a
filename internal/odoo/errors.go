package odoo

import (
	"errors"
	"fmt"
)

// ErrNoRecords indicates that a query matched no rows. Callers
// conventionally recover from it by deleting the output element.
var ErrNoRecords = errors.New("no records returned")

// ErrHeaderOverride indicates that a header override did not parse as
// exactly one CSV row. This is a hard failure.
var ErrHeaderOverride = errors.New("header override is not a single CSV row")

// ErrAuthFailed indicates the server rejected the configured credentials.
var ErrAuthFailed = errors.New("odoo: authentication failed")

// RPCError is a JSON-RPC error returned by the Odoo server.
type RPCError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    RPCErrorData `json:"data"`
}

// RPCErrorData carries the server-side exception details.
type RPCErrorData struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Debug   string `json:"debug"`
}

func (e *RPCError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("odoo: %s: %s", e.Message, e.Data.Message)
	}
	return fmt.Sprintf("odoo: %s (code %d)", e.Message, e.Code)
}
