// Package odoo implements a minimal JSON-RPC client for the Odoo external
// API, covering the calls the table filter needs: authentication, record
// search and data export.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/salmonumbrella/odootable/internal/debug"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 2
	retryBaseDelay = 500 * time.Millisecond
)

// Client talks to one Odoo instance over its /jsonrpc endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	database   string
	login      string
	password   string
	uid        int64
	nextID     atomic.Int64
}

// NewClient creates a client for the given host and port. A host without a
// scheme is assumed to be plain HTTP, matching the Odoo default.
func NewClient(host string, port int, database, login, password string) *Client {
	baseURL := host
	if !strings.Contains(baseURL, "://") {
		baseURL = fmt.Sprintf("http://%s:%d", host, port)
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		database:   database,
		login:      login,
		password:   password,
	}
}

// WithHTTPClient sets a custom HTTP client.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client
	return c
}

// WithBaseURL sets a custom base URL (useful for testing).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithDebugOutput logs JSON-RPC traffic to w with the connection password
// redacted.
func (c *Client) WithDebugOutput(w io.Writer) *Client {
	base := c.httpClient.Transport
	c.httpClient.Transport = debug.NewTransport(base, w, c.password)
	return c
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// call performs one JSON-RPC call, retrying transient transport failures
// and 5xx responses with backoff.
func (c *Client) call(ctx context.Context, service, method string, args []any, result any) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			slog.Debug("retrying odoo call", "service", service, "method", method, "attempt", attempt, "delay", delay.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		retryable, err := c.callOnce(ctx, payload, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

// callOnce performs a single request attempt. The first return value
// reports whether the failure is worth retrying.
func (c *Client) callOnce(ctx context.Context, payload []byte, result any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jsonrpc", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return true, fmt.Errorf("odoo: server returned %s", resp.Status)
	}
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("odoo: server returned %s", resp.Status)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return false, rpcResp.Error
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return false, fmt.Errorf("decode result: %w", err)
		}
	}
	return false, nil
}

// Authenticate resolves the user id for the configured credentials. It is
// idempotent and called lazily by the data methods.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.uid != 0 {
		return nil
	}

	var uid int64
	args := []any{c.database, c.login, c.password}
	if err := c.call(ctx, "common", "login", args, &uid); err != nil {
		return err
	}
	if uid == 0 {
		return fmt.Errorf("%w for %q on %q", ErrAuthFailed, c.login, c.database)
	}
	c.uid = uid
	slog.Debug("authenticated against odoo", "database", c.database, "login", c.login, "uid", uid)
	return nil
}

// executeKw invokes a model method through the object service.
func (c *Client) executeKw(ctx context.Context, model, method string, args []any, kwargs map[string]any, result any) error {
	if err := c.Authenticate(ctx); err != nil {
		return err
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	callArgs := []any{c.database, c.uid, c.password, model, method, args, kwargs}
	return c.call(ctx, "object", "execute_kw", callArgs, result)
}

// Search returns the ids of the model records matching the domain filter.
func (c *Client) Search(ctx context.Context, model string, domain []any) ([]int64, error) {
	if domain == nil {
		domain = []any{}
	}
	var ids []int64
	if err := c.executeKw(ctx, model, "search", []any{domain}, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ExportData exports the given fields of the given records the way the
// Odoo export machinery formats them, as rows of cell text.
func (c *Client) ExportData(ctx context.Context, model string, ids []int64, fields []string) ([][]string, error) {
	var out struct {
		Datas [][]any `json:"datas"`
	}
	kwargs := map[string]any{
		"context": map[string]any{"import_compat": false},
	}
	if err := c.executeKw(ctx, model, "export_data", []any{ids, fields}, kwargs, &out); err != nil {
		return nil, err
	}

	rows := make([][]string, len(out.Datas))
	for i, raw := range out.Datas {
		row := make([]string, len(raw))
		for j, v := range raw {
			row[j] = formatCell(v)
		}
		rows[i] = row
	}
	return rows, nil
}

// formatCell renders one exported JSON value as cell text. Odoo sends
// false for empty cells and bare numbers for numeric fields.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return ""
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
