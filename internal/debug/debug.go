// Package debug provides an http.RoundTripper that logs JSON-RPC traffic
// for troubleshooting Odoo connections. Known secrets (the connection
// password) are redacted before anything is written.
package debug

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const maxBodyLog = 1000

// Transport wraps an http.RoundTripper and logs requests and responses to
// Output with secrets redacted.
type Transport struct {
	Transport http.RoundTripper
	Output    io.Writer
	secrets   []string
}

// NewTransport creates a logging transport. A nil base falls back to
// http.DefaultTransport and a nil output to os.Stderr. Every occurrence of
// a secret in logged bodies is replaced with "***".
func NewTransport(base http.RoundTripper, output io.Writer, secrets ...string) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if output == nil {
		output = os.Stderr
	}
	return &Transport{Transport: base, Output: output, secrets: secrets}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	_, _ = fmt.Fprintf(t.Output, "\n--> %s %s\n", req.Method, req.URL)

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			_, _ = fmt.Fprintf(t.Output, "    [error reading request body: %v]\n", err)
		} else {
			req.Body = io.NopCloser(bytes.NewReader(body))
			t.logBody(body)
		}
	}

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		_, _ = fmt.Fprintf(t.Output, "<-- ERROR: %v (%s)\n\n", err, duration)
		return resp, err
	}

	_, _ = fmt.Fprintf(t.Output, "<-- %d %s (%s)\n", resp.StatusCode, resp.Status, duration)
	if resp.Body != nil {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			_, _ = fmt.Fprintf(t.Output, "    [error reading response body: %v]\n", err)
		} else {
			resp.Body = io.NopCloser(bytes.NewReader(body))
			t.logBody(body)
		}
	}
	_, _ = fmt.Fprintln(t.Output)

	return resp, nil
}

func (t *Transport) logBody(body []byte) {
	if len(body) == 0 {
		return
	}
	s := string(body)
	for _, secret := range t.secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, "***")
		}
	}
	if len(s) > maxBodyLog {
		s = s[:maxBodyLog] + "... [truncated]"
	}
	_, _ = fmt.Fprintf(t.Output, "    Body: %s\n", s)
}
