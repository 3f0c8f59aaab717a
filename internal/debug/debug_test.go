package debug

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTransportLogsAndRedacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","result":1}`)
	}))
	defer srv.Close()

	var log bytes.Buffer
	client := &http.Client{Transport: NewTransport(nil, &log, "hunter2")}

	body := strings.NewReader(`{"params":{"args":["db","admin","hunter2"]}}`)
	resp, err := client.Post(srv.URL, "application/json", body)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	got := log.String()
	if strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked into debug log:\n%s", got)
	}
	if !strings.Contains(got, "***") {
		t.Errorf("secret not redacted in debug log:\n%s", got)
	}
	if !strings.Contains(got, "<-- 200") {
		t.Errorf("response status missing from debug log:\n%s", got)
	}
}

func TestTransportPreservesBodies(t *testing.T) {
	const want = `{"jsonrpc":"2.0","result":42}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, want)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewTransport(nil, io.Discard)}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(body) != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}
