package odoo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

// fakeOdoo answers /jsonrpc with canned results per service/method.
func fakeOdoo(t *testing.T, handler func(service, method string, args []any) (any, *RPCError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jsonrpc" {
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req struct {
			Params struct {
				Service string `json:"service"`
				Method  string `json:"method"`
				Args    []any  `json:"args"`
			} `json:"params"`
			ID int64 `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}

		result, rpcErr := handler(req.Params.Service, req.Params.Method, req.Params.Args)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestReadData(t *testing.T) {
	srv := fakeOdoo(t, func(service, method string, args []any) (any, *RPCError) {
		switch service + "." + method {
		case "common.login":
			return 7, nil
		case "object.execute_kw":
			switch args[4] {
			case "search":
				return []int64{1, 2}, nil
			case "export_data":
				return map[string]any{"datas": [][]any{
					{"Alice", float64(30)},
					{"Bob", 2.5},
				}}, nil
			}
		}
		return nil, &RPCError{Code: 404, Message: "unknown call"}
	})
	defer srv.Close()

	c := NewClient("ignored", 80, "db", "admin", "secret").WithBaseURL(srv.URL)
	rows, err := c.ReadData(context.Background(), "res.partner", []string{"name", "credit"}, nil, "")
	if err != nil {
		t.Fatalf("ReadData() error = %v", err)
	}

	want := [][]string{{"Alice", "30"}, {"Bob", "2.5"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ReadData() = %v, want %v", rows, want)
	}
}

func TestReadDataHeaderOverride(t *testing.T) {
	srv := fakeOdoo(t, func(service, method string, args []any) (any, *RPCError) {
		if service == "common" {
			return 1, nil
		}
		if args[4] == "search" {
			return []int64{1}, nil
		}
		return map[string]any{"datas": [][]any{{"x", "y"}}}, nil
	})
	defer srv.Close()

	c := NewClient("ignored", 80, "db", "admin", "secret").WithBaseURL(srv.URL)
	rows, err := c.ReadData(context.Background(), "res.partner", []string{"a", "b"}, nil, "Name,Value")
	if err != nil {
		t.Fatalf("ReadData() error = %v", err)
	}

	want := [][]string{{"Name", "Value"}, {"x", "y"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ReadData() = %v, want %v", rows, want)
	}
}

func TestReadDataNoRecords(t *testing.T) {
	srv := fakeOdoo(t, func(service, method string, args []any) (any, *RPCError) {
		if service == "common" {
			return 1, nil
		}
		if args[4] == "search" {
			return []int64{}, nil
		}
		return map[string]any{"datas": [][]any{}}, nil
	})
	defer srv.Close()

	c := NewClient("ignored", 80, "db", "admin", "secret").WithBaseURL(srv.URL)
	if _, err := c.ReadData(context.Background(), "res.partner", []string{"a"}, nil, ""); !errors.Is(err, ErrNoRecords) {
		t.Errorf("ReadData() error = %v, want ErrNoRecords", err)
	}
}

func TestAuthenticateFailure(t *testing.T) {
	srv := fakeOdoo(t, func(service, method string, args []any) (any, *RPCError) {
		return 0, nil // odoo reports bad credentials as uid 0
	})
	defer srv.Close()

	c := NewClient("ignored", 80, "db", "admin", "wrong").WithBaseURL(srv.URL)
	if err := c.Authenticate(context.Background()); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Authenticate() error = %v, want ErrAuthFailed", err)
	}
}

func TestCallSurfacesRPCError(t *testing.T) {
	srv := fakeOdoo(t, func(service, method string, args []any) (any, *RPCError) {
		if service == "common" {
			return 3, nil
		}
		return nil, &RPCError{
			Code:    200,
			Message: "Odoo Server Error",
			Data:    RPCErrorData{Name: "odoo.exceptions.AccessError", Message: "not allowed"},
		}
	})
	defer srv.Close()

	c := NewClient("ignored", 80, "db", "admin", "secret").WithBaseURL(srv.URL)
	_, err := c.Search(context.Background(), "res.partner", nil)

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Search() error = %v, want *RPCError", err)
	}
	if rpcErr.Data.Name != "odoo.exceptions.AccessError" {
		t.Errorf("RPCError.Data.Name = %q", rpcErr.Data.Name)
	}
}

func TestNewClientBaseURL(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"odoo.example.com", 80, "http://odoo.example.com:80"},
		{"odoo.example.com", 8069, "http://odoo.example.com:8069"},
		{"https://odoo.example.com", 80, "https://odoo.example.com"},
	}
	for _, tt := range tests {
		c := NewClient(tt.host, tt.port, "db", "l", "p")
		if c.baseURL != tt.want {
			t.Errorf("NewClient(%q, %d) baseURL = %q, want %q", tt.host, tt.port, c.baseURL, tt.want)
		}
	}
}

func TestParseHeaderOverride(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr bool
	}{
		{name: "single row", text: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "quoted cell", text: `"x,y",z`, want: []string{"x,y", "z"}},
		{name: "two rows", text: "a,b\nc,d", wantErr: true},
		{name: "trailing newline tolerated", text: "a,b\n", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHeaderOverride(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrHeaderOverride) {
					t.Fatalf("ParseHeaderOverride(%q) error = %v, want ErrHeaderOverride", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHeaderOverride(%q) error = %v", tt.text, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHeaderOverride(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{false, ""},
		{true, "true"},
		{float64(30), "30"},
		{2.5, "2.5"},
	}
	for _, tt := range tests {
		if got := formatCell(tt.in); got != tt.want {
			t.Errorf("formatCell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
