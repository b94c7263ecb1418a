package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/toolapi"
)

func newTestServer(t *testing.T, maxBody int64) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := newToolHandler(config.Default(), logger)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(newMux(h, logger, maxBody))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/tool", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestTool_Evaluate(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp := post(t, srv, `{"tool":"evaluate","params":{"input":"2+3*4"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("want a request id header")
	}
	var out toolapi.ToolResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.String != "14" || out.Error != "" {
		t.Errorf("want 14, got %+v", out)
	}
}

func TestTool_KeepsCallerRequestID(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/tool", strings.NewReader(`{"tool":"classify","params":{"input":"x=1"}}`))
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("want abc-123, got %s", got)
	}
}

func TestTool_BadRequests(t *testing.T) {
	srv := newTestServer(t, 64)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", `{"tool":"evaluate","args":{}}`, "unknown field"},
		{"trailing data", `{"tool":"evaluate","params":{"input":"1"}} {}`, "trailing data"},
		{"malformed", `{"tool":`, "unexpected EOF"},
		{"too large", `{"tool":"evaluate","params":{"input":"` + strings.Repeat("1", 100) + `"}}`, "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("want 400, got %d", resp.StatusCode)
			}
			var out map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out["error"], tt.want) {
				t.Errorf("want error containing %q, got %q", tt.want, out["error"])
			}
		})
	}
}

func TestTool_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp, err := http.Get(srv.URL + "/tool")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("want 405, got %d", resp.StatusCode)
	}
}

func TestSchemaAndHealth(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp, err := http.Get(srv.URL + "/schema")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var spec map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&spec); err != nil {
		t.Fatal(err)
	}
	if _, ok := spec["tools"]; !ok {
		t.Errorf("want tools in schema, got %v", spec)
	}

	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var health map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ok" {
		t.Errorf("want ok, got %v", health)
	}
}
