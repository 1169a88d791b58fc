package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/rflorenc/azure-search-workbench/faults"
)

func newTestClient(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Connection{URL: ts.URL + "/", QueryKey: "query", AdminKey: "admin"},
		WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestConnection_BaseURLAndVersion(t *testing.T) {
	tests := []struct {
		name        string
		conn        Connection
		wantURL     string
		wantVersion string
	}{
		{"trailing slash", Connection{URL: "https://svc.search.windows.net/"}, "https://svc.search.windows.net", DefaultAPIVersion},
		{"explicit version", Connection{URL: "https://svc.search.windows.net", APIVersion: "2023-11-01"}, "https://svc.search.windows.net", "2023-11-01"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.conn.BaseURL(); got != tc.wantURL {
				t.Errorf("BaseURL() = %q, want %q", got, tc.wantURL)
			}
			if got := tc.conn.Version(); got != tc.wantVersion {
				t.Errorf("Version() = %q, want %q", got, tc.wantVersion)
			}
		})
	}
}

func TestConnection_Validate(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
		ok   bool
	}{
		{"complete", Connection{URL: "https://svc.search.windows.net", AdminKey: "k"}, true},
		{"missing url", Connection{AdminKey: "k"}, false},
		{"relative url", Connection{URL: "svc.search.windows.net", AdminKey: "k"}, false},
		{"missing admin key", Connection{URL: "https://svc.search.windows.net"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.conn.Validate()
			if tc.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tc.ok && !faults.IsConfig(err) {
				t.Fatalf("Validate() = %v, want ConfigError", err)
			}
		})
	}
}

func TestClient_Do_Headers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api-version"); got != DefaultAPIVersion {
			t.Errorf("api-version = %q, want %q", got, DefaultAPIVersion)
		}
		if got := r.URL.Query().Get("$select"); got != "name" {
			t.Errorf("$select = %q, want name", got)
		}
		if got := r.Header.Get("api-key"); got != "admin" {
			t.Errorf("api-key = %q, want admin", got)
		}
		if _, err := uuid.Parse(r.Header.Get("client-request-id")); err != nil {
			t.Errorf("client-request-id is not a UUID: %v", err)
		}
		if got := r.Header.Get("Content-Type"); got != "" {
			t.Errorf("Content-Type = %q on a bodiless request", got)
		}
		if r.URL.Path != "/indexes" {
			t.Errorf("path = %q, want /indexes (no double slash)", r.URL.Path)
		}
		w.Write([]byte(`{"value":[]}`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts)
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/indexes",
		Query:  map[string][]string{"$select": {"name"}},
		Admin:  true,
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || resp.RequestID == "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClient_Do_QueryKeyAndBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("api-key"); got != "query" {
			t.Errorf("api-key = %q, want query", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := newTestClient(t, ts)
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/indexes/i/docs/search", Body: SearchRequest{Search: "*"}})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
}

func TestClient_Do_MissingQueryKey(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	c, err := NewClient(Connection{URL: ts.URL, AdminKey: "admin"}, WithHTTPClient(ts.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/indexes/i/docs/search"})
	if !faults.IsConfig(err) {
		t.Fatalf("Do() = %v, want ConfigError", err)
	}
	if called {
		t.Error("no request should reach the server without a key")
	}
}

func TestClient_Call_ErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		notFound bool
	}{
		{"not found", http.StatusNotFound, true},
		{"conflict", http.StatusConflict, false},
		{"server error", http.StatusInternalServerError, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer ts.Close()

			c := newTestClient(t, ts)
			_, err := c.Get(context.Background(), "/indexes/x", nil, http.StatusOK)
			if err == nil {
				t.Fatal("Get should return error")
			}
			if faults.IsNotFound(err) != tc.notFound {
				t.Errorf("IsNotFound = %v, want %v", faults.IsNotFound(err), tc.notFound)
			}
			if !tc.notFound && !faults.IsRemote(err) {
				t.Errorf("err = %v, want RemoteError", err)
			}
			if faults.StatusCode(err) != tc.status {
				t.Errorf("StatusCode = %d, want %d", faults.StatusCode(err), tc.status)
			}
			var se *faults.StatusError
			if !errors.As(err, &se) || string(se.Body) != `{"error":{"message":"nope"}}` {
				t.Errorf("body not attached: %v", err)
			}
		})
	}
}

func TestClient_Do_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, ts)
	ts.Close()

	_, err := c.Get(context.Background(), "/servicestats", nil)
	if !faults.IsTransport(err) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}

func TestResponse_TextStripsBOM(t *testing.T) {
	r := &Response{Body: []byte("\xef\xbb\xbf42")}
	if got := r.Text(); got != "42" {
		t.Errorf("Text() = %q, want 42", got)
	}
	var n int
	if err := r.Decode(&n); err != nil || n != 42 {
		t.Errorf("Decode = %d, %v", n, err)
	}
}

func TestExpect_AnySuccess(t *testing.T) {
	if err := Expect(&Response{StatusCode: 204}); err != nil {
		t.Errorf("Expect(204) = %v", err)
	}
	if err := Expect(&Response{StatusCode: 200}, http.StatusCreated); err == nil {
		t.Error("Expect(200, 201) should fail")
	}
}
