// Package search talks to an Azure Search service: a thin HTTP transport,
// generic CRUD collections for each resource type and the control-plane
// operations on indexes and indexers.
package search

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/google/uuid"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// Client is the shared HTTP client behind every collection.
type Client struct {
	conn       Connection
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient replaces the pooled client built from the Connection.
func WithHTTPClient(h *http.Client) ClientOption { return func(c *Client) { c.httpClient = h } }

func WithLogger(l *slog.Logger) ClientOption { return func(c *Client) { c.logger = l } }

// NewClient validates conn and creates a Client from it.
func NewClient(conn Connection, opts ...ClientOption) (*Client, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if conn.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	c := &Client{
		conn:    conn,
		baseURL: conn.BaseURL(),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   conn.Timeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connection returns the connection the client was built from.
func (c *Client) Connection() Connection { return c.conn }

// Request is one call against the service. Path is relative to the service
// URL and must already be escaped. Admin selects the admin key over the
// query key.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Admin  bool
}

// Response is the raw outcome of a call.
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	RequestID  string
}

var utf8BOM = []byte("\xef\xbb\xbf")

// Text returns the body with any UTF-8 byte order mark removed.
func (r *Response) Text() string {
	return string(bytes.TrimPrefix(r.Body, utf8BOM))
}

// Decode unmarshals the body into dest.
func (r *Response) Decode(dest any) error {
	if err := json.Unmarshal(bytes.TrimPrefix(r.Body, utf8BOM), dest); err != nil {
		return faults.Parsef(err, "%s %s: decoding response", r.Method, r.Path)
	}
	return nil
}

// Map decodes a JSON object body.
func (r *Response) Map() (map[string]any, error) {
	m, err := wire.Decode(bytes.TrimPrefix(r.Body, utf8BOM))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.Method, r.Path, err)
	}
	return m, nil
}

// Do sends req and returns the response whatever its status. Only network
// failures and a missing key are errors here. Nothing is retried.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	key, err := c.conn.key(req.Admin)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for k, vs := range req.Query {
		query[k] = slices.Clone(vs)
	}
	query.Set("api-version", c.conn.Version())
	u := c.baseURL + req.Path + "?" + query.Encode()

	var bodyReader io.Reader
	if req.Body != nil {
		payload := req.Body
		if o, ok := payload.(wire.Object); ok {
			payload = o.ToDict()
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("api-key", key)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("client-request-id", requestID)
	if bodyReader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, faults.Transportf(err, "%s %s", req.Method, req.Path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Transportf(err, "%s %s: reading response", req.Method, req.Path)
	}

	c.logger.Debug("search request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", requestID)

	return &Response{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Body:       body,
		RequestID:  requestID,
	}, nil
}

// Expect returns a NotFound or Remote fault unless resp has one of the
// wanted statuses. With no wanted statuses any 2xx passes.
func Expect(resp *Response, want ...int) error {
	if len(want) == 0 {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
	} else if slices.Contains(want, resp.StatusCode) {
		return nil
	}
	return faults.NewStatusError(resp.Method, resp.Path, resp.StatusCode, resp.Body)
}

// Call is Do followed by Expect.
func (c *Client) Call(ctx context.Context, req Request, want ...int) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := Expect(resp, want...); err != nil {
		return resp, err
	}
	return resp, nil
}

// Get performs an admin GET.
func (c *Client) Get(ctx context.Context, path string, query url.Values, want ...int) (*Response, error) {
	return c.Call(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Admin: true}, want...)
}

// Post performs an admin POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, want ...int) (*Response, error) {
	return c.Call(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Admin: true}, want...)
}

// Put performs an admin PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, query url.Values, body any, want ...int) (*Response, error) {
	return c.Call(ctx, Request{Method: http.MethodPut, Path: path, Query: query, Body: body, Admin: true}, want...)
}

// Delete performs an admin DELETE.
func (c *Client) Delete(ctx context.Context, path string, want ...int) (*Response, error) {
	return c.Call(ctx, Request{Method: http.MethodDelete, Path: path, Admin: true}, want...)
}
