package search

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// Resource is a named top-level object managed through a Collection.
type Resource interface {
	wire.Object
	ResourceName() string
}

// Loader rebuilds a typed resource from a service payload.
type Loader[T Resource] func(data any) (T, error)

type validator interface{ Validate() error }

// Collection is the CRUD surface for one resource collection such as
// /indexes or /indexers.
type Collection[T Resource] struct {
	client *Client
	path   string
	load   Loader[T]
}

// NewCollection binds a collection path (without slashes) to its loader.
func NewCollection[T Resource](client *Client, path string, load Loader[T]) *Collection[T] {
	return &Collection[T]{client: client, path: path, load: load}
}

// Path returns the collection path, e.g. "indexes".
func (c *Collection[T]) Path() string { return c.path }

func (c *Collection[T]) itemPath(name string) string {
	return "/" + c.path + "/" + url.PathEscape(name)
}

func (c *Collection[T]) logger() *slog.Logger { return c.client.logger }

// Create POSTs r and expects 201 Created.
func (c *Collection[T]) Create(ctx context.Context, r T) error {
	if v, ok := any(r).(validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	_, err := c.client.Post(ctx, "/"+c.path, r, http.StatusCreated)
	return err
}

// Get fetches and loads name. A missing resource is a NotFound fault.
func (c *Collection[T]) Get(ctx context.Context, name string) (T, error) {
	var zero T
	m, err := c.GetRaw(ctx, name)
	if err != nil {
		return zero, err
	}
	return c.load(m)
}

// GetRaw fetches name without loading it.
func (c *Collection[T]) GetRaw(ctx context.Context, name string) (map[string]any, error) {
	resp, err := c.client.Get(ctx, c.itemPath(name), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return resp.Map()
}

// Verify fetches name after a deployment to confirm the service accepted it.
func (c *Collection[T]) Verify(ctx context.Context, name string) (T, error) {
	r, err := c.Get(ctx, name)
	if err != nil {
		return r, err
	}
	c.logger().Info("verified resource", "collection", c.path, "name", name)
	return r, nil
}

// Delete removes name and expects 204 No Content.
func (c *Collection[T]) Delete(ctx context.Context, name string) error {
	_, err := c.client.Delete(ctx, c.itemPath(name), http.StatusNoContent)
	return err
}

// DeleteIfExists is Delete with NotFound swallowed. It reports whether the
// resource existed.
func (c *Collection[T]) DeleteIfExists(ctx context.Context, name string) (bool, error) {
	err := c.Delete(ctx, name)
	if faults.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update replaces r by deleting it and creating it again. A failed delete is
// logged and the create still runs.
func (c *Collection[T]) Update(ctx context.Context, r T) error {
	if err := c.Delete(ctx, r.ResourceName()); err != nil {
		c.logger().Warn("delete before update failed",
			"collection", c.path, "name", r.ResourceName(), "error", err)
	}
	return c.Create(ctx, r)
}

// Exists reports whether name is present.
func (c *Collection[T]) Exists(ctx context.Context, name string) (bool, error) {
	_, err := c.GetRaw(ctx, name)
	if faults.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type listResponse struct {
	Value []map[string]any `json:"value"`
}

// ListRaw returns every resource payload in the collection.
func (c *Collection[T]) ListRaw(ctx context.Context) ([]map[string]any, error) {
	return c.list(ctx, nil)
}

func (c *Collection[T]) list(ctx context.Context, query url.Values) ([]map[string]any, error) {
	resp, err := c.client.Get(ctx, "/"+c.path, query, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var lr listResponse
	if err := resp.Decode(&lr); err != nil {
		return nil, err
	}
	return lr.Value, nil
}

// List loads every resource in the collection.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	raw, err := c.ListRaw(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, m := range raw {
		r, err := c.load(m)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ListNames returns only the resource names.
func (c *Collection[T]) ListNames(ctx context.Context) ([]string, error) {
	raw, err := c.list(ctx, url.Values{"$select": {"name"}})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(raw))
	for _, m := range raw {
		if n, ok := m["name"].(string); ok {
			names = append(names, n)
		}
	}
	return names, nil
}
