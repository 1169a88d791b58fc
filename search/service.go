package search

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rflorenc/azure-search-workbench/datasource"
	"github.com/rflorenc/azure-search-workbench/index"
	"github.com/rflorenc/azure-search-workbench/indexer"
	"github.com/rflorenc/azure-search-workbench/skills"
)

// Service groups the typed collections of one search service around a
// single pooled Client.
type Service struct {
	Client      *Client
	DataSources *Collection[*datasource.DataSource]
	Indexes     *IndexClient
	Skillsets   *Collection[*skills.Skillset]
	Indexers    *IndexerClient
}

// NewService validates conn and builds the collections.
func NewService(conn Connection, opts ...ClientOption) (*Service, error) {
	c, err := NewClient(conn, opts...)
	if err != nil {
		return nil, err
	}
	return &Service{
		Client:      c,
		DataSources: NewCollection(c, "datasources", datasource.Load),
		Indexes:     &IndexClient{Collection: NewCollection(c, "indexes", index.Load)},
		Skillsets:   NewCollection(c, "skillsets", skills.LoadSkillset),
		Indexers:    &IndexerClient{Collection: NewCollection(c, "indexers", indexer.Load)},
	}, nil
}

// Ping fetches the service statistics, which needs the admin key.
func (s *Service) Ping(ctx context.Context) (map[string]any, error) {
	resp, err := s.Client.Get(ctx, "/servicestats", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return resp.Map()
}

// Raw fetches one resource payload of any type.
func (s *Service) Raw(ctx context.Context, rt ResourceType, name string) (map[string]any, error) {
	resp, err := s.Client.Get(ctx, "/"+rt.Path+"/"+url.PathEscape(name), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return resp.Map()
}

// RawList fetches every payload of a resource type.
func (s *Service) RawList(ctx context.Context, rt ResourceType) ([]map[string]any, error) {
	return NewCollection[rawResource](s.Client, rt.Path, nil).ListRaw(ctx)
}

// RawNames lists the names of every resource of a type.
func (s *Service) RawNames(ctx context.Context, rt ResourceType) ([]string, error) {
	return NewCollection[rawResource](s.Client, rt.Path, nil).ListNames(ctx)
}

// RawDelete deletes one resource of any type. See Collection.DeleteIfExists
// for ifExists.
func (s *Service) RawDelete(ctx context.Context, rt ResourceType, name string, ifExists bool) (bool, error) {
	c := NewCollection[rawResource](s.Client, rt.Path, nil)
	if ifExists {
		return c.DeleteIfExists(ctx, name)
	}
	err := c.Delete(ctx, name)
	return err == nil, err
}

// rawResource lets untyped calls reuse Collection.
type rawResource map[string]any

func (r rawResource) ToDict() map[string]any { return r }

func (r rawResource) ResourceName() string {
	n, _ := r["name"].(string)
	return n
}
