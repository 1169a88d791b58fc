package search

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/index"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// Query defaults.
const (
	QueryTypeFull   = "full"
	QueryTypeSimple = "simple"
	SearchModeAll   = "all"
	SearchModeAny   = "any"
)

// Document actions for the indexing endpoint.
const (
	ActionUpload        = "upload"
	ActionMerge         = "merge"
	ActionMergeOrUpload = "mergeOrUpload"
	ActionDelete        = "delete"
)

// IndexClient adds document and query operations to the index collection.
type IndexClient struct {
	*Collection[*index.Index]
}

func (c *IndexClient) docsPath(indexName, op string) string {
	return c.itemPath(indexName) + "/docs" + op
}

// SearchRequest is the body of a search call. QueryType and SearchMode
// default to full and all.
type SearchRequest struct {
	Search         string
	Filter         string
	OrderBy        string
	Select         []string
	SearchFields   []string
	Facets         []string
	Highlight      []string
	ScoringProfile string
	QueryType      string
	SearchMode     string
	Top            *int
	Skip           *int
	Count          bool
	Params         wire.Params
}

func (q SearchRequest) ToDict() map[string]any {
	base := map[string]any{
		"search":         q.Search,
		"filter":         q.Filter,
		"orderby":        q.OrderBy,
		"select":         strings.Join(q.Select, ","),
		"searchFields":   strings.Join(q.SearchFields, ","),
		"facets":         q.Facets,
		"highlight":      strings.Join(q.Highlight, ","),
		"scoringProfile": q.ScoringProfile,
		"queryType":      q.QueryType,
		"searchMode":     q.SearchMode,
		"top":            q.Top,
		"skip":           q.Skip,
	}
	if base["queryType"] == "" {
		base["queryType"] = QueryTypeFull
	}
	if base["searchMode"] == "" {
		base["searchMode"] = SearchModeAll
	}
	if q.Count {
		base["count"] = true
	}
	for _, k := range []string{"top", "skip"} {
		if p, _ := base[k].(*int); p != nil {
			base[k] = *p
		}
	}
	return wire.Finish(base, q.Params)
}

// SearchResult is the decoded response of a search call.
type SearchResult struct {
	Count  *int             `json:"@odata.count"`
	Facets map[string]any   `json:"@search.facets"`
	Value  []map[string]any `json:"value"`
	Next   map[string]any   `json:"@search.nextPageParameters"`
}

// Search runs a query with the query key.
func (c *IndexClient) Search(ctx context.Context, indexName string, q SearchRequest) (*SearchResult, error) {
	resp, err := c.client.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   c.docsPath(indexName, "/search"),
		Body:   q,
	}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var res SearchResult
	if err := resp.Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Suggest returns suggestions for text from a suggester, with the query key.
func (c *IndexClient) Suggest(ctx context.Context, indexName, suggester, text string) ([]map[string]any, error) {
	resp, err := c.client.Call(ctx, Request{
		Method: http.MethodPost,
		Path:   c.docsPath(indexName, "/suggest"),
		Body:   map[string]any{"search": text, "suggesterName": suggester},
	}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var lr listResponse
	if err := resp.Decode(&lr); err != nil {
		return nil, err
	}
	return lr.Value, nil
}

// Count returns the number of documents in the index. The service answers
// with a plain integer, sometimes preceded by a byte order mark.
func (c *IndexClient) Count(ctx context.Context, indexName string) (int, error) {
	resp, err := c.client.Get(ctx, c.docsPath(indexName, "/$count"), nil, http.StatusOK)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(resp.Text()))
	if err != nil {
		return 0, faults.Parsef(err, "GET %s: document count", resp.Path)
	}
	return n, nil
}

// Statistics returns documentCount and storageSize for the index.
func (c *IndexClient) Statistics(ctx context.Context, indexName string) (map[string]any, error) {
	resp, err := c.client.Get(ctx, c.itemPath(indexName)+"/stats", nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return resp.Map()
}

// Token is one token produced by the analyze endpoint.
type Token struct {
	Token       string `json:"token"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	Position    int    `json:"position"`
}

// Analyze runs text through one of the index's analyzers.
func (c *IndexClient) Analyze(ctx context.Context, indexName, analyzer, text string) ([]Token, error) {
	if analyzer == "" {
		return nil, faults.Validationf("analyze: analyzer name is required")
	}
	resp, err := c.client.Post(ctx, c.itemPath(indexName)+"/analyze",
		map[string]any{"text": text, "analyzer": analyzer}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var out struct {
		Tokens []Token `json:"tokens"`
	}
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out.Tokens, nil
}

// UpdateAnalyzers PUTs idx in place so new analyzers, tokenizers and filters
// take effect. The service takes the index offline while it does so, which
// the caller must accept with allowDowntime.
func (c *IndexClient) UpdateAnalyzers(ctx context.Context, idx *index.Index, allowDowntime bool) error {
	if !allowDowntime {
		return faults.Validationf("index %q: updating analyzers requires allowing index downtime", idx.Name)
	}
	if err := idx.Validate(); err != nil {
		return err
	}
	_, err := c.client.Put(ctx, c.itemPath(idx.Name),
		url.Values{"allowIndexDowntime": {"true"}}, idx, http.StatusOK, http.StatusNoContent)
	return err
}

// DocumentResult is the per-document outcome of an indexing batch.
type DocumentResult struct {
	Key          string `json:"key"`
	Status       bool   `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	StatusCode   int    `json:"statusCode"`
}

// Failed returns the results whose status is false.
func Failed(results []DocumentResult) []DocumentResult {
	var out []DocumentResult
	for _, r := range results {
		if !r.Status {
			out = append(out, r)
		}
	}
	return out
}

// UploadDocuments merges or uploads docs after checking them against the
// index fields. The caller's maps are not modified.
func (c *IndexClient) UploadDocuments(ctx context.Context, idx *index.Index, docs []map[string]any) ([]DocumentResult, error) {
	return c.indexDocuments(ctx, idx, ActionMergeOrUpload, docs)
}

// DeleteDocuments deletes docs by key.
func (c *IndexClient) DeleteDocuments(ctx context.Context, idx *index.Index, docs []map[string]any) ([]DocumentResult, error) {
	return c.indexDocuments(ctx, idx, ActionDelete, docs)
}

func (c *IndexClient) indexDocuments(ctx context.Context, idx *index.Index, action string, docs []map[string]any) ([]DocumentResult, error) {
	batch := make([]map[string]any, 0, len(docs))
	for i, doc := range docs {
		if err := idx.CheckDocument(doc); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		d := maps.Clone(doc)
		d["@search.action"] = action
		batch = append(batch, d)
	}
	// 207 means some documents failed; the caller inspects the results.
	resp, err := c.client.Post(ctx, c.docsPath(idx.Name, "/index"),
		map[string]any{"value": batch}, http.StatusOK, http.StatusMultiStatus)
	if err != nil {
		return nil, err
	}
	var out struct {
		Value []DocumentResult `json:"value"`
	}
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out.Value, nil
}
