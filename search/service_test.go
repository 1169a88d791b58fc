package search

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/azure-search-workbench/datasource"
	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/index"
	"github.com/rflorenc/azure-search-workbench/indexer"
	"github.com/rflorenc/azure-search-workbench/internal/searchtest"
	"github.com/rflorenc/azure-search-workbench/skills"
)

func newTestService(t *testing.T, opts ...ClientOption) (*Service, *searchtest.Server) {
	t.Helper()
	fake := searchtest.New(t)
	svc, err := NewService(Connection{
		URL:      fake.URL,
		QueryKey: searchtest.QueryKey,
		AdminKey: searchtest.AdminKey,
	}, append([]ClientOption{WithHTTPClient(fake.Client())}, opts...)...)
	require.NoError(t, err)
	return svc, fake
}

func docsIndex(t *testing.T, name string) *index.Index {
	t.Helper()
	id, err := index.NewStringField("id", index.Key(true))
	require.NoError(t, err)
	title, err := index.NewStringField("title")
	require.NoError(t, err)
	rating, err := index.NewDoubleField("rating")
	require.NoError(t, err)
	sg, err := index.NewSuggester("sg", "title")
	require.NoError(t, err)
	idx, err := index.New(name, []*index.Field{id, title, rating}, index.WithSuggesters(sg))
	require.NoError(t, err)
	return idx
}

func TestNewService_RequiresConfig(t *testing.T) {
	_, err := NewService(Connection{URL: "https://svc.search.windows.net"})
	assert.True(t, faults.IsConfig(err))
}

func TestService_ResourceLifecycle(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	ds, err := datasource.New(searchtest.RandomName("ds"), "DefaultEndpointsProtocol=https;AccountName=a", "docs")
	require.NoError(t, err)
	idx := docsIndex(t, searchtest.RandomName("idx"))
	split, err := skills.NewSplitSkill()
	require.NoError(t, err)
	ss, err := skills.NewSkillset(searchtest.RandomName("ss"), []*skills.Skill{split.Skill})
	require.NoError(t, err)
	ixr, err := indexer.New(searchtest.RandomName("ixr"), ds.Name, idx.Name, indexer.WithSkillset(ss.Name))
	require.NoError(t, err)

	require.NoError(t, svc.DataSources.Create(ctx, ds))
	require.NoError(t, svc.Indexes.Create(ctx, idx))
	require.NoError(t, svc.Skillsets.Create(ctx, ss))
	require.NoError(t, svc.Indexers.Create(ctx, ixr))

	gotDS, err := svc.DataSources.Get(ctx, ds.Name)
	require.NoError(t, err)
	assert.Empty(t, gotDS.ConnectionString, "service redacts credentials")
	assert.Equal(t, "docs", gotDS.Container.Name)

	gotIdx, err := svc.Indexes.Verify(ctx, idx.Name)
	require.NoError(t, err)
	assert.Equal(t, "id", gotIdx.KeyField().Name)

	gotSS, err := svc.Skillsets.Get(ctx, ss.Name)
	require.NoError(t, err)
	assert.Len(t, gotSS.Skills, 1)

	gotIxr, err := svc.Indexers.Get(ctx, ixr.Name)
	require.NoError(t, err)
	assert.Equal(t, ss.Name, gotIxr.SkillsetName)

	names, err := svc.Indexes.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{idx.Name}, names)
	assert.Equal(t, "name", fake.LastRequest().Query.Get("$select"))

	all, err := svc.Indexers.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	ok, err := svc.Indexes.Exists(ctx, idx.Name)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Indexers.Delete(ctx, ixr.Name))
	_, err = svc.Indexers.Get(ctx, ixr.Name)
	assert.True(t, faults.IsNotFound(err))

	existed, err := svc.Indexers.DeleteIfExists(ctx, ixr.Name)
	require.NoError(t, err)
	assert.False(t, existed)

	err = svc.Indexers.Delete(ctx, ixr.Name)
	assert.True(t, faults.IsNotFound(err))

	ok, err = svc.Indexers.Exists(ctx, ixr.Name)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollection_CreateConflictIsRemote(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	idx := docsIndex(t, "docs")

	require.NoError(t, svc.Indexes.Create(ctx, idx))
	err := svc.Indexes.Create(ctx, idx)
	assert.True(t, faults.IsRemote(err))
	assert.Equal(t, http.StatusConflict, faults.StatusCode(err))
}

func TestCollection_CreateValidatesFirst(t *testing.T) {
	svc, fake := newTestService(t)
	idx := docsIndex(t, "docs")
	idx.Name = ""

	err := svc.Indexes.Create(context.Background(), idx)
	assert.True(t, faults.IsValidation(err))
	assert.Empty(t, fake.Requests())
}

func TestCollection_UpdateDeletesThenCreates(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc, fake := newTestService(t, WithLogger(logger))
	ctx := context.Background()
	idx := docsIndex(t, "docs")

	// nothing to delete yet: logged, not fatal
	require.NoError(t, svc.Indexes.Update(ctx, idx))
	assert.Contains(t, logs.String(), "delete before update failed")

	require.NoError(t, svc.Indexes.Update(ctx, idx))
	reqs := fake.Requests()
	require.Len(t, reqs, 4)
	var methods []string
	for _, r := range reqs {
		methods = append(methods, r.Method)
	}
	assert.Equal(t, []string{"DELETE", "POST", "DELETE", "POST"}, methods)
}

func TestIndexClient_Documents(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	idx := docsIndex(t, "docs")
	require.NoError(t, svc.Indexes.Create(ctx, idx))

	docs := []map[string]any{
		{"id": "1", "title": "Azure search basics", "rating": 4.5},
		{"id": "2", "title": "Cooking with Go", "rating": 3},
	}
	res, err := svc.Indexes.UploadDocuments(ctx, idx, docs)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Empty(t, Failed(res))
	assert.NotContains(t, docs[0], "@search.action", "caller documents are not modified")

	n, err := svc.Indexes.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats, err := svc.Indexes.Statistics(ctx, "docs")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats["documentCount"])

	found, err := svc.Indexes.Search(ctx, "docs", SearchRequest{Search: "azure", Count: true})
	require.NoError(t, err)
	require.NotNil(t, found.Count)
	assert.Equal(t, 1, *found.Count)
	assert.Equal(t, "1", found.Value[0]["id"])
	last := fake.LastRequest()
	assert.Equal(t, searchtest.QueryKey, last.Header.Get("api-key"))
	assert.JSONEq(t, `{"search":"azure","queryType":"full","searchMode":"all","count":true}`, string(last.Body))

	sugg, err := svc.Indexes.Suggest(ctx, "docs", "sg", "cook")
	require.NoError(t, err)
	require.Len(t, sugg, 1)
	assert.Equal(t, "Cooking with Go", sugg[0]["@search.text"])

	_, err = svc.Indexes.DeleteDocuments(ctx, idx, []map[string]any{{"id": "1"}})
	require.NoError(t, err)
	assert.Len(t, fake.Documents("docs"), 1)
}

func TestIndexClient_UploadChecksDocuments(t *testing.T) {
	svc, fake := newTestService(t)
	idx := docsIndex(t, "docs")

	_, err := svc.Indexes.UploadDocuments(context.Background(), idx, []map[string]any{{"id": "1", "rating": "high"}})
	assert.True(t, faults.IsValidation(err))
	_, err = svc.Indexes.UploadDocuments(context.Background(), idx, []map[string]any{{"title": "no key"}})
	assert.True(t, faults.IsValidation(err))
	assert.Empty(t, fake.Requests())
}

func TestIndexClient_Analyze(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Indexes.Create(ctx, docsIndex(t, "docs")))

	tokens, err := svc.Indexes.Analyze(ctx, "docs", "standard.lucene", "Hello  World")
	require.NoError(t, err)
	assert.Equal(t, []Token{
		{Token: "hello", StartOffset: 0, EndOffset: 5, Position: 0},
		{Token: "world", StartOffset: 7, EndOffset: 12, Position: 1},
	}, tokens)

	_, err = svc.Indexes.Analyze(ctx, "docs", "", "x")
	assert.True(t, faults.IsValidation(err))
}

func TestIndexClient_UpdateAnalyzers(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	idx := docsIndex(t, "docs")
	require.NoError(t, svc.Indexes.Create(ctx, idx))

	err := svc.Indexes.UpdateAnalyzers(ctx, idx, false)
	assert.True(t, faults.IsValidation(err))
	assert.Len(t, fake.Requests(), 1)

	require.NoError(t, svc.Indexes.UpdateAnalyzers(ctx, idx, true))
	last := fake.LastRequest()
	assert.Equal(t, http.MethodPut, last.Method)
	assert.Equal(t, "/indexes/docs", last.Path)
	assert.Equal(t, "true", last.Query.Get("allowIndexDowntime"))
}

func TestIndexerClient_RunResetStatus(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	fake.Seed("indexers", map[string]any{"name": "nightly", "dataSourceName": "ds", "targetIndexName": "docs"})

	raw, err := svc.Indexers.Status(ctx, "nightly")
	require.NoError(t, err)
	assert.Equal(t, "running", raw["status"])

	require.NoError(t, svc.Indexers.Run(ctx, "nightly"))
	st, err := svc.Indexers.WaitIdle(ctx, "nightly", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, indexer.ResultSuccess, st.LastResult.Status)
	assert.Len(t, st.ExecutionHistory, 1)

	require.NoError(t, svc.Indexers.Reset(ctx, "nightly"))
	raw, err = svc.Indexers.Status(ctx, "nightly")
	require.NoError(t, err)
	parsed, err := indexer.ParseStatus(raw)
	require.NoError(t, err)
	assert.Equal(t, indexer.ResultReset, parsed.LastResult.Status)

	assert.True(t, faults.IsNotFound(svc.Indexers.Run(ctx, "missing")))
	assert.True(t, faults.IsNotFound(svc.Indexers.Reset(ctx, "missing")))
}

func TestIndexerClient_RunAndWaitSkipsPreviousResult(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	fake.Seed("indexers", map[string]any{"name": "nightly", "dataSourceName": "ds", "targetIndexName": "docs"})
	fake.SetIndexerStatus("nightly", map[string]any{
		"status": "running",
		"lastResult": map[string]any{
			"status":         "success",
			"startTime":      "2020-01-01T00:00:00Z",
			"endTime":        "2020-01-01T00:05:00Z",
			"itemsProcessed": 99,
		},
		"executionHistory": []any{},
	})
	fake.LagIndexerRuns("nightly", 3)

	st, err := svc.Indexers.RunAndWait(ctx, "nightly", time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, indexer.ResultSuccess, st.LastResult.Status)
	assert.Equal(t, 0, st.LastResult.ItemsProcessed)
	require.NotNil(t, st.LastResult.StartTime)
	assert.True(t, st.LastResult.StartTime.After(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)))

	reads := 0
	for _, r := range fake.Requests() {
		if r.Method == http.MethodGet && r.Path == "/indexers/nightly/status" {
			reads++
		}
	}
	// one read before the run, three stale, one in progress, one finished
	assert.Equal(t, 6, reads)
}

func TestIndexerClient_WaitRunHonorsContext(t *testing.T) {
	svc, fake := newTestService(t)
	fake.Seed("indexers", map[string]any{"name": "slow"})
	prev := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	fake.SetIndexerStatus("slow", map[string]any{
		"status":     "running",
		"lastResult": map[string]any{"status": "success", "startTime": "2020-01-01T00:00:00Z"},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	st, err := svc.Indexers.WaitRun(ctx, "slow", &prev, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, st)
	assert.Equal(t, indexer.ResultSuccess, st.LastResult.Status)
}

func TestIndexerClient_RunUnexpectedStatus(t *testing.T) {
	svc, fake := newTestService(t)
	fake.Seed("indexers", map[string]any{"name": "nightly"})
	fake.Fail(http.MethodPost, "/indexers/nightly/run", http.StatusOK)

	err := svc.Indexers.Run(context.Background(), "nightly")
	assert.True(t, faults.IsRemote(err), "only 202 counts as success")
}

func TestIndexerClient_WaitIdleHonorsContext(t *testing.T) {
	svc, fake := newTestService(t)
	fake.Seed("indexers", map[string]any{"name": "stuck"})
	fake.SetIndexerStatus("stuck", map[string]any{
		"status":     "running",
		"lastResult": map[string]any{"status": "inProgress", "itemsProcessed": 1},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Indexers.WaitIdle(ctx, "stuck", 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestService_PingAndRaw(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	fake.Seed("skillsets", map[string]any{"name": "a", "skills": []any{}})
	fake.Seed("skillsets", map[string]any{"name": "b", "skills": []any{}})

	stats, err := svc.Ping(ctx)
	require.NoError(t, err)
	assert.Contains(t, stats, "counters")

	rt, err := LookupResourceType("ss")
	require.NoError(t, err)
	raw, err := svc.Raw(ctx, rt, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", raw["name"])

	list, err := svc.RawList(ctx, rt)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	names, err := svc.RawNames(ctx, rt)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	existed, err := svc.RawDelete(ctx, rt, "a", false)
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = svc.RawDelete(ctx, rt, "a", true)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestResourceTypes(t *testing.T) {
	assert.Equal(t, []string{"datasource", "index", "skillset", "indexer"}, KindNames())

	var order []string
	for _, rt := range DeleteOrder() {
		order = append(order, rt.Path)
	}
	assert.Equal(t, []string{"indexers", "skillsets", "indexes", "datasources"}, order)
	assert.Equal(t, "datasources", ResourceTypes[0].Path, "DeleteOrder must not reorder the registry")

	for _, alias := range []string{"index", "Indexes", "idx", " indices "} {
		rt, err := LookupResourceType(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, "indexes", rt.Path)
	}
	_, err := LookupResourceType("synonymmap")
	assert.True(t, faults.IsValidation(err))
}
