// Package searchtest runs an in-memory imitation of the search service REST
// API for tests. It keeps resources and documents in maps, checks api-key and
// api-version on every call and records each request.
package searchtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Keys accepted by the fake service.
const (
	AdminKey = "test-admin-key"
	QueryKey = "test-query-key"
)

// Collections served by the fake service.
var Collections = []string{"datasources", "indexes", "skillsets", "indexers"}

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is the fake service.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	store     map[string]map[string]map[string]any // collection -> name -> payload
	docs      map[string]map[string]map[string]any // index -> key -> document
	status    map[string]map[string]any            // indexer -> status payload
	pinned    map[string]bool                      // indexer status set by the test
	lag       map[string]int                       // indexer -> stale status reads after a run
	stale     map[string][]byte                    // indexer -> status from before the run
	reads     map[string]int                       // indexer -> stale reads served
	failures  map[string]int                       // "METHOD /path" -> status
	requests  []Request
	etagCount int
}

// New starts a fake service that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		store:    make(map[string]map[string]map[string]any),
		docs:     make(map[string]map[string]map[string]any),
		status:   make(map[string]map[string]any),
		pinned:   make(map[string]bool),
		lag:      make(map[string]int),
		stale:    make(map[string][]byte),
		reads:    make(map[string]int),
		failures: make(map[string]int),
	}
	for _, c := range Collections {
		s.store[c] = make(map[string]map[string]any)
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// RandomName returns prefix followed by a short random suffix, lower-cased
// as resource names must be.
func RandomName(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.authenticate)
	r.Use(s.inject)

	r.Get("/servicestats", s.serviceStats)

	r.Get("/{collection}", s.list)
	r.Post("/{collection}", s.create)
	r.Get("/{collection}/{name}", s.get)
	r.Put("/{collection}/{name}", s.put)
	r.Delete("/{collection}/{name}", s.remove)

	r.Get("/indexes/{name}/stats", s.indexStats)
	r.Post("/indexes/{name}/analyze", s.analyze)
	r.Get("/indexes/{name}/docs/$count", s.count)
	r.Post("/indexes/{name}/docs/index", s.indexDocs)
	r.Post("/indexes/{name}/docs/search", s.search)
	r.Post("/indexes/{name}/docs/suggest", s.suggest)

	r.Post("/indexers/{name}/run", s.runIndexer)
	r.Post("/indexers/{name}/reset", s.resetIndexer)
	r.Get("/indexers/{name}/status", s.indexerStatus)
	return r
}

// Requests returns a copy of the requests seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// Fail makes every later call to method and path answer status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Seed stores payload in collection as if it had been created.
func (s *Server) Seed(collection string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(collection, payload)
}

// Resource returns the stored payload of a resource.
func (s *Server) Resource(collection, name string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.store[collection][name]
	return p, ok
}

// Names returns the sorted names stored in collection.
func (s *Server) Names(collection string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.store[collection])
}

// Documents returns the documents of an index keyed by document key.
func (s *Server) Documents(index string) map[string]map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]map[string]any, len(s.docs[index]))
	for k, v := range s.docs[index] {
		out[k] = v
	}
	return out
}

// SetIndexerStatus replaces the status payload returned for an indexer. It
// is returned unchanged until the indexer is run or reset again.
func (s *Server) SetIndexerStatus(name string, status map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[name] = status
	s.pinned[name] = true
}

// LagIndexerRuns makes the next polls status reads after each run of name
// return the status from before the run, the way the real service does
// while it schedules a run.
func (s *Server) LagIndexerRuns(name string, polls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lag[name] = polls
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// authenticate accepts the query key only on the query endpoints.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api-version") == "" {
			writeError(w, http.StatusBadRequest, "MissingApiVersionParameter", "api-version is required")
			return
		}
		switch r.Header.Get("api-key") {
		case AdminKey:
		case QueryKey:
			if !isQueryPath(r) {
				writeError(w, http.StatusForbidden, "Forbidden", "query key cannot be used for this operation")
				return
			}
		default:
			writeError(w, http.StatusForbidden, "Forbidden", "invalid api-key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isQueryPath(r *http.Request) bool {
	return r.Method == http.MethodPost &&
		(strings.HasSuffix(r.URL.Path, "/docs/search") || strings.HasSuffix(r.URL.Path, "/docs/suggest"))
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status, ok := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			writeError(w, status, "Injected", "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	c := chi.URLParam(r, "collection")
	if _, ok := s.store[c]; !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", "unknown collection "+c)
		return "", false
	}
	return c, true
}

// save must be called with s.mu held.
func (s *Server) save(collection string, payload map[string]any) map[string]any {
	s.etagCount++
	stored := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		stored[k] = v
	}
	stored["@odata.etag"] = fmt.Sprintf(`"0x%04X"`, s.etagCount)
	name, _ := stored["name"].(string)
	s.store[collection][name] = stored
	if collection == "indexes" {
		if _, ok := s.docs[name]; !ok {
			s.docs[name] = make(map[string]map[string]any)
		}
	}
	return stored
}

func (s *Server) serviceStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	counters := map[string]any{}
	for c, items := range s.store {
		counters[c+"Count"] = map[string]any{"usage": len(items), "quota": 50}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"counters": counters, "limits": map[string]any{}})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	onlyNames := r.URL.Query().Get("$select") == "name"
	value := []map[string]any{}
	for _, name := range sortedKeys(s.store[c]) {
		if onlyNames {
			value = append(value, map[string]any{"name": name})
			continue
		}
		value = append(value, redact(c, s.store[c][name]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": value})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	payload, ok := readObject(w, r)
	if !ok {
		return
	}
	name, _ := payload["name"].(string)
	if name == "" {
		writeError(w, http.StatusBadRequest, "InvalidName", "name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.store[c][name]; exists {
		writeError(w, http.StatusConflict, "ResourceNameAlreadyInUse", "resource "+name+" already exists")
		return
	}
	writeJSON(w, http.StatusCreated, redact(c, s.save(c, payload)))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.store[c][name]
	if !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", "no "+c+" named "+name)
		return
	}
	writeJSON(w, http.StatusOK, redact(c, p))
}

func (s *Server) put(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	payload, ok := readObject(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	if n, _ := payload["name"].(string); n != name {
		writeError(w, http.StatusBadRequest, "InvalidName", "name in body does not match the URL")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.store[c][name]
	stored := s.save(c, payload)
	if existed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, redact(c, stored))
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	c, ok := s.collection(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store[c][name]; !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", "no "+c+" named "+name)
		return
	}
	delete(s.store[c], name)
	if c == "indexes" {
		delete(s.docs, name)
	}
	if c == "indexers" {
		delete(s.status, name)
	}
	w.WriteHeader(http.StatusNoContent)
}

// redact hides data source credentials the way the service does.
func redact(collection string, p map[string]any) map[string]any {
	if collection != "datasources" {
		return p
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	if _, ok := out["credentials"]; ok {
		out["credentials"] = map[string]any{"connectionString": nil}
	}
	return out
}

func readObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		writeError(w, http.StatusBadRequest, "InvalidRequestBody", "body must be a JSON object")
		return nil, false
	}
	return payload, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]any{"code": code, "message": message}})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
