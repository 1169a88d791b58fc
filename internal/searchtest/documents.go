package searchtest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// indexFor returns the stored index named in the URL and its key field.
// Must be called with s.mu held.
func (s *Server) indexFor(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	name := chi.URLParam(r, "name")
	idx, ok := s.store["indexes"][name]
	if !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", "no index named "+name)
		return "", "", false
	}
	fields, _ := idx["fields"].([]any)
	for _, f := range fields {
		fm, _ := f.(map[string]any)
		if key, _ := fm["key"].(bool); key {
			n, _ := fm["name"].(string)
			return name, n, true
		}
	}
	return name, "", true
}

func (s *Server) indexStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _, ok := s.indexFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documentCount": len(s.docs[name]), "storageSize": 0})
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _, ok := s.indexFor(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("\ufeff" + strconv.Itoa(len(s.docs[name]))))
}

// analyze splits on whitespace and lower-cases, which is close enough to the
// standard analyzer for tests.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Analyzer string `json:"analyzer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Analyzer == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequestBody", "text and analyzer are required")
		return
	}
	s.mu.Lock()
	_, _, ok := s.indexFor(w, r)
	s.mu.Unlock()
	if !ok {
		return
	}
	tokens := []map[string]any{}
	pos, offset := 0, 0
	for _, word := range strings.Fields(req.Text) {
		start := strings.Index(req.Text[offset:], word) + offset
		tokens = append(tokens, map[string]any{
			"token":       strings.ToLower(word),
			"startOffset": start,
			"endOffset":   start + len(word),
			"position":    pos,
		})
		offset = start + len(word)
		pos++
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

func (s *Server) indexDocs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value []map[string]any `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequestBody", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, keyField, ok := s.indexFor(w, r)
	if !ok {
		return
	}
	results := []map[string]any{}
	status := http.StatusOK
	for _, doc := range req.Value {
		key, _ := doc[keyField].(string)
		action, _ := doc["@search.action"].(string)
		res := map[string]any{"key": key, "status": true, "errorMessage": nil, "statusCode": http.StatusOK}
		switch {
		case key == "":
			res["status"], res["statusCode"], res["errorMessage"] = false, http.StatusBadRequest, "missing key"
		case action == "delete":
			delete(s.docs[name], key)
		case action == "upload" || action == "mergeOrUpload" || action == "merge":
			stored := s.docs[name][key]
			if stored == nil {
				if action == "merge" {
					res["status"], res["statusCode"], res["errorMessage"] = false, http.StatusNotFound, "document not found"
					break
				}
				stored = map[string]any{}
				res["statusCode"] = http.StatusCreated
			}
			if action == "upload" {
				stored = map[string]any{}
			}
			for k, v := range doc {
				if k != "@search.action" {
					stored[k] = v
				}
			}
			s.docs[name][key] = stored
		default:
			res["status"], res["statusCode"], res["errorMessage"] = false, http.StatusBadRequest, "unknown action "+action
		}
		if res["status"] == false {
			status = http.StatusMultiStatus
		}
		results = append(results, res)
	}
	writeJSON(w, status, map[string]any{"value": results})
}

// matches reports whether any string value of doc contains text. An empty
// text or "*" matches everything.
func matches(doc map[string]any, text string) bool {
	if text == "" || text == "*" {
		return true
	}
	text = strings.ToLower(text)
	for _, v := range doc {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), text) {
			return true
		}
	}
	return false
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequestBody", err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _, ok := s.indexFor(w, r)
	if !ok {
		return
	}
	text, _ := req["search"].(string)
	value := []map[string]any{}
	for _, key := range sortedKeys(s.docs[name]) {
		doc := s.docs[name][key]
		if !matches(doc, text) {
			continue
		}
		hit := map[string]any{"@search.score": 1.0}
		for k, v := range doc {
			hit[k] = v
		}
		value = append(value, hit)
	}
	out := map[string]any{}
	if c, _ := req["count"].(bool); c {
		out["@odata.count"] = len(value)
	}
	if top, ok := req["top"].(float64); ok && int(top) < len(value) {
		value = value[:int(top)]
	}
	out["value"] = value
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Search        string `json:"search"`
		SuggesterName string `json:"suggesterName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SuggesterName == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequestBody", "search and suggesterName are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name, keyField, ok := s.indexFor(w, r)
	if !ok {
		return
	}
	value := []map[string]any{}
	for _, key := range sortedKeys(s.docs[name]) {
		doc := s.docs[name][key]
		for _, k := range sortedKeys(doc) {
			str, ok := doc[k].(string)
			if k == keyField || !ok || !strings.Contains(strings.ToLower(str), strings.ToLower(req.Search)) {
				continue
			}
			value = append(value, map[string]any{"@search.text": str, keyField: key})
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": value})
}

func (s *Server) indexerFor(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if _, ok := s.store["indexers"][name]; !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", "no indexer named "+name)
		return "", false
	}
	return name, true
}

// runIndexer marks a run in progress. The next status read reports it and
// completes it, so callers polling for completion see one busy poll.
func (s *Server) runIndexer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.indexerFor(w, r)
	if !ok {
		return
	}
	st := s.statusOf(name)
	if last, _ := st["lastResult"].(map[string]any); last != nil && last["status"] == "inProgress" {
		writeError(w, http.StatusConflict, "IndexerAlreadyRunning", "indexer "+name+" is already running")
		return
	}
	delete(s.pinned, name)
	if s.lag[name] > 0 {
		s.stale[name], _ = json.Marshal(st)
	}
	st["lastResult"] = map[string]any{
		"status":         "inProgress",
		"startTime":      time.Now().UTC().Format(time.RFC3339Nano),
		"itemsProcessed": 0,
		"itemsFailed":    0,
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) resetIndexer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.indexerFor(w, r)
	if !ok {
		return
	}
	delete(s.pinned, name)
	st := s.statusOf(name)
	st["lastResult"] = map[string]any{"status": "reset", "itemsProcessed": 0, "itemsFailed": 0}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) indexerStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.indexerFor(w, r)
	if !ok {
		return
	}
	if body := s.stale[name]; body != nil {
		if s.reads[name]++; s.reads[name] >= s.lag[name] {
			delete(s.stale, name)
			delete(s.reads, name)
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}
	st := s.statusOf(name)
	body, _ := json.Marshal(st)
	if last, _ := st["lastResult"].(map[string]any); !s.pinned[name] && last != nil && last["status"] == "inProgress" {
		done := map[string]any{}
		for k, v := range last {
			done[k] = v
		}
		done["status"] = "success"
		done["endTime"] = time.Now().UTC().Format(time.RFC3339Nano)
		st["lastResult"] = done
		history, _ := st["executionHistory"].([]any)
		st["executionHistory"] = append([]any{done}, history...)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// statusOf must be called with s.mu held.
func (s *Server) statusOf(name string) map[string]any {
	st, ok := s.status[name]
	if !ok {
		st = map[string]any{
			"status":           "running",
			"lastResult":       nil,
			"executionHistory": []any{},
			"limits":           map[string]any{"maxRunTime": "PT2H"},
		}
		s.status[name] = st
	}
	return st
}
