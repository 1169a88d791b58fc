package index

import (
	"fmt"
	"strings"

	"github.com/rflorenc/azure-search-workbench/analysis"
	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// DefaultSuggesterMode is the only search mode the service supports.
const DefaultSuggesterMode = "analyzingInfixMatching"

// Index is a search index definition.
type Index struct {
	Name                  string
	Fields                []*Field
	Suggesters            []*Suggester
	Analyzers             []*analysis.Analyzer
	Tokenizers            []*analysis.Component
	TokenFilters          []*analysis.Component
	CharFilters           []*analysis.Component
	ScoringProfiles       []*ScoringProfile
	DefaultScoringProfile string
	CorsOptions           *CorsOptions
	Params                wire.Params
}

type Option func(*Index)

func WithSuggesters(s ...*Suggester) Option {
	return func(idx *Index) { idx.Suggesters = append(idx.Suggesters, s...) }
}

func WithAnalyzers(a ...*analysis.Analyzer) Option {
	return func(idx *Index) { idx.Analyzers = append(idx.Analyzers, a...) }
}

// WithComponents attaches tokenizers, token filters and char filters, sorted
// by their Kind.
func WithComponents(cs ...*analysis.Component) Option {
	return func(idx *Index) {
		for _, c := range cs {
			switch c.Kind {
			case analysis.KindTokenizer:
				idx.Tokenizers = append(idx.Tokenizers, c)
			case analysis.KindTokenFilter:
				idx.TokenFilters = append(idx.TokenFilters, c)
			case analysis.KindCharFilter:
				idx.CharFilters = append(idx.CharFilters, c)
			}
		}
	}
}

func WithScoringProfiles(sp ...*ScoringProfile) Option {
	return func(idx *Index) { idx.ScoringProfiles = append(idx.ScoringProfiles, sp...) }
}

func WithDefaultScoringProfile(name string) Option {
	return func(idx *Index) { idx.DefaultScoringProfile = name }
}

func WithCORS(c *CorsOptions) Option {
	return func(idx *Index) { idx.CorsOptions = c }
}

func WithParams(p wire.Params) Option {
	return func(idx *Index) { idx.Params = p }
}

// New builds an index and points every field back at it.
func New(name string, fields []*Field, opts ...Option) (*Index, error) {
	idx := &Index{Name: name, Fields: fields}
	for _, opt := range opts {
		opt(idx)
	}
	idx.adopt()
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) adopt() {
	for _, f := range idx.Fields {
		if f != nil {
			f.IndexName = idx.Name
		}
	}
}

// ResourceName implements search.Resource.
func (idx *Index) ResourceName() string { return idx.Name }

func (idx *Index) Validate() error {
	if idx.Name == "" {
		return faults.Validationf("index: name is required")
	}
	seen := make(map[string]bool, len(idx.Fields))
	keys := 0
	for i, f := range idx.Fields {
		if f == nil {
			return faults.Validationf("index %q: field %d is nil", idx.Name, i)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("index %q: %w", idx.Name, err)
		}
		if seen[f.Name] {
			return faults.Validationf("index %q: duplicate field %q", idx.Name, f.Name)
		}
		seen[f.Name] = true
		if f.IsKey() {
			keys++
		}
	}
	if keys > 1 {
		return faults.Validationf("index %q: only one key field is allowed, got %d", idx.Name, keys)
	}
	for _, s := range idx.Suggesters {
		for _, src := range s.SourceFields {
			if len(idx.Fields) > 0 && !seen[src] {
				return faults.Validationf("index %q: suggester %q references unknown field %q", idx.Name, s.Name, src)
			}
		}
	}
	if idx.DefaultScoringProfile != "" && idx.ScoringProfile(idx.DefaultScoringProfile) == nil {
		return faults.Validationf("index %q: default scoring profile %q is not defined", idx.Name, idx.DefaultScoringProfile)
	}
	return nil
}

// Field returns the field called name, or nil.
func (idx *Index) Field(name string) *Field {
	for _, f := range idx.Fields {
		if f != nil && f.Name == name {
			return f
		}
	}
	return nil
}

// KeyField returns the document key field, or nil.
func (idx *Index) KeyField() *Field {
	for _, f := range idx.Fields {
		if f != nil && f.IsKey() {
			return f
		}
	}
	return nil
}

// ScoringProfile returns the profile called name, or nil.
func (idx *Index) ScoringProfile(name string) *ScoringProfile {
	for _, sp := range idx.ScoringProfiles {
		if sp.Name == name {
			return sp
		}
	}
	return nil
}

func (idx *Index) ToDict() map[string]any {
	base := map[string]any{
		"name":                  idx.Name,
		"fields":                wire.Dicts(idx.Fields),
		"suggesters":            wire.Dicts(idx.Suggesters),
		"analyzers":             wire.Dicts(idx.Analyzers),
		"tokenizers":            wire.Dicts(idx.Tokenizers),
		"tokenFilters":          wire.Dicts(idx.TokenFilters),
		"charFilters":           wire.Dicts(idx.CharFilters),
		"scoringProfiles":       wire.Dicts(idx.ScoringProfiles),
		"defaultScoringProfile": idx.DefaultScoringProfile,
	}
	if idx.CorsOptions != nil {
		base["corsOptions"] = idx.CorsOptions.ToDict()
	}
	return wire.Finish(base, idx.Params)
}

func (idx *Index) String() string {
	names := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		if f == nil {
			continue
		}
		names = append(names, f.String())
	}
	return fmt.Sprintf("<Index: %s fields=[%s]>", idx.Name, strings.Join(names, ", "))
}

// Load rebuilds an index, converting nested collections to their typed forms.
func Load(data any) (*Index, error) {
	f, err := wire.Load("index", data)
	if err != nil {
		return nil, err
	}
	idx := &Index{
		Name:                  f.String("name"),
		DefaultScoringProfile: f.String("default_scoring_profile"),
	}
	for _, raw := range f.Maps("fields") {
		fd, err := LoadField(raw)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", idx.Name, err)
		}
		idx.Fields = append(idx.Fields, fd)
	}
	for _, raw := range f.Maps("suggesters") {
		s, err := LoadSuggester(raw)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", idx.Name, err)
		}
		idx.Suggesters = append(idx.Suggesters, s)
	}
	for _, raw := range f.Maps("analyzers") {
		a, err := analysis.LoadAnalyzer(raw)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", idx.Name, err)
		}
		idx.Analyzers = append(idx.Analyzers, a)
	}
	comps := []struct {
		key  string
		load func(any) (*analysis.Component, error)
		dst  *[]*analysis.Component
	}{
		{"tokenizers", analysis.LoadTokenizer, &idx.Tokenizers},
		{"token_filters", analysis.LoadTokenFilter, &idx.TokenFilters},
		{"char_filters", analysis.LoadCharFilter, &idx.CharFilters},
	}
	for _, c := range comps {
		for _, raw := range f.Maps(c.key) {
			comp, err := c.load(raw)
			if err != nil {
				return nil, fmt.Errorf("index %q: %w", idx.Name, err)
			}
			*c.dst = append(*c.dst, comp)
		}
	}
	for _, raw := range f.Maps("scoring_profiles") {
		sp, err := LoadScoringProfile(raw)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", idx.Name, err)
		}
		idx.ScoringProfiles = append(idx.ScoringProfiles, sp)
	}
	if cors := f.Map("cors_options"); cors != nil {
		c, err := LoadCorsOptions(cors)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", idx.Name, err)
		}
		idx.CorsOptions = c
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	idx.Params = f.Rest()
	idx.adopt()
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Suggester enables autocomplete over a set of source fields.
type Suggester struct {
	Name         string
	SourceFields []string
	SearchMode   string
	Params       wire.Params
}

func NewSuggester(name string, sourceFields ...string) (*Suggester, error) {
	s := &Suggester{Name: name, SourceFields: sourceFields, SearchMode: DefaultSuggesterMode}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Suggester) Validate() error {
	if s.Name == "" {
		return faults.Validationf("suggester: name is required")
	}
	if len(s.SourceFields) == 0 {
		return faults.Validationf("suggester %q: at least one source field is required", s.Name)
	}
	return nil
}

func (s *Suggester) ToDict() map[string]any {
	mode := s.SearchMode
	if mode == "" {
		mode = DefaultSuggesterMode
	}
	return wire.Finish(map[string]any{
		"name":         s.Name,
		"sourceFields": s.SourceFields,
		"searchMode":   mode,
	}, s.Params)
}

func LoadSuggester(data any) (*Suggester, error) {
	f, err := wire.Load("suggester", data)
	if err != nil {
		return nil, err
	}
	s := &Suggester{
		Name:         f.String("name"),
		SourceFields: f.Strings("source_fields"),
		SearchMode:   f.String("search_mode"),
	}
	if s.SearchMode == "" {
		s.SearchMode = DefaultSuggesterMode
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	s.Params = f.Rest()
	return s, s.Validate()
}

// CorsOptions controls cross-origin access to the query endpoints.
type CorsOptions struct {
	AllowedOrigins  []string
	MaxAgeInSeconds *int
}

func (c *CorsOptions) ToDict() map[string]any {
	base := map[string]any{"allowedOrigins": c.AllowedOrigins}
	if c.MaxAgeInSeconds != nil {
		base["maxAgeInSeconds"] = *c.MaxAgeInSeconds
	}
	return wire.Finish(base, nil)
}

func LoadCorsOptions(data any) (*CorsOptions, error) {
	f, err := wire.Load("cors options", data)
	if err != nil {
		return nil, err
	}
	c := &CorsOptions{
		AllowedOrigins:  f.Strings("allowed_origins"),
		MaxAgeInSeconds: f.IntPtr("max_age_in_seconds"),
	}
	return c, f.Err()
}
