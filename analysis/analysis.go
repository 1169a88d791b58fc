// Package analysis models the text-analysis components an index can declare:
// analyzers, tokenizers, token filters and char filters.
package analysis

import (
	"fmt"
	"strings"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// CustomAnalyzerType is the @odata.type of a user-assembled analyzer.
const CustomAnalyzerType = "#Microsoft.Azure.Search.CustomAnalyzer"

// Analyzer is either a custom analyzer (tokenizer plus filter chain) or a
// configurable predefined analyzer whose Options are sent as top-level
// attributes.
type Analyzer struct {
	Name         string
	Type         string
	Tokenizer    string
	TokenFilters []string
	CharFilters  []string
	Options      wire.Params
}

type AnalyzerOption func(*Analyzer)

func WithTokenFilters(names ...string) AnalyzerOption {
	return func(a *Analyzer) { a.TokenFilters = append(a.TokenFilters, names...) }
}

func WithCharFilters(names ...string) AnalyzerOption {
	return func(a *Analyzer) { a.CharFilters = append(a.CharFilters, names...) }
}

func WithOptions(p wire.Params) AnalyzerOption {
	return func(a *Analyzer) { a.Options = p }
}

// NewCustomAnalyzer assembles an analyzer from a tokenizer and optional
// filters, each referenced by name.
func NewCustomAnalyzer(name, tokenizer string, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{Name: name, Type: CustomAnalyzerType, Tokenizer: tokenizer}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// NewPredefinedAnalyzer declares a configurable predefined analyzer (pattern,
// standard, stop) under a new name.
func NewPredefinedAnalyzer(name, kind string, options wire.Params) (*Analyzer, error) {
	typ, err := resolve("analyzer", predefinedAnalyzers, kind)
	if err != nil {
		return nil, err
	}
	a := &Analyzer{Name: name, Type: typ, Options: options}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// IsCustom reports whether a is a custom analyzer.
func (a *Analyzer) IsCustom() bool { return a.Type == CustomAnalyzerType }

func (a *Analyzer) Validate() error {
	if a.Name == "" {
		return faults.Validationf("analyzer: name is required")
	}
	if !analyzerTypes.Has(a.Type) {
		_, err := analyzerTypes.Lookup(a.Type)
		return fmt.Errorf("analyzer %q: %w", a.Name, err)
	}
	if a.IsCustom() && a.Tokenizer == "" {
		return faults.Validationf("analyzer %q: custom analyzers need a tokenizer", a.Name)
	}
	return nil
}

func (a *Analyzer) ToDict() map[string]any {
	return wire.Finish(map[string]any{
		"name":         a.Name,
		"@odata.type":  a.Type,
		"tokenizer":    a.Tokenizer,
		"tokenFilters": a.TokenFilters,
		"charFilters":  a.CharFilters,
	}, a.Options)
}

func (a *Analyzer) String() string {
	return fmt.Sprintf("<Analyzer: %s (%s)>", a.Name, strings.TrimPrefix(a.Type, "#Microsoft.Azure.Search."))
}

// LoadAnalyzer rebuilds an analyzer, dispatching on @odata.type.
func LoadAnalyzer(data any) (*Analyzer, error) {
	f, err := wire.Load("analyzer", data)
	if err != nil {
		return nil, err
	}
	a := &Analyzer{
		Name:         f.String("name"),
		Type:         f.String("@odata.type"),
		Tokenizer:    f.String("tokenizer"),
		TokenFilters: f.Strings("token_filters"),
		CharFilters:  f.Strings("char_filters"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	a.Options = f.Rest()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Component is a named tokenizer, token filter or char filter declared on an
// index with its options.
type Component struct {
	Kind    Kind
	Name    string
	Type    string
	Options wire.Params
}

// Kind distinguishes the component families.
type Kind string

const (
	KindTokenizer   Kind = "tokenizer"
	KindTokenFilter Kind = "token filter"
	KindCharFilter  Kind = "char filter"
)

func (k Kind) table() map[string]string {
	switch k {
	case KindTokenizer:
		return predefinedTokenizers
	case KindTokenFilter:
		return predefinedTokenFilters
	case KindCharFilter:
		return predefinedCharFilters
	}
	return nil
}

func (k Kind) registry() *wire.Registry[struct{}] {
	switch k {
	case KindTokenizer:
		return tokenizerTypes
	case KindTokenFilter:
		return tokenFilterTypes
	}
	return charFilterTypes
}

// NewTokenizer declares a tokenizer. kind is a predefined name such as
// "edgeNGram" or a full @odata.type.
func NewTokenizer(name, kind string, options wire.Params) (*Component, error) {
	return newComponent(KindTokenizer, name, kind, options)
}

func NewTokenFilter(name, kind string, options wire.Params) (*Component, error) {
	return newComponent(KindTokenFilter, name, kind, options)
}

func NewCharFilter(name, kind string, options wire.Params) (*Component, error) {
	return newComponent(KindCharFilter, name, kind, options)
}

func newComponent(k Kind, name, kind string, options wire.Params) (*Component, error) {
	typ, err := resolve(string(k), k.table(), kind)
	if err != nil {
		return nil, err
	}
	c := &Component{Kind: k, Name: name, Type: typ, Options: options}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Component) Validate() error {
	if c.Name == "" {
		return faults.Validationf("%s: name is required", c.Kind)
	}
	if _, err := c.Kind.registry().Lookup(c.Type); err != nil {
		return fmt.Errorf("%s %q: %w", c.Kind, c.Name, err)
	}
	return nil
}

func (c *Component) ToDict() map[string]any {
	return wire.Finish(map[string]any{
		"name":        c.Name,
		"@odata.type": c.Type,
	}, c.Options)
}

func LoadTokenizer(data any) (*Component, error)   { return loadComponent(KindTokenizer, data) }
func LoadTokenFilter(data any) (*Component, error) { return loadComponent(KindTokenFilter, data) }
func LoadCharFilter(data any) (*Component, error)  { return loadComponent(KindCharFilter, data) }

func loadComponent(k Kind, data any) (*Component, error) {
	f, err := wire.Load(string(k), data)
	if err != nil {
		return nil, err
	}
	c := &Component{Kind: k, Name: f.String("name"), Type: f.String("@odata.type")}
	if err := f.Err(); err != nil {
		return nil, err
	}
	c.Options = f.Rest()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// resolve maps a predefined name to its @odata.type. A value that already
// looks like an @odata.type is returned unchanged.
func resolve(kind string, table map[string]string, name string) (string, error) {
	if strings.HasPrefix(name, "#") {
		return name, nil
	}
	typ, ok := table[name]
	if !ok {
		return "", faults.Validationf("%s: unknown predefined name %q", kind, name)
	}
	if typ == "" {
		return "", faults.Validationf("%s %q is built in and takes no options; reference it by name instead", kind, name)
	}
	return typ, nil
}

var (
	analyzerTypes    = typeRegistry("analyzer", predefinedAnalyzers, CustomAnalyzerType)
	tokenizerTypes   = typeRegistry(string(KindTokenizer), predefinedTokenizers)
	tokenFilterTypes = typeRegistry(string(KindTokenFilter), predefinedTokenFilters)
	charFilterTypes  = typeRegistry(string(KindCharFilter), predefinedCharFilters)
)

func typeRegistry(kind string, table map[string]string, extra ...string) *wire.Registry[struct{}] {
	r := wire.NewRegistry[struct{}](kind)
	for _, typ := range table {
		if typ != "" {
			r.Register(typ, struct{}{})
		}
	}
	for _, typ := range extra {
		r.Register(typ, struct{}{})
	}
	return r
}

// Builtin reports whether name is a built-in component of kind k that can be
// referenced without being declared on the index.
func Builtin(k Kind, name string) bool {
	_, ok := k.table()[name]
	return ok
}
