// Package index models search index definitions: fields, suggesters,
// scoring profiles and CORS options.
package index

import (
	"fmt"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// FieldType is an Entity Data Model type name.
type FieldType string

const (
	String           FieldType = "Edm.String"
	StringCollection FieldType = "Collection(Edm.String)"
	Int32            FieldType = "Edm.Int32"
	Int64            FieldType = "Edm.Int64"
	Double           FieldType = "Edm.Double"
	Boolean          FieldType = "Edm.Boolean"
	DateTimeOffset   FieldType = "Edm.DateTimeOffset"
	GeographyPoint   FieldType = "Edm.GeographyPoint"
)

// FieldTypes lists the supported types.
var FieldTypes = []FieldType{String, StringCollection, Int32, Int64, Double, Boolean, DateTimeOffset, GeographyPoint}

// Valid reports whether t is one of the supported types.
func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

func (t FieldType) textual() bool {
	return t == String || t == StringCollection
}

// Field is one column of an index. Attribute pointers left nil are omitted
// from the payload and take the service default; an explicit false is sent.
type Field struct {
	Name      string
	Type      FieldType
	IndexName string

	Searchable  *bool
	Filterable  *bool
	Retrievable *bool
	Sortable    *bool
	Facetable   *bool
	Key         *bool

	Analyzer       string
	SearchAnalyzer string
	IndexAnalyzer  string
	SynonymMaps    []string

	Params wire.Params
}

// FieldOption customizes a field at construction.
type FieldOption func(*Field)

func Searchable(b bool) FieldOption  { return func(f *Field) { f.Searchable = &b } }
func Filterable(b bool) FieldOption  { return func(f *Field) { f.Filterable = &b } }
func Retrievable(b bool) FieldOption { return func(f *Field) { f.Retrievable = &b } }
func Sortable(b bool) FieldOption    { return func(f *Field) { f.Sortable = &b } }
func Facetable(b bool) FieldOption   { return func(f *Field) { f.Facetable = &b } }
func Key(b bool) FieldOption         { return func(f *Field) { f.Key = &b } }

func WithAnalyzer(name string) FieldOption       { return func(f *Field) { f.Analyzer = name } }
func WithSearchAnalyzer(name string) FieldOption { return func(f *Field) { f.SearchAnalyzer = name } }
func WithIndexAnalyzer(name string) FieldOption  { return func(f *Field) { f.IndexAnalyzer = name } }

func WithSynonymMaps(names ...string) FieldOption {
	return func(f *Field) { f.SynonymMaps = append(f.SynonymMaps, names...) }
}

// WithFieldParams attaches attributes not modelled by Field.
func WithFieldParams(p wire.Params) FieldOption {
	return func(f *Field) { f.Params = p }
}

// NewField builds a field of any supported type. Filterable and retrievable
// default to true.
func NewField(name string, t FieldType, opts ...FieldOption) (*Field, error) {
	f := &Field{
		Name:        name,
		Type:        t,
		Filterable:  boolPtr(true),
		Retrievable: boolPtr(true),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.constrain()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// NewStringField builds an Edm.String field, searchable unless told otherwise.
func NewStringField(name string, opts ...FieldOption) (*Field, error) {
	return NewField(name, String, append([]FieldOption{Searchable(true)}, opts...)...)
}

// NewCollectionField builds a Collection(Edm.String) field. Collections can
// never be sortable.
func NewCollectionField(name string, opts ...FieldOption) (*Field, error) {
	return NewField(name, StringCollection, append([]FieldOption{Searchable(true)}, opts...)...)
}

func NewInt32Field(name string, opts ...FieldOption) (*Field, error) {
	return NewField(name, Int32, opts...)
}

func NewInt64Field(name string, opts ...FieldOption) (*Field, error) {
	return NewField(name, Int64, opts...)
}

func NewDoubleField(name string, opts ...FieldOption) (*Field, error) {
	return NewField(name, Double, opts...)
}

func NewBooleanField(name string, opts ...FieldOption) (*Field, error) {
	return NewField(name, Boolean, opts...)
}

func NewDateTimeOffsetField(name string, opts ...FieldOption) (*Field, error) {
	return NewField(name, DateTimeOffset, opts...)
}

// NewGeographyPointField builds an Edm.GeographyPoint field. Points can never
// be facetable.
func NewGeographyPointField(name string, opts ...FieldOption) (*Field, error) {
	return NewField(name, GeographyPoint, opts...)
}

// constrain forces the attributes the service rejects for a type.
func (f *Field) constrain() {
	switch f.Type {
	case StringCollection:
		f.Sortable = boolPtr(false)
	case GeographyPoint:
		f.Facetable = boolPtr(false)
	}
}

// Validate checks the field invariants.
func (f *Field) Validate() error {
	if f.Name == "" {
		return faults.Validationf("field: name is required")
	}
	if !f.Type.Valid() {
		return faults.Validationf("field %q: unsupported type %q", f.Name, f.Type)
	}
	if isTrue(f.Key) && f.Type != String {
		return faults.Validationf("field %q: only %s fields can be the key, got %s", f.Name, String, f.Type)
	}
	hasAnalyzer := f.Analyzer != "" || f.SearchAnalyzer != "" || f.IndexAnalyzer != ""
	if hasAnalyzer {
		if !f.Type.textual() || !isTrue(f.Searchable) {
			return faults.Validationf("field %q: analyzers can only be set on searchable string fields", f.Name)
		}
		if f.Analyzer != "" && (f.SearchAnalyzer != "" || f.IndexAnalyzer != "") {
			return faults.Validationf("field %q: analyzer cannot be combined with searchAnalyzer or indexAnalyzer", f.Name)
		}
		if (f.SearchAnalyzer == "") != (f.IndexAnalyzer == "") {
			return faults.Validationf("field %q: searchAnalyzer and indexAnalyzer must be set together", f.Name)
		}
	}
	return nil
}

// IsKey reports whether the field is the document key.
func (f *Field) IsKey() bool { return isTrue(f.Key) }

func (f *Field) ToDict() map[string]any {
	base := map[string]any{
		"name":           f.Name,
		"type":           string(f.Type),
		"analyzer":       f.Analyzer,
		"searchAnalyzer": f.SearchAnalyzer,
		"indexAnalyzer":  f.IndexAnalyzer,
		"synonymMaps":    f.SynonymMaps,
	}
	putBool(base, "searchable", f.Searchable)
	putBool(base, "filterable", f.Filterable)
	putBool(base, "retrievable", f.Retrievable)
	putBool(base, "sortable", f.Sortable)
	putBool(base, "facetable", f.Facetable)
	putBool(base, "key", f.Key)
	switch f.Type {
	case StringCollection:
		base["sortable"] = false
	case GeographyPoint:
		base["facetable"] = false
	}
	return wire.Finish(base, f.Params)
}

func (f *Field) String() string {
	return fmt.Sprintf("%s (%s)", f.Name, f.Type)
}

var fieldTypes = wire.NewRegistry[func(string, ...FieldOption) (*Field, error)]("field")

func init() {
	fieldTypes.Register(string(String), NewStringField)
	fieldTypes.Register(string(StringCollection), NewCollectionField)
	fieldTypes.Register(string(Int32), NewInt32Field)
	fieldTypes.Register(string(Int64), NewInt64Field)
	fieldTypes.Register(string(Double), NewDoubleField)
	fieldTypes.Register(string(Boolean), NewBooleanField)
	fieldTypes.Register(string(DateTimeOffset), NewDateTimeOffsetField)
	fieldTypes.Register(string(GeographyPoint), NewGeographyPointField)
}

// LoadField rebuilds a field, dispatching on its type. Attributes absent from
// the payload stay unset rather than taking constructor defaults.
func LoadField(data any) (*Field, error) {
	f, err := wire.Load("field", data)
	if err != nil {
		return nil, err
	}
	name := f.String("name")
	ctor, err := fieldTypes.Lookup(f.String("type"))
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	attrs := []*bool{
		f.BoolPtr("searchable"),
		f.BoolPtr("filterable"),
		f.BoolPtr("retrievable"),
		f.BoolPtr("sortable"),
		f.BoolPtr("facetable"),
		f.BoolPtr("key"),
	}
	opts := []FieldOption{
		func(fd *Field) {
			fd.Searchable, fd.Filterable, fd.Retrievable = attrs[0], attrs[1], attrs[2]
			fd.Sortable, fd.Facetable, fd.Key = attrs[3], attrs[4], attrs[5]
		},
		WithAnalyzer(f.String("analyzer")),
		WithSearchAnalyzer(f.String("search_analyzer")),
		WithIndexAnalyzer(f.String("index_analyzer")),
		WithSynonymMaps(f.Strings("synonym_maps")...),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	opts = append(opts, WithFieldParams(f.Rest()))
	return ctor(name, opts...)
}

func boolPtr(b bool) *bool { return &b }

func isTrue(b *bool) bool { return b != nil && *b }

func putBool(m map[string]any, key string, b *bool) {
	if b != nil {
		m[key] = *b
	}
}
