package index

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/azure-search-workbench/faults"
)

func TestNewStringField_KeySortable(t *testing.T) {
	f, err := NewStringField("id", Key(true), Sortable(true))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":        "id",
		"type":        "Edm.String",
		"key":         true,
		"sortable":    true,
		"searchable":  true,
		"filterable":  true,
		"retrievable": true,
	}, f.ToDict())
}

func TestNewField_Defaults(t *testing.T) {
	f, err := NewInt32Field("rating")
	require.NoError(t, err)

	d := f.ToDict()
	assert.Equal(t, true, d["filterable"])
	assert.Equal(t, true, d["retrievable"])
	assert.NotContains(t, d, "searchable")
	assert.NotContains(t, d, "key")
}

func TestNewCollectionField_NeverSortable(t *testing.T) {
	f, err := NewCollectionField("tags", Sortable(true), Facetable(true))
	require.NoError(t, err)
	assert.Equal(t, false, f.ToDict()["sortable"])
	assert.Equal(t, true, f.ToDict()["facetable"])

	// later mutation is still overridden, and the field itself is left alone
	f.Sortable = boolPtr(true)
	assert.Equal(t, false, f.ToDict()["sortable"])
	assert.True(t, *f.Sortable)
}

func TestField_ToDictForcesGeographyPointWithoutMutating(t *testing.T) {
	f := &Field{Name: "location", Type: GeographyPoint, Facetable: boolPtr(true)}
	assert.Equal(t, false, f.ToDict()["facetable"])
	assert.True(t, *f.Facetable)
}

func TestNewGeographyPointField_NeverFacetable(t *testing.T) {
	f, err := NewGeographyPointField("location", Facetable(true))
	require.NoError(t, err)
	assert.Equal(t, false, f.ToDict()["facetable"])
}

func TestNewField_Validation(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Field, error)
	}{
		{"empty name", func() (*Field, error) { return NewStringField("") }},
		{"bad type", func() (*Field, error) { return NewField("x", FieldType("Edm.Nope")) }},
		{"non-string key", func() (*Field, error) { return NewInt32Field("n", Key(true)) }},
		{"analyzer on number", func() (*Field, error) { return NewDoubleField("d", WithAnalyzer("standard.lucene")) }},
		{"analyzer on non-searchable", func() (*Field, error) {
			return NewStringField("s", Searchable(false), WithAnalyzer("en.lucene"))
		}},
		{"analyzer with search analyzer", func() (*Field, error) {
			return NewStringField("s", WithAnalyzer("en.lucene"), WithSearchAnalyzer("a"), WithIndexAnalyzer("b"))
		}},
		{"search analyzer alone", func() (*Field, error) { return NewStringField("s", WithSearchAnalyzer("a")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.Error(t, err)
			assert.True(t, faults.IsValidation(err), "got %v", err)
		})
	}
}

func TestLoadField_RoundTrip(t *testing.T) {
	fields := []func() (*Field, error){
		func() (*Field, error) { return NewStringField("id", Key(true)) },
		func() (*Field, error) { return NewStringField("desc", WithAnalyzer("en.microsoft")) },
		func() (*Field, error) { return NewCollectionField("tags", Facetable(true)) },
		func() (*Field, error) { return NewInt64Field("views", Sortable(true)) },
		func() (*Field, error) { return NewDoubleField("price") },
		func() (*Field, error) { return NewBooleanField("parking", Retrievable(false)) },
		func() (*Field, error) { return NewDateTimeOffsetField("updated") },
		func() (*Field, error) { return NewGeographyPointField("location") },
	}
	for _, build := range fields {
		f, err := build()
		require.NoError(t, err)
		t.Run(f.Name, func(t *testing.T) {
			data, err := json.Marshal(f.ToDict())
			require.NoError(t, err)

			got, err := LoadField(string(data))
			require.NoError(t, err)
			assert.Equal(t, f.ToDict(), got.ToDict())
			assert.Equal(t, f.Type, got.Type)
		})
	}
}

func TestLoadField_ServiceShape(t *testing.T) {
	got, err := LoadField(map[string]any{
		"name":        "hotelName",
		"type":        "Edm.String",
		"searchable":  true,
		"filterable":  false,
		"retrievable": true,
		"sortable":    true,
		"facetable":   false,
		"key":         false,
		"analyzer":    nil,
		"synonymMaps": []any{},
	})
	require.NoError(t, err)
	assert.Equal(t, false, got.ToDict()["filterable"])
	assert.NotContains(t, got.ToDict(), "synonymMaps")
}

func TestLoadField_UnknownType(t *testing.T) {
	_, err := LoadField(`{"name":"x","type":"Edm.Single"}`)
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))
	assert.Contains(t, err.Error(), "Edm.Single")
}

func TestLoadField_NotAnObject(t *testing.T) {
	_, err := LoadField(`[]`)
	assert.True(t, faults.IsParse(err))
}
